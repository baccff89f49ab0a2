package codec

import "github.com/ssargent/embedis/pkg/medium"

const (
	// HeaderSize is the length field stored above every payload.
	HeaderSize = 2

	// MaxLength is the longest payload a record can carry; 0xFFFF marks free space.
	MaxLength = 0xFFFE

	terminatorByte = 0xFF
)

// Record locates one length-prefixed payload inside the medium. The payload
// occupies [Begin, End) and its length field the two bytes above End.
type Record struct {
	Begin int
	End   int
}

// Len returns the payload length.
func (r Record) Len() int {
	return r.End - r.Begin
}

// Size returns the stored size, header included.
func (r Record) Size() int {
	return r.Len() + HeaderSize
}

// Top returns the address just above the length field.
func (r Record) Top() int {
	return r.End + HeaderSize
}

// Read copies the payload out of the medium.
func (r Record) Read(source medium.Medium) string {
	if r.Len() == 0 {
		return ""
	}
	buf := make([]byte, 0, r.Len())
	c := NewCursor(source, r.Begin, r.End)
	for c.Valid() {
		buf = append(buf, c.Read())
		c.Inc()
	}
	return string(buf)
}

// Equal compares the payload with s without copying it.
func (r Record) Equal(source medium.Medium, s string) bool {
	if r.Len() != len(s) {
		return false
	}
	c := NewCursor(source, r.Begin, r.End)
	for i := 0; c.Valid(); i++ {
		if c.Read() != s[i] {
			return false
		}
		c.Inc()
	}
	return true
}

// Overwrite replaces the payload in place. s must have the same length.
func (r Record) Overwrite(source medium.Medium, s string) bool {
	if r.Len() != len(s) {
		return false
	}
	c := NewCursor(source, r.Begin, r.End)
	for i := 0; c.Valid(); i++ {
		c.Write(s[i])
		c.Inc()
	}
	return true
}

// Entry is a key record followed, at lower addresses, by its value record.
type Entry struct {
	Key   Record
	Value Record
}

// Begin is the lowest address of the entry.
func (e Entry) Begin() int {
	return e.Value.Begin
}

// End is the address just above the key's length field.
func (e Entry) End() int {
	return e.Key.Top()
}

func (e Entry) Size() int {
	return e.End() - e.Begin()
}

// EntrySize returns the bytes an entry for key and value occupies.
func EntrySize(key, value string) int {
	return 2*HeaderSize + len(key) + len(value)
}
