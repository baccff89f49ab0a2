package codec

import "github.com/ssargent/embedis/pkg/medium"

// Writer serializes records downward from a boundary. Payload bytes are
// written last to first while the cursor moves backward, so they end up in
// natural order.
type Writer struct {
	cursor Cursor
}

// NewWriter returns a writer that fills [begin, boundary) from the top.
func NewWriter(source medium.Medium, begin, boundary int) *Writer {
	return &Writer{cursor: FromEnd(source, begin, boundary)}
}

// Position returns the lowest address written so far.
func (w *Writer) Position() int {
	return w.cursor.Position()
}

// Remaining returns the room left below the position.
func (w *Writer) Remaining() int {
	return w.cursor.Remaining()
}

// WriteRecord stores one record, or nothing when it does not fit.
func (w *Writer) WriteRecord(payload string) bool {
	n := len(payload)
	if n > MaxLength || w.cursor.Remaining() < n+HeaderSize {
		return false
	}

	w.cursor.Dec()
	w.cursor.Write(byte(n & 0xff))
	w.cursor.Dec()
	w.cursor.Write(byte((n >> 8) & 0xff))

	for i := n - 1; i >= 0; i-- {
		w.cursor.Dec()
		w.cursor.Write(payload[i])
	}
	return true
}

// WriteEntry stores key then value, or nothing when the pair does not fit.
func (w *Writer) WriteEntry(key, value string) bool {
	if len(key) > MaxLength || len(value) > MaxLength {
		return false
	}
	if w.cursor.Remaining() < EntrySize(key, value) {
		return false
	}
	return w.WriteRecord(key) && w.WriteRecord(value)
}

// WriteTerminator stores an empty key record, which stops any scan.
func (w *Writer) WriteTerminator() bool {
	return w.WriteRecord("")
}
