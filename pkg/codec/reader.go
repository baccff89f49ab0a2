package codec

import "github.com/ssargent/embedis/pkg/medium"

// State is a step of the backward record scan.
type State int

const (
	StateBegin State = iota
	StateLenByte1
	StateLenByte2
	StateValue
	StateEmptyValue
	StateOutput
	StateEnd
)

func (s State) String() string {
	switch s {
	case StateBegin:
		return "Begin"
	case StateLenByte1:
		return "LenByte1"
	case StateLenByte2:
		return "LenByte2"
	case StateValue:
		return "Value"
	case StateEmptyValue:
		return "EmptyValue"
	case StateOutput:
		return "Output"
	case StateEnd:
		return "End"
	}
	return "Unknown"
}

// Reader walks a region from its end toward its beginning, one record at a
// time. Once it reaches StateEnd it stays there until Rewind.
type Reader struct {
	cursor Cursor
	state  State
	length int
}

// NewReader returns a reader positioned at end.
func NewReader(source medium.Medium, begin, end int) *Reader {
	return &Reader{
		cursor: FromEnd(source, begin, end),
		state:  StateBegin,
	}
}

// Rewind restarts the scan from the end of the region.
func (r *Reader) Rewind() {
	r.cursor.Rewind()
	r.state = StateBegin
	r.length = 0
}

// State returns the step the scan stopped in.
func (r *Reader) State() State {
	return r.state
}

// Position returns the lowest address the scan has reached.
func (r *Reader) Position() int {
	return r.cursor.Position()
}

// Next decodes the record below the current position.
func (r *Reader) Next() (Record, bool) {
	for {
		switch r.state {
		case StateBegin:
			if r.cursor.Remaining() >= HeaderSize {
				r.state = StateLenByte1
			} else {
				r.state = StateEnd
			}

		case StateLenByte1:
			r.cursor.Dec()
			r.length = int(r.cursor.Read())
			r.state = StateLenByte2

		case StateLenByte2:
			r.cursor.Dec()
			hi := r.cursor.Read()
			if r.length == terminatorByte && hi == terminatorByte {
				r.state = StateEnd
				continue
			}
			r.length |= int(hi) << 8
			if r.length == 0 {
				r.state = StateEmptyValue
			} else {
				r.state = StateValue
			}

		case StateValue:
			// a length running past begin means garbage, not data
			if r.cursor.Remaining() < r.length {
				r.state = StateEnd
				continue
			}
			r.cursor.Advance(-r.length)
			r.state = StateOutput

		case StateEmptyValue:
			r.state = StateOutput

		case StateOutput:
			pos := r.cursor.Position()
			r.state = StateBegin
			return Record{Begin: pos, End: pos + r.length}, true

		default:
			return Record{}, false
		}
	}
}

// NextEntry decodes a key record and the value record below it. A missing or
// empty key ends the scan.
func (r *Reader) NextEntry() (Entry, bool) {
	key, ok := r.Next()
	if !ok {
		return Entry{}, false
	}
	if key.Len() == 0 {
		r.state = StateEnd
		return Entry{}, false
	}

	value, ok := r.Next()
	if !ok {
		return Entry{}, false
	}
	return Entry{Key: key, Value: value}, true
}
