package codec

import "github.com/ssargent/embedis/pkg/medium"

// Cursor is a bounded byte pointer over [begin, end) of a medium. It is valid
// while begin <= position < end; position == end is the starting point for
// backward walks and reads as invalid until decremented.
type Cursor struct {
	source   medium.Medium
	begin    int
	end      int
	position int
}

// NewCursor returns a cursor positioned at begin.
func NewCursor(source medium.Medium, begin, end int) Cursor {
	return Cursor{source: source, begin: begin, end: end, position: begin}
}

// FromEnd returns a cursor positioned at end, ready to walk backward.
func FromEnd(source medium.Medium, begin, end int) Cursor {
	return Cursor{source: source, begin: begin, end: end, position: end}
}

// Reset narrows the cursor to [begin, end) and moves it to begin.
func (c *Cursor) Reset(begin, end int) {
	c.begin = begin
	c.end = end
	c.position = begin
}

// Rewind moves the cursor back to end.
func (c *Cursor) Rewind() {
	c.position = c.end
}

// Read returns the byte under the cursor, or 0 when out of bounds.
func (c *Cursor) Read() byte {
	if !c.Valid() {
		return 0
	}
	return c.source.Read(c.position)
}

// Write stores value under the cursor. Out of bounds writes are dropped.
func (c *Cursor) Write(value byte) {
	if !c.Valid() {
		return
	}
	c.source.Write(c.position, value)
}

// Inc moves one byte toward end.
func (c *Cursor) Inc() {
	c.position++
}

// Dec moves one byte toward begin.
func (c *Cursor) Dec() {
	c.position--
}

// Advance moves by n bytes, backward when n is negative.
func (c *Cursor) Advance(n int) {
	c.position += n
}

// Valid reports whether the position is inside [begin, end).
func (c *Cursor) Valid() bool {
	return c.begin <= c.position && c.position < c.end
}

// Size is the length of the range.
func (c *Cursor) Size() int {
	return c.end - c.begin
}

// Position returns the absolute offset in the medium.
func (c *Cursor) Position() int {
	return c.position
}

// Begin returns the lowest offset of the range.
func (c *Cursor) Begin() int {
	return c.begin
}

// End returns the offset just past the range.
func (c *Cursor) End() int {
	return c.end
}

// Remaining is the number of bytes between begin and the position, i.e. how
// far a backward walk can still go.
func (c *Cursor) Remaining() int {
	return c.position - c.begin
}
