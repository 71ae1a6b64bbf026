package xbase

// cursor implements the shared top/bottom/skip/goto contract of §4.7,
// embedded by Table, List, and Index. current ranges over [-1, length()]:
// -1 is "before first", length() is "after last".
type cursor struct {
	current int
	length  func() int
}

func newCursor(length func() int) cursor {
	return cursor{current: -1, length: length}
}

// Top positions before the first entry.
func (c *cursor) Top() { c.current = -1 }

// Bottom positions after the last entry.
func (c *cursor) Bottom() { c.current = c.length() }

// Skip advances by n (n may be negative), raising Bof/Eof if the move
// would cross a sentinel boundary from its current position.
func (c *cursor) Skip(n int) error {
	target := c.current + n
	if target < -1 {
		return ErrBof
	}
	if target > c.length() {
		return ErrEof
	}
	c.current = target
	return nil
}

// Goto positions at an absolute index, normalizing a negative one from the
// end the way Python-style indexing does.
func (c *cursor) Goto(i int) error {
	n := c.length()
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return NewNotFoundError("index out of range", i)
	}
	c.current = i
	return nil
}

// Position returns the current cursor index.
func (c *cursor) Position() int { return c.current }

// AtBof reports whether the cursor sits before the first entry.
func (c *cursor) AtBof() bool { return c.current < 0 }

// AtEof reports whether the cursor sits after the last entry.
func (c *cursor) AtEof() bool { return c.current >= c.length() }
