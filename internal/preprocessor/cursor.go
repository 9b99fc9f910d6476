package preprocessor

// Cursor reads an immutable text one byte at a time. It can be rewound, but
// never past the start of the text nor beyond the furthest byte already read.
type Cursor struct {
	text string
	pos  int
	high int
}

func NewCursor(text string) *Cursor {
	return &Cursor{text: text}
}

// Next returns the byte at the read position and advances past it.
func (c *Cursor) Next() (byte, bool) {
	if c.pos >= len(c.text) {
		return 0, false
	}
	ch := c.text[c.pos]
	c.pos++
	if c.pos > c.high {
		c.high = c.pos
	}
	return ch, true
}

func (c *Cursor) Peek() (byte, bool) {
	if c.pos >= len(c.text) {
		return 0, false
	}
	return c.text[c.pos], true
}

func (c *Cursor) EOF() bool { return c.pos >= len(c.text) }

func (c *Cursor) Pos() int { return c.pos }

// Back moves the read position n bytes backwards and returns how far it
// actually moved.
func (c *Cursor) Back(n int) int {
	if n > c.pos {
		n = c.pos
	}
	if n < 0 {
		n = 0
	}
	c.pos -= n
	return n
}

// Seek moves the read position to an earlier mark, bounded like Back.
func (c *Cursor) Seek(mark int) {
	if mark < 0 {
		mark = 0
	}
	if mark > c.high {
		mark = c.high
	}
	c.pos = mark
}

// Slice returns the text between two marks.
func (c *Cursor) Slice(from, to int) string {
	return c.text[from:to]
}

// SkipLineTerminator consumes one "\n", "\r" or "\r\n" at the read position.
func (c *Cursor) SkipLineTerminator() bool {
	ch, ok := c.Peek()
	if !ok || !isLineTerminator(ch) {
		return false
	}
	c.Next()
	if ch == '\r' {
		if next, ok := c.Peek(); ok && next == '\n' {
			c.Next()
		}
	}
	return true
}

func isBlank(ch byte) bool {
	return ch == ' ' || ch == '\t'
}

func isLineTerminator(ch byte) bool {
	return ch == '\n' || ch == '\r'
}
