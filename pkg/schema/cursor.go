package schema

// cursor walks one level of a token tree forward.
type cursor struct {
	buf []Token
	pos int
}

func (c *cursor) done() bool {
	return c.pos >= len(c.buf)
}

func (c *cursor) next() Token {
	t := c.buf[c.pos]
	c.pos++
	return t
}

func (c *cursor) peek() (Token, bool) {
	return c.peekAt(0)
}

func (c *cursor) peekAt(n int) (Token, bool) {
	if c.pos+n >= len(c.buf) {
		return Token{}, false
	}
	return c.buf[c.pos+n], true
}

func (c *cursor) rest() []Token {
	return c.buf[c.pos:]
}
