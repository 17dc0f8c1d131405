package pgm

import (
	"bufio"
	"io"
)

// peekReader is a byte stream with one byte of look-ahead. Bytes observed with
// peekByte stay unread, which is how the tokenizer hands the first payload
// byte back to the frame extractor.
type peekReader struct {
	r *bufio.Reader
}

func newPeekReader(r io.Reader) *peekReader {
	if br, ok := r.(*bufio.Reader); ok {
		return &peekReader{r: br}
	}
	return &peekReader{r: bufio.NewReader(r)}
}

func (p *peekReader) readByte() (byte, error) {
	return p.r.ReadByte()
}

func (p *peekReader) peekByte() (byte, error) {
	b, err := p.r.Peek(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Read drains buffered look-ahead before touching the underlying stream.
func (p *peekReader) Read(buf []byte) (int, error) {
	return p.r.Read(buf)
}
