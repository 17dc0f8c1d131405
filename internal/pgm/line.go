package pgm

import "io"

// readLine consumes one raw text line and returns it without its terminator.
// "\n", "\r", "\r\n" and "\n\r" each end exactly one line. End of stream ends
// the final line; whatever was accumulated is returned with a nil error.
func (p *peekReader) readLine() (string, error) {
	line := make([]byte, 0, 80)
	for {
		c, err := p.readByte()
		if err == io.EOF {
			return string(line), nil
		}
		if err != nil {
			return string(line), err
		}
		if c == '\n' || c == '\r' {
			return string(line), p.skipPairedTerminator(c)
		}
		line = append(line, c)
	}
}

// skipPairedTerminator consumes the second byte of a two-byte line end. Any
// other byte is left in the stream for the next reader.
func (p *peekReader) skipPairedTerminator(first byte) error {
	next, err := p.peekByte()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return err
	}
	if (first == '\n' && next == '\r') || (first == '\r' && next == '\n') {
		_, err = p.readByte()
	}
	return err
}
