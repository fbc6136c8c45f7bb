package protocol

import (
	"bufio"
	"io"
	"strings"
)

// Reader reads newline-terminated request or response lines
type Reader struct {
	br *bufio.Reader
}

// NewReader creates a new line reader
func NewReader(r io.Reader) *Reader {
	return &Reader{
		br: bufio.NewReader(r),
	}
}

// ReadLine reads the next line and returns it without its terminator
// ("\n" or "\r\n").
//
// io.EOF is returned only when the stream ends before any byte of a new
// line was read. A final line that is not newline-terminated is returned
// with a nil error; the following call reports io.EOF.
func (r *Reader) ReadLine() (string, error) {
	line, err := r.br.ReadString('\n')
	if err != nil {
		if err == io.EOF && len(line) > 0 {
			return trimEOL(line), nil
		}
		return "", err
	}
	return trimEOL(line), nil
}

// Reset resets the reader to read from a new underlying reader
func (r *Reader) Reset(reader io.Reader) {
	r.br.Reset(reader)
}

func trimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}
