package protocol

import (
	"bufio"
	"io"
	"strings"
)

// Writer provides buffered writing of protocol lines
type Writer struct {
	bw *bufio.Writer
}

// NewWriter creates a new line writer
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		bw: bufio.NewWriter(w),
	}
}

// WriteReply writes a reply as exactly one line
func (w *Writer) WriteReply(r Reply) error {
	switch r.Kind {
	case ReplyNil:
		return w.writeNewline()
	default:
		return w.WriteLine(r.Text)
	}
}

// WriteInternalError writes the fixed internal-error line
func (w *Writer) WriteInternalError() error {
	return w.WriteLine(InternalError)
}

// WriteLine writes s followed by a newline unless s already ends with one
func (w *Writer) WriteLine(s string) error {
	if _, err := w.bw.WriteString(s); err != nil {
		return err
	}
	if strings.HasSuffix(s, "\n") {
		return nil
	}
	return w.writeNewline()
}

// WriteOperation writes an operation as a request line
func (w *Writer) WriteOperation(op Operation) error {
	_, err := w.bw.WriteString(Format(op))
	return err
}

// Flush flushes any buffered data to the underlying writer
func (w *Writer) Flush() error {
	return w.bw.Flush()
}

// Reset resets the writer to write to a new underlying writer
func (w *Writer) Reset(writer io.Writer) {
	w.bw.Reset(writer)
}

func (w *Writer) writeNewline() error {
	return w.bw.WriteByte('\n')
}
