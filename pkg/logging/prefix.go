package logging

import (
	"bytes"
	"io"
)

// linePrefixWriter tags every line written through it with a fixed prefix
// before forwarding to the underlying writer. Unlike a fixed banner string,
// the prefix here is derived per logger (see NewLogger), since each
// subcommand runs its own named logger against the same stderr stream and
// a reader needs to tell them apart line by line.
type linePrefixWriter struct {
	prefix []byte
	out    io.Writer
	pend   bytes.Buffer
}

func newLinePrefixWriter(prefix string, out io.Writer) *linePrefixWriter {
	return &linePrefixWriter{prefix: []byte(prefix), out: out}
}

// Write splits p on newlines, flushing each complete line to out prefixed,
// and holds back a trailing partial line until the next Write completes it.
func (w *linePrefixWriter) Write(p []byte) (int, error) {
	w.pend.Write(p)

	for {
		buffered := w.pend.Bytes()
		i := bytes.IndexByte(buffered, '\n')
		if i < 0 {
			break
		}
		line := append([]byte(nil), buffered[:i+1]...)
		w.pend.Next(i + 1)

		if _, err := w.out.Write(w.prefix); err != nil {
			return 0, err
		}
		if _, err := w.out.Write(line); err != nil {
			return 0, err
		}
	}

	return len(p), nil
}
