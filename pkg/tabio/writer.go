package tabio

import (
	"bufio"
	"io"
	"strconv"

	"github.com/golang/snappy"
)

// Writer emits (node, label) pairs as tab-separated lines. With compression
// enabled the stream is framed with snappy, which keeps multi-gigabyte
// label tables manageable; the verify command reads either form.
type Writer struct {
	bw *bufio.Writer
	sw *snappy.Writer
}

// NewWriter wraps w. If compress is true the output is a snappy-framed
// stream.
func NewWriter(w io.Writer, compress bool) *Writer {
	if compress {
		sw := snappy.NewBufferedWriter(w)
		return &Writer{bw: bufio.NewWriter(sw), sw: sw}
	}
	return &Writer{bw: bufio.NewWriter(w)}
}

// WritePair writes one "a<TAB>b" line.
func (w *Writer) WritePair(a, b uint32) error {
	var buf [24]byte
	out := strconv.AppendUint(buf[:0], uint64(a), 10)
	out = append(out, '\t')
	out = strconv.AppendUint(out, uint64(b), 10)
	out = append(out, '\n')
	_, err := w.bw.Write(out)
	return err
}

// Close flushes buffered data and terminates the snappy frame if one is in
// use. It does not close the underlying writer.
func (w *Writer) Close() error {
	if err := w.bw.Flush(); err != nil {
		return err
	}
	if w.sw != nil {
		return w.sw.Close()
	}
	return nil
}
