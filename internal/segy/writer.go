package segy

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"example.com/jsf2segy/internal/sample"
)

var (
	ErrShortWrite      = errors.New("short write to SEG-Y output")
	ErrHeadersWritten  = errors.New("reel headers already written")
	ErrHeadersMissing  = errors.New("trace written before reel headers")
	ErrHeaderSize      = errors.New("header has wrong size")
	ErrSampleCountDiff = errors.New("trace sample count differs from reel header")
)

// Writer emits one SEG-Y file: reel headers exactly once, then traces.
type Writer struct {
	w       *bufio.Writer
	samples int
	traces  int
	written bool
	buf     []byte
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriterSize(w, 256*1024)}
}

// HeadersWritten reports whether the reel headers have been emitted.
func (w *Writer) HeadersWritten() bool { return w.written }

// Traces is the number of traces written so far.
func (w *Writer) Traces() int { return w.traces }

// WriteReelHeaders writes the textual and binary reel headers. samples fixes
// the trace length for the rest of the file.
func (w *Writer) WriteReelHeaders(text, bin []byte, samples int) error {
	if w.written {
		return ErrHeadersWritten
	}
	if len(text) != TextualHeaderSize {
		return fmt.Errorf("%w: textual header is %d bytes", ErrHeaderSize, len(text))
	}
	if len(bin) != BinaryHeaderSize {
		return fmt.Errorf("%w: binary header is %d bytes", ErrHeaderSize, len(bin))
	}
	if err := w.write(text); err != nil {
		return err
	}
	if err := w.write(bin); err != nil {
		return err
	}
	w.written = true
	w.samples = samples
	return nil
}

// WriteTrace writes a trace header followed by its samples as big-endian
// IEEE floats.
func (w *Writer) WriteTrace(hdr []byte, samples []float32) error {
	if !w.written {
		return ErrHeadersMissing
	}
	if len(hdr) != TraceHeaderSize {
		return fmt.Errorf("%w: trace header is %d bytes", ErrHeaderSize, len(hdr))
	}
	if len(samples) != w.samples {
		return fmt.Errorf("%w: %d != %d", ErrSampleCountDiff, len(samples), w.samples)
	}
	if err := w.write(hdr); err != nil {
		return err
	}
	w.buf = sample.AppendBigEndian(w.buf[:0], samples)
	if err := w.write(w.buf); err != nil {
		return err
	}
	w.traces++
	return nil
}

// Flush pushes buffered bytes to the underlying writer.
func (w *Writer) Flush() error {
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("%w: %v", ErrShortWrite, err)
	}
	return nil
}

func (w *Writer) write(p []byte) error {
	n, err := w.w.Write(p)
	if err != nil {
		return fmt.Errorf("%w: wrote %d of %d bytes: %v", ErrShortWrite, n, len(p), err)
	}
	return nil
}
