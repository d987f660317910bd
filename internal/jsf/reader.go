package jsf

import (
	"errors"
	"fmt"
	"io"

	"example.com/jsf2segy/internal/common"
)

var (
	ErrTruncatedHeader = errors.New("truncated message header")
	ErrBadMarker       = errors.New("start of message marker 0x1601 not found")
	ErrShortRead       = errors.New("short read")
	ErrShortPayload    = errors.New("payload smaller than trace header")
)

// FramingError reports a framing failure together with the stream offset of
// the offending message header.
type FramingError struct {
	Offset int64
	Err    error
}

func (e *FramingError) Error() string {
	return fmt.Sprintf("offset %d: %v", e.Offset, e.Err)
}

func (e *FramingError) Unwrap() error { return e.Err }

// Reader walks a JSF stream one message at a time. The stream is consumed
// strictly forward; there is no resynchronisation after a bad marker.
type Reader struct {
	r       io.Reader
	seeker  io.Seeker
	offset  int64
	hdr     [MessageHeaderSize]byte
	metrics *common.Metrics
}

// NewReader wraps r. If r also implements io.Seeker, skips are seeks.
func NewReader(r io.Reader) *Reader {
	rd := &Reader{r: r}
	if s, ok := r.(io.Seeker); ok {
		rd.seeker = s
	}
	return rd
}

// SetMetrics attaches a metrics recorder to the reader.
func (r *Reader) SetMetrics(m *common.Metrics) {
	r.metrics = m
}

// Offset is the number of bytes consumed so far.
func (r *Reader) Offset() int64 {
	return r.offset
}

// Next reads the next message header. It returns io.EOF when the stream ends
// cleanly on a message boundary.
func (r *Reader) Next() (MessageHeader, error) {
	start := r.offset
	n, err := io.ReadFull(r.r, r.hdr[:])
	r.offset += int64(n)
	switch {
	case n == 0 && (err == io.EOF || err == io.ErrUnexpectedEOF):
		return MessageHeader{}, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		return MessageHeader{}, &FramingError{Offset: start, Err: ErrTruncatedHeader}
	case err != nil:
		return MessageHeader{}, err
	}
	hdr := ParseMessageHeader(r.hdr[:])
	if hdr.Marker != StartOfMessage {
		return hdr, &FramingError{Offset: start, Err: ErrBadMarker}
	}
	if r.metrics != nil {
		r.metrics.AddMessage(MessageHeaderSize + int64(hdr.Size))
	}
	return hdr, nil
}

// ReadFull fills buf from the stream.
func (r *Reader) ReadFull(buf []byte) error {
	n, err := io.ReadFull(r.r, buf)
	r.offset += int64(n)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: got %d of %d bytes at offset %d", ErrShortRead, n, len(buf), r.offset-int64(n))
		}
		return err
	}
	return nil
}

// Skip advances the stream by n bytes. A skip that runs past the end of the
// stream is not an error; the following Next reports io.EOF.
func (r *Reader) Skip(n int64) error {
	if n <= 0 {
		return nil
	}
	if r.seeker != nil {
		if _, err := r.seeker.Seek(n, io.SeekCurrent); err != nil {
			return err
		}
		r.offset += n
		return nil
	}
	copied, err := io.CopyN(io.Discard, r.r, n)
	r.offset += copied
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
