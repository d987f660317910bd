package convert

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"example.com/jsf2segy/internal/common"
	"example.com/jsf2segy/internal/segy"
)

var (
	ErrPathExists     = errors.New("output file already exists")
	ErrNoRolloverName = errors.New("no free rollover file name")
)

const maxRolloverSuffix = 99

type sessionState int

const (
	headersPending sessionState = iota
	headersWritten
)

func (s sessionState) String() string {
	if s == headersWritten {
		return "headers-written"
	}
	return "headers-pending"
}

// session is one open SEG-Y output file.
type session struct {
	path       string
	file       *os.File
	w          *segy.Writer
	state      sessionState
	recordSize int32
	firstTrace int32
	opened     time.Time
}

// OutputFile describes a SEG-Y file produced by a run.
type OutputFile struct {
	Path       string    `json:"path"`
	Traces     int       `json:"traces"`
	RecordSize int32     `json:"recordSize"`
	FirstTrace int32     `json:"firstTrace,omitempty"`
	Opened     time.Time `json:"opened"`

	// HeadersWritten is false for a rollover file closed before any
	// matching trace arrived. Such a file is left empty.
	HeadersWritten bool `json:"headersWritten"`
}

// createExclusive creates path, failing if anything already exists there.
func createExclusive(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: %s", ErrPathExists, path)
		}
		return nil, err
	}
	return f, nil
}

func newSession(path string, f *os.File, recordSize int32) *session {
	return &session{
		path:       path,
		file:       f,
		w:          segy.NewWriter(f),
		state:      headersPending,
		recordSize: recordSize,
		opened:     time.Now().UTC(),
	}
}

// openFirst creates the primary output file base+ext.
func openFirst(base, ext string, recordSize int32) (*session, error) {
	path := base + ext
	f, err := createExclusive(path)
	if err != nil {
		return nil, err
	}
	return newSession(path, f, recordSize), nil
}

// openRollover probes base00+ext through base99+ext and creates the first
// name that does not exist yet.
func openRollover(base, ext string, recordSize int32) (*session, int, error) {
	for i := 0; i <= maxRolloverSuffix; i++ {
		path := fmt.Sprintf("%s%02d%s", base, i, ext)
		f, err := createExclusive(path)
		if errors.Is(err, ErrPathExists) {
			continue
		}
		if err != nil {
			return nil, i, err
		}
		return newSession(path, f, recordSize), i, nil
	}
	return nil, -1, fmt.Errorf("%w: %s00%s through %s%02d%s are taken", ErrNoRolloverName, base, ext, base, maxRolloverSuffix, ext)
}

// writeHeaders emits the reel headers and moves the session to
// headersWritten.
func (s *session) writeHeaders(text, bin []byte, samples int) error {
	if s.state == headersWritten {
		return nil
	}
	if err := s.w.WriteReelHeaders(text, bin, samples); err != nil {
		return fmt.Errorf("%s: %w", s.path, err)
	}
	s.state = headersWritten
	return nil
}

func (s *session) writeTrace(hdr []byte, samples []float32, seq int32) error {
	if s.w.Traces() == 0 {
		s.firstTrace = seq
	}
	if err := s.w.WriteTrace(hdr, samples); err != nil {
		return fmt.Errorf("%s: %w", s.path, err)
	}
	return nil
}

func (s *session) summary() OutputFile {
	return OutputFile{
		Path:       s.path,
		Traces:     s.w.Traces(),
		RecordSize: s.recordSize,
		FirstTrace: s.firstTrace,
		Opened:     s.opened,

		HeadersWritten: s.state == headersWritten,
	}
}

// close flushes and closes the file. It is safe to call more than once.
func (s *session) close() error {
	if s.file == nil {
		return nil
	}
	flushErr := s.w.Flush()
	closeErr := s.file.Close()
	s.file = nil
	if s.state == headersPending {
		common.Logf("%s closed before any trace was written", s.path)
	}
	if flushErr != nil {
		return fmt.Errorf("%s: %w", s.path, flushErr)
	}
	return closeErr
}
