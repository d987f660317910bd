// Package convert drives a JSF stream through the sample decoder and the
// SEG-Y writer, rolling over to a new output file whenever the subbottom
// record length changes.
package convert

import (
	"errors"
	"fmt"
	"io"
	"math"

	"example.com/jsf2segy/internal/common"
	"example.com/jsf2segy/internal/jsf"
	"example.com/jsf2segy/internal/sample"
	"example.com/jsf2segy/internal/segy"
)

var (
	ErrSampleCountOverflow = errors.New("number of samples exceeds SEG-Y standard")
	ErrNoModes             = errors.New("no subbottom data type selected")
	ErrNoOutput            = errors.New("no output file name")
)

// DefaultExtension is appended to the output base name.
const DefaultExtension = ".sgy"

// TextDefaults are the fixed identification strings of the textual header.
type TextDefaults struct {
	Client       string `yaml:"client"`
	Company      string `yaml:"company"`
	Manufacturer string `yaml:"manufacturer"`
	Model        string `yaml:"model"`
	System       string `yaml:"system"`
	Note         string `yaml:"note"`
}

// DefaultText returns the identification used when none is configured.
func DefaultText() TextDefaults {
	return TextDefaults{
		Client:       "U.S.G.S.",
		Company:      "WHSC",
		Manufacturer: "Edgetech",
		Model:        "JStar",
		System:       "Edgetech FSSB",
		Note:         "Altitude in Trace header byte 41 in millimeters",
	}
}

// Options configure a conversion run.
type Options struct {
	Modes      sample.Modes
	OutputBase string
	Extension  string
	Text       TextDefaults
	Metrics    *common.Metrics
	Events     *common.EventLog
	// Notices receives the operator messages printed during a run, such
	// as rollover notices. Nil discards them.
	Notices io.Writer
}

// Summary is reported at the end of a run, including runs that fail.
type Summary struct {
	Input     string        `json:"input,omitempty"`
	Records   int           `json:"records"`
	Start     jsf.Timestamp `json:"start"`
	End       jsf.Timestamp `json:"end"`
	HaveTimes bool          `json:"haveTimes"`
	Files     []OutputFile  `json:"files"`
	Rollovers int           `json:"rollovers"`
	Skipped   int           `json:"skipped"`
	Messages  int           `json:"messages"`
	Subbottom int           `json:"subbottom"`
	Error     string        `json:"error,omitempty"`
}

// Paths lists the output files in the order they were opened.
func (s Summary) Paths() []string {
	out := make([]string, 0, len(s.Files))
	for _, f := range s.Files {
		out = append(out, f.Path)
	}
	return out
}

// Converter runs one conversion. It is not safe for concurrent use.
type Converter struct {
	opts    Options
	state   State
	session *session
	files   []OutputFile

	traceHdr []byte
	payload  []byte
	samples  []float32
	segyHdr  []byte
}

// New validates opts and prepares a converter.
func New(opts Options) (*Converter, error) {
	if !opts.Modes.Any() {
		return nil, ErrNoModes
	}
	if opts.OutputBase == "" {
		return nil, ErrNoOutput
	}
	if opts.Extension == "" {
		opts.Extension = DefaultExtension
	}
	if opts.Notices == nil {
		opts.Notices = io.Discard
	}
	return &Converter{
		opts:     opts,
		state:    newState(),
		traceHdr: make([]byte, jsf.TraceHeaderSize),
	}, nil
}

// ConvertFile opens path, converting compressed inputs on the fly, and runs
// the conversion to completion.
func ConvertFile(path string, opts Options) (Summary, error) {
	c, err := New(opts)
	if err != nil {
		return Summary{Input: path}, err
	}
	in, err := jsf.OpenInput(path)
	if err != nil {
		return Summary{Input: path}, err
	}
	defer in.Close()
	if in.Compression == jsf.CompressionNone {
		opts.Metrics.SetTotalBytes(in.Size)
	}
	summary, err := c.Run(jsf.NewReader(in.Reader))
	summary.Input = path
	return summary, err
}

// Run consumes r to the end. Any open output file is closed before Run
// returns, and the summary reflects the work done even when err is non-nil.
func (c *Converter) Run(r *jsf.Reader) (Summary, error) {
	r.SetMetrics(c.opts.Metrics)
	c.opts.Metrics.Start()
	defer c.opts.Metrics.Stop()

	err := c.loop(r)
	if cerr := c.closeSession(); err == nil {
		err = cerr
	}
	summary := c.summary()
	if err != nil {
		summary.Error = err.Error()
	}
	return summary, err
}

func (c *Converter) loop(r *jsf.Reader) error {
	for {
		hdr, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		c.state.Messages++

		if !hdr.IsSubbottom() {
			if err := c.skip(r, int64(hdr.Size)); err != nil {
				return err
			}
			continue
		}
		if err := c.handleSubbottom(r, hdr); err != nil {
			return err
		}
	}
}

func (c *Converter) skip(r *jsf.Reader, n int64) error {
	c.state.Skipped++
	c.opts.Metrics.AddSkipped()
	return r.Skip(n)
}

func (c *Converter) handleSubbottom(r *jsf.Reader, hdr jsf.MessageHeader) error {
	c.state.SubbottomSeen++
	if hdr.Size < jsf.TraceHeaderSize {
		return fmt.Errorf("%w: size %d at offset %d", jsf.ErrShortPayload, hdr.Size, r.Offset())
	}
	if c.state.checkRecordSize(hdr.Size) && c.session != nil {
		if err := c.rollover(hdr.Size); err != nil {
			return err
		}
	}

	if err := r.ReadFull(c.traceHdr); err != nil {
		return fmt.Errorf("subbottom trace header: %w", err)
	}
	th := jsf.TraceHeader(c.traceHdr)
	dataLen := int(hdr.Size) - jsf.TraceHeaderSize
	format := sample.DataFormat(th.DataFormat())
	mode, ok := c.opts.Modes.Select(format)

	declared := int(th.Samples())
	if declared > math.MaxUint16 {
		return fmt.Errorf("%w: %d samples declared", ErrSampleCountOverflow, declared)
	}
	c.state.observeHeader(th)

	if !ok {
		return c.skip(r, int64(dataLen))
	}
	if available := dataLen / format.BytesPerSample(); available > math.MaxUint16 {
		return fmt.Errorf("%w: %d samples in a %d byte payload", ErrSampleCountOverflow, available, dataLen)
	}

	if cap(c.payload) != dataLen {
		c.payload = make([]byte, dataLen)
	}
	c.payload = c.payload[:dataLen]
	if err := r.ReadFull(c.payload); err != nil {
		return fmt.Errorf("subbottom samples: %w", err)
	}
	samples, err := sample.Decode(c.samples, c.payload, mode, sample.Exponent(th.WeightingFactor()), declared)
	if err != nil {
		return err
	}
	c.samples = samples

	if c.session == nil {
		s, err := openFirst(c.opts.OutputBase, c.opts.Extension, hdr.Size)
		if err != nil {
			return err
		}
		c.openSession(s, common.EventOpen)
	}
	if c.session.state == headersPending {
		if err := c.session.writeHeaders(c.textHeader(th), c.binaryHeader(th), declared); err != nil {
			return err
		}
	}

	line, reel, ping := c.state.nextTrace()
	c.segyHdr = segy.TraceHeader(c.segyHdr, traceFields(th, line, reel, ping))
	if err := c.session.writeTrace(c.segyHdr, samples, line); err != nil {
		return err
	}
	c.state.Records++
	c.opts.Metrics.AddTrace()
	return nil
}

// rollover closes the current file and opens the next free numbered one.
// Headers are written when the next matching trace arrives.
func (c *Converter) rollover(size int32) error {
	fmt.Fprintf(c.opts.Notices, "Record length change detected. Closing output segy file %s\n", c.session.path)
	common.Logf("record length changed to %d bytes, closing %s", size, c.session.path)
	if err := c.closeSession(); err != nil {
		return err
	}
	s, suffix, err := openRollover(c.opts.OutputBase, c.opts.Extension, size)
	if err != nil {
		return err
	}
	c.state.Rollovers++
	c.state.LastSuffix = suffix
	c.opts.Metrics.IncRollover()
	c.openSession(s, common.EventRollover)
	return nil
}

func (c *Converter) openSession(s *session, kind string) {
	c.session = s
	common.Logf("opened %s (record size %d)", s.path, s.recordSize)
	c.appendEvent(common.SessionEvent{Kind: kind, Path: s.path, RecordSize: s.recordSize})
}

func (c *Converter) closeSession() error {
	if c.session == nil {
		return nil
	}
	s := c.session
	c.session = nil
	err := s.close()
	out := s.summary()
	c.files = append(c.files, out)
	common.Logf("closed %s with %d traces", out.Path, out.Traces)
	c.appendEvent(common.SessionEvent{
		Kind:       common.EventClose,
		Path:       out.Path,
		RecordSize: out.RecordSize,
		FirstTrace: uint32(out.FirstTrace),
		Traces:     out.Traces,
	})
	return err
}

func (c *Converter) appendEvent(ev common.SessionEvent) {
	if c.opts.Events == nil {
		return
	}
	if err := c.opts.Events.Append(ev); err != nil {
		common.Logf("event log %s: %v", c.opts.Events.Path(), err)
	}
}

func (c *Converter) summary() Summary {
	files := make([]OutputFile, len(c.files))
	copy(files, c.files)
	return Summary{
		Records:   c.state.Records,
		Start:     c.state.Start,
		End:       c.state.End(),
		HaveTimes: c.state.HaveStart,
		Files:     files,
		Rollovers: c.state.Rollovers,
		Skipped:   c.state.Skipped,
		Messages:  c.state.Messages,
		Subbottom: c.state.SubbottomSeen,
	}
}

// State returns a copy of the running conversion state.
func (c *Converter) State() State {
	s := c.state
	s.Last = append(jsf.TraceHeader(nil), c.state.Last...)
	return s
}
