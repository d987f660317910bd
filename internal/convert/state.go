package convert

import "example.com/jsf2segy/internal/jsf"

// State is everything the conversion loop carries between messages. None of
// it is reset when the output rolls over to a new file.
type State struct {
	// SequenceLine and SequenceReel are the SEG-Y trace sequence numbers of
	// the last trace written. Both start at 1.
	SequenceLine int32
	SequenceReel int32
	// Ping counts matching traces; it becomes the field record number.
	Ping int32
	// Records counts traces written across all files.
	Records int

	Start     jsf.Timestamp
	HaveStart bool
	// Last is a copy of the most recent subbottom trace header read.
	Last     jsf.TraceHeader
	HaveLast bool

	// RecordSize is the subbottom payload size every later message is
	// compared against.
	RecordSize    int32
	HaveBaseline  bool
	Rollovers     int
	LastSuffix    int
	Skipped       int
	Messages      int
	SubbottomSeen int
}

func newState() State {
	return State{
		Last:       make(jsf.TraceHeader, jsf.TraceHeaderSize),
		LastSuffix: -1,
	}
}

// observeHeader records the start time on first sight and keeps a copy of
// the header for the end-of-run summary.
func (s *State) observeHeader(h jsf.TraceHeader) {
	if !s.HaveStart {
		s.Start = h.Timestamp()
		s.HaveStart = true
	}
	copy(s.Last, h)
	s.HaveLast = true
}

// nextTrace advances the per-trace counters and returns the values for the
// trace about to be written.
func (s *State) nextTrace() (line, reel, ping int32) {
	s.SequenceLine++
	s.SequenceReel++
	s.Ping++
	return s.SequenceLine, s.SequenceReel, s.Ping
}

// checkRecordSize compares size against the baseline. It reports true when
// the size changed from an established baseline; the baseline always moves
// to size.
func (s *State) checkRecordSize(size int32) bool {
	if !s.HaveBaseline {
		s.RecordSize = size
		s.HaveBaseline = true
		return false
	}
	if size == s.RecordSize {
		return false
	}
	s.RecordSize = size
	return true
}

// End is the time of the last subbottom header seen.
func (s *State) End() jsf.Timestamp {
	if !s.HaveLast {
		return jsf.Timestamp{}
	}
	return s.Last.Timestamp()
}
