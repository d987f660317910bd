package convert

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"

	"example.com/jsf2segy/internal/common"
	"example.com/jsf2segy/internal/jsf"
	"example.com/jsf2segy/internal/sample"
	"example.com/jsf2segy/internal/segy"
)

func traceFieldsFor(format sample.DataFormat, samples int, ping uint32) jsf.TraceHeaderFields {
	return jsf.TraceHeaderFields{
		PingNumber:       ping,
		DataFormat:       int16(format),
		Samples:          uint16(samples),
		SampleIntervalNs: 46_000,
		StartFrequency:   200,
		EndFrequency:     1200,
		SweepLength:      20,
		Depth:            1500,
		Altitude:         25000,
		Longitude:        -70_123_456,
		Latitude:         41_987_654,
		WeightingFactor:  -3,
		Timestamp:        jsf.Timestamp{Year: 2021, Day: 45, Hour: 13, Minute: 7, Second: int(ping % 60)},
	}
}

func realMessage(samples int, ping uint32) []byte {
	values := make([]int16, samples)
	for i := range values {
		values[i] = 100
	}
	return jsf.BuildSonarMessage(traceFieldsFor(sample.FormatReal, samples, ping), jsf.EncodeInt16Samples(values))
}

func nmeaMessage() []byte {
	return jsf.BuildMessage(jsf.MessageHeader{Type: jsf.MsgNMEA}, []byte("$GPGGA,123519"))
}

func sidescanMessage() []byte {
	return jsf.BuildMessage(jsf.MessageHeader{Type: jsf.MsgSonarData, Subsystem: jsf.SubsystemLowSidescan}, make([]byte, 400))
}

func runStream(t *testing.T, opts Options, stream []byte) (Summary, error) {
	t.Helper()
	c, err := New(opts)
	require.NoError(t, err)
	return c.Run(jsf.NewReader(bytes.NewReader(stream)))
}

func testOptions(t *testing.T, modes sample.Modes) Options {
	t.Helper()
	return Options{
		Modes:      modes,
		OutputBase: filepath.Join(t.TempDir(), "line01"),
		Text:       DefaultText(),
	}
}

func TestNewValidatesOptions(t *testing.T) {
	_, err := New(Options{OutputBase: "x"})
	require.ErrorIs(t, err, ErrNoModes)
	_, err = New(Options{Modes: sample.Modes{Real: true}})
	require.ErrorIs(t, err, ErrNoOutput)
}

func TestConvertStableRecordSize(t *testing.T) {
	var stream bytes.Buffer
	for i := 1; i <= 5; i++ {
		stream.Write(nmeaMessage())
		stream.Write(realMessage(8, uint32(i)))
		stream.Write(sidescanMessage())
	}
	opts := testOptions(t, sample.Modes{Real: true})
	opts.Metrics = common.NewMetrics()

	summary, err := runStream(t, opts, stream.Bytes())
	require.NoError(t, err)
	require.Equal(t, 5, summary.Records)
	require.Equal(t, 0, summary.Rollovers)
	require.Equal(t, 10, summary.Skipped)
	require.Equal(t, 15, summary.Messages)
	require.Equal(t, 5, summary.Subbottom)
	require.Equal(t, []string{opts.OutputBase + ".sgy"}, summary.Paths())
	require.Equal(t, "2021:45:13:7:1", summary.Start.String())
	require.Equal(t, "2021:45:13:7:5", summary.End.String())

	info, err := segy.InspectFile(opts.OutputBase + ".sgy")
	require.NoError(t, err)
	require.Equal(t, 5, info.Traces)
	require.Equal(t, uint16(8), info.Samples)
	require.Equal(t, uint16(46), info.SampleIntervalUs)
	require.Equal(t, int32(1), info.FirstSequence)
	require.Equal(t, int32(5), info.LastSequence)
	require.Contains(t, info.Text, "line01.sgy")

	data, err := os.ReadFile(opts.OutputBase + ".sgy")
	require.NoError(t, err)
	first := data[segy.TextualHeaderSize+segy.BinaryHeaderSize:]
	require.Equal(t, uint32(1), binary.BigEndian.Uint32(first[8:]), "field record is the ping counter")
	require.Equal(t, math.Float32bits(800), binary.BigEndian.Uint32(first[segy.TraceHeaderSize:]))

	snap := opts.Metrics.Snapshot()
	require.Equal(t, int64(5), snap.Traces)
	require.Equal(t, int64(10), snap.Skipped)
	require.Equal(t, int64(stream.Len()), snap.Bytes)
}

func TestConvertRolloverOnRecordLengthChange(t *testing.T) {
	const k = 3
	var stream bytes.Buffer
	for i := 1; i <= k; i++ {
		stream.Write(realMessage(8, uint32(i)))
	}
	for i := k + 1; i <= k+2; i++ {
		stream.Write(nmeaMessage())
		stream.Write(realMessage(16, uint32(i)))
	}
	opts := testOptions(t, sample.Modes{Real: true})
	var notices bytes.Buffer
	opts.Notices = &notices
	opts.Events = common.NewEventLog(filepath.Join(t.TempDir(), "events.jsonl"))

	summary, err := runStream(t, opts, stream.Bytes())
	require.NoError(t, err)
	require.Equal(t, 1, summary.Rollovers)
	require.Equal(t, k+2, summary.Records)
	require.Equal(t, []string{opts.OutputBase + ".sgy", opts.OutputBase + "00.sgy"}, summary.Paths())
	require.Equal(t, k, summary.Files[0].Traces)
	require.Equal(t, 2, summary.Files[1].Traces)
	require.Contains(t, notices.String(), "Record length change detected. Closing output segy file "+opts.OutputBase+".sgy")

	first, err := segy.InspectFile(opts.OutputBase + ".sgy")
	require.NoError(t, err)
	require.Equal(t, k, first.Traces)
	require.Equal(t, uint16(8), first.Samples)

	second, err := segy.InspectFile(opts.OutputBase + "00.sgy")
	require.NoError(t, err)
	require.Equal(t, 2, second.Traces)
	require.Equal(t, uint16(16), second.Samples)
	require.Equal(t, int32(k+1), second.FirstSequence)
	require.Contains(t, second.Text, "line0100.sgy")

	events, err := common.ReadEventLog(opts.Events.Path())
	require.NoError(t, err)
	kinds := make([]string, 0, len(events))
	for _, ev := range events {
		kinds = append(kinds, ev.Kind)
	}
	require.Equal(t, []string{common.EventOpen, common.EventClose, common.EventRollover, common.EventClose}, kinds)
	require.Equal(t, k, events[1].Traces)
	require.Equal(t, uint32(k+1), events[3].FirstTrace)
}

func TestRolloverProbeSkipsTakenNames(t *testing.T) {
	opts := testOptions(t, sample.Modes{Real: true})
	require.NoError(t, os.WriteFile(opts.OutputBase+"00.sgy", []byte("keep"), 0o644))

	stream := append(realMessage(4, 1), realMessage(6, 2)...)
	summary, err := runStream(t, opts, stream)
	require.NoError(t, err)
	require.Equal(t, []string{opts.OutputBase + ".sgy", opts.OutputBase + "01.sgy"}, summary.Paths())

	kept, err := os.ReadFile(opts.OutputBase + "00.sgy")
	require.NoError(t, err)
	require.Equal(t, "keep", string(kept))
}

func TestRolloverNamesExhausted(t *testing.T) {
	opts := testOptions(t, sample.Modes{Real: true})
	for i := 0; i <= maxRolloverSuffix; i++ {
		require.NoError(t, os.WriteFile(fmt.Sprintf("%s%02d.sgy", opts.OutputBase, i), nil, 0o644))
	}
	stream := append(realMessage(4, 1), realMessage(6, 2)...)
	summary, err := runStream(t, opts, stream)
	require.ErrorIs(t, err, ErrNoRolloverName)
	require.Equal(t, 1, summary.Records)
	require.Len(t, summary.Files, 1)
}

func TestSizeChangeBeforeFirstFileRebaselines(t *testing.T) {
	opts := testOptions(t, sample.Modes{Real: true})
	envelope := jsf.BuildSonarMessage(traceFieldsFor(sample.FormatEnvelope, 4, 1), make([]byte, 8))
	stream := append(envelope, realMessage(10, 2)...)
	stream = append(stream, realMessage(10, 3)...)

	summary, err := runStream(t, opts, stream)
	require.NoError(t, err)
	require.Equal(t, 0, summary.Rollovers)
	require.Equal(t, 2, summary.Records)
	require.Equal(t, []string{opts.OutputBase + ".sgy"}, summary.Paths())
}

func TestSampleCountOverflowAbortsBeforeOutput(t *testing.T) {
	opts := testOptions(t, sample.Modes{Real: true})
	f := traceFieldsFor(sample.FormatReal, 0, 1)
	f.Samples = math.MaxUint16
	msg := jsf.BuildSonarMessage(f, make([]byte, 2*65536))

	summary, err := runStream(t, opts, msg)
	require.ErrorIs(t, err, ErrSampleCountOverflow)
	require.Equal(t, 0, summary.Records)
	require.Empty(t, summary.Files)
	_, statErr := os.Stat(opts.OutputBase + ".sgy")
	require.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestLargeUnselectedRecordIsSkipped(t *testing.T) {
	opts := testOptions(t, sample.Modes{Real: true})
	raw := jsf.BuildSonarMessage(traceFieldsFor(sample.FormatRaw, 100, 2), make([]byte, 140000))
	stream := append(realMessage(8, 1), raw...)
	stream = append(stream, realMessage(8, 3)...)

	summary, err := runStream(t, opts, stream)
	require.NoError(t, err)
	require.Equal(t, 2, summary.Records)
	require.Equal(t, 1, summary.Skipped)
	require.Equal(t, 2, summary.Rollovers)
	require.Equal(t, []string{
		opts.OutputBase + ".sgy",
		opts.OutputBase + "00.sgy",
		opts.OutputBase + "01.sgy",
	}, summary.Paths())

	require.True(t, summary.Files[0].HeadersWritten)
	require.False(t, summary.Files[1].HeadersWritten)
	require.Equal(t, 0, summary.Files[1].Traces)
	st, err := os.Stat(summary.Files[1].Path)
	require.NoError(t, err)
	require.Zero(t, st.Size())
	require.True(t, summary.Files[2].HeadersWritten)
	require.Equal(t, 1, summary.Files[2].Traces)
}

func TestSampleCountChangeWithinFileIsFatal(t *testing.T) {
	opts := testOptions(t, sample.Modes{Real: true})
	first := jsf.BuildSonarMessage(traceFieldsFor(sample.FormatReal, 8, 1), make([]byte, 16))
	second := jsf.BuildSonarMessage(traceFieldsFor(sample.FormatReal, 6, 2), make([]byte, 16))

	summary, err := runStream(t, opts, append(first, second...))
	require.ErrorIs(t, err, segy.ErrSampleCountDiff)
	require.Equal(t, 1, summary.Records)
	require.Equal(t, 0, summary.Rollovers)
	require.Len(t, summary.Files, 1)
	require.Equal(t, 1, summary.Files[0].Traces)
}

func TestMaximumSampleCountIsAccepted(t *testing.T) {
	opts := testOptions(t, sample.Modes{Real: true})
	f := traceFieldsFor(sample.FormatReal, math.MaxUint16, 1)
	msg := jsf.BuildSonarMessage(f, make([]byte, 2*math.MaxUint16))

	summary, err := runStream(t, opts, msg)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Records)
}

func TestExistingOutputIsFatal(t *testing.T) {
	opts := testOptions(t, sample.Modes{Real: true})
	require.NoError(t, os.WriteFile(opts.OutputBase+".sgy", []byte("old"), 0o644))

	summary, err := runStream(t, opts, realMessage(4, 1))
	require.ErrorIs(t, err, ErrPathExists)
	require.Equal(t, 0, summary.Records)

	data, err := os.ReadFile(opts.OutputBase + ".sgy")
	require.NoError(t, err)
	require.Equal(t, "old", string(data))
}

func TestModeMismatchIsSkipped(t *testing.T) {
	opts := testOptions(t, sample.Modes{Envelope: true})
	stream := append(realMessage(4, 1), realMessage(4, 2)...)

	summary, err := runStream(t, opts, stream)
	require.NoError(t, err)
	require.Equal(t, 0, summary.Records)
	require.Equal(t, 2, summary.Skipped)
	require.Empty(t, summary.Files)
	require.True(t, summary.HaveTimes)
}

func TestAnalyticModes(t *testing.T) {
	raw := jsf.EncodeInt16Samples([]int16{3, 4, 6, 8})
	f := traceFieldsFor(sample.FormatAnalytic, 2, 1)
	f.WeightingFactor = 0
	msg := jsf.BuildSonarMessage(f, raw)

	tests := []struct {
		name  string
		modes sample.Modes
		want  []float32
	}{
		{name: "magnitude", modes: sample.Modes{Analytic: true}, want: []float32{5, 10}},
		{name: "real part", modes: sample.Modes{ExtractReal: true}, want: []float32{3, 6}},
		{name: "real part wins", modes: sample.Modes{Analytic: true, ExtractReal: true}, want: []float32{3, 6}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opts := testOptions(t, tc.modes)
			_, err := runStream(t, opts, msg)
			require.NoError(t, err)

			data, err := os.ReadFile(opts.OutputBase + ".sgy")
			require.NoError(t, err)
			samples := data[segy.TextualHeaderSize+segy.BinaryHeaderSize+segy.TraceHeaderSize:]
			require.Len(t, samples, 4*len(tc.want))
			for i, want := range tc.want {
				require.Equal(t, want, math.Float32frombits(binary.BigEndian.Uint32(samples[4*i:])))
			}
		})
	}
}

func TestDeclaredSamplesBeyondPayload(t *testing.T) {
	opts := testOptions(t, sample.Modes{Real: true})
	f := traceFieldsFor(sample.FormatReal, 10, 1)
	msg := jsf.BuildSonarMessage(f, make([]byte, 8))

	_, err := runStream(t, opts, msg)
	require.ErrorIs(t, err, sample.ErrShortPayload)
}

func TestSubbottomPayloadSmallerThanTraceHeader(t *testing.T) {
	opts := testOptions(t, sample.Modes{Real: true})
	msg := jsf.BuildMessage(jsf.MessageHeader{Type: jsf.MsgSonarData}, make([]byte, 100))

	_, err := runStream(t, opts, msg)
	require.ErrorIs(t, err, jsf.ErrShortPayload)
}

func TestBadMarkerKeepsPartialOutput(t *testing.T) {
	opts := testOptions(t, sample.Modes{Real: true})
	stream := append(realMessage(4, 1), realMessage(4, 2)...)
	stream = append(stream, bytes.Repeat([]byte{0xAB}, 32)...)

	summary, err := runStream(t, opts, stream)
	require.ErrorIs(t, err, jsf.ErrBadMarker)
	var fe *jsf.FramingError
	require.True(t, errors.As(err, &fe))
	require.Equal(t, 2, summary.Records)
	require.NotEmpty(t, summary.Error)

	info, err := segy.InspectFile(opts.OutputBase + ".sgy")
	require.NoError(t, err)
	require.Equal(t, 2, info.Traces)
}

func TestTruncatedTraceIsFatal(t *testing.T) {
	opts := testOptions(t, sample.Modes{Real: true})
	msg := realMessage(4, 1)

	_, err := runStream(t, opts, msg[:len(msg)-3])
	require.ErrorIs(t, err, jsf.ErrShortRead)
}

func TestConvertFileCompressed(t *testing.T) {
	var raw bytes.Buffer
	for i := 1; i <= 3; i++ {
		raw.Write(realMessage(8, uint32(i)))
	}
	var compressed bytes.Buffer
	enc, err := zstd.NewWriter(&compressed)
	require.NoError(t, err)
	_, err = enc.Write(raw.Bytes())
	require.NoError(t, err)
	require.NoError(t, enc.Close())

	dir := t.TempDir()
	input := filepath.Join(dir, "line01.jsf.zst")
	require.NoError(t, os.WriteFile(input, compressed.Bytes(), 0o644))

	opts := Options{Modes: sample.Modes{Real: true}, OutputBase: filepath.Join(dir, "out")}
	summary, err := ConvertFile(input, opts)
	require.NoError(t, err)
	require.Equal(t, input, summary.Input)
	require.Equal(t, 3, summary.Records)
}

func TestStateCountersNeverReset(t *testing.T) {
	s := newState()
	require.False(t, s.checkRecordSize(100))
	line, reel, ping := s.nextTrace()
	require.Equal(t, [3]int32{1, 1, 1}, [3]int32{line, reel, ping})
	require.True(t, s.checkRecordSize(200))
	require.False(t, s.checkRecordSize(200))
	line, reel, ping = s.nextTrace()
	require.Equal(t, [3]int32{2, 2, 2}, [3]int32{line, reel, ping})
	require.Equal(t, int32(200), s.RecordSize)
}

func TestSummaryPaths(t *testing.T) {
	s := Summary{Files: []OutputFile{{Path: "a.sgy"}, {Path: "a00.sgy"}}}
	require.Equal(t, "a.sgy,a00.sgy", strings.Join(s.Paths(), ","))
}
