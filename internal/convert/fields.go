package convert

import (
	"path/filepath"

	"example.com/jsf2segy/internal/jsf"
	"example.com/jsf2segy/internal/segy"
)

// Sweep frequencies are stored in units of 10 Hz.
const frequencyScale = 10

func (c *Converter) textHeader(th jsf.TraceHeader) []byte {
	ts := th.Timestamp()
	t := c.opts.Text
	return segy.TextualHeader(segy.TextFields{
		Client:           t.Client,
		Company:          t.Company,
		FileName:         filepath.Base(c.session.path),
		Day:              ts.Day,
		Year:             ts.Year,
		Manufacturer:     t.Manufacturer,
		Model:            t.Model,
		SampleIntervalUs: int(segy.IntervalMicros(th.SampleIntervalNs())),
		SamplesPerTrace:  int(th.Samples()),
		StartFrequencyHz: int(th.StartFrequency()) * frequencyScale,
		EndFrequencyHz:   int(th.EndFrequency()) * frequencyScale,
		SweepLengthMs:    int(th.SweepLength()),
		System:           t.System,
		Note:             t.Note,
	})
}

func (c *Converter) binaryHeader(th jsf.TraceHeader) []byte {
	return segy.BinaryHeader(segy.BinaryFields{
		SampleIntervalUs: segy.IntervalMicros(th.SampleIntervalNs()),
		Samples:          th.Samples(),
		StartFrequencyHz: uint16(th.StartFrequency() * frequencyScale),
		EndFrequencyHz:   uint16(th.EndFrequency() * frequencyScale),
		SweepLengthMs:    uint16(th.SweepLength()),
	})
}

func traceFields(th jsf.TraceHeader, line, reel, ping int32) segy.TraceFields {
	ts := th.Timestamp()
	return segy.TraceFields{
		SequenceLine:     line,
		SequenceReel:     reel,
		FieldRecord:      ping,
		Offset:           int32(th.SourceOffset()),
		Depth:            th.Depth(),
		Altitude:         th.Altitude(),
		SourceX:          th.Longitude(),
		SourceY:          th.Latitude(),
		Samples:          th.Samples(),
		SampleIntervalUs: segy.IntervalMicros(th.SampleIntervalNs()),
		GainConstant:     th.GainFactor(),
		StartFrequencyHz: th.StartFrequency() * frequencyScale,
		EndFrequencyHz:   th.EndFrequency() * frequencyScale,
		SweepLengthMs:    th.SweepLength(),
		Year:             int16(ts.Year),
		Day:              int16(ts.Day),
		Hour:             int16(ts.Hour),
		Minute:           int16(ts.Minute),
		Second:           int16(ts.Second),
	}
}
