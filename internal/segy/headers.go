package segy

import (
	"encoding/binary"

	"example.com/jsf2segy/internal/endian"
)

// SEG-Y constants written by this package.
const (
	FormatIEEEFloat   = 5
	Revision1         = 0x0100
	SortAsRecorded    = 1
	UnitsMeters       = 1
	TraceIDSeismic    = 1
	Correlated        = 2
	SweepLinear       = 1
	CoordArcSeconds   = 2
	TimeBasisGMT      = 4
	CoordinateScalar  = -1000
	ElevationScalar   = -1000
	BytesPerSample    = 4
	fixedLengthTraces = 1
)

// fieldWriter stores host values at byte offsets in SEG-Y big-endian order.
type fieldWriter []byte

func (w fieldWriter) u16(off int, v uint16) {
	binary.NativeEndian.PutUint16(w[off:], endian.HostToBig16(v))
}

func (w fieldWriter) i16(off int, v int16) { w.u16(off, uint16(v)) }

func (w fieldWriter) u32(off int, v uint32) {
	binary.NativeEndian.PutUint32(w[off:], endian.HostToBig32(v))
}

func (w fieldWriter) i32(off int, v int32) { w.u32(off, uint32(v)) }

// BinaryFields are the per-stream values of the binary reel header.
type BinaryFields struct {
	SampleIntervalUs uint16
	Samples          uint16
	StartFrequencyHz uint16
	EndFrequencyHz   uint16
	SweepLengthMs    uint16
}

// BinaryHeader builds the 400-byte binary reel header.
func BinaryHeader(f BinaryFields) []byte {
	buf := make([]byte, BinaryHeaderSize)
	w := fieldWriter(buf)
	w.i32(4, 1) // line
	w.i32(8, 1) // reel
	w.u16(12, 1)
	w.u16(14, 0)
	w.u16(16, f.SampleIntervalUs)
	w.u16(18, f.SampleIntervalUs)
	w.u16(20, f.Samples)
	w.u16(22, f.Samples)
	w.u16(24, FormatIEEEFloat)
	w.u16(28, SortAsRecorded)
	w.u16(32, f.StartFrequencyHz)
	w.u16(34, f.EndFrequencyHz)
	w.u16(36, f.SweepLengthMs)
	w.u16(54, UnitsMeters)
	w.u16(300, Revision1)
	w.u16(302, fixedLengthTraces)
	w.u16(304, 0)
	return buf
}

// TraceFields are the per-trace values of a trace header.
type TraceFields struct {
	SequenceLine     int32
	SequenceReel     int32
	FieldRecord      int32
	Offset           int32
	Depth            int32
	Altitude         int32
	SourceX          int32
	SourceY          int32
	Samples          uint16
	SampleIntervalUs uint16
	GainConstant     int16
	StartFrequencyHz int16
	EndFrequencyHz   int16
	SweepLengthMs    int16
	Year             int16
	Day              int16
	Hour             int16
	Minute           int16
	Second           int16
}

// TraceHeader builds a 240-byte trace header into dst, which is grown when
// it is too small, and returns the filled slice.
func TraceHeader(dst []byte, f TraceFields) []byte {
	if cap(dst) < TraceHeaderSize {
		dst = make([]byte, TraceHeaderSize)
	}
	dst = dst[:TraceHeaderSize]
	clear(dst)
	w := fieldWriter(dst)
	w.i32(0, f.SequenceLine)
	w.i32(4, f.SequenceReel)
	w.i32(8, f.FieldRecord)
	w.i32(12, 1)
	w.i16(28, TraceIDSeismic)
	w.i32(36, f.Offset)
	w.i32(40, f.Depth)
	w.i32(44, f.Depth)
	w.i32(60, f.Altitude)
	w.i32(64, f.Altitude)
	w.i16(68, ElevationScalar)
	w.i16(70, CoordinateScalar)
	w.i32(72, f.SourceX)
	w.i32(76, f.SourceY)
	w.i32(80, f.SourceX)
	w.i32(84, f.SourceY)
	w.i16(88, CoordArcSeconds)
	w.u16(114, f.Samples)
	w.u16(116, f.SampleIntervalUs)
	w.i16(120, f.GainConstant)
	w.i16(124, Correlated)
	w.i16(126, f.StartFrequencyHz)
	w.i16(128, f.EndFrequencyHz)
	w.i16(130, f.SweepLengthMs)
	w.i16(132, SweepLinear)
	w.i16(156, f.Year)
	w.i16(158, f.Day)
	w.i16(160, f.Hour)
	w.i16(162, f.Minute)
	w.i16(164, f.Second)
	w.i16(166, TimeBasisGMT)
	return dst
}

// IntervalMicros converts a nanosecond sample interval to the microsecond
// field used by both reel and trace headers.
func IntervalMicros(ns int32) uint16 {
	return uint16(ns / 1000)
}
