// Package sample decodes EdgeTech subbottom sample payloads into float32
// amplitudes ready for IEEE SEG-Y output.
package sample

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"example.com/jsf2segy/internal/endian"
)

var ErrShortPayload = errors.New("sample payload shorter than declared sample count")

// DataFormat is the layout code stored at byte 34 of the trace header.
type DataFormat int16

const (
	FormatEnvelope DataFormat = 0
	FormatAnalytic DataFormat = 1
	FormatRaw      DataFormat = 2
	FormatReal     DataFormat = 3
	FormatPixel    DataFormat = 4
)

func (f DataFormat) String() string {
	switch f {
	case FormatEnvelope:
		return "envelope"
	case FormatAnalytic:
		return "analytic"
	case FormatRaw:
		return "raw"
	case FormatReal:
		return "real"
	case FormatPixel:
		return "pixel"
	default:
		return fmt.Sprintf("format-%d", int16(f))
	}
}

// BytesPerSample is the size of one stored sample for the format.
func (f DataFormat) BytesPerSample() int {
	if f == FormatAnalytic {
		return 4
	}
	return 2
}

// Mode is the decoding applied to a matching trace.
type Mode int

const (
	ModeNone Mode = iota
	ModeEnvelope
	ModeAnalytic
	ModeReal
	ModeExtractReal
)

func (m Mode) String() string {
	switch m {
	case ModeEnvelope:
		return "envelope"
	case ModeAnalytic:
		return "analytic"
	case ModeReal:
		return "real"
	case ModeExtractReal:
		return "real-from-analytic"
	default:
		return "none"
	}
}

// Modes are the user's requested subtypes. More than one may be set.
type Modes struct {
	Envelope    bool
	Analytic    bool
	Real        bool
	ExtractReal bool
}

// Any reports whether at least one subtype was requested.
func (m Modes) Any() bool {
	return m.Envelope || m.Analytic || m.Real || m.ExtractReal
}

// Names lists the requested subtypes in flag order.
func (m Modes) Names() []string {
	var out []string
	if m.Envelope {
		out = append(out, ModeEnvelope.String())
	}
	if m.Analytic {
		out = append(out, ModeAnalytic.String())
	}
	if m.Real {
		out = append(out, ModeReal.String())
	}
	if m.ExtractReal {
		out = append(out, ModeExtractReal.String())
	}
	return out
}

// Select returns the decoding to apply to a trace stored in format f.
// Analytic traces decode as their real part when ExtractReal is set, even if
// Analytic is set too.
func (m Modes) Select(f DataFormat) (Mode, bool) {
	switch f {
	case FormatEnvelope:
		if m.Envelope {
			return ModeEnvelope, true
		}
	case FormatReal:
		if m.Real {
			return ModeReal, true
		}
	case FormatAnalytic:
		if m.ExtractReal {
			return ModeExtractReal, true
		}
		if m.Analytic {
			return ModeAnalytic, true
		}
	}
	return ModeNone, false
}

// Exponent converts a trace header weighting factor to the power of two
// applied to every sample.
func Exponent(weighting int16) int {
	return -int(weighting)
}

// Stride is the distance in bytes between consecutive samples for the mode.
func (m Mode) Stride() int {
	if m == ModeAnalytic || m == ModeExtractReal {
		return 4
	}
	return 2
}

// Decode converts n samples from raw into dst, growing dst as needed, and
// returns the filled slice.
func Decode(dst []float32, raw []byte, mode Mode, exp int, n int) ([]float32, error) {
	stride := mode.Stride()
	if len(raw) < n*stride {
		return dst[:0], fmt.Errorf("%w: need %d bytes for %d samples, have %d", ErrShortPayload, n*stride, n, len(raw))
	}
	if cap(dst) < n {
		dst = make([]float32, n)
	}
	dst = dst[:n]
	switch mode {
	case ModeReal, ModeEnvelope:
		for i := range dst {
			dst[i] = float32(math.Ldexp(float64(endian.ReadInt16(raw, 2*i)), exp))
		}
	case ModeExtractReal:
		for i := range dst {
			dst[i] = float32(math.Ldexp(float64(endian.ReadInt16(raw, 4*i)), exp))
		}
	case ModeAnalytic:
		for i := range dst {
			re := math.Ldexp(float64(endian.ReadInt16(raw, 4*i)), exp)
			im := math.Ldexp(float64(endian.ReadInt16(raw, 4*i+2)), exp)
			dst[i] = float32(math.Sqrt(re*re + im*im))
		}
	default:
		return dst[:0], fmt.Errorf("decode: unsupported mode %v", mode)
	}
	return dst, nil
}

// AppendBigEndian appends samples as big-endian IEEE singles.
func AppendBigEndian(dst []byte, samples []float32) []byte {
	var word [4]byte
	for _, s := range samples {
		binary.NativeEndian.PutUint32(word[:], endian.HostToBig32(math.Float32bits(s)))
		dst = append(dst, word[:]...)
	}
	return dst
}
