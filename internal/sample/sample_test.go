package sample

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/jsf2segy/internal/jsf"
)

func TestModesSelect(t *testing.T) {
	tests := []struct {
		name   string
		modes  Modes
		format DataFormat
		want   Mode
		ok     bool
	}{
		{name: "envelope", modes: Modes{Envelope: true}, format: FormatEnvelope, want: ModeEnvelope, ok: true},
		{name: "real", modes: Modes{Real: true}, format: FormatReal, want: ModeReal, ok: true},
		{name: "analytic", modes: Modes{Analytic: true}, format: FormatAnalytic, want: ModeAnalytic, ok: true},
		{name: "extract real wins", modes: Modes{Analytic: true, ExtractReal: true}, format: FormatAnalytic, want: ModeExtractReal, ok: true},
		{name: "envelope not requested", modes: Modes{Real: true}, format: FormatEnvelope, want: ModeNone},
		{name: "extract real ignores real traces", modes: Modes{ExtractReal: true}, format: FormatReal, want: ModeNone},
		{name: "raw never matches", modes: Modes{Envelope: true, Analytic: true, Real: true, ExtractReal: true}, format: FormatRaw, want: ModeNone},
		{name: "pixel never matches", modes: Modes{Envelope: true, Real: true}, format: FormatPixel, want: ModeNone},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tc.modes.Select(tc.format)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestModesNames(t *testing.T) {
	require.Empty(t, Modes{}.Names())
	require.False(t, Modes{}.Any())
	require.Equal(t, []string{"analytic", "real-from-analytic"}, Modes{Analytic: true, ExtractReal: true}.Names())
}

func TestExponent(t *testing.T) {
	require.Equal(t, 3, Exponent(-3))
	require.Equal(t, -2, Exponent(2))
	require.Equal(t, 0, Exponent(0))
}

func TestDecodeReal(t *testing.T) {
	raw := jsf.EncodeInt16Samples([]int16{100, -100, 0})
	got, err := Decode(nil, raw, ModeReal, Exponent(-3), 3)
	require.NoError(t, err)
	require.Equal(t, []float32{800, -800, 0}, got)
}

func TestDecodeEnvelopeNegativeExponent(t *testing.T) {
	raw := jsf.EncodeInt16Samples([]int16{64, 3})
	got, err := Decode(nil, raw, ModeEnvelope, -2, 2)
	require.NoError(t, err)
	require.Equal(t, []float32{16, 0.75}, got)
}

func TestDecodeAnalyticMagnitude(t *testing.T) {
	raw := jsf.EncodeInt16Samples([]int16{3, 4, -6, 8})
	got, err := Decode(nil, raw, ModeAnalytic, 0, 2)
	require.NoError(t, err)
	require.Equal(t, []float32{5, 10}, got)

	got, err = Decode(got, raw, ModeAnalytic, 1, 2)
	require.NoError(t, err)
	require.Equal(t, []float32{10, 20}, got)
}

func TestDecodeExtractReal(t *testing.T) {
	raw := jsf.EncodeInt16Samples([]int16{3, 4, -6, 8})
	got, err := Decode(nil, raw, ModeExtractReal, 2, 2)
	require.NoError(t, err)
	require.Equal(t, []float32{12, -24}, got)
}

func TestDecodeShortPayload(t *testing.T) {
	raw := jsf.EncodeInt16Samples([]int16{1, 2, 3})
	_, err := Decode(nil, raw, ModeReal, 0, 4)
	require.ErrorIs(t, err, ErrShortPayload)

	_, err = Decode(nil, raw, ModeAnalytic, 0, 2)
	require.ErrorIs(t, err, ErrShortPayload)
}

func TestDecodeReusesBuffer(t *testing.T) {
	buf := make([]float32, 0, 8)
	raw := jsf.EncodeInt16Samples([]int16{1, 2, 3, 4})
	got, err := Decode(buf, raw, ModeReal, 0, 4)
	require.NoError(t, err)
	require.Equal(t, &buf[:1][0], &got[0])
}

func TestStride(t *testing.T) {
	require.Equal(t, 2, ModeReal.Stride())
	require.Equal(t, 2, ModeEnvelope.Stride())
	require.Equal(t, 4, ModeAnalytic.Stride())
	require.Equal(t, 4, ModeExtractReal.Stride())
}

func TestAppendBigEndian(t *testing.T) {
	out := AppendBigEndian(nil, []float32{1, -2.5})
	require.Len(t, out, 8)
	require.Equal(t, math.Float32bits(1), binary.BigEndian.Uint32(out[0:4]))
	require.Equal(t, math.Float32bits(-2.5), binary.BigEndian.Uint32(out[4:8]))
	require.Equal(t, []byte{0x3F, 0x80, 0x00, 0x00}, out[0:4])
}

func TestDataFormatString(t *testing.T) {
	require.Equal(t, "analytic", FormatAnalytic.String())
	require.Equal(t, "format-9", DataFormat(9).String())
	require.Equal(t, 4, FormatAnalytic.BytesPerSample())
	require.Equal(t, 2, FormatReal.BytesPerSample())
}
