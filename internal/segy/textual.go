// Package segy synthesizes SEG-Y rev 1 reel and trace headers and writes
// fixed-length IEEE float traces.
package segy

import (
	"bytes"
	"fmt"
	"strconv"

	"golang.org/x/text/encoding/charmap"
)

const (
	TextualHeaderSize = 3200
	BinaryHeaderSize  = 400
	TraceHeaderSize   = 240

	textLineWidth = 80
	textLines     = 40
)

// TextFields are the values substituted into the textual reel header.
type TextFields struct {
	Client           string
	Company          string
	FileName         string
	Day              int
	Year             int
	Manufacturer     string
	Model            string
	SampleIntervalUs int
	SamplesPerTrace  int
	StartFrequencyHz int
	EndFrequencyHz   int
	SweepLengthMs    int
	System           string
	Note             string
}

type textLabel struct {
	line int
	col  int
	text string
}

var textLabels = []textLabel{
	{1, 4, "CLIENT"}, {1, 34, "COMPANY"}, {1, 60, "CREW NO"},
	{2, 4, "LINE"},
	{3, 4, "REEL NO"}, {3, 22, "DAY-START OF REEL"}, {3, 44, "YEAR"}, {3, 60, "OBSERVER"},
	{4, 4, "MANUFACTURER"}, {4, 31, "MODEL"}, {4, 50, "SERIAL NO"},
	{5, 4, "DATA TRACES/RECORD 1"}, {5, 28, "AUXILIARY TRACES/RECORD 0"}, {5, 60, "CDP FOLD 1"},
	{6, 4, "SAMPLE INTERVAL"}, {6, 28, "SAMPLES/TRACE"}, {6, 62, "BYTES/SAMPLE"},
	{7, 4, "RECORDING FORMAT"}, {7, 28, "FORMAT THIS REEL SEG Y"}, {7, 54, "MEASUREMENT SYSTEM METERS"},
	{8, 4, "SAMPLE CODE:"},
	{9, 4, "GAIN TYPE:"},
	{10, 4, "FILTERS:"},
	{11, 4, "SOURCE: TYPE CHIRP"},
	{12, 4, "SWEEP TYPE LINEAR"},
	{13, 4, "SWEEP START"}, {13, 24, "END"}, {13, 37, "LENGTH"}, {13, 49, "MS"},
	{14, 4, "TAPER:"},
	{15, 4, "SPREAD:"},
	{16, 4, "MAP PROJECTION:"},
	{17, 4, "COORDINATE UNITS: ARC SECONDS SCALED BY 1000"},
	{18, 4, "PROCESSING:"},
	{22, 4, "ACQUISITION SYS:"},
	{40, 4, "END TEXTUAL HEADER"},
}

// Absolute byte offsets of the substituted values.
const (
	offClient       = 11
	offCompany      = 42
	offFileName     = 89
	offDay          = 200
	offYear         = 209
	offManufacturer = 257
	offModel        = 277
	offInterval     = 420
	offSamples      = 442
	offBytesPerSamp = 475
	offRecFormat    = 501
	offSampleCode   = 577
	offStartFreq    = 976
	offEndFreq      = 988
	offSweepLength  = 1004
	offSystem       = 1701
	offNote         = 1764
	offByteOrder    = 2964
	offRevision     = 3044
)

// textTemplate returns the blank 40x80 card image with its C-line labels.
func textTemplate() []byte {
	buf := bytes.Repeat([]byte{' '}, TextualHeaderSize)
	for line := 1; line <= textLines; line++ {
		copy(buf[(line-1)*textLineWidth:], fmt.Sprintf("C%2d ", line))
	}
	for _, l := range textLabels {
		copy(buf[(l.line-1)*textLineWidth+l.col:], l.text)
	}
	return buf
}

// place copies s into buf at off, truncated to width bytes and to the end
// of the 80-column line.
func place(buf []byte, off int, s string, width int) {
	lineEnd := (off/textLineWidth + 1) * textLineWidth
	if off+width > lineEnd {
		width = lineEnd - off
	}
	if len(s) > width {
		s = s[:width]
	}
	copy(buf[off:], s)
}

// TextualASCII fills the card image and returns it before encoding.
func TextualASCII(f TextFields) []byte {
	buf := textTemplate()
	place(buf, offClient, f.Client, 22)
	place(buf, offCompany, f.Company, 17)
	place(buf, offFileName, f.FileName, textLineWidth)
	place(buf, offDay, strconv.Itoa(f.Day), 3)
	place(buf, offYear, strconv.Itoa(f.Year), 4)
	place(buf, offManufacturer, f.Manufacturer, 13)
	place(buf, offModel, f.Model, 12)
	place(buf, offInterval, strconv.Itoa(f.SampleIntervalUs), 7)
	place(buf, offSamples, strconv.Itoa(f.SamplesPerTrace), 6)
	place(buf, offBytesPerSamp, "4", 1)
	place(buf, offRecFormat, "1", 1)
	place(buf, offSampleCode, "IEEE Floating Point", 40)
	place(buf, offStartFreq, strconv.Itoa(f.StartFrequencyHz), 5)
	place(buf, offEndFreq, strconv.Itoa(f.EndFrequencyHz), 5)
	place(buf, offSweepLength, strconv.Itoa(f.SweepLengthMs), 4)
	place(buf, offSystem, f.System, textLineWidth)
	place(buf, offNote, f.Note, textLineWidth)
	place(buf, offByteOrder, "Big Endian Byte Order", textLineWidth)
	place(buf, offRevision, "SEG Y REV1", textLineWidth)
	return buf
}

// TextualHeader builds the EBCDIC textual reel header. The result is always
// TextualHeaderSize bytes.
func TextualHeader(f TextFields) []byte {
	return EncodeEBCDIC(TextualASCII(f))
}

// EncodeEBCDIC maps ASCII to EBCDIC code page 037 byte for byte. Characters
// with no mapping become the EBCDIC substitute.
func EncodeEBCDIC(ascii []byte) []byte {
	out := make([]byte, len(ascii))
	for i, c := range ascii {
		b, ok := charmap.CodePage037.EncodeRune(rune(c))
		if !ok || c >= 0x80 {
			b = 0x3F
		}
		out[i] = b
	}
	return out
}

// DecodeEBCDIC is the inverse of EncodeEBCDIC.
func DecodeEBCDIC(ebcdic []byte) []byte {
	out := make([]byte, len(ebcdic))
	for i, b := range ebcdic {
		r := charmap.CodePage037.DecodeByte(b)
		if r >= 0x80 {
			r = '?'
		}
		out[i] = byte(r)
	}
	return out
}
