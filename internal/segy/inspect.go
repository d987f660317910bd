package segy

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

var ErrTruncatedFile = errors.New("SEG-Y file ends inside a header or trace")

// FileInfo summarizes a SEG-Y file produced by Writer.
type FileInfo struct {
	Path             string `json:"path"`
	Size             int64  `json:"size"`
	Text             string `json:"-"`
	SampleIntervalUs uint16 `json:"sampleIntervalUs"`
	Samples          uint16 `json:"samples"`
	Format           uint16 `json:"format"`
	Revision         uint16 `json:"revision"`
	Traces           int    `json:"traces"`
	FirstSequence    int32  `json:"firstSequence"`
	LastSequence     int32  `json:"lastSequence"`
}

// Inspect reads the reel headers of r and walks every fixed-length trace.
func Inspect(r io.Reader) (FileInfo, error) {
	var info FileInfo
	text := make([]byte, TextualHeaderSize)
	if _, err := io.ReadFull(r, text); err != nil {
		return info, fmt.Errorf("%w: textual header: %v", ErrTruncatedFile, err)
	}
	info.Text = string(DecodeEBCDIC(text))
	bin := make([]byte, BinaryHeaderSize)
	if _, err := io.ReadFull(r, bin); err != nil {
		return info, fmt.Errorf("%w: binary header: %v", ErrTruncatedFile, err)
	}
	info.SampleIntervalUs = binary.BigEndian.Uint16(bin[16:])
	info.Samples = binary.BigEndian.Uint16(bin[20:])
	info.Format = binary.BigEndian.Uint16(bin[24:])
	info.Revision = binary.BigEndian.Uint16(bin[300:])
	info.Size = TextualHeaderSize + BinaryHeaderSize

	hdr := make([]byte, TraceHeaderSize)
	dataLen := int64(info.Samples) * BytesPerSample
	for {
		n, err := io.ReadFull(r, hdr)
		if n == 0 && errors.Is(err, io.EOF) {
			return info, nil
		}
		if err != nil {
			return info, fmt.Errorf("%w: trace %d header: %v", ErrTruncatedFile, info.Traces+1, err)
		}
		seq := int32(binary.BigEndian.Uint32(hdr[0:]))
		if info.Traces == 0 {
			info.FirstSequence = seq
		}
		info.LastSequence = seq
		skipped, err := io.CopyN(io.Discard, r, dataLen)
		if err != nil {
			return info, fmt.Errorf("%w: trace %d samples: got %d of %d bytes", ErrTruncatedFile, info.Traces+1, skipped, dataLen)
		}
		info.Traces++
		info.Size += TraceHeaderSize + dataLen
	}
}

// InspectFile runs Inspect on the file at path.
func InspectFile(path string) (FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return FileInfo{}, err
	}
	defer f.Close()
	info, err := Inspect(f)
	info.Path = path
	return info, err
}
