package jsf

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the container wrapped around a JSF stream.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionZstd Compression = "zstd"
	CompressionS2   Compression = "s2"
	CompressionLZ4  Compression = "lz4"
)

// DetectCompression infers the input container from the file suffix.
func DetectCompression(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst", ".zstd":
		return CompressionZstd
	case ".s2", ".sz":
		return CompressionS2
	case ".lz4":
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// Input is an opened JSF stream. Size is the on-disk size of the file, which
// for compressed inputs is smaller than the number of bytes delivered.
type Input struct {
	io.Reader
	Size        int64
	Compression Compression

	file  *os.File
	close func()
}

// Close releases the decompressor, if any, and the underlying file.
func (in *Input) Close() error {
	if in.close != nil {
		in.close()
		in.close = nil
	}
	if in.file == nil {
		return nil
	}
	err := in.file.Close()
	in.file = nil
	return err
}

// OpenInput opens path for sequential reading. Uncompressed inputs are
// returned as the file itself so that skips become seeks.
func OpenInput(path string) (*Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	in := &Input{Size: info.Size(), Compression: DetectCompression(path), file: f}
	switch in.Compression {
	case CompressionZstd:
		dec, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(1))
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		in.Reader = dec
		in.close = dec.Close
	case CompressionS2:
		in.Reader = s2.NewReader(f)
	case CompressionLZ4:
		in.Reader = lz4.NewReader(f)
	default:
		in.Reader = f
	}
	return in, nil
}
