package common

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// Hasher computes the sha256 and xxh64 digests of everything written to it.
type Hasher struct {
	sha hash.Hash
	xxh *xxhash.Digest
	n   int64
}

func NewHasher() *Hasher {
	return &Hasher{sha: sha256.New(), xxh: xxhash.New()}
}

func (h *Hasher) Write(p []byte) (int, error) {
	h.sha.Write(p)
	h.xxh.Write(p)
	h.n += int64(len(p))
	return len(p), nil
}

func (h *Hasher) Sum() string {
	return hex.EncodeToString(h.sha.Sum(nil))
}

// Sum64 returns the xxh64 digest.
func (h *Hasher) Sum64() uint64 {
	return h.xxh.Sum64()
}

func (h *Hasher) Size() int64 {
	return h.n
}

// FileDigest holds the digests of a file on disk.
type FileDigest struct {
	Size   int64
	Sha256 string
	XXH64  uint64
}

func DigestFile(path string) (FileDigest, error) {
	f, err := os.Open(path)
	if err != nil {
		return FileDigest{}, err
	}
	defer f.Close()
	h := NewHasher()
	if _, err := io.Copy(h, f); err != nil {
		return FileDigest{}, err
	}
	return FileDigest{Size: h.Size(), Sha256: h.Sum(), XXH64: h.Sum64()}, nil
}
