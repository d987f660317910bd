// Package manifest records the files produced by a conversion together with
// their digests.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"example.com/jsf2segy/internal/common"
)

type Item struct {
	Path   string `json:"path"`
	Size   int64  `json:"size"`
	Sha256 string `json:"sha256"`
	XXH64  string `json:"xxh64"`
	Type   string `json:"type"`
}

type Manifest struct {
	CreatedAt time.Time `json:"createdAt"`
	Input     string    `json:"input,omitempty"`
	ShaAlgo   string    `json:"shaAlgo"`
	Items     []Item    `json:"items"`
}

// Build digests every path in order.
func Build(input string, paths []string) (Manifest, error) {
	m := Manifest{CreatedAt: time.Now().UTC(), Input: input, ShaAlgo: "sha256"}
	for _, p := range paths {
		d, err := common.DigestFile(p)
		if err != nil {
			return m, fmt.Errorf("digest %s: %w", p, err)
		}
		m.Items = append(m.Items, Item{
			Path:   p,
			Size:   d.Size,
			Sha256: d.Sha256,
			XXH64:  fmt.Sprintf("%016x", d.XXH64),
			Type:   fileType(p),
		})
	}
	return m, nil
}

func fileType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sgy", ".segy":
		return "segy"
	case ".jsf":
		return "jsf"
	case ".json", ".jsonl":
		return "json"
	case ".pdf":
		return "pdf"
	default:
		return "other"
	}
}

// Digest is a sha256 over the item list. It identifies the set of outputs
// independently of when the manifest was created.
func (m Manifest) Digest() string {
	h := sha256.New()
	for _, it := range m.Items {
		fmt.Fprintf(h, "%s\x00%d\x00%s\n", filepath.Base(it.Path), it.Size, it.Sha256)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func Save(m Manifest, out string) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(out, b, 0o644)
}

func Load(path string) (Manifest, error) {
	var m Manifest
	b, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	err = json.Unmarshal(b, &m)
	return m, err
}

// Verify re-digests every item and returns the paths that no longer match.
func Verify(m Manifest) ([]string, error) {
	var changed []string
	for _, it := range m.Items {
		d, err := common.DigestFile(it.Path)
		if err != nil {
			if os.IsNotExist(err) {
				changed = append(changed, it.Path)
				continue
			}
			return changed, err
		}
		if d.Sha256 != it.Sha256 || d.Size != it.Size {
			changed = append(changed, it.Path)
		}
	}
	return changed, nil
}
