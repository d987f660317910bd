package report

import (
	"encoding/json"
	"os"
	"time"

	"example.com/jsf2segy/internal/common"
	"example.com/jsf2segy/internal/convert"
	"example.com/jsf2segy/internal/manifest"
	"example.com/jsf2segy/internal/segy"
)

// FileEntry is one output file as found on disk after the run.
type FileEntry struct {
	convert.OutputFile
	Info         *segy.FileInfo `json:"info,omitempty"`
	InspectError string         `json:"inspectError,omitempty"`
	Empty        bool           `json:"empty,omitempty"`
	Sha256       string         `json:"sha256,omitempty"`
	XXH64        string         `json:"xxh64,omitempty"`
}

type Throughput struct {
	Duration    time.Duration `json:"duration"`
	Bytes       int64         `json:"bytes"`
	BytesPerSec float64       `json:"bytesPerSec"`
}

// Report describes a finished conversion run.
type Report struct {
	GeneratedAt    time.Time       `json:"generatedAt"`
	Modes          []string        `json:"modes"`
	Summary        convert.Summary `json:"summary"`
	Files          []FileEntry     `json:"files"`
	ManifestDigest string          `json:"manifestDigest,omitempty"`
	Throughput     *Throughput     `json:"throughput,omitempty"`
}

// Pass reports whether the run ended cleanly and every file inspected with
// the trace count the converter wrote.
func (r Report) Pass() bool {
	if r.Summary.Error != "" {
		return false
	}
	for _, f := range r.Files {
		if f.Empty {
			continue
		}
		if f.InspectError != "" || f.Info == nil || f.Info.Traces != f.Traces {
			return false
		}
	}
	return true
}

// Build inspects every output file listed in sum. m and snap may be nil.
func Build(sum convert.Summary, modes []string, m *manifest.Manifest, snap *common.MetricsSnapshot) Report {
	rep := Report{
		GeneratedAt: time.Now().UTC(),
		Modes:       modes,
		Summary:     sum,
	}
	digests := map[string]manifest.Item{}
	if m != nil {
		for _, it := range m.Items {
			digests[it.Path] = it
		}
		rep.ManifestDigest = m.Digest()
	}
	for _, f := range sum.Files {
		entry := FileEntry{OutputFile: f}
		if isEmptyRollover(f) {
			entry.Empty = true
		} else if info, err := segy.InspectFile(f.Path); err != nil {
			entry.InspectError = err.Error()
		} else {
			entry.Info = &info
		}
		if it, ok := digests[f.Path]; ok {
			entry.Sha256 = it.Sha256
			entry.XXH64 = it.XXH64
		}
		rep.Files = append(rep.Files, entry)
	}
	if snap != nil {
		rep.Throughput = &Throughput{
			Duration:    snap.Duration,
			Bytes:       snap.Bytes,
			BytesPerSec: snap.ThroughputBytesPerSecond(),
		}
	}
	return rep
}

// isEmptyRollover reports whether f is a rollover file that never received a
// matching trace and is still zero bytes on disk.
func isEmptyRollover(f convert.OutputFile) bool {
	if f.HeadersWritten || f.Traces != 0 {
		return false
	}
	st, err := os.Stat(f.Path)
	return err == nil && st.Size() == 0
}

func SaveJSON(rep Report, out string) error {
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(out, b, 0644)
}

func LoadJSON(path string) (Report, error) {
	var rep Report
	b, err := os.ReadFile(path)
	if err != nil {
		return rep, err
	}
	err = json.Unmarshal(b, &rep)
	return rep, err
}
