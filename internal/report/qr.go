package report

import (
	"errors"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

var ErrBadDigest = errors.New("manifest digest must be 64 hex characters")

// ManifestHashToQR encodes a sha256 manifest digest as "sha256:<hex>" in a
// PNG QR code of size pixels.
func ManifestHashToQR(digest string, size int) ([]byte, error) {
	normalized, err := normalizeDigest(digest)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = 128
	}
	return qrcode.Encode("sha256:"+normalized, qrcode.Medium, size)
}

func normalizeDigest(digest string) (string, error) {
	d := strings.ToLower(strings.TrimSpace(digest))
	d = strings.TrimPrefix(d, "sha256:")
	if len(d) != 64 {
		return "", fmt.Errorf("%w: got %d characters", ErrBadDigest, len(d))
	}
	for _, r := range d {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return "", fmt.Errorf("%w: invalid character %q", ErrBadDigest, r)
		}
	}
	return d, nil
}
