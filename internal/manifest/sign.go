package manifest

import (
	"encoding/json"
	"fmt"
	"os"

	"example.com/jsf2segy/internal/crypto"
)

// SignatureSuffix is appended to the manifest path for its detached JWS.
const SignatureSuffix = ".jws"

// SaveSigned writes m to out and a detached signature over the exact bytes
// written to out+SignatureSuffix. It returns the signature path.
func SaveSigned(m Manifest, out string, privateKeyPEM []byte) (string, error) {
	if err := Save(m, out); err != nil {
		return "", err
	}
	payload, err := os.ReadFile(out)
	if err != nil {
		return "", err
	}
	sig, err := crypto.SignDetachedJWS(payload, privateKeyPEM)
	if err != nil {
		return "", fmt.Errorf("sign manifest: %w", err)
	}
	b, err := json.MarshalIndent(sig, "", "  ")
	if err != nil {
		return "", err
	}
	jwsPath := out + SignatureSuffix
	if err := os.WriteFile(jwsPath, b, 0o644); err != nil {
		return "", err
	}
	return jwsPath, nil
}

// VerifySignature checks the detached signature at jwsPath against the
// manifest file at path.
func VerifySignature(path, jwsPath string, publicPEM []byte) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	b, err := os.ReadFile(jwsPath)
	if err != nil {
		return err
	}
	var sig crypto.JWS
	if err := json.Unmarshal(b, &sig); err != nil {
		return fmt.Errorf("parse %s: %w", jwsPath, err)
	}
	return crypto.VerifyDetachedJWS(sig, payload, publicPEM)
}
