// Package crypto signs manifests with detached RS256 JSON Web Signatures.
package crypto

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
)

var (
	ErrNoPEM        = errors.New("no pem block")
	ErrNotRSA       = errors.New("key is not RSA")
	ErrPayloadDiff  = errors.New("signed payload does not match")
	ErrUnsupportAlg = errors.New("unsupported jws algorithm")
)

// JWS is the flattened JSON serialization. Payload is left empty in detached
// form and supplied separately on verification.
type JWS struct {
	Protected string `json:"protected"`
	Payload   string `json:"payload,omitempty"`
	Signature string `json:"signature"`
}

type protectedHeader struct {
	Alg string `json:"alg"`
	Typ string `json:"typ,omitempty"`
}

// SignDetachedJWS signs payload with an RSA private key in PKCS#1 or PKCS#8
// PEM form.
func SignDetachedJWS(payload []byte, privateKeyPEM []byte) (JWS, error) {
	priv, err := parseRSAPrivateKey(privateKeyPEM)
	if err != nil {
		return JWS{}, err
	}
	hb, err := json.Marshal(protectedHeader{Alg: "RS256", Typ: "JOSE"})
	if err != nil {
		return JWS{}, err
	}
	protected := base64.RawURLEncoding.EncodeToString(hb)
	h := signingHash(protected, payload)
	sig, err := rsa.SignPKCS1v15(rand.Reader, priv, crypto.SHA256, h[:])
	if err != nil {
		return JWS{}, err
	}
	return JWS{
		Protected: protected,
		Signature: base64.RawURLEncoding.EncodeToString(sig),
	}, nil
}

// VerifyDetachedJWS checks sig over payload. publicPEM may hold a PKIX public
// key or a certificate.
func VerifyDetachedJWS(sig JWS, payload []byte, publicPEM []byte) error {
	hb, err := base64.RawURLEncoding.DecodeString(sig.Protected)
	if err != nil {
		return fmt.Errorf("decode protected header: %w", err)
	}
	var hdr protectedHeader
	if err := json.Unmarshal(hb, &hdr); err != nil {
		return fmt.Errorf("parse protected header: %w", err)
	}
	if hdr.Alg != "RS256" {
		return fmt.Errorf("%w: %q", ErrUnsupportAlg, hdr.Alg)
	}
	if sig.Payload != "" && sig.Payload != base64.RawURLEncoding.EncodeToString(payload) {
		return ErrPayloadDiff
	}
	pub, err := parseRSAPublicKey(publicPEM)
	if err != nil {
		return err
	}
	raw, err := base64.RawURLEncoding.DecodeString(sig.Signature)
	if err != nil {
		return fmt.Errorf("decode signature: %w", err)
	}
	h := signingHash(sig.Protected, payload)
	return rsa.VerifyPKCS1v15(pub, crypto.SHA256, h[:], raw)
}

func signingHash(protected string, payload []byte) [32]byte {
	return sha256.Sum256([]byte(protected + "." + base64.RawURLEncoding.EncodeToString(payload)))
}

func parseRSAPrivateKey(pemBytes []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, ErrNoPEM
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, ErrNotRSA
	}
	return rsaKey, nil
}

func parseRSAPublicKey(pemBytes []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, ErrNoPEM
	}
	var key any
	switch block.Type {
	case "CERTIFICATE":
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, err
		}
		key = cert.PublicKey
	default:
		k, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		key = k
	}
	rsaKey, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, ErrNotRSA
	}
	return rsaKey, nil
}
