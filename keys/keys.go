package keys

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
)

// Signer is a domain authority's private signing material.
//
// Sign signs the sha256 digest of the canonical payload bytes. PublicKey
// returns the exported public key string recorded alongside each signature.
type Signer interface {
	Sign(payload []byte) ([]byte, error)
	PublicKey() string
}

// Public key string algorithms. The exported form is "<alg>:<base64>".
const (
	AlgEd25519    = "ed25519"
	AlgDilithium3 = "dilithium3"
)

// Ed25519Signer signs with an Ed25519 private key.
type Ed25519Signer struct {
	priv ed25519.PrivateKey
}

// NewEd25519Signer derives a signer from a 32-byte seed.
func NewEd25519Signer(seed []byte) (*Ed25519Signer, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("keys: ed25519 seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return &Ed25519Signer{priv: ed25519.NewKeyFromSeed(seed)}, nil
}

func (s *Ed25519Signer) Sign(payload []byte) ([]byte, error) {
	if s == nil || len(s.priv) == 0 {
		return nil, errors.New("keys: missing private key")
	}
	digest := sha256.Sum256(payload)
	return ed25519.Sign(s.priv, digest[:]), nil
}

func (s *Ed25519Signer) PublicKey() string {
	pub := s.priv.Public().(ed25519.PublicKey)
	return AlgEd25519 + ":" + base64.StdEncoding.EncodeToString(pub)
}

// Dilithium3Signer signs with a Dilithium mode3 private key (post-quantum).
type Dilithium3Signer struct {
	priv *mode3.PrivateKey
	pub  *mode3.PublicKey
}

// GenerateDilithium3Signer returns a fresh Dilithium3 signer.
func GenerateDilithium3Signer(rand io.Reader) (*Dilithium3Signer, error) {
	pub, priv, err := mode3.GenerateKey(rand)
	if err != nil {
		return nil, err
	}
	return &Dilithium3Signer{priv: priv, pub: pub}, nil
}

func (s *Dilithium3Signer) Sign(payload []byte) ([]byte, error) {
	if s == nil || s.priv == nil {
		return nil, errors.New("keys: missing private key")
	}
	digest := sha256.Sum256(payload)
	sig := make([]byte, mode3.SignatureSize)
	mode3.SignTo(s.priv, digest[:], sig)
	return sig, nil
}

func (s *Dilithium3Signer) PublicKey() string {
	b, err := s.pub.MarshalBinary()
	if err != nil {
		return ""
	}
	return AlgDilithium3 + ":" + base64.StdEncoding.EncodeToString(b)
}

// PublicKeyFromSeed returns the exported Ed25519 public key string for a seed.
func PublicKeyFromSeed(seed []byte) string {
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return AlgEd25519 + ":" + base64.StdEncoding.EncodeToString(pub)
}

// Verify reports whether sig is a valid signature over payload by the holder
// of publicKey. Malformed keys and unsupported algorithms verify as false;
// this function never returns an error.
func Verify(publicKey string, payload, sig []byte) bool {
	alg, enc, ok := strings.Cut(publicKey, ":")
	if !ok {
		return false
	}
	pub, err := decodeBase64(enc)
	if err != nil {
		return false
	}
	digest := sha256.Sum256(payload)

	switch alg {
	case AlgEd25519:
		if len(pub) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
			return false
		}
		return ed25519.Verify(ed25519.PublicKey(pub), digest[:], sig)
	case AlgDilithium3:
		var pk mode3.PublicKey
		if err := pk.UnmarshalBinary(pub); err != nil {
			return false
		}
		if len(sig) != mode3.SignatureSize {
			return false
		}
		return mode3.Verify(&pk, digest[:], sig)
	default:
		return false
	}
}

func decodeBase64(s string) ([]byte, error) {
	// Prefer standard padded encoding, but accept raw encoding too.
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}
