package tokenstore

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"

	apperrors "github.com/jrsteele09/go-site-settings/internal/errors"
)

const (
	envelopeVersion = 1
	saltLength      = 16
	nonceLength     = 24

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	keyLength    = 32
)

// envelope is the on-disk form of an encrypted token file.
type envelope struct {
	Version    int    `json:"version"`
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// deriveKey is a variable so tests can count derivations.
var deriveKey = func(passphrase string, salt []byte) *[keyLength]byte {
	var key [keyLength]byte
	copy(key[:], argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemory, argonThreads, keyLength))
	return &key
}

func newSalt() ([]byte, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

func sealEnvelope(key *[keyLength]byte, salt, plaintext []byte) (*envelope, error) {
	var nonce [nonceLength]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	return &envelope{
		Version:    envelopeVersion,
		Salt:       salt,
		Nonce:      nonce[:],
		Ciphertext: secretbox.Seal(nil, plaintext, &nonce, key),
	}, nil
}

func (e *envelope) check() error {
	if e.Version != envelopeVersion {
		return apperrors.Wrapf(apperrors.ErrStoreCorrupt, "unsupported envelope version %d", e.Version)
	}
	if len(e.Nonce) != nonceLength || len(e.Salt) == 0 {
		return apperrors.Wrapf(apperrors.ErrStoreCorrupt, "malformed envelope")
	}
	return nil
}

func openEnvelope(key *[keyLength]byte, env *envelope) ([]byte, error) {
	var nonce [nonceLength]byte
	copy(nonce[:], env.Nonce)
	plaintext, ok := secretbox.Open(nil, env.Ciphertext, &nonce, key)
	if !ok {
		return nil, apperrors.ErrStoreLocked
	}
	return plaintext, nil
}
