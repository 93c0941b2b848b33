package tokenstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/rs/zerolog/log"

	apperrors "github.com/jrsteele09/go-site-settings/internal/errors"
)

var _ Store = (*FileStore)(nil)

// FileStore persists the tokens as a JSON file, optionally encrypted with a passphrase.
// Writes go to a temp file which is fsynced and renamed over the target, so a reader
// never observes a half-written file.
type FileStore struct {
	path       string
	passphrase string
	mu         sync.Mutex

	// argon2id key for the salt of the last file read or written, guarded by mu
	salt []byte
	key  *[keyLength]byte
}

// NewFileStore creates a store backed by path. An empty passphrase stores plain JSON.
func NewFileStore(path, passphrase string) *FileStore {
	return &FileStore{
		path:       path,
		passphrase: passphrase,
	}
}

// Path returns the configured file path.
func (s *FileStore) Path() string {
	return s.path
}

// Encrypted reports whether the store writes encrypted files.
func (s *FileStore) Encrypted() bool {
	return s.passphrase != ""
}

// Load reads the token file. A missing file is an empty session.
func (s *FileStore) Load() (Tokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Tokens{}, nil
		}
		return Tokens{}, fmt.Errorf("[FileStore Load] read token file: %w", err)
	}
	s.warnOnOpenPermissions()

	var probe envelope
	if err := json.Unmarshal(data, &probe); err != nil {
		return Tokens{}, apperrors.Wrapf(apperrors.ErrStoreCorrupt, "[FileStore Load] parse %s: %v", s.path, err)
	}

	if probe.Ciphertext != nil {
		if s.passphrase == "" {
			return Tokens{}, apperrors.Wrapf(apperrors.ErrStoreLocked, "[FileStore Load] %s is encrypted and no key is configured", s.path)
		}
		if err := probe.check(); err != nil {
			return Tokens{}, fmt.Errorf("[FileStore Load] %w", err)
		}
		if data, err = openEnvelope(s.keyFor(probe.Salt), &probe); err != nil {
			return Tokens{}, fmt.Errorf("[FileStore Load] %w", err)
		}
	}

	var tokens Tokens
	if err := json.Unmarshal(data, &tokens); err != nil {
		return Tokens{}, apperrors.Wrapf(apperrors.ErrStoreCorrupt, "[FileStore Load] decode tokens: %v", err)
	}
	return tokens, nil
}

// Save replaces the token file with the given tokens.
func (s *FileStore) Save(tokens Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return fmt.Errorf("[FileStore Save] marshal tokens: %w", err)
	}

	if s.passphrase != "" {
		salt := s.salt
		if salt == nil {
			if salt, err = newSalt(); err != nil {
				return fmt.Errorf("[FileStore Save] %w", err)
			}
		}
		env, err := sealEnvelope(s.keyFor(salt), salt, data)
		if err != nil {
			return fmt.Errorf("[FileStore Save] encrypt tokens: %w", err)
		}
		if data, err = json.MarshalIndent(env, "", "  "); err != nil {
			return fmt.Errorf("[FileStore Save] marshal envelope: %w", err)
		}
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("[FileStore Save] create data folder: %w", err)
	}
	if err := s.writeAtomic(data); err != nil {
		return fmt.Errorf("[FileStore Save] %w", err)
	}

	log.Debug().Str("path", s.path).Bool("encrypted", s.passphrase != "").Msg("Token file saved")
	return nil
}

// Clear removes the token file.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("[FileStore Clear] remove token file: %w", err)
	}
	log.Debug().Str("path", s.path).Msg("Token file cleared")
	return nil
}

// keyFor returns the key for salt, deriving it only when the salt changed.
// Callers hold mu.
func (s *FileStore) keyFor(salt []byte) *[keyLength]byte {
	if s.key == nil || !bytes.Equal(s.salt, salt) {
		s.salt = bytes.Clone(salt)
		s.key = deriveKey(s.passphrase, salt)
	}
	return s.key
}

// writeAtomic writes data to a temp file, fsyncs it, and renames it
// over the target path. On any error the temp file is cleaned up.
func (s *FileStore) writeAtomic(data []byte) error {
	tmpPath := s.path + ".tmp"

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	cleanup := func() {
		_ = f.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := f.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("fsync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func (s *FileStore) warnOnOpenPermissions() {
	if runtime.GOOS == "windows" {
		return
	}
	info, err := os.Stat(s.path)
	if err != nil {
		return
	}
	if mode := info.Mode().Perm(); mode&0o077 != 0 {
		log.Warn().Str("path", s.path).Str("mode", fmt.Sprintf("%04o", mode)).Msg("Token file is readable by other users, should be 0600")
	}
}
