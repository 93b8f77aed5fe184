package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"hwgpg/internal/domain"
)

const (
	// CertificateFilename is the exported public-key certificate.
	CertificateFilename = "pubkey.asc"
	// ManifestFilename records the provisioned identity.
	ManifestFilename = "identity.json"

	dirMode  os.FileMode = 0o700
	fileMode os.FileMode = 0o600
)

// IdentityFileStore persists the identity directory to disk.
type IdentityFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewIdentityFileStore returns an IdentityFileStore rooted at dir.
func NewIdentityFileStore(dir string) *IdentityFileStore {
	return &IdentityFileStore{dir: filepath.Clean(dir)}
}

// Dir returns the identity directory path.
func (s *IdentityFileStore) Dir() string { return s.dir }

// Exists reports whether the directory exists and is not empty.
func (s *IdentityFileStore) Exists() (bool, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return len(entries) > 0, nil
}

// Recreate wipes the identity directory and creates it empty with 0o700.
func (s *IdentityFileStore) Recreate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := checkRemovable(s.dir); err != nil {
		return err
	}
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("removing %s: %w", s.dir, err)
	}
	if err := os.MkdirAll(s.dir, dirMode); err != nil {
		return fmt.Errorf("creating %s: %w", s.dir, err)
	}
	// MkdirAll is subject to the umask.
	return os.Chmod(s.dir, dirMode)
}

// SaveCertificate writes the armored certificate and returns its path.
func (s *IdentityFileStore) SaveCertificate(armored []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, CertificateFilename)
	if err := writeFile(path, armored, fileMode); err != nil {
		return "", err
	}
	return path, nil
}

// LoadCertificate reads the certificate; ok is false when none was saved.
func (s *IdentityFileStore) LoadCertificate() ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := readFile(filepath.Join(s.dir, CertificateFilename))
	if err != nil {
		return nil, false, err
	}
	return b, b != nil, nil
}

// SaveManifest writes the identity manifest.
func (s *IdentityFileStore) SaveManifest(m domain.Manifest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return writeJSON(filepath.Join(s.dir, ManifestFilename), m, fileMode)
}

// LoadManifest reads the identity manifest; ok is false when none was saved.
func (s *IdentityFileStore) LoadManifest() (domain.Manifest, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var m domain.Manifest
	found, err := readJSON(filepath.Join(s.dir, ManifestFilename), &m)
	if err != nil {
		return domain.Manifest{}, false, err
	}
	return m, found, nil
}

// checkRemovable refuses to wipe paths that can never be an identity directory.
func checkRemovable(dir string) error {
	if dir == "" || dir == "." || dir == string(filepath.Separator) {
		return fmt.Errorf("refusing to recreate identity directory %q", dir)
	}
	if home, err := os.UserHomeDir(); err == nil && filepath.Clean(home) == dir {
		return fmt.Errorf("refusing to recreate the home directory %q as identity directory", dir)
	}
	return nil
}

// Compile-time assertion that IdentityFileStore implements domain.IdentityStore.
var _ domain.IdentityStore = (*IdentityFileStore)(nil)
