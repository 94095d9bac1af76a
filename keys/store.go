package keys

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Store is a simple local-first key management system.
//
// Features:
// - Ed25519 seeds only
// - Stores seeds on the local filesystem (0600 files)
// - Derives deterministic role subkeys from a root seed
//
// Layout: <dir>/<name>/root.key and <dir>/<name>/roles/<role>.key.
type Store struct {
	Directory string
}

// Entry describes one stored identity and its derived roles.
type Entry struct {
	Name  string
	Roles []string
}

func DefaultStoreDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".nametree", "keys"), nil
}

// OpenStore returns a store rooted at directory, or the default directory
// when empty.
func OpenStore(directory string) (*Store, error) {
	if directory == "" {
		var err error
		directory, err = DefaultStoreDirectory()
		if err != nil {
			return nil, err
		}
	}
	return &Store{Directory: directory}, nil
}

func (s *Store) rootKeyPath(name string) string {
	return filepath.Join(s.Directory, name, "root.key")
}

func (s *Store) roleKeyPath(name, role string) string {
	return filepath.Join(s.Directory, name, "roles", role+".key")
}

// CheckKeyName validates a stored identity name: [A-Za-z0-9_-]+ only.
func CheckKeyName(name string) error {
	if name == "" {
		return errors.New("keys: identity name cannot be empty")
	}
	for _, char := range name {
		if (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '-' || char == '_' {
			continue
		}
		return fmt.Errorf("keys: invalid character %q in identity name", char)
	}
	return nil
}

// CheckRole validates a role name with the same character set as CheckKeyName.
func CheckRole(role string) error {
	if role == "" {
		return errors.New("keys: role cannot be empty")
	}
	for _, char := range role {
		if (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '-' || char == '_' {
			continue
		}
		return fmt.Errorf("keys: invalid character %q in role", char)
	}
	return nil
}

// ParseSeedHex decodes a 64-hex-char Ed25519 seed, tolerating a 0x prefix.
func ParseSeedHex(seedHex string) ([]byte, error) {
	seedHex = strings.TrimSpace(seedHex)
	seedHex = strings.TrimPrefix(seedHex, "0x")
	data, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, err
	}
	if len(data) != ed25519.SeedSize {
		return nil, fmt.Errorf("keys: expected seed length of %d bytes, got %d", ed25519.SeedSize, len(data))
	}
	return data, nil
}

func (s *Store) saveSeed(filePath string, seed []byte, overwrite bool) error {
	if len(seed) != ed25519.SeedSize {
		return fmt.Errorf("keys: expected seed length of %d bytes", ed25519.SeedSize)
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o700); err != nil {
		return err
	}
	flags := os.O_WRONLY | os.O_CREATE
	if overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_EXCL
	}
	file, err := os.OpenFile(filePath, flags, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()
	if _, err := file.WriteString(hex.EncodeToString(seed) + "\n"); err != nil {
		return err
	}
	return file.Close()
}

func (s *Store) loadSeed(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return ParseSeedHex(strings.TrimSpace(string(data)))
}

// InitRootKey stores seed as the root key for name and returns the exported
// public key string plus the file path written.
func (s *Store) InitRootKey(name string, seed []byte, overwrite bool) (publicKey string, filePath string, err error) {
	if err := CheckKeyName(name); err != nil {
		return "", "", err
	}
	filePath = s.rootKeyPath(name)
	if err := s.saveSeed(filePath, seed, overwrite); err != nil {
		return "", "", err
	}
	return PublicKeyFromSeed(seed), filePath, nil
}

// DeriveRoleKey derives and stores a role subkey under an existing identity.
func (s *Store) DeriveRoleKey(from, role string, overwrite bool) (publicKey string, filePath string, err error) {
	if err := CheckKeyName(from); err != nil {
		return "", "", err
	}
	if err := CheckRole(role); err != nil {
		return "", "", err
	}
	rootSeed, err := s.loadSeed(s.rootKeyPath(from))
	if err != nil {
		return "", "", err
	}
	roleSeed, err := DeriveRoleSeed(rootSeed, role)
	if err != nil {
		return "", "", err
	}
	filePath = s.roleKeyPath(from, role)
	if err := s.saveSeed(filePath, roleSeed, overwrite); err != nil {
		return "", "", err
	}
	return PublicKeyFromSeed(roleSeed), filePath, nil
}

// ExportPublicKey returns the exported public key string for a stored
// identity, or a role subkey when role is non-empty.
func (s *Store) ExportPublicKey(name, role string) (string, error) {
	if err := CheckKeyName(name); err != nil {
		return "", err
	}
	var seed []byte
	var err error
	if role == "" {
		seed, err = s.loadSeed(s.rootKeyPath(name))
	} else {
		if err := CheckRole(role); err != nil {
			return "", err
		}
		seed, err = s.loadSeed(s.roleKeyPath(name, role))
	}
	if err != nil {
		return "", err
	}
	return PublicKeyFromSeed(seed), nil
}

// Signer loads a stored seed and returns its Ed25519 signer.
func (s *Store) Signer(name, role string) (*Ed25519Signer, error) {
	if err := CheckKeyName(name); err != nil {
		return nil, err
	}
	path := s.rootKeyPath(name)
	if role != "" {
		if err := CheckRole(role); err != nil {
			return nil, err
		}
		path = s.roleKeyPath(name, role)
	}
	seed, err := s.loadSeed(path)
	if err != nil {
		return nil, err
	}
	return NewEd25519Signer(seed)
}

// List enumerates stored identities and their derived roles, sorted by name.
func (s *Store) List() ([]Entry, error) {
	entries, err := os.ReadDir(s.Directory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var result []Entry
	for _, name := range names {
		rolesDir := filepath.Join(s.Directory, name, "roles")
		roleEntries, rerr := os.ReadDir(rolesDir)
		var roles []string
		if rerr == nil {
			for _, roleEntry := range roleEntries {
				if roleEntry.IsDir() {
					continue
				}
				if strings.HasSuffix(roleEntry.Name(), ".key") {
					roles = append(roles, strings.TrimSuffix(roleEntry.Name(), ".key"))
				}
			}
			sort.Strings(roles)
		}
		result = append(result, Entry{Name: name, Roles: roles})
	}
	return result, nil
}
