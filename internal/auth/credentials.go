package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"

	"github.com/law-makers/dashscrape/internal/output"
	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name for keyring storage
	KeyringService = "dashscrape"
	// FallbackDir is the directory for file-based storage (when keyring fails)
	FallbackDir = ".dashscrape"

	manifestKey  = "_manifest"
	fallbackFile = "credentials.json"
)

// ErrNotFound is returned when no password is stored for an account
var ErrNotFound = errors.New("credentials not found")

// Store keeps dashboard passwords in the OS keyring, or in a 0600 file
// under the user's home where no keyring is available (Codespaces, CI).
type Store struct {
	dir      string
	fileOnly bool
}

// NewStore checks the keyring once and picks the storage backend
func NewStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Store{
		dir:      filepath.Join(home, FallbackDir),
		fileOnly: !keyringUsable(),
	}, nil
}

// NewFileStore creates a Store that only uses a file in dir
func NewFileStore(dir string) *Store {
	return &Store{dir: dir, fileOnly: true}
}

func keyringUsable() bool {
	if os.Getenv("CODESPACES") != "" || os.Getenv("CI") != "" {
		return false
	}
	const testAccount = "_test_keyring_access_"
	if err := keyring.Set(KeyringService, testAccount, "test"); err != nil {
		return false
	}
	_ = keyring.Delete(KeyringService, testAccount)
	return true
}

// Account names the credentials of user on the dashboard at baseURL
func Account(baseURL, user string) string {
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		return user + "@" + u.Host
	}
	return user + "@" + baseURL
}

// Backend names the storage in use, for messages
func (s *Store) Backend() string {
	if s.fileOnly {
		return filepath.Join(s.dir, fallbackFile)
	}
	return "OS keyring"
}

// Set stores password for account
func (s *Store) Set(account, password string) error {
	if account == "" {
		return fmt.Errorf("account cannot be empty")
	}
	if s.fileOnly {
		all, err := s.readFile()
		if err != nil {
			return err
		}
		all[account] = password
		return s.writeFile(all)
	}
	if err := keyring.Set(KeyringService, account, password); err != nil {
		return fmt.Errorf("failed to save to keyring: %w", err)
	}
	return s.updateManifest(account, true)
}

// Get returns the password stored for account, or ErrNotFound
func (s *Store) Get(account string) (string, error) {
	if s.fileOnly {
		all, err := s.readFile()
		if err != nil {
			return "", err
		}
		pw, ok := all[account]
		if !ok {
			return "", ErrNotFound
		}
		return pw, nil
	}
	pw, err := keyring.Get(KeyringService, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load from keyring: %w", err)
	}
	return pw, nil
}

// Delete removes the password of account. Deleting a missing account is not an error.
func (s *Store) Delete(account string) error {
	if s.fileOnly {
		all, err := s.readFile()
		if err != nil {
			return err
		}
		if _, ok := all[account]; !ok {
			return nil
		}
		delete(all, account)
		return s.writeFile(all)
	}
	if err := keyring.Delete(KeyringService, account); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	return s.updateManifest(account, false)
}

// List returns the stored account names, sorted
func (s *Store) List() ([]string, error) {
	var accounts []string
	if s.fileOnly {
		all, err := s.readFile()
		if err != nil {
			return nil, err
		}
		for a := range all {
			accounts = append(accounts, a)
		}
	} else {
		data, err := keyring.Get(KeyringService, manifestKey)
		if errors.Is(err, keyring.ErrNotFound) {
			return []string{}, nil
		}
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(data), &accounts); err != nil {
			return nil, fmt.Errorf("failed to deserialize manifest: %w", err)
		}
	}
	sort.Strings(accounts)
	return accounts, nil
}

// updateManifest tracks account names, since the keyring cannot be enumerated
func (s *Store) updateManifest(account string, add bool) error {
	accounts, _ := s.List()

	kept := accounts[:0]
	for _, a := range accounts {
		if a != account {
			kept = append(kept, a)
		}
	}
	if add {
		kept = append(kept, account)
	}

	data, err := json.Marshal(kept)
	if err != nil {
		return err
	}
	return keyring.Set(KeyringService, manifestKey, string(data))
}

func (s *Store) readFile() (map[string]string, error) {
	all := make(map[string]string)
	data, err := os.ReadFile(filepath.Join(s.dir, fallbackFile))
	if errors.Is(err, os.ErrNotExist) {
		return all, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}
	return all, nil
}

func (s *Store) writeFile(all map[string]string) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return err
	}
	return output.WriteFileAtomic(filepath.Join(s.dir, fallbackFile), data, 0600)
}

// ResolvePassword picks the password for a run: an explicitly configured one,
// else the stored one, else fallback.
func ResolvePassword(store *Store, account, configured string, explicit bool, fallback string) string {
	if explicit {
		return configured
	}
	if store != nil {
		if pw, err := store.Get(account); err == nil {
			return pw
		}
	}
	return fallback
}
