package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"redditsave/pkg/config"
)

// Account is a reddit script app together with the user it acts for
type Account struct {
	Username     string    `json:"username"`
	Password     string    `json:"password"`
	ClientID     string    `json:"client_id"`
	Secret       string    `json:"secret"`
	LastModified time.Time `json:"last_modified"`
}

// CredentialStore is the interface for storing and retrieving credentials
type CredentialStore interface {
	// Store saves credentials for a given account
	Store(account *Account) error

	// Retrieve gets credentials for a specific username
	Retrieve(username string) (*Account, error)

	// List returns all stored accounts
	List() ([]*Account, error)

	// Delete removes credentials for a specific username
	Delete(username string) error

	// Exists checks if credentials exist for a username
	Exists(username string) bool
}

// Manager handles credential storage with fallback mechanisms
type Manager struct {
	stores []CredentialStore
}

// NewManager creates a credential manager over the system keychain, when
// one is reachable, and an encrypted file in the user config directory
func NewManager() (*Manager, error) {
	var stores []CredentialStore

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore)

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores creates a manager that tries stores in order
func NewManagerWithStores(stores ...CredentialStore) *Manager {
	return &Manager{stores: stores}
}

// Store saves credentials in the first store that accepts them
func (m *Manager) Store(account *Account) error {
	if err := validate(account); err != nil {
		return err
	}
	if len(m.stores) == 0 {
		return ErrStoreUnavailable
	}

	account.LastModified = time.Now()

	var failures []error
	for _, store := range m.stores {
		err := store.Store(account)
		if err == nil {
			return nil
		}
		failures = append(failures, err)
	}
	return fmt.Errorf("failed to store credentials: %w", errors.Join(failures...))
}

func validate(account *Account) error {
	switch {
	case account == nil || account.Username == "":
		return fmt.Errorf("%w: username is required", ErrInvalidCredentials)
	case account.Password == "":
		return fmt.Errorf("%w: password is required", ErrInvalidCredentials)
	case account.ClientID == "" || account.Secret == "":
		return fmt.Errorf("%w: client id and secret are required", ErrInvalidCredentials)
	}
	return nil
}

// Retrieve gets credentials from the first store that has them
func (m *Manager) Retrieve(username string) (*Account, error) {
	for _, store := range m.stores {
		if account, err := store.Retrieve(username); err == nil && account != nil {
			return account, nil
		}
	}
	return nil, fmt.Errorf("%w for user: %s", ErrCredentialsNotFound, username)
}

// RetrieveDefault returns the most recently stored account
func (m *Manager) RetrieveDefault() (*Account, error) {
	accounts := m.List()
	if len(accounts) == 0 {
		return nil, ErrCredentialsNotFound
	}
	return accounts[0], nil
}

// List merges the accounts of every readable store, keeping the newest copy
// of each username, most recently modified first
func (m *Manager) List() []*Account {
	newest := make(map[string]*Account)
	for _, store := range m.stores {
		accounts, err := store.List()
		if err != nil {
			continue
		}
		for _, account := range accounts {
			if seen, ok := newest[account.Username]; !ok || account.LastModified.After(seen.LastModified) {
				newest[account.Username] = account
			}
		}
	}

	result := make([]*Account, 0, len(newest))
	for _, account := range newest {
		result = append(result, account)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].LastModified.Equal(result[j].LastModified) {
			return result[i].LastModified.After(result[j].LastModified)
		}
		return result[i].Username < result[j].Username
	})
	return result
}

// Delete removes credentials from every store holding them
func (m *Manager) Delete(username string) error {
	deleted := false
	var failures []error
	for _, store := range m.stores {
		err := store.Delete(username)
		switch {
		case err == nil:
			deleted = true
		case !errors.Is(err, ErrCredentialsNotFound):
			failures = append(failures, err)
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("failed to delete credentials: %w", errors.Join(failures...))
	}
	if !deleted {
		return fmt.Errorf("%w for user: %s", ErrCredentialsNotFound, username)
	}
	return nil
}

// Apply fills the credential fields cfg leaves empty from the stored account
// for cfg.Username, or from the default account when no username is set.
// It reports whether a stored account was used.
func (m *Manager) Apply(cfg *config.RedditConfig) (bool, error) {
	if cfg.Username != "" && cfg.Password != "" && cfg.ClientID != "" && cfg.Secret != "" {
		return false, nil
	}

	var account *Account
	var err error
	if cfg.Username != "" {
		account, err = m.Retrieve(cfg.Username)
	} else {
		account, err = m.RetrieveDefault()
	}
	if err != nil {
		return false, err
	}

	if cfg.Username == "" {
		cfg.Username = account.Username
	}
	if cfg.Password == "" {
		cfg.Password = account.Password
	}
	if cfg.ClientID == "" {
		cfg.ClientID = account.ClientID
	}
	if cfg.Secret == "" {
		cfg.Secret = account.Secret
	}
	return true, nil
}

// getConfigDir returns the per-user directory credentials are kept in
func getConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "redditsave")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "redditsave")
	default:
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "redditsave")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config", "redditsave")
		}
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// SanitizeAccount creates a copy of the account with secrets masked
func SanitizeAccount(account *Account) *Account {
	if account == nil {
		return nil
	}

	return &Account{
		Username:     account.Username,
		Password:     maskString(account.Password),
		ClientID:     account.ClientID,
		Secret:       maskString(account.Secret),
		LastModified: account.LastModified,
	}
}

// maskString masks all but the first 4 and last 4 characters of a string
func maskString(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// Errors
var (
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
)
