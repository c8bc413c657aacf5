package credentials

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	json "github.com/json-iterator/go"
	"github.com/kazem-mohamed/socialhub-app/pkg/config"
)

// Credentials is the stored login for one user
type Credentials struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at,omitempty"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
}

// Load reads credentials from the configured path. Missing credentials are
// not an error: both return values are nil.
func Load() (*Credentials, error) {
	return LoadFrom(config.GetCredentialsPath())
}

// LoadFrom reads credentials from path
func LoadFrom(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

// Save writes credentials to the configured path
func Save(creds *Credentials) error {
	return SaveTo(config.GetCredentialsPath(), creds)
}

// SaveTo writes credentials to path, readable by the owner only
func SaveTo(path string, creds *Credentials) error {
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Delete removes the stored credentials. Deleting nothing is not an error.
func Delete() error {
	return DeleteAt(config.GetCredentialsPath())
}

// DeleteAt removes credentials stored at path
func DeleteAt(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// IsExpired reports whether the token is past its expiry. A zero expiry
// means the server did not say, and the token is assumed live.
func (c *Credentials) IsExpired() bool {
	return !c.ExpiresAt.IsZero() && time.Now().After(c.ExpiresAt)
}

// IsValid reports whether there is a live token
func (c *Credentials) IsValid() bool {
	return c != nil && c.AccessToken != "" && !c.IsExpired()
}
