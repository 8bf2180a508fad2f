package gmail

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"
)

var ErrNoCredential = errors.New("no stored credential for account")

// TokenStore keeps one OAuth token file per connected account. Tokens are
// plain JSON on disk so a deployment can be backed up or wiped by hand.
type TokenStore struct {
	dir string
}

func NewTokenStore(dir string) (*TokenStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create token dir failed: %w", err)
	}
	return &TokenStore{dir: dir}, nil
}

func (s *TokenStore) Save(account string, token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal token failed: %w", err)
	}
	if err := os.WriteFile(s.path(account), data, 0o600); err != nil {
		return fmt.Errorf("write token file failed: %w", err)
	}
	return nil
}

func (s *TokenStore) Load(account string) (*oauth2.Token, error) {
	data, err := os.ReadFile(s.path(account))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoCredential, account)
		}
		return nil, fmt.Errorf("read token file failed: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("decode token file failed: %w", err)
	}
	return &token, nil
}

func (s *TokenStore) Delete(account string) error {
	if err := os.Remove(s.path(account)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete token file failed: %w", err)
	}
	return nil
}

// Accounts lists every account with a stored credential. Other connectors
// may keep their own files in the same directory, so only names that look
// like email addresses count.
func (s *TokenStore) Accounts() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read token dir failed: %w", err)
	}
	var accounts []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		account := strings.TrimSuffix(name, ".json")
		if !strings.Contains(account, "@") {
			continue
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

func (s *TokenStore) path(account string) string {
	return filepath.Join(s.dir, filepath.Base(account)+".json")
}
