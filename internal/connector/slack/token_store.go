package slack

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Workspace is the durable record of one installed Slack workspace.
type Workspace struct {
	TeamID      string `json:"team_id"`
	TeamName    string `json:"team_name"`
	AccessToken string `json:"access_token"`
}

// TokenStore keeps one JSON file per installed workspace.
type TokenStore struct {
	dir string
}

func NewTokenStore(dir string) (*TokenStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create slack token dir failed: %w", err)
	}
	return &TokenStore{dir: dir}, nil
}

func (s *TokenStore) Save(ws Workspace) error {
	if ws.TeamID == "" {
		ws.TeamID = "default"
	}
	data, err := json.MarshalIndent(ws, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal workspace failed: %w", err)
	}
	if err := os.WriteFile(s.path(ws.TeamID), data, 0o600); err != nil {
		return fmt.Errorf("write workspace file failed: %w", err)
	}
	return nil
}

func (s *TokenStore) Load(teamID string) (*Workspace, error) {
	data, err := os.ReadFile(s.path(teamID))
	if err != nil {
		return nil, fmt.Errorf("read workspace file failed: %w", err)
	}
	var ws Workspace
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("decode workspace file failed: %w", err)
	}
	return &ws, nil
}

// List returns every installed workspace, tokens omitted.
func (s *TokenStore) List() ([]Workspace, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read slack token dir failed: %w", err)
	}
	var workspaces []Workspace
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "slack_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		ws, err := s.Load(strings.TrimSuffix(strings.TrimPrefix(name, "slack_"), ".json"))
		if err != nil {
			continue
		}
		ws.AccessToken = ""
		workspaces = append(workspaces, *ws)
	}
	return workspaces, nil
}

func (s *TokenStore) path(teamID string) string {
	return filepath.Join(s.dir, "slack_"+filepath.Base(teamID)+".json")
}
