// Package slack ingests workspace messages and shared files delivered
// through the Events API.
package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"ai-workspace/internal/app"
	"ai-workspace/internal/extract"
	"ai-workspace/internal/model"
)

// linkRE matches Slack's angle-bracket link markup; the label after "|" is
// dropped.
var linkRE = regexp.MustCompile(`<(https?://[^>|]+)(?:\|[^>]*)?>`)

// fileExtensions limits which shared documents are downloaded for indexing.
// Extensions the extractor cannot handle still download; they fail at
// extraction and are logged and skipped.
var fileExtensions = map[string]bool{
	".pdf":  true,
	".txt":  true,
	".md":   true,
	".csv":  true,
	".doc":  true,
	".docx": true,
	".xls":  true,
	".xlsx": true,
	".ppt":  true,
	".pptx": true,
}

type eventEnvelope struct {
	Type      string       `json:"type"`
	Challenge string       `json:"challenge"`
	TeamID    string       `json:"team_id"`
	Event     messageEvent `json:"event"`
}

type messageEvent struct {
	Type    string           `json:"type"`
	Subtype string           `json:"subtype"`
	Channel string           `json:"channel"`
	Ts      string           `json:"ts"`
	Text    string           `json:"text"`
	User    string           `json:"user"`
	Files   []fileAttachment `json:"files"`
}

type fileAttachment struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Title       string `json:"title"`
	DownloadURL string `json:"url_private_download"`
}

type Connector struct {
	ingest     *app.IngestService
	tokens     *TokenStore
	uploadDir  string
	httpClient *http.Client
}

func NewConnector(ingest *app.IngestService, tokens *TokenStore, uploadDir string) *Connector {
	return &Connector{
		ingest:     ingest,
		tokens:     tokens,
		uploadDir:  uploadDir,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// HandleEvent processes one verified Events API payload. The returned
// challenge is non-empty only for URL verification handshakes.
func (c *Connector) HandleEvent(ctx context.Context, body []byte) (challenge string, err error) {
	var envelope eventEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", fmt.Errorf("decode slack event failed: %w", err)
	}

	switch envelope.Type {
	case "url_verification":
		return envelope.Challenge, nil
	case "event_callback":
		if envelope.Event.Type != "message" || envelope.Event.Subtype == "bot_message" {
			return "", nil
		}
		return "", c.processMessage(ctx, envelope.TeamID, envelope.Event)
	}
	return "", nil
}

func (c *Connector) processMessage(ctx context.Context, teamID string, event messageEvent) error {
	text := strings.TrimSpace(event.Text)
	if text != "" {
		meta := model.SlackMeta{
			Channel:   event.Channel,
			Timestamp: event.Ts,
		}
		id := fmt.Sprintf("slack_%s_%s", event.Channel, event.Ts)
		if err := c.ingest.IngestOne(ctx, id, text, meta.Map()); err != nil {
			return fmt.Errorf("index slack message failed: %w", err)
		}
	}

	for _, link := range extractLinks(event.Text) {
		filename := filepath.Base(strings.TrimSuffix(link, "/"))
		if err := c.importFile(ctx, teamID, event, link, filename, ""); err != nil {
			log.Printf("slack: import linked file %s failed: %v", link, err)
		}
	}

	for _, file := range event.Files {
		if !fileExtensions[strings.ToLower(filepath.Ext(file.Name))] {
			continue
		}
		if file.DownloadURL == "" {
			log.Printf("slack: attachment %s has no download url", file.Name)
			continue
		}
		if err := c.importFile(ctx, teamID, event, file.DownloadURL, file.Name, file.Title); err != nil {
			log.Printf("slack: import attachment %s failed: %v", file.Name, err)
		}
	}
	return nil
}

// importFile downloads a shared document and runs it through the regular
// file ingestion path, tagged with its Slack origin.
func (c *Connector) importFile(ctx context.Context, teamID string, event messageEvent, link, filename, title string) error {
	path := filepath.Join(c.uploadDir, filename)

	if err := c.download(ctx, teamID, link, path); err != nil {
		return err
	}

	chunks, err := extract.Chunks(path)
	if err != nil {
		return fmt.Errorf("extract %s failed: %w", filename, err)
	}

	meta := model.SlackMeta{
		Channel:   event.Channel,
		Timestamp: event.Ts,
		URL:       link,
		Filename:  filename,
		Title:     title,
	}
	c.ingest.IngestChunks(ctx, chunks, filename, meta.Map())
	return nil
}

func (c *Connector) download(ctx context.Context, teamID, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build download request failed: %w", err)
	}
	// Files hosted on Slack need the workspace token; public links do not.
	if strings.Contains(url, "slack.com") && c.tokens != nil {
		if ws, loadErr := c.tokens.Load(teamID); loadErr == nil {
			req.Header.Set("Authorization", "Bearer "+ws.AccessToken)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: status %d", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create download file failed: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("write download file failed: %w", err)
	}
	return nil
}

// extractLinks returns the linked URLs whose extension is in the indexable
// set.
func extractLinks(text string) []string {
	var links []string
	for _, match := range linkRE.FindAllStringSubmatch(text, -1) {
		url := match[1]
		if fileExtensions[strings.ToLower(filepath.Ext(url))] {
			links = append(links, url)
		}
	}
	return links
}
