package app

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"ai-workspace/internal/model"
)

// EmailFileSearch answers structured email queries straight from the raw
// message files, bypassing embeddings and the vector store. Useful when the
// caller already knows the sender or subject and wants exact matches fast.
type EmailFileSearch struct {
	dir string
}

func NewEmailFileSearch(dir string) *EmailFileSearch {
	return &EmailFileSearch{dir: dir}
}

// Search scans every stored message and keeps those matching all non-empty
// constraints (case-insensitive substring). Results come back newest first.
func (s *EmailFileSearch) Search(p EmailSearchParams) ([]model.StoredEmail, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	if p.TopK <= 0 {
		p.TopK = 10
	}

	var matched []model.StoredEmail
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			log.Printf("read stored email %s: %v", entry.Name(), err)
			continue
		}
		var email model.StoredEmail
		if err := json.Unmarshal(data, &email); err != nil {
			log.Printf("decode stored email %s: %v", entry.Name(), err)
			continue
		}
		if matchesEmail(email, p) {
			matched = append(matched, email)
		}
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].Date > matched[j].Date })
	if len(matched) > p.TopK {
		matched = matched[:p.TopK]
	}
	return matched, nil
}

func matchesEmail(e model.StoredEmail, p EmailSearchParams) bool {
	if !containsFold(e.From, p.From) || !containsFold(e.To, p.To) || !containsFold(e.Subject, p.Subject) {
		return false
	}
	if p.Days > 0 && e.Date < time.Now().AddDate(0, 0, -p.Days).UnixMilli() {
		return false
	}
	query := strings.TrimSpace(p.Query)
	if query != "" && !strings.EqualFold(query, matchAllQuery) {
		if !containsFold(e.Subject, query) && !containsFold(e.Body, query) {
			return false
		}
	}
	return true
}

func containsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
