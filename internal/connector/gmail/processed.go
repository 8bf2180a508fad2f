package gmail

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// flushEvery bounds how many newly processed ids can be lost on a crash.
const flushEvery = 10

type processedFile struct {
	ProcessedIDs []string `json:"processed_ids"`
	LastUpdated  string   `json:"last_updated"`
}

// ProcessedSet is the durable record of which message ids an account has
// already ingested. Additions are batched; Flush must be called before the
// owning poller exits.
type ProcessedSet struct {
	path    string
	ids     map[string]struct{}
	pending int
}

func LoadProcessedSet(dir, account string) (*ProcessedSet, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create processed dir failed: %w", err)
	}

	set := &ProcessedSet{
		path: filepath.Join(dir, "processed_"+filepath.Base(account)+".json"),
		ids:  make(map[string]struct{}),
	}

	data, err := os.ReadFile(set.path)
	if os.IsNotExist(err) {
		return set, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read processed file failed: %w", err)
	}

	var stored processedFile
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("decode processed file failed: %w", err)
	}
	for _, id := range stored.ProcessedIDs {
		set.ids[id] = struct{}{}
	}
	return set, nil
}

func (p *ProcessedSet) Has(id string) bool {
	_, ok := p.ids[id]
	return ok
}

// Add records a processed id and flushes once enough additions accumulate.
func (p *ProcessedSet) Add(id string) error {
	if p.Has(id) {
		return nil
	}
	p.ids[id] = struct{}{}
	p.pending++
	if p.pending >= flushEvery {
		return p.Flush()
	}
	return nil
}

func (p *ProcessedSet) Len() int {
	return len(p.ids)
}

// Flush writes the full set to disk atomically.
func (p *ProcessedSet) Flush() error {
	ids := make([]string, 0, len(p.ids))
	for id := range p.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	data, err := json.MarshalIndent(processedFile{
		ProcessedIDs: ids,
		LastUpdated:  time.Now().UTC().Format(time.RFC3339),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal processed set failed: %w", err)
	}

	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write processed set failed: %w", err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		return fmt.Errorf("replace processed set failed: %w", err)
	}
	p.pending = 0
	return nil
}
