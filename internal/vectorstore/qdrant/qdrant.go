package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"ai-workspace/internal/vectorstore"
)

// Point ids in Qdrant must be UUIDs or unsigned integers, so chunk ids are
// mapped to deterministic SHA1 UUIDs in this namespace; the original id
// lives in the payload.
var idNamespace = uuid.MustParse("7b9aa2a6-21ab-47a5-9ef5-d3f1f1a5b6c0")

var _ vectorstore.Store = (*Store)(nil)

const (
	payloadID      = "_id"
	payloadContent = "_content"
)

// Store is a REST client to a Qdrant collection using cosine distance.
// Equality and range conditions are pushed down as Qdrant filters;
// substring conditions are applied client-side over an over-fetched result
// set because Qdrant has no case-insensitive substring match.
type Store struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func New(cfg Config) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Store{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// EnsureCollection creates the collection if it does not exist yet.
func (s *Store) EnsureCollection(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("%w: invalid dimension %d", vectorstore.ErrStore, dimension)
	}
	var exists struct {
		Result struct {
			Exists bool `json:"exists"`
		} `json:"result"`
	}
	if err := s.do(ctx, http.MethodGet, fmt.Sprintf("/collections/%s/exists", s.collection), nil, &exists); err != nil {
		return err
	}
	if exists.Result.Exists {
		return nil
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	return s.do(ctx, http.MethodPut, fmt.Sprintf("/collections/%s", s.collection), body, nil)
}

func (s *Store) Upsert(ctx context.Context, id, content string, metadata map[string]any, vector []float32) error {
	payload := map[string]any{
		payloadID:      id,
		payloadContent: content,
	}
	for k, v := range metadata {
		payload[k] = v
	}
	body := map[string]any{
		"points": []map[string]any{
			{
				"id":      pointID(id),
				"vector":  vector,
				"payload": payload,
			},
		},
	}
	path := fmt.Sprintf("/collections/%s/points?wait=true", s.collection)
	return s.do(ctx, http.MethodPut, path, body, nil)
}

func (s *Store) Query(ctx context.Context, vector []float32, topK int, filter *vectorstore.Filter) ([]vectorstore.Record, error) {
	if topK <= 0 {
		topK = 5
	}
	fetch := topK
	pushdown, residual := splitFilter(filter)
	if !residual.Empty() {
		// Over-fetch so client-side substring filtering still fills topK.
		fetch = topK * 4
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        fetch,
		"with_payload": true,
	}
	if qf := qdrantFilter(pushdown); qf != nil {
		req["filter"] = qf
	}

	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	path := fmt.Sprintf("/collections/%s/points/search", s.collection)
	if err := s.do(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, err
	}

	records := make([]vectorstore.Record, 0, len(resp.Result))
	for _, r := range resp.Result {
		rec := fromPayload(r.Payload)
		// Cosine similarity from Qdrant; the adapter contract is distance.
		rec.Distance = 1 - r.Score
		if !residual.Matches(rec.Metadata) {
			continue
		}
		records = append(records, rec)
		if len(records) == topK {
			break
		}
	}
	return records, nil
}

func (s *Store) Get(ctx context.Context, filter *vectorstore.Filter, limit int) ([]vectorstore.Record, error) {
	pushdown, residual := splitFilter(filter)

	var records []vectorstore.Record
	var offset any
	for {
		req := map[string]any{
			"limit":        256,
			"with_payload": true,
		}
		if qf := qdrantFilter(pushdown); qf != nil {
			req["filter"] = qf
		}
		if offset != nil {
			req["offset"] = offset
		}

		var resp struct {
			Result struct {
				Points []struct {
					Payload map[string]any `json:"payload"`
				} `json:"points"`
				NextPageOffset any `json:"next_page_offset"`
			} `json:"result"`
		}
		path := fmt.Sprintf("/collections/%s/points/scroll", s.collection)
		if err := s.do(ctx, http.MethodPost, path, req, &resp); err != nil {
			return nil, err
		}

		for _, p := range resp.Result.Points {
			rec := fromPayload(p.Payload)
			if !residual.Matches(rec.Metadata) {
				continue
			}
			records = append(records, rec)
			if limit > 0 && len(records) == limit {
				return records, nil
			}
		}
		if resp.Result.NextPageOffset == nil {
			return records, nil
		}
		offset = resp.Result.NextPageOffset
	}
}

func (s *Store) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	points := make([]string, len(ids))
	for i, id := range ids {
		points[i] = pointID(id)
	}
	body := map[string]any{"points": points}
	path := fmt.Sprintf("/collections/%s/points/delete?wait=true", s.collection)
	return s.do(ctx, http.MethodPost, path, body, nil)
}

func pointID(id string) string {
	return uuid.NewSHA1(idNamespace, []byte(id)).String()
}

func fromPayload(payload map[string]any) vectorstore.Record {
	rec := vectorstore.Record{Metadata: make(map[string]any, len(payload))}
	for k, v := range payload {
		switch k {
		case payloadID:
			rec.ID, _ = v.(string)
		case payloadContent:
			rec.Content, _ = v.(string)
		default:
			rec.Metadata[k] = v
		}
	}
	return rec
}

// splitFilter separates conditions Qdrant can evaluate from those that must
// be checked client-side.
func splitFilter(f *vectorstore.Filter) (pushdown, residual *vectorstore.Filter) {
	pushdown = vectorstore.NewFilter()
	residual = vectorstore.NewFilter()
	for _, c := range f.Conds() {
		switch c.Op {
		case vectorstore.OpEq:
			pushdown.Eq(c.Key, c.Value)
		case vectorstore.OpGte:
			pushdown.Gte(c.Key, c.Value.(float64))
		case vectorstore.OpLte:
			pushdown.Lte(c.Key, c.Value.(float64))
		case vectorstore.OpContains:
			residual.Contains(c.Key, c.Value.(string))
		}
	}
	return pushdown, residual
}

// qdrantFilter renders a pushdown filter as a Qdrant "must" clause.
func qdrantFilter(f *vectorstore.Filter) map[string]any {
	if f.Empty() {
		return nil
	}
	must := make([]map[string]any, 0, len(f.Conds()))
	for _, c := range f.Conds() {
		switch c.Op {
		case vectorstore.OpEq:
			must = append(must, map[string]any{
				"key":   c.Key,
				"match": map[string]any{"value": c.Value},
			})
		case vectorstore.OpGte:
			must = append(must, map[string]any{
				"key":   c.Key,
				"range": map[string]any{"gte": c.Value},
			})
		case vectorstore.OpLte:
			must = append(must, map[string]any{
				"key":   c.Key,
				"range": map[string]any{"lte": c.Value},
			})
		}
	}
	return map[string]any{"must": must}
}

func (s *Store) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: marshal request: %v", vectorstore.ErrStore, err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.url+path, reader)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", vectorstore.ErrStore, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", vectorstore.ErrStore, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", vectorstore.ErrStore, err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s %s: status %d: %s", vectorstore.ErrStore, method, path, resp.StatusCode, string(raw))
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("%w: decode response: %v", vectorstore.ErrStore, err)
		}
	}
	return nil
}
