package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"ai-workspace/internal/model"
	"ai-workspace/internal/vectorstore"
)

const matchAllQuery = "all"

// SearchResult is one retrieved chunk plus the metadata needed to cite it.
type SearchResult struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
	Distance float64        `json:"distance"`
}

// EmailSearchParams narrows retrieval to mail chunks. Zero values mean
// "no constraint"; Days limits results to mail received in the last N days.
type EmailSearchParams struct {
	Query   string
	From    string
	To      string
	Subject string
	Days    int
	TopK    int
}

type QueryService struct {
	store     vectorstore.Store
	embedder  Embedder
	answerer  AnswerModel
	recoverer FieldRecoverer
}

func NewQueryService(store vectorstore.Store, embedder Embedder, answerer AnswerModel) *QueryService {
	return &QueryService{
		store:     store,
		embedder:  embedder,
		answerer:  answerer,
		recoverer: NewHeaderRecoverer(),
	}
}

// Search retrieves the chunks most similar to query. The literal query "all"
// skips embedding entirely and returns chunks by filter alone, which keeps
// bulk listing usable even when the embedding backend is down.
func (s *QueryService) Search(ctx context.Context, query string, topK int, filter *vectorstore.Filter) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", ErrInvalidInput)
	}
	if topK <= 0 {
		topK = 5
	}

	if strings.EqualFold(query, matchAllQuery) {
		records, err := s.store.Get(ctx, filter, topK)
		if err != nil {
			return nil, fmt.Errorf("list chunks: %w", err)
		}
		return toResults(records), nil
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	records, err := s.store.Query(ctx, vector, topK, filter)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	return toResults(records), nil
}

// Answer runs retrieval for question and asks the chat model to answer
// grounded in the retrieved context. When the model is unreachable the raw
// context is returned with a notice instead of failing the request.
func (s *QueryService) Answer(ctx context.Context, question string, topK int) (string, []SearchResult, error) {
	results, err := s.Search(ctx, question, topK, nil)
	if err != nil {
		return "", nil, err
	}
	if len(results) == 0 {
		return "No relevant information found in your workspace.", nil, nil
	}

	contextText := formatContext(results)
	system := "You are a personal knowledge assistant. Answer the question using only the provided context. " +
		"If the context does not contain the answer, say so plainly."
	user := fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextText, question)

	answer, err := s.answerer.Complete(ctx, system, user)
	if err != nil {
		log.Printf("answer generation failed, returning raw context: %v", err)
		answer = "The assistant is temporarily unavailable. Here is the most relevant content found:\n\n" + contextText
	}
	return answer, results, nil
}

// SearchEmails retrieves mail chunks only. Structured constraints become
// store-side filters; sender and subject gaps in the results are patched
// from the raw content before formatting.
func (s *QueryService) SearchEmails(ctx context.Context, p EmailSearchParams) ([]SearchResult, error) {
	if p.TopK <= 0 {
		p.TopK = 10
	}

	filter := vectorstore.NewFilter().Eq(model.MetaSource, model.SourceGmail)
	if p.From != "" {
		filter = filter.Contains("from", p.From)
	}
	if p.To != "" {
		filter = filter.Contains("to", p.To)
	}
	if p.Subject != "" {
		filter = filter.Contains("subject", p.Subject)
	}
	if p.Days > 0 {
		threshold := time.Now().AddDate(0, 0, -p.Days).UnixMilli()
		filter = filter.Gte(model.MetaDate, float64(threshold))
	}

	query := strings.TrimSpace(p.Query)
	if query == "" {
		query = matchAllQuery
	}
	results, err := s.Search(ctx, query, p.TopK, filter)
	if err != nil {
		return nil, err
	}

	for i := range results {
		s.recoverEmailFields(&results[i])
	}
	return results, nil
}

func (s *QueryService) recoverEmailFields(r *SearchResult) {
	from, _ := r.Metadata["from"].(string)
	subject, _ := r.Metadata["subject"].(string)
	if from != "" && subject != "" {
		return
	}
	from, subject = s.recoverer.Recover(r.Content, from, subject)
	if r.Metadata == nil {
		r.Metadata = map[string]any{}
	}
	if from != "" {
		r.Metadata["from"] = from
	}
	if subject != "" {
		r.Metadata["subject"] = subject
	}
}

// AnswerEmails retrieves matching mail and asks the model to answer from
// it, with the same degradation as Answer.
func (s *QueryService) AnswerEmails(ctx context.Context, p EmailSearchParams) (string, []SearchResult, error) {
	results, err := s.SearchEmails(ctx, p)
	if err != nil {
		return "", nil, err
	}
	if len(results) == 0 {
		return "No matching emails found.", nil, nil
	}
	query := strings.TrimSpace(p.Query)
	if query == "" || strings.EqualFold(query, matchAllQuery) {
		return fmt.Sprintf("Found %d matching emails.", len(results)), results, nil
	}

	contextText := formatEmailContext(results)
	system := "You are a personal email assistant. Answer the question using only the provided emails."
	user := fmt.Sprintf("Emails:\n%s\n\nQuestion: %s", contextText, query)

	answer, err := s.answerer.Complete(ctx, system, user)
	if err != nil {
		log.Printf("email answer generation failed, returning raw results: %v", err)
		answer = fmt.Sprintf("The assistant is temporarily unavailable. Found %d matching emails.", len(results))
	}
	return answer, results, nil
}

// DocGroup summarizes one imported Google Doc.
type DocGroup struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Chunks int    `json:"chunks"`
}

// ListGoogleDocs groups the indexed Google Docs chunks by document URL.
func (s *QueryService) ListGoogleDocs(ctx context.Context) ([]DocGroup, error) {
	filter := vectorstore.NewFilter().Eq(model.MetaSource, model.SourceGoogleDocs)
	records, err := s.store.Get(ctx, filter, 1000)
	if err != nil {
		return nil, fmt.Errorf("list google docs chunks: %w", err)
	}

	byURL := make(map[string]*DocGroup)
	var order []string
	for _, rec := range records {
		url, _ := rec.Metadata["url"].(string)
		group, ok := byURL[url]
		if !ok {
			title, _ := rec.Metadata[model.MetaTitle].(string)
			group = &DocGroup{Title: title, URL: url}
			byURL[url] = group
			order = append(order, url)
		}
		group.Chunks++
	}

	groups := make([]DocGroup, 0, len(order))
	for _, url := range order {
		groups = append(groups, *byURL[url])
	}
	return groups, nil
}

func formatEmailContext(results []SearchResult) string {
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		from, _ := r.Metadata["from"].(string)
		subject, _ := r.Metadata["subject"].(string)
		dateStr, _ := r.Metadata[model.MetaDateStr].(string)
		fmt.Fprintf(&b, "[%d] From: %s | Subject: %s | Date: %s\n%s", i+1, from, subject, dateStr, truncate(r.Content, 500))
	}
	return b.String()
}

func formatContext(results []SearchResult) string {
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		source, _ := r.Metadata[model.MetaSource].(string)
		if source == "" {
			source = "unknown"
		}
		fmt.Fprintf(&b, "[%d] (%s) %s", i+1, source, r.Content)
	}
	return b.String()
}

func toResults(records []vectorstore.Record) []SearchResult {
	results := make([]SearchResult, 0, len(records))
	for _, rec := range records {
		results = append(results, SearchResult{
			ID:       rec.ID,
			Content:  rec.Content,
			Metadata: rec.Metadata,
			Distance: rec.Distance,
		})
	}
	return results
}
