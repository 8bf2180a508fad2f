package gmail

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"ai-workspace/internal/app"
	"ai-workspace/internal/connector"
	"ai-workspace/internal/model"
)

const (
	maxRetries = 3
	errorWait  = 60 * time.Second
)

// Config carries the per-runner ingestion settings.
type Config struct {
	PollInterval time.Duration
	MaxResults   int64
	EmailsDir    string
	ProcessedDir string
}

// Runner polls one mailbox for unread messages, stores each raw message on
// disk, indexes it, and marks it read. One runner per connected account.
type Runner struct {
	account   string
	cfg       Config
	oauth     *oauth2.Config
	tokens    *TokenStore
	processed *ProcessedSet
	ingest    *app.IngestService
	limiter   *rate.Limiter

	mu        sync.Mutex
	state     connector.State
	lastError string
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewRunner(account string, cfg Config, oauth *oauth2.Config, tokens *TokenStore, ingest *app.IngestService) *Runner {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Minute
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 10
	}
	if cfg.ProcessedDir == "" {
		cfg.ProcessedDir = "processed_emails"
	}
	return &Runner{
		account: account,
		cfg:     cfg,
		oauth:   oauth,
		tokens:  tokens,
		ingest:  ingest,
		limiter: rate.NewLimiter(rate.Limit(2), 1),
		state:   connector.StateDisconnected,
	}
}

func (r *Runner) Account() string { return r.account }

func (r *Runner) Status() connector.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return connector.Status{
		Account:   r.account,
		State:     r.state,
		LastError: r.lastError,
	}
}

// Start brings up the polling loop. Returns an error only for setup
// failures; poll-time failures are retried inside the loop.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.cancel != nil {
		r.mu.Unlock()
		return nil
	}
	r.state = connector.StateConnecting
	r.mu.Unlock()

	token, err := r.tokens.Load(r.account)
	if err != nil {
		r.setState(connector.StateDisconnected, err)
		return err
	}

	processed, err := LoadProcessedSet(r.cfg.ProcessedDir, r.account)
	if err != nil {
		r.setState(connector.StateDisconnected, err)
		return fmt.Errorf("load processed set failed: %w", err)
	}
	r.processed = processed

	service, err := gmailapi.NewService(ctx, option.WithTokenSource(r.oauth.TokenSource(ctx, token)))
	if err != nil {
		r.setState(connector.StateDisconnected, err)
		return fmt.Errorf("build gmail client failed: %w", err)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.cancel = cancel
	r.done = make(chan struct{})
	r.mu.Unlock()

	go r.loop(loopCtx, service)
	return nil
}

// Stop signals the loop, waits for it to drain, and flushes the processed
// set. Safe to call more than once.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel = nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	if r.processed != nil {
		if err := r.processed.Flush(); err != nil {
			log.Printf("gmail[%s]: flush processed set on stop failed: %v", r.account, err)
		}
	}
	r.setState(connector.StateDisconnected, nil)
}

func (r *Runner) loop(ctx context.Context, service *gmailapi.Service) {
	defer close(r.done)
	r.setState(connector.StatePolling, nil)

	for {
		if err := r.pollWithRetry(ctx, service); err != nil {
			if IsAuthError(err) {
				log.Printf("gmail[%s]: credential rejected, disconnecting: %v", r.account, err)
				if delErr := r.tokens.Delete(r.account); delErr != nil {
					log.Printf("gmail[%s]: delete credential failed: %v", r.account, delErr)
				}
				r.setState(connector.StateDisconnected, err)
				return
			}
			log.Printf("gmail[%s]: poll cycle failed, waiting %s: %v", r.account, errorWait, err)
			r.setState(connector.StatePolling, err)
			if !sleepCtx(ctx, errorWait) {
				return
			}
			continue
		}
		r.setState(connector.StatePolling, nil)

		if !sleepCtx(ctx, r.cfg.PollInterval) {
			return
		}
	}
}

func (r *Runner) pollWithRetry(ctx context.Context, service *gmailapi.Service) error {
	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err = r.poll(ctx, service); err == nil {
			return nil
		}
		if IsAuthError(err) || ctx.Err() != nil {
			return err
		}
		backoff := time.Duration(1<<attempt) * time.Second
		log.Printf("gmail[%s]: poll attempt %d failed, retrying in %s: %v", r.account, attempt+1, backoff, err)
		if !sleepCtx(ctx, backoff) {
			return err
		}
	}
	return err
}

func (r *Runner) poll(ctx context.Context, service *gmailapi.Service) error {
	resp, err := service.Users.Messages.List("me").
		Q("is:unread").
		MaxResults(r.cfg.MaxResults).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("list unread messages failed: %w", err)
	}

	for _, ref := range resp.Messages {
		if r.processed.Has(ref.Id) {
			continue
		}
		if err := r.limiter.Wait(ctx); err != nil {
			return err
		}
		if err := r.processMessage(ctx, service, ref.Id); err != nil {
			if IsAuthError(err) {
				return err
			}
			log.Printf("gmail[%s]: process message %s failed: %v", r.account, ref.Id, err)
			continue
		}
		if err := r.processed.Add(ref.Id); err != nil {
			log.Printf("gmail[%s]: record processed id failed: %v", r.account, err)
		}
	}
	return nil
}

func (r *Runner) processMessage(ctx context.Context, service *gmailapi.Service, id string) error {
	msg, err := service.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("fetch message failed: %w", err)
	}

	email := parseMessage(r.account, msg)
	if err := r.storeRaw(email); err != nil {
		log.Printf("gmail[%s]: store raw email %s failed: %v", r.account, id, err)
	}

	meta := model.EmailMeta{
		Account:     email.Account,
		MessageID:   email.MessageID,
		From:        email.From,
		To:          email.To,
		Subject:     email.Subject,
		Date:        email.Date,
		DateStr:     email.DateStr,
		ProcessedAt: email.ProcessedAt,
	}
	if err := r.ingest.IngestOne(ctx, "email_"+email.MessageID, email.Content(), meta.Map()); err != nil {
		return fmt.Errorf("index message failed: %w", err)
	}

	_, err = service.Users.Messages.Modify("me", id, &gmailapi.ModifyMessageRequest{
		RemoveLabelIds: []string{"UNREAD"},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("mark message read failed: %w", err)
	}
	return nil
}

func (r *Runner) storeRaw(email model.StoredEmail) error {
	if err := os.MkdirAll(r.cfg.EmailsDir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(email, "", "  ")
	if err != nil {
		return err
	}
	name := strings.ReplaceAll(email.MessageID, string(os.PathSeparator), "_") + ".json"
	return os.WriteFile(filepath.Join(r.cfg.EmailsDir, name), data, 0o644)
}

func (r *Runner) setState(state connector.State, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = state
	if err != nil {
		r.lastError = err.Error()
	} else {
		r.lastError = ""
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
