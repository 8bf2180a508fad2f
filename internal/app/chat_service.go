package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"ai-workspace/internal/model"
	"ai-workspace/internal/repository"
)

var (
	ErrMessageEmpty   = errors.New("message content is empty")
	ErrInvalidRole    = errors.New("message role must be user or assistant")
	ErrMessageEnqueue = errors.New("message enqueue failed")
)

type AsyncMessagePublisher interface {
	Publish(ctx context.Context, msg model.ChatMessage) error
}

type HistoryCache interface {
	GetHistory(ctx context.Context, sessionID string) ([]model.ChatMessage, bool, error)
	SetHistory(ctx context.Context, sessionID string, messages []model.ChatMessage) error
	DeleteHistory(ctx context.Context, sessionID string) error
	MarkDirty(ctx context.Context, sessionID string) error
	IsDirty(ctx context.Context, sessionID string) (bool, error)
}

// ChatService records conversation messages. Writes go through the async
// queue so the request path never blocks on MySQL; reads go through the
// cache unless a write is still in flight.
type ChatService struct {
	messageRepo  *repository.MessageRepository
	publisher    AsyncMessagePublisher
	historyCache HistoryCache
}

type SaveMessageInput struct {
	SessionID string
	Role      string
	Content   string
}

func NewChatService(
	messageRepo *repository.MessageRepository,
	publisher AsyncMessagePublisher,
	historyCache HistoryCache,
) *ChatService {
	return &ChatService{
		messageRepo:  messageRepo,
		publisher:    publisher,
		historyCache: historyCache,
	}
}

// SaveMessage validates and enqueues one message for persistence. A blank
// session id starts a new session.
func (s *ChatService) SaveMessage(ctx context.Context, input SaveMessageInput) (*model.ChatMessage, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrMessageEmpty
	}
	role := strings.TrimSpace(input.Role)
	if role != "user" && role != "assistant" {
		return nil, ErrInvalidRole
	}

	sessionID := strings.TrimSpace(input.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	message := model.ChatMessage{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}

	if s.publisher == nil {
		return nil, ErrMessageEnqueue
	}
	if s.historyCache != nil {
		_ = s.historyCache.MarkDirty(ctx, sessionID)
		_ = s.historyCache.DeleteHistory(ctx, sessionID)
	}
	if err := s.publisher.Publish(ctx, message); err != nil {
		return nil, ErrMessageEnqueue
	}
	return &message, nil
}

func (s *ChatService) GetHistory(ctx context.Context, sessionID string, limit int) ([]model.ChatMessage, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrInvalidInput
	}

	if s.historyCache != nil {
		dirty, err := s.historyCache.IsDirty(ctx, sessionID)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.historyCache.GetHistory(ctx, sessionID); cacheErr == nil && hit {
				return trimMessages(cached, limit), nil
			}
		}
	}

	messages, err := s.messageRepo.ListBySessionID(sessionID, limit)
	if err != nil {
		return nil, err
	}
	if s.historyCache != nil {
		if dirty, dirtyErr := s.historyCache.IsDirty(ctx, sessionID); dirtyErr == nil && !dirty {
			_ = s.historyCache.SetHistory(ctx, sessionID, messages)
		}
	}
	return messages, nil
}

// ListAll returns recent messages across every session, oldest first.
func (s *ChatService) ListAll(limit int) ([]model.ChatMessage, error) {
	return s.messageRepo.ListRecent(limit)
}

func trimMessages(messages []model.ChatMessage, limit int) []model.ChatMessage {
	if limit <= 0 || len(messages) <= limit {
		return messages
	}
	return messages[len(messages)-limit:]
}
