package chat

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jaidee/backend/internal/model/chat"
	"github.com/jaidee/backend/internal/service/ai"
)

var (
	ErrEmptyMessage    = errors.New("message is required")
	ErrSessionNotFound = errors.New("session not found")
)

// FallbackReply is what the user sees when the model cannot answer.
const FallbackReply = "ขอโทษนะ ตอนนี้ฉันยังตอบไม่ได้ ลองใหม่อีกครั้งนะ"

// Options tunes the conversation behaviour of Service.
type Options struct {
	SystemPrompt string
	HistoryLimit int
	MaxParts     int
	MaxTokens    int
}

// Reply is the outcome of one user turn.
type Reply struct {
	SessionID string
	Text      string
	Parts     []string
	Fallback  bool
}

// sweeper is implemented by stores that evict idle sessions themselves.
type sweeper interface {
	Sweep(now time.Time, ttl time.Duration) []string
}

// Service drives multi-turn conversations over a HistoryStore.
type Service struct {
	gateway ai.Gateway
	store   HistoryStore
	opts    Options

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService wires the chat service. Zero options fall back to sane defaults.
func NewService(gateway ai.Gateway, store HistoryStore, opts Options) *Service {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 20
	}
	if opts.MaxParts <= 0 {
		opts.MaxParts = 3
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 512
	}
	if strings.TrimSpace(opts.SystemPrompt) == "" {
		opts.SystemPrompt = ai.CompanionPrompt.BuildSystemPrompt(opts.MaxParts)
	}

	return &Service{
		gateway: gateway,
		store:   store,
		opts:    opts,
		locks:   make(map[string]*sync.Mutex),
	}
}

// CreateSession provisions an anonymous session with an empty history.
func (s *Service) CreateSession(ctx context.Context) (chat.Session, error) {
	now := time.Now().UTC()
	session := chat.Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.Create(ctx, session); err != nil {
		return chat.Session{}, err
	}
	return session, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(ctx context.Context, sessionID string) (chat.Session, error) {
	return s.store.Get(ctx, sessionID)
}

// History returns the turns kept for the session, oldest first.
func (s *Service) History(ctx context.Context, sessionID string) ([]chat.Turn, error) {
	return s.store.Load(ctx, sessionID)
}

// ResetSession clears the history but keeps the session id usable.
func (s *Service) ResetSession(ctx context.Context, sessionID string) error {
	if _, err := s.store.Get(ctx, sessionID); err != nil {
		return err
	}

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	err := s.store.Reset(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		s.forgetLock(sessionID)
	}
	return err
}

// DeleteSession removes the session and its history.
func (s *Service) DeleteSession(ctx context.Context, sessionID string) error {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	err := s.store.Delete(ctx, sessionID)
	lock.Unlock()

	s.forgetLock(sessionID)
	return err
}

// Reply sends text as the next user turn and returns the companion's answer.
// Turns of one session are serialized; different sessions run concurrently.
// When the model fails the fallback reply is returned and history is untouched.
func (s *Service) Reply(ctx context.Context, sessionID, text string) (Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{}, ErrEmptyMessage
	}

	// 未知会话不分配锁
	if _, err := s.store.Get(ctx, sessionID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return Reply{}, ErrSessionNotFound
		}
		log.Printf("[chat] load session failed for session=%s: %v", sessionID, err)
		return fallback(sessionID), nil
	}

	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	history, err := s.store.Load(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		// 等锁期间会话被删除或过期
		s.forgetLock(sessionID)
		return Reply{}, ErrSessionNotFound
	}
	if err != nil {
		log.Printf("[chat] load history failed for session=%s: %v", sessionID, err)
		return fallback(sessionID), nil
	}

	if len(history) > s.opts.HistoryLimit {
		history = history[len(history)-s.opts.HistoryLimit:]
	}

	raw, err := s.gateway.Complete(ctx, ai.Request{
		System:    s.opts.SystemPrompt,
		History:   history,
		Prompt:    text,
		MaxTokens: s.opts.MaxTokens,
	})
	if err == nil && strings.TrimSpace(raw) == "" {
		err = errors.New("empty reply")
	}
	if err != nil {
		log.Printf("[chat] gateway failed for session=%s: %v", sessionID, err)
		return fallback(sessionID), nil
	}

	parts := SplitReply(raw, s.opts.MaxParts)
	answer := strings.Join(parts, "\n\n")

	if err := s.store.Append(ctx, sessionID, s.opts.HistoryLimit, chat.UserTurn(text), chat.AssistantTurn(answer)); err != nil {
		log.Printf("[chat] persist turns failed for session=%s: %v", sessionID, err)
	}

	return Reply{
		SessionID: sessionID,
		Text:      answer,
		Parts:     parts,
	}, nil
}

// EvictIdle drops sessions idle longer than ttl when the store supports it.
func (s *Service) EvictIdle(now time.Time, ttl time.Duration) int {
	sw, ok := s.store.(sweeper)
	if !ok || ttl <= 0 {
		return 0
	}

	evicted := sw.Sweep(now, ttl)
	for _, id := range evicted {
		s.forgetLock(id)
	}
	if len(evicted) > 0 {
		log.Printf("[chat] evicted %d idle sessions", len(evicted))
	}
	return len(evicted)
}

func (s *Service) sessionLock(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[sessionID] = lock
	}
	return lock
}

func (s *Service) forgetLock(sessionID string) {
	s.mu.Lock()
	delete(s.locks, sessionID)
	s.mu.Unlock()
}

func fallback(sessionID string) Reply {
	return Reply{
		SessionID: sessionID,
		Text:      FallbackReply,
		Parts:     []string{FallbackReply},
		Fallback:  true,
	}
}
