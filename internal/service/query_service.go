package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"bi-service/internal/insight"
	"bi-service/internal/interpreter"
	"bi-service/internal/model"
	"bi-service/internal/notify"
)

var (
	ErrEmptyQuery        = errors.New("query is empty")
	ErrUnrecognizedQuery = errors.New("query not recognized")
	ErrQueryFailed       = errors.New("query could not be processed")
	ErrSuperseded        = errors.New("query superseded by a newer one")
)

const (
	ProcessingFailedMessage = "Não foi possível processar sua consulta. Por favor, tente novamente."
	defaultSessionIdleTTL   = time.Hour
)

// UserError carries the message shown to the user alongside the cause.
type UserError struct {
	Err     error
	Message string
}

func (e *UserError) Error() string { return e.Err.Error() }
func (e *UserError) Unwrap() error { return e.Err }

type IntentInterpreter interface {
	Interpret(ctx context.Context, text string, history []model.ChatMessage) model.QueryIntent
}

type IntentDispatcher interface {
	Dispatch(ctx context.Context, intent model.QueryIntent) (*model.AggregateResult, error)
}

type session struct {
	history    *interpreter.History
	generation uint64
	lastSeen   time.Time
}

// QueryService runs the interpret, dispatch, insight pipeline for one
// principal at a time. Each session keeps its own conversation window and a
// generation counter; a response from a query that a newer one has
// overtaken is dropped.
type QueryService struct {
	interpreter IntentInterpreter
	dispatcher  IntentDispatcher
	notifier    *notify.Notifier
	log         zerolog.Logger
	idleTTL     time.Duration
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

func NewQueryService(in IntentInterpreter, dispatcher IntentDispatcher, notifier *notify.Notifier, idleTTL time.Duration, log zerolog.Logger) *QueryService {
	if idleTTL <= 0 {
		idleTTL = defaultSessionIdleTTL
	}
	return &QueryService{
		interpreter: in,
		dispatcher:  dispatcher,
		notifier:    notifier,
		log:         log,
		idleTTL:     idleTTL,
		now:         time.Now,
		sessions:    make(map[string]*session),
	}
}

func (s *QueryService) Ask(ctx context.Context, principal model.Principal, text string) (*model.QueryResponse, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyQuery
	}

	key := principal.SessionKey()
	sess, token := s.begin(key)
	log := s.log.With().Str("session", key).Uint64("generation", token).Logger()

	intent := s.interpreter.Interpret(ctx, text, sess.history.Messages())
	sess.history.Append(model.ChatMessage{Role: model.RoleUser, Content: text})

	if intent.Intention == model.IntentionUnknown {
		if !s.isLatest(sess, token) {
			return nil, ErrSuperseded
		}
		s.notifier.Publish(key, notify.LevelWarning, intent.Message)
		log.Info().Str("query", text).Msg("query not recognized")
		return nil, &UserError{Err: ErrUnrecognizedQuery, Message: intent.Message}
	}

	result, err := s.dispatcher.Dispatch(ctx, intent)
	if !s.isLatest(sess, token) {
		log.Debug().Msg("discarding superseded query result")
		return nil, ErrSuperseded
	}
	if err != nil {
		s.notifier.Publish(key, notify.LevelError, ProcessingFailedMessage)
		log.Warn().Err(err).Str("intention", string(intent.Intention)).Msg("query dispatch failed")
		return nil, &UserError{Err: fmt.Errorf("%w: %w", ErrQueryFailed, err), Message: ProcessingFailedMessage}
	}

	insights := insight.Generate(result)

	visualization := string(intent.Visualization)
	if visualization == "" {
		visualization = "personalizada"
	}
	sess.history.Append(model.ChatMessage{
		Role:    model.RoleAssistant,
		Content: "Visualização criada: " + visualization,
	})

	return &model.QueryResponse{
		ID:       uuid.New(),
		Query:    text,
		Intent:   intent,
		Result:   result,
		Insights: insights,
	}, nil
}

func (s *QueryService) History(principal model.Principal) []model.ChatMessage {
	s.mu.Lock()
	sess, ok := s.sessions[principal.SessionKey()]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return sess.history.Messages()
}

func (s *QueryService) ResetHistory(principal model.Principal) {
	s.mu.Lock()
	sess, ok := s.sessions[principal.SessionKey()]
	s.mu.Unlock()
	if ok {
		sess.history.Reset()
	}
}

func (s *QueryService) Notice(principal model.Principal) *notify.Notice {
	return s.notifier.Current(principal.SessionKey())
}

func (s *QueryService) DismissNotice(principal model.Principal) {
	s.notifier.Dismiss(principal.SessionKey())
}

func (s *QueryService) begin(key string) (*session, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess, ok := s.sessions[key]
	if !ok {
		s.pruneLocked(now)
		sess = &session{history: interpreter.NewHistory(interpreter.MaxHistoryTurns)}
		s.sessions[key] = sess
	}
	sess.generation++
	sess.lastSeen = now
	return sess, sess.generation
}

func (s *QueryService) isLatest(sess *session, token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sess.generation == token
}

func (s *QueryService) pruneLocked(now time.Time) {
	for key, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.idleTTL {
			delete(s.sessions, key)
		}
	}
}
