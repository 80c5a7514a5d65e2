package interpreter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"bi-service/internal/model"
)

var (
	ErrNoJSON          = errors.New("completion contains no JSON object")
	ErrInvalidIntent   = errors.New("completion intent is not recognized")
	errEmptyQuery      = errors.New("empty query")
	emptyQueryFallback = model.QueryIntent{Intention: model.IntentionUnknown, Message: unknownQueryMessage}
)

type Source string

const (
	SourceRelay Source = "relay"
	SourceRules Source = "rules"
)

// Interpreter turns free text into a QueryIntent. The remote completer is
// tried first when present; the keyword rules are the fallback.
type Interpreter struct {
	completer Completer
	rules     []Rule
	log       zerolog.Logger
}

func New(completer Completer, log zerolog.Logger) *Interpreter {
	return &Interpreter{completer: completer, rules: Rules, log: log}
}

// Interpret never fails: any relay problem falls through to the rules, and
// a query no rule matches yields an UNKNOWN intent.
func (i *Interpreter) Interpret(ctx context.Context, text string, history []model.ChatMessage) model.QueryIntent {
	intent, _ := i.InterpretWithSource(ctx, text, history)
	return intent
}

func (i *Interpreter) InterpretWithSource(ctx context.Context, text string, history []model.ChatMessage) (model.QueryIntent, Source) {
	text = strings.TrimSpace(text)
	if text == "" {
		i.log.Debug().Err(errEmptyQuery).Msg("query rejected")
		return emptyQueryFallback, SourceRules
	}

	if i.completer != nil {
		intent, err := i.fromRelay(ctx, text, history)
		if err == nil {
			i.log.Debug().Str("intention", string(intent.Intention)).Msg("query interpreted by relay")
			return intent, SourceRelay
		}
		i.log.Warn().Err(err).Msg("relay interpretation failed, using rules")
	}

	rule, intent := MatchRules(i.rules, text)
	i.log.Debug().
		Str("rule", rule).
		Str("intention", string(intent.Intention)).
		Msg("query interpreted by rules")
	return intent, SourceRules
}

func (i *Interpreter) fromRelay(ctx context.Context, text string, history []model.ChatMessage) (model.QueryIntent, error) {
	content, err := i.completer.Complete(ctx, buildMessages(text, history))
	if err != nil {
		return model.QueryIntent{}, err
	}
	return parseIntent(content)
}

func parseIntent(content string) (model.QueryIntent, error) {
	raw := extractJSON(content)
	if raw == "" {
		return model.QueryIntent{}, ErrNoJSON
	}

	var intent model.QueryIntent
	if err := json.Unmarshal([]byte(raw), &intent); err != nil {
		return model.QueryIntent{}, fmt.Errorf("decode intent: %w", err)
	}

	normalized, ok := intent.Normalize()
	if !ok {
		return model.QueryIntent{}, fmt.Errorf("%w: %q", ErrInvalidIntent, intent.Intention)
	}
	if normalized.Intention == model.IntentionUnknown && normalized.Message == "" {
		normalized.Message = unknownQueryMessage
	}
	return normalized, nil
}
