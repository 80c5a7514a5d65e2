package interpreter

import (
	"sync"

	"bi-service/internal/model"
)

const MaxHistoryTurns = 10

// History is a bounded conversation window. Appending past capacity evicts
// the oldest message.
type History struct {
	mu       sync.Mutex
	capacity int
	messages []model.ChatMessage
}

func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = MaxHistoryTurns
	}
	return &History{capacity: capacity}
}

func (h *History) Append(msg model.ChatMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.messages = append(h.messages, msg)
	if over := len(h.messages) - h.capacity; over > 0 {
		h.messages = append([]model.ChatMessage(nil), h.messages[over:]...)
	}
}

func (h *History) Messages() []model.ChatMessage {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]model.ChatMessage, len(h.messages))
	copy(out, h.messages)
	return out
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}

func (h *History) Reset() {
	h.mu.Lock()
	h.messages = nil
	h.mu.Unlock()
}
