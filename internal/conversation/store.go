// Package conversation holds the ordered message log rendered by the views.
package conversation

import (
	"sync"

	"github.com/diogo/optchat/internal/models"
)

// Store is an ordered log of messages. The only mutations are Append and
// ReplaceLast; nothing is ever removed except through ReplaceLast.
type Store struct {
	mu       sync.RWMutex
	messages []models.Message
}

// New creates a store seeded with the given messages
func New(seed ...models.Message) *Store {
	s := &Store{}
	for _, msg := range seed {
		s.messages = append(s.messages, msg.Clone())
	}
	return s
}

// Append adds a message to the end of the log
func (s *Store) Append(msg models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg.Clone())
}

// ReplaceLast drops the most recent message and appends msg in its place.
// On an empty store it behaves like Append.
func (s *Store) ReplaceLast(msg models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.messages); n > 0 {
		s.messages = s.messages[:n-1]
	}
	s.messages = append(s.messages, msg.Clone())
}

// Messages returns a snapshot of the log, oldest first
func (s *Store) Messages() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Message, len(s.messages))
	for i, msg := range s.messages {
		out[i] = msg.Clone()
	}
	return out
}

// Len returns the number of messages
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Last returns the most recent message
func (s *Store) Last() (models.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.messages) == 0 {
		return models.Message{}, false
	}
	return s.messages[len(s.messages)-1].Clone(), true
}

// PlaceholderCount returns how many placeholder entries are in the log
func (s *Store) PlaceholderCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, msg := range s.messages {
		if msg.Placeholder {
			count++
		}
	}
	return count
}

// LatestOptions returns the option set of the most recent assistant message
// that carries one
func (s *Store) LatestOptions() ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.messages) - 1; i >= 0; i-- {
		msg := s.messages[i]
		if msg.Role == models.RoleAssistant && msg.HasOptions() {
			return append([]string(nil), msg.Options...), true
		}
	}
	return nil, false
}
