package session

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rianxlewis/routine-builder/internal/models"
	"github.com/rianxlewis/routine-builder/internal/store"
)

// Session is the server-side counterpart of one browser: a selection set
// rendered in insertion order, a process-lifetime conversation history, and
// a text-direction preference. Selection and preference are mirrored to the
// store on every change; history resets with the process.
type Session struct {
	ID string

	mu       sync.Mutex
	selected []models.Product
	history  []models.ChatMessage
	rtl      bool
}

// Manager owns the live sessions and their persistence keys.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	store        store.Store
	historyLimit int
	log          zerolog.Logger
}

func NewManager(st store.Store, historyLimit int, log zerolog.Logger) *Manager {
	return &Manager{
		sessions:     make(map[string]*Session),
		store:        st,
		historyLimit: historyLimit,
		log:          log,
	}
}

func selectionKey(id string) string { return "routine:selection:" + id }
func rtlKey(id string) string       { return "routine:rtl:" + id }

// Create returns the live session named by requestedID, or builds one.
// A fresh session rehydrates its selection snapshot and preference from
// the store; corrupt or missing snapshots mean "no prior selection", never
// an error.
func (m *Manager) Create(ctx context.Context, requestedID string) *Session {
	id := requestedID
	if id == "" {
		id = uuid.NewString()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s
	}

	s := &Session{ID: id}
	s.selected = m.loadSelection(ctx, id)
	s.rtl = m.loadRTL(ctx, id)
	m.sessions[id] = s
	return s
}

// Get looks up a live session.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *Manager) loadSelection(ctx context.Context, id string) []models.Product {
	raw, err := m.store.Get(ctx, selectionKey(id))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			m.log.Warn().Err(err).Str("session_id", id).Msg("failed to load selection snapshot")
		}
		return nil
	}

	var selected []models.Product
	if err := json.Unmarshal([]byte(raw), &selected); err != nil {
		m.log.Warn().Err(err).Str("session_id", id).Msg("discarding corrupt selection snapshot")
		return nil
	}
	return selected
}

func (m *Manager) loadRTL(ctx context.Context, id string) bool {
	raw, err := m.store.Get(ctx, rtlKey(id))
	if err != nil {
		return false
	}
	return raw == "true"
}

// Toggle flips product membership in the session's selection and persists
// the new snapshot. Returns the updated selection.
func (m *Manager) Toggle(ctx context.Context, s *Session, product models.Product) []models.Product {
	s.mu.Lock()
	s.selected = ToggleSelection(s.selected, product)
	snapshot := copyProducts(s.selected)
	s.mu.Unlock()

	m.persistSelection(ctx, s.ID, snapshot)
	return snapshot
}

// ClearSelection empties the selection and persists the empty snapshot.
func (m *Manager) ClearSelection(ctx context.Context, s *Session) {
	s.mu.Lock()
	s.selected = nil
	s.mu.Unlock()

	m.persistSelection(ctx, s.ID, []models.Product{})
}

func (m *Manager) persistSelection(ctx context.Context, id string, selected []models.Product) {
	data, err := json.Marshal(selected)
	if err == nil {
		err = m.store.Set(ctx, selectionKey(id), string(data))
	}
	if err != nil {
		m.log.Error().Err(err).Str("session_id", id).Msg("failed to persist selection snapshot")
	}
}

// Selection returns a copy of the selection in insertion order.
func (m *Manager) Selection(s *Session) []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyProducts(s.selected)
}

// SetRTL updates the text-direction preference and persists it as the
// string "true"/"false".
func (m *Manager) SetRTL(ctx context.Context, s *Session, rtl bool) {
	s.mu.Lock()
	s.rtl = rtl
	s.mu.Unlock()

	if err := m.store.Set(ctx, rtlKey(s.ID), strconv.FormatBool(rtl)); err != nil {
		m.log.Error().Err(err).Str("session_id", s.ID).Msg("failed to persist rtl preference")
	}
}

// RTL reads the text-direction preference.
func (m *Manager) RTL(s *Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rtl
}

// BaselineHistory replaces the conversation history with the routine seed
// and the assistant's reply; follow-ups build on this baseline.
func (m *Manager) BaselineHistory(s *Session, seed []models.ChatMessage, reply string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := make([]models.ChatMessage, 0, len(seed)+1)
	history = append(history, seed...)
	history = append(history, models.ChatMessage{Role: models.RoleAssistant, Content: reply})
	s.history = TrimHistory(history, m.historyLimit)
}

// AppendUser adds the user's typed message to the history.
func (m *Manager) AppendUser(s *Session, content string) {
	m.appendMessage(s, models.ChatMessage{Role: models.RoleUser, Content: content})
}

// AppendAssistant adds the assistant's reply to the history.
func (m *Manager) AppendAssistant(s *Session, content string) {
	m.appendMessage(s, models.ChatMessage{Role: models.RoleAssistant, Content: content})
}

func (m *Manager) appendMessage(s *Session, msg models.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = TrimHistory(append(s.history, msg), m.historyLimit)
}

// History returns a copy of the conversation history.
func (m *Manager) History(s *Session) []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChatMessage, len(s.history))
	copy(out, s.history)
	return out
}

func copyProducts(products []models.Product) []models.Product {
	out := make([]models.Product, len(products))
	copy(out, products)
	return out
}
