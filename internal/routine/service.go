// Package routine drives the two-phase chat: personalized routine
// generation from the selected products, then free-form follow-up over the
// accumulated conversation.
package routine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rianxlewis/routine-builder/internal/format"
	"github.com/rianxlewis/routine-builder/internal/gateway"
	"github.com/rianxlewis/routine-builder/internal/models"
	"github.com/rianxlewis/routine-builder/internal/session"
)

// ErrEmptySelection rejects routine generation with nothing selected.
var ErrEmptySelection = errors.New("routine: selection is empty")

// Service sends conversations through the gateway pipeline and maintains
// each session's history around the calls.
type Service struct {
	gateway  *gateway.Service
	sessions *session.Manager
	log      zerolog.Logger
}

func NewService(gw *gateway.Service, sessions *session.Manager, log zerolog.Logger) *Service {
	return &Service{gateway: gw, sessions: sessions, log: log}
}

// GenerateRoutine builds the seed conversation from the selection captured
// at call time, asks the assistant for a routine with web search enabled,
// and baselines the session history with the full exchange.
func (s *Service) GenerateRoutine(ctx context.Context, sess *session.Session) (*models.AssistantReply, error) {
	selected := s.sessions.Selection(sess)
	if len(selected) == 0 {
		return nil, ErrEmptySelection
	}

	seed := session.BuildRoutineMessages(selected)
	reply, citations, err := s.complete(ctx, seed)
	if err != nil {
		return nil, fmt.Errorf("routine generation failed: %w", err)
	}

	s.sessions.BaselineHistory(sess, seed, reply)

	return &models.AssistantReply{
		Message:     reply,
		MessageHTML: format.Render(reply),
		Citations:   citations,
	}, nil
}

// Chat handles one follow-up turn: the user message joins the history
// first, then the fixed follow-up system message plus the entire history is
// sent with web search enabled. The user message stays in the history even
// when the call fails, so a retry carries the full conversation.
func (s *Service) Chat(ctx context.Context, sess *session.Session, message string) (*models.AssistantReply, error) {
	s.sessions.AppendUser(sess, message)

	msgs := session.BuildFollowUpMessages(s.sessions.History(sess))
	reply, citations, err := s.complete(ctx, msgs)
	if err != nil {
		return nil, fmt.Errorf("chat turn failed: %w", err)
	}

	s.sessions.AppendAssistant(sess, reply)

	return &models.AssistantReply{
		Message:     reply,
		MessageHTML: format.Render(reply),
		Citations:   citations,
	}, nil
}

// complete runs the conversation through the gateway with web search on
// and extracts the assistant text from the canonical response shape.
func (s *Service) complete(ctx context.Context, messages []models.ChatMessage) (string, []string, error) {
	out, err := s.gateway.Complete(ctx, models.RoutineRequest{
		Messages:     messages,
		UseWebSearch: true,
	})
	if err != nil {
		return "", nil, err
	}
	if out.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("upstream returned status %d", out.StatusCode)
	}

	var resp models.NormalizedResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return "", nil, fmt.Errorf("failed to parse upstream response: %w", err)
	}

	reply := strings.TrimSpace(resp.Reply())
	if reply == "" {
		return "", nil, errors.New("invalid response format from upstream")
	}

	s.log.Debug().
		Str("provider", out.Provider).
		Bool("fallback", out.Fallback).
		Int("citations", len(resp.Citations)).
		Msg("chat completion")

	return reply, resp.Citations, nil
}
