// File: internal/services/chat/router.go
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/iyunix/go-meddy/internal/domain"
	"github.com/iyunix/go-meddy/internal/services/ai"
)

// RewriteQuery turns the latest message into a standalone Vietnamese question
// using the conversation so far.
func (s *Service) RewriteQuery(ctx context.Context, history []domain.ChatMessage, message string) (string, error) {
	messages := []domain.ChatMessage{
		domain.SystemMessage(rewriteSystemPrompt),
		domain.UserMessage(fmt.Sprintf(RewritePrompt, ConversationText(history), message)),
	}

	var rewritten string
	err := s.observe("openai", func() error {
		var err error
		rewritten, err = s.ai.ChatComplete(ctx, messages, ai.CompletionOptions{})
		return err
	})
	if err != nil {
		return "", NewRAGError("rewrite_query", "failed to rewrite question", err)
	}

	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		return message, nil
	}
	s.logger.Debug("question rewritten", "original", message, "rewritten", rewritten)
	return rewritten, nil
}

// DetectRoute classifies the message as medical or general.
func (s *Service) DetectRoute(ctx context.Context, history []domain.ChatMessage, message string) (Route, error) {
	messages := []domain.ChatMessage{
		domain.SystemMessage(routeSystemPrompt),
		domain.UserMessage(fmt.Sprintf(IntentDetectionPrompt, ConversationText(history), message)),
	}

	var label string
	err := s.observe("openai", func() error {
		var err error
		label, err = s.ai.ChatComplete(ctx, messages, ai.CompletionOptions{})
		return err
	})
	if err != nil {
		return "", NewRouteError("failed to classify intent", err)
	}

	route, ok := ParseRoute(label)
	if !ok {
		s.logger.Warn("unrecognised route label, defaulting to medical", "label", label)
	}
	return route, nil
}

// ParseRoute normalises a classifier label. Unknown labels map to
// RouteMedical and report false.
func ParseRoute(label string) (Route, bool) {
	l := strings.ToLower(strings.TrimSpace(label))
	l = strings.Trim(l, "\"'`.: ")
	switch Route(l) {
	case RouteMedical:
		return RouteMedical, true
	case RouteGeneral:
		return RouteGeneral, true
	}
	return RouteMedical, false
}

// Answer routes the question and runs the matching answering path.
func (s *Service) Answer(ctx context.Context, history []domain.ChatMessage, question string) (string, error) {
	route, err := s.DetectRoute(ctx, history, question)
	if err != nil {
		return "", err
	}
	s.metrics.ObserveRoute(string(route))
	s.logger.Info("bot route", "route", route)

	if route == RouteGeneral {
		return s.GeneralAnswer(ctx, question)
	}
	return s.RAGAnswer(ctx, history, question)
}

// GeneralAnswer handles non-medical questions with the tool-calling agent.
func (s *Service) GeneralAnswer(ctx context.Context, question string) (string, error) {
	var answer string
	err := s.observe("agent", func() error {
		var err error
		answer, err = s.agent.Run(ctx, question)
		return err
	})
	return answer, err
}
