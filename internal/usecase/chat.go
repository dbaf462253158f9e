package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Konan-star/simplechat/internal/config"
	"github.com/Konan-star/simplechat/internal/domain"
	"github.com/Konan-star/simplechat/internal/integrations/inference"
)

// InferenceClient is the downstream generation client consumed by ChatService.
type InferenceClient interface {
	Generate(ctx context.Context, prompt string, history []domain.ChatMessage) (*inference.GenerateResult, error)
}

// chatRequest is the decoded invocation body.
type chatRequest struct {
	Message             string               `json:"message"`
	ConversationHistory []domain.ChatMessage `json:"conversationHistory"`
}

// ChatService forwards a chat message to the generation endpoint and builds
// the caller-facing answer and updated history.
type ChatService struct {
	cfg    *config.Config
	client InferenceClient
	logger *slog.Logger
}

type ChatInput struct {
	Body string
}

type ChatOutput struct {
	Answer  string
	History []domain.ChatMessage
}

func NewChatService(cfg *config.Config, client InferenceClient, logger *slog.Logger) (*ChatService, error) {
	if cfg == nil {
		return nil, errors.New("usecase: config must not be nil")
	}
	if client == nil {
		return nil, errors.New("usecase: inference client must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatService{cfg: cfg, client: client, logger: logger}, nil
}

// Chat performs the single translate operation: check configuration, parse
// the body, call the endpoint, and map its response onto the answer plus
// rebuilt history. The configuration check comes first so an unset endpoint
// URL dominates whatever the body contains.
func (s *ChatService) Chat(ctx context.Context, in ChatInput) (ChatOutput, error) {
	if strings.TrimSpace(s.cfg.EndpointURL) == "" {
		return ChatOutput{}, newError(ErrorConfiguration, "endpoint_url_missing",
			fmt.Errorf("environment variable %q is not set", config.EnvEndpointURL))
	}

	var req chatRequest
	if err := json.Unmarshal([]byte(in.Body), &req); err != nil {
		return ChatOutput{}, newError(ErrorValidation, "malformed_body", err)
	}
	if req.Message == "" {
		return ChatOutput{}, newError(ErrorValidation, "missing_message",
			errors.New("request body has no message field"))
	}

	history := req.ConversationHistory
	if history == nil {
		history = []domain.ChatMessage{}
	}

	s.logger.Info("calling inference endpoint",
		"url", s.cfg.EndpointURL,
		"history_len", len(history),
	)

	result, err := s.client.Generate(ctx, req.Message, history)
	if err != nil {
		return ChatOutput{}, classifyGenerateError(err)
	}

	if result.GeneratedText == "" {
		return ChatOutput{}, newError(ErrorDownstreamContent, "empty_generated_text",
			errors.New("no generated_text content received from inference endpoint"))
	}

	// The endpoint may hand back its own history; it is logged for
	// observability but the returned history is always rebuilt from the
	// caller's history plus the new turn pair.
	if len(result.ConversationHistory) > 0 {
		s.logger.Debug("inference endpoint returned conversation history",
			"history_len", len(result.ConversationHistory))
	}

	messages := make([]domain.ChatMessage, 0, len(history)+2)
	messages = append(messages, history...)
	messages = append(messages,
		domain.ChatMessage{Role: "user", Content: req.Message},
		domain.ChatMessage{Role: "assistant", Content: result.GeneratedText},
	)

	return ChatOutput{
		Answer:  result.GeneratedText,
		History: messages,
	}, nil
}

// classifyGenerateError maps the inference client's closed error variants
// onto the service error codes.
func classifyGenerateError(err error) *Error {
	var statusErr *inference.HTTPStatusError
	var connErr *inference.ConnectionError
	switch {
	case errors.As(err, &statusErr):
		return newError(ErrorDownstreamStatus, "endpoint_status", statusErr)
	case errors.As(err, &connErr):
		return newError(ErrorDownstreamUnreachable, "endpoint_unreachable", connErr)
	default:
		return newError(ErrorDownstreamContent, "endpoint_response_unusable", err)
	}
}
