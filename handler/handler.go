package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"github.com/Konan-star/simplechat/internal/domain"
	"github.com/Konan-star/simplechat/internal/usecase"
)

// ChatService is the chat operation consumed by the handler.
type ChatService interface {
	Chat(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
}

// responseHeaders is the fixed header set attached to every envelope,
// success or error.
var responseHeaders = map[string]string{
	"Content-Type":                 "application/json",
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "Content-Type,X-Amz-Date,Authorization,X-Api-Key,X-Amz-Security-Token",
	"Access-Control-Allow-Methods": "OPTIONS,POST",
}

type successResponse struct {
	Success             bool                 `json:"success"`
	Response            string               `json:"response"`
	ConversationHistory []domain.ChatMessage `json:"conversationHistory"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Handler translates API Gateway proxy events into chat service calls and
// back into the fixed-shape response envelope.
type Handler struct {
	svc    ChatService
	logger *slog.Logger
}

func NewHandler(svc ChatService, logger *slog.Logger) (*Handler, error) {
	if svc == nil {
		return nil, errors.New("handler: chat service must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}, nil
}

// Handle processes one invocation. Every outcome is an envelope; the error
// return is always nil so the platform never retries or rewraps.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger := h.logger.With("correlation_id", correlationID(event.Headers))

	logger.Info("received event",
		"path", event.Path,
		"method", event.HTTPMethod,
		"body_bytes", len(event.Body),
	)

	// Claims are pre-validated by the platform authorizer and used for
	// logging only; they never influence the response.
	if user := authenticatedUser(event.RequestContext.Authorizer); user != "" {
		logger.Info("authenticated user", "user", user)
	}

	// The body is passed through unparsed; the service checks configuration
	// before it looks at the body, so a missing endpoint URL wins over any
	// body problem.
	out, err := h.svc.Chat(ctx, usecase.ChatInput{Body: event.Body})
	if err != nil {
		return h.errorEnvelope(logger, err), nil
	}

	body, err := json.Marshal(successResponse{
		Success:             true,
		Response:            out.Answer,
		ConversationHistory: out.History,
	})
	if err != nil {
		return h.errorEnvelope(logger, err), nil
	}

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    responseHeaders,
		Body:       string(body),
	}, nil
}

// errorEnvelope flattens any failure into the single 500 error shape; only
// the message text distinguishes the error kinds.
func (h *Handler) errorEnvelope(logger *slog.Logger, err error) events.APIGatewayProxyResponse {
	var svcErr *usecase.Error
	if errors.As(err, &svcErr) {
		logger.Error("request failed", "code", string(svcErr.Code), "reason", svcErr.Reason, "err", err)
	} else {
		logger.Error("request failed", "err", err)
	}

	body, _ := json.Marshal(errorResponse{Success: false, Error: err.Error()})
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusInternalServerError,
		Headers:    responseHeaders,
		Body:       string(body),
	}
}

// correlationID echoes an inbound X-Correlation-Id header or generates one.
// It is attached to log lines only, never to the envelope.
func correlationID(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, "X-Correlation-Id") && v != "" {
			return v
		}
	}
	return uuid.NewString()
}

// authenticatedUser extracts a loggable identity from authorizer claims,
// preferring email over the username claim.
func authenticatedUser(authorizer map[string]interface{}) string {
	claims, ok := authorizer["claims"].(map[string]interface{})
	if !ok {
		return ""
	}
	if email, ok := claims["email"].(string); ok && email != "" {
		return email
	}
	if username, ok := claims["cognito:username"].(string); ok && username != "" {
		return username
	}
	return ""
}
