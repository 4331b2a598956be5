package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Ghost-141/chatbot-server/internal/domain"
	"github.com/Ghost-141/chatbot-server/internal/service"
	"github.com/Ghost-141/chatbot-server/internal/transport"
	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"
)

const (
	maxMessageSize = 64 * 1024
	// frames received while a question is being answered
	pendingFrames = 16
)

// Handler runs chat sessions over websocket connections.
// Every connection is one conversation: the answered turns are kept and
// passed back to the chat service with each new question.
type Handler struct {
	Upgrader     websocket.Upgrader
	Log          hclog.Logger
	ChatService  service.ChatService
	Validator    *domain.Validation
	HistoryTurns int
}

// ErrorFrame is sent instead of a ChatResponse when a question fails
type ErrorFrame struct {
	Code    int32  `json:"code"`
	Message string `json:"message"`
}

// NewHandler creates a Handler that accepts handshakes from allowedOrigins.
// "*" allows any origin. Requests without an Origin header are not from a
// browser and are always accepted.
func NewHandler(
	log hclog.Logger,
	chatService service.ChatService,
	validator *domain.Validation,
	historyTurns int,
	allowedOrigins []string) *Handler {
	return &Handler{
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		Log:          log,
		ChatService:  chatService,
		Validator:    validator,
		HistoryTurns: historyTurns,
	}
}

func originChecker(allowedOrigins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, allowed := range allowedOrigins {
			if allowed == "*" || strings.EqualFold(allowed, origin) {
				return true
			}
		}
		return false
	}
}

// HandleChat upgrades the request and answers ChatQuery frames until the
// client goes away. Failed questions are reported with an ErrorFrame and
// the session continues. A question still being answered when the client
// disconnects is cancelled.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Log.Error("Unable to upgrade to WebSocket", "origin", r.Header.Get("Origin"), "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	frames := make(chan []byte, pendingFrames)
	go h.readPump(ctx, cancel, conn, frames)

	var history []domain.Turn

	for {
		var payload []byte
		select {
		case <-ctx.Done():
			h.Log.Debug("WebSocket session ended")
			return
		case p, ok := <-frames:
			if !ok {
				return
			}
			payload = p
		}

		var query domain.ChatQuery
		if err := json.Unmarshal(payload, &query); err != nil {
			if !h.write(conn, ErrorFrame{Code: http.StatusBadRequest, Message: "Invalid chat query"}) {
				return
			}
			continue
		}

		if errs := h.Validator.Validate(&query); len(errs) > 0 {
			frame := ErrorFrame{Code: http.StatusUnprocessableEntity, Message: strings.Join(errs.Messages(), "; ")}
			if !h.write(conn, frame) {
				return
			}
			continue
		}

		resp, err := h.ChatService.StartChat(ctx, query.Message, history)
		if ctx.Err() != nil {
			h.Log.Info("Client went away before the answer was ready")
			return
		}
		if err != nil {
			apiErr := transport.APIError(err, "Error answering question")
			if !h.write(conn, ErrorFrame{Code: apiErr.Code(), Message: apiErr.Error()}) {
				return
			}
			continue
		}

		history = appendTurn(history, domain.Turn{Question: query.Message, Answer: resp.ModelResponse}, h.HistoryTurns)

		if !h.write(conn, resp) {
			return
		}
	}
}

// readPump forwards incoming frames and cancels the session once the
// connection can no longer be read
func (h *Handler) readPump(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, frames chan<- []byte) {
	defer close(frames)
	defer cancel()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.Log.Error("Error reading message", "error", err)
			}
			return
		}

		select {
		case frames <- payload:
		case <-ctx.Done():
			return
		}
	}
}

func (h *Handler) write(conn *websocket.Conn, v any) bool {
	if err := conn.WriteJSON(v); err != nil {
		h.Log.Error("Error writing message to WebSocket", "error", err)
		return false
	}
	return true
}

// appendTurn adds turn and keeps at most limit of the latest turns
func appendTurn(history []domain.Turn, turn domain.Turn, limit int) []domain.Turn {
	if limit <= 0 {
		return nil
	}

	history = append(history, turn)
	if len(history) > limit {
		history = append([]domain.Turn(nil), history[len(history)-limit:]...)
	}
	return history
}
