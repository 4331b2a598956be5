package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Ghost-141/chatbot-server/internal/domain"
	"github.com/Ghost-141/chatbot-server/internal/service"
	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingChatService answers "answer to <message>" and fails on "fail"
type recordingChatService struct {
	mu        sync.Mutex
	histories [][]domain.Turn
}

func (s *recordingChatService) StartChat(ctx context.Context, message string, history []domain.Turn) (*domain.ChatResponse, error) {
	s.mu.Lock()
	s.histories = append(s.histories, append([]domain.Turn(nil), history...))
	s.mu.Unlock()

	if message == "fail" {
		return nil, domain.ErrUpstream
	}
	return &domain.ChatResponse{ModelResponse: "answer to " + message}, nil
}

func (s *recordingChatService) recorded() [][]domain.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.histories
}

func dial(t *testing.T, cs service.ChatService, historyTurns int) *websocket.Conn {
	t.Helper()

	conn, resp, err := dialWithOrigin(t, cs, historyTurns, []string{"*"}, "")
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func dialWithOrigin(t *testing.T, cs service.ChatService, historyTurns int, allowed []string, origin string) (*websocket.Conn, *http.Response, error) {
	t.Helper()

	h := NewHandler(hclog.NewNullLogger(), cs, domain.NewValidation(), historyTurns, allowed)
	server := httptest.NewServer(http.HandlerFunc(h.HandleChat))
	t.Cleanup(server.Close)

	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	return websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), header)
}

func ask(t *testing.T, conn *websocket.Conn, query domain.ChatQuery) map[string]any {
	t.Helper()
	require.NoError(t, conn.WriteJSON(query))

	var frame map[string]any
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestChatSessionKeepsHistory(t *testing.T) {
	cs := &recordingChatService{}
	conn := dial(t, cs, 10)

	first := ask(t, conn, domain.ChatQuery{Message: "Do you sell kiwis?"})
	assert.Equal(t, "answer to Do you sell kiwis?", first["model_response"])

	second := ask(t, conn, domain.ChatQuery{Message: "How much are they?"})
	assert.Equal(t, "answer to How much are they?", second["model_response"])

	histories := cs.recorded()
	require.Len(t, histories, 2)
	assert.Empty(t, histories[0])
	assert.Equal(t, []domain.Turn{{Question: "Do you sell kiwis?", Answer: "answer to Do you sell kiwis?"}}, histories[1])
}

func TestChatSessionReportsErrorsAndContinues(t *testing.T) {
	cs := &recordingChatService{}
	conn := dial(t, cs, 10)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"message":`)))
	var invalid map[string]any
	require.NoError(t, conn.ReadJSON(&invalid))
	assert.Equal(t, float64(http.StatusBadRequest), invalid["code"])

	blank := ask(t, conn, domain.ChatQuery{Message: "  "})
	assert.Equal(t, float64(http.StatusUnprocessableEntity), blank["code"])

	failed := ask(t, conn, domain.ChatQuery{Message: "fail"})
	assert.Equal(t, float64(http.StatusBadGateway), failed["code"])
	assert.Equal(t, domain.ErrUpstream.Error(), failed["message"])

	ok := ask(t, conn, domain.ChatQuery{Message: "kiwi"})
	assert.Equal(t, "answer to kiwi", ok["model_response"])

	// only the successful question and the failed one reached the service,
	// and the failed one was not added to the history
	histories := cs.recorded()
	require.Len(t, histories, 2)
	assert.Empty(t, histories[1])
}

func TestAppendTurn(t *testing.T) {
	var history []domain.Turn
	for _, q := range []string{"a", "b", "c"} {
		history = appendTurn(history, domain.Turn{Question: q}, 2)
	}

	assert.Equal(t, []domain.Turn{{Question: "b"}, {Question: "c"}}, history)
	assert.Nil(t, appendTurn(history, domain.Turn{Question: "d"}, 0))
}

func TestHandshakeOrigins(t *testing.T) {
	allowed := []string{"https://shop.example", "http://localhost:3000"}

	testCases := []struct {
		name     string
		allowed  []string
		origin   string
		accepted bool
	}{
		{"Listed origin", allowed, "https://shop.example", true},
		{"Listed origin, different case", allowed, "HTTPS://SHOP.EXAMPLE", true},
		{"Unlisted origin", allowed, "https://evil.example", false},
		{"No origin header", allowed, "", true},
		{"Wildcard", []string{"*"}, "https://evil.example", true},
		{"Nothing allowed", nil, "https://shop.example", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conn, resp, err := dialWithOrigin(t, &recordingChatService{}, 10, tc.allowed, tc.origin)
			if tc.accepted {
				require.NoError(t, err)
				conn.Close()
				return
			}

			assert.ErrorIs(t, err, websocket.ErrBadHandshake)
			require.NotNil(t, resp)
			resp.Body.Close()
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		})
	}
}

// blockingChatService waits for the session context to end
type blockingChatService struct {
	started   chan struct{}
	cancelled chan struct{}
}

func (s *blockingChatService) StartChat(ctx context.Context, message string, history []domain.Turn) (*domain.ChatResponse, error) {
	close(s.started)
	<-ctx.Done()
	close(s.cancelled)
	return nil, ctx.Err()
}

func TestDisconnectCancelsPendingAnswer(t *testing.T) {
	cs := &blockingChatService{started: make(chan struct{}), cancelled: make(chan struct{})}
	conn := dial(t, cs, 10)

	require.NoError(t, conn.WriteJSON(domain.ChatQuery{Message: "Tell me more about kiwi"}))

	select {
	case <-cs.started:
	case <-time.After(5 * time.Second):
		t.Fatal("question never reached the chat service")
	}

	conn.Close()

	select {
	case <-cs.cancelled:
	case <-time.After(5 * time.Second):
		t.Fatal("answer was not cancelled after the client disconnected")
	}
}
