package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Ghost-141/chatbot-server/internal/domain"
	"github.com/Ghost-141/chatbot-server/internal/rag"
	"github.com/Ghost-141/chatbot-server/internal/service"
	"github.com/Ghost-141/chatbot-server/internal/transport"
	oaierrors "github.com/go-openapi/errors"
	"github.com/hashicorp/go-hclog"
)

type ProductHandler struct {
	productService service.ProductService
	logger         hclog.Logger
}

func NewProductHandler(ps service.ProductService, log hclog.Logger) *ProductHandler {
	return &ProductHandler{
		productService: ps,
		logger:         log,
	}
}

// GetProducts handles GET /products
//
// swagger:route GET /products products listProducts
//
// Returns the product catalog.
//
// Responses:
//
//	200: productsResponse
//	500: errorResponse
func (h *ProductHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.GetProducts(r.Context())
	if err != nil {
		h.logger.Error("Error getting products", "error", err)
		oaierrors.ServeError(w, r, transport.APIError(err, "Error getting products"))
		return
	}

	if err := json.NewEncoder(w).Encode(products); err != nil {
		h.logger.Error("Error encoding products", "error", err)
	}
}

type ChatHandler struct {
	chatService service.ChatService
	timeout     time.Duration
	logger      hclog.Logger
}

// NewChatHandler creates a ChatHandler that gives up on an answer after
// timeout. A zero timeout leaves the request context as it is.
func NewChatHandler(cs service.ChatService, timeout time.Duration, log hclog.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: cs,
		timeout:     timeout,
		logger:      log,
	}
}

// Chat handles POST /chat
//
// swagger:route POST /chat chat chat
//
// Answers a question about the products in the catalog.
// Every request starts a new conversation.
//
// Responses:
//
//	200: chatResponse
//	400: errorResponse
//	422: validationErrorResponse
//	500: errorResponse
//	502: errorResponse
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	query, ok := r.Context().Value(ContextKeyChatQuery).(*domain.ChatQuery)
	if !ok {
		oaierrors.ServeError(w, r, oaierrors.New(http.StatusBadRequest, "Invalid chat query"))
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	resp, err := h.chatService.StartChat(ctx, query.Message, nil)
	if err != nil {
		h.logger.Error("Error answering question", "error", err)
		oaierrors.ServeError(w, r, transport.APIError(err, "Error answering question"))
		return
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("Error encoding chat response", "error", err)
	}
}

// IndexInfo describes the vector index the chat answers from
type IndexInfo interface {
	Status() rag.IndexStatus
	Count() int
}

type HealthHandler struct {
	index IndexInfo
}

func NewHealthHandler(index IndexInfo) *HealthHandler {
	return &HealthHandler{index: index}
}

// Health handles GET /healthz
//
// swagger:route GET /healthz health health
//
// Reports the state of the vector index.
//
// Responses:
//
//	200: healthResponse
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(Health{
		Status:    string(h.index.Status()),
		Documents: h.index.Count(),
	})
}
