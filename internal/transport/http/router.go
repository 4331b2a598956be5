package http

import (
	"net/http"

	"github.com/Ghost-141/chatbot-server/internal/domain"
	websocketTransport "github.com/Ghost-141/chatbot-server/internal/transport/websocket"
	oaierrors "github.com/go-openapi/errors"
	"github.com/go-openapi/runtime/middleware"
	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"
)

func NewRouter(
	ph *ProductHandler,
	ch *ChatHandler,
	hh *HealthHandler,
	wsh *websocketTransport.Handler,
	spec *APISpec,
	validator *domain.Validation,
	logger hclog.Logger,
) *mux.Router {
	router := mux.NewRouter()

	mw := NewMiddleware(logger, validator)

	router.Use(mw.LoggingMiddleware)
	router.Use(mw.ContentTypeMiddleware)

	router.HandleFunc("/products", ph.GetProducts).Methods(http.MethodGet)
	router.HandleFunc("/healthz", hh.Health).Methods(http.MethodGet)
	router.HandleFunc("/ws/chat", wsh.HandleChat).Methods(http.MethodGet)

	router.Handle("/chat", mw.ChatQueryValidationMiddleware(http.HandlerFunc(ch.Chat))).Methods(http.MethodPost)

	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/docs", http.StatusTemporaryRedirect)
	}).Methods(http.MethodGet)

	router.HandleFunc("/swagger.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(spec.YAML)
	}).Methods(http.MethodGet)

	router.HandleFunc("/swagger.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write(spec.JSON)
	}).Methods(http.MethodGet)

	// Redoc sets its own text/html content type
	redoc := middleware.Redoc(middleware.RedocOpts{SpecURL: "/swagger.yaml"}, nil)
	router.Handle("/docs", redoc).Methods(http.MethodGet)

	router.NotFoundHandler = mw.LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		oaierrors.ServeError(w, r, oaierrors.NotFound("path %s was not found", r.URL.Path))
	}))
	router.MethodNotAllowedHandler = mw.LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		oaierrors.ServeError(w, r, oaierrors.New(http.StatusMethodNotAllowed, "method %s is not allowed on %s", r.Method, r.URL.Path))
	}))

	return router
}
