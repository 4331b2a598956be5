package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Ghost-141/chatbot-server/internal/config"
	"github.com/Ghost-141/chatbot-server/internal/domain"
	"github.com/Ghost-141/chatbot-server/internal/llm"
	"github.com/Ghost-141/chatbot-server/internal/rag"
	"github.com/Ghost-141/chatbot-server/internal/repository"
	"github.com/Ghost-141/chatbot-server/internal/service"
	httpTransport "github.com/Ghost-141/chatbot-server/internal/transport/http"
	websocketTransport "github.com/Ghost-141/chatbot-server/internal/transport/websocket"
	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/hashicorp/go-hclog"
	"github.com/nicholasjackson/env"
	"github.com/rs/cors"
)

// Environment variables
var (
	bindAddress = env.String("BIND_ADDRESS", false,
		":8000", "Bind address for the server")
	logLevel = env.String("LOG_LEVEL", false,
		"info", "Log output level for the server [trace, debug, info, warn, error]")
	configFile = env.String("CONFIG_FILE", false,
		"config.yaml", "Path of the YAML pipeline configuration")
	allowedOrigins = env.String("ALLOWED_ORIGINS", false,
		"*", "Comma separated list of origins allowed by CORS and the websocket chat")
	groqAPIKey = env.String("GROQ_API_KEY", false,
		"", "API key for the Groq chat completion API")
	openAIAPIKey = env.String("OPENAI_API_KEY", false,
		"", "API key for the openai embedding provider")
	writeTimeout = env.Duration("WRITE_TIMEOUT", false,
		90*time.Second, "Maximum time to write a response, model calls included")
)

func main() {
	// variables from .env never override the real environment
	dotEnvErr := config.LoadDotEnv()

	if err := env.Parse(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "chatbot-server",
		Level: hclog.LevelFromString(*logLevel),
	})

	if dotEnvErr != nil {
		logger.Error("Unable to load .env file", "error", dotEnvErr)
		os.Exit(1)
	}

	// Create a standard logger for the HTTP server
	standardLogger := logger.StandardLogger(&hclog.StandardLoggerOptions{InferLevels: true})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	settings, err := config.Load(*configFile)
	if err != nil {
		logger.Error("Unable to load configuration", "file", *configFile, "error", err)
		os.Exit(1)
	}

	validator := domain.NewValidation()

	// Catalog
	prodRep := repository.NewJSONFileProductRepository(settings.Catalog.Path, validator)
	ps := service.NewProductService(prodRep, logger.Named("product-service"))

	// Chat model, checked first so a missing key fails before the index is built
	llmClient, err := llm.NewClient(llm.Config{
		BaseURL:     settings.LLM.BaseURL,
		APIKey:      *groqAPIKey,
		Model:       settings.LLM.Model,
		Temperature: settings.LLM.Temperature,
		MaxRetries:  settings.LLM.MaxRetries,
		Timeout:     time.Duration(settings.LLM.TimeoutSecs) * time.Second,
	}, logger.Named("llm"))
	if err != nil {
		logger.Error("Unable to create chat model client", "error", err)
		os.Exit(1)
	}

	embed, err := rag.NewEmbeddingFunc(settings.Embedding, *openAIAPIKey)
	if err != nil {
		logger.Error("Unable to create embedding provider", "error", err)
		os.Exit(1)
	}

	index, err := rag.OpenIndex(ctx, rag.IndexOptions{
		Dir:        settings.Index.Dir,
		Collection: settings.Index.Collection,
	}, rag.NewCatalogSource(prodRep), embed, logger.Named("vector-index"))
	if err != nil {
		logger.Error("Unable to open vector index", "dir", settings.Index.Dir, "error", err)
		os.Exit(1)
	}
	logger.Info("Vector index ready", "status", index.Status(), "documents", index.Count())

	prompt, err := rag.NewPrompt(rag.ProductSupportPrompt)
	if err != nil {
		logger.Error("Unable to parse prompt template", "error", err)
		os.Exit(1)
	}

	retriever := rag.NewMMRRetriever(index, settings.Retriever.K, settings.Retriever.FetchK, settings.Retriever.LambdaMult)
	chain := rag.NewChain(retriever, prompt, llmClient, logger.Named("chain"))
	cs := service.NewChatService(chain, logger.Named("chat-service"))

	spec, err := httpTransport.LoadSpec()
	if err != nil {
		logger.Error("Unable to load API documentation", "error", err)
		os.Exit(1)
	}

	// Initialize HTTP handlers
	ph := httpTransport.NewProductHandler(ps, logger.Named("product-handler"))
	ch := httpTransport.NewChatHandler(cs, answerTimeout(*writeTimeout), logger.Named("chat-handler"))
	hh := httpTransport.NewHealthHandler(index)

	wh := websocketTransport.NewHandler(
		logger.Named("websocket-handler"),
		cs,
		validator,
		settings.Chat.HistoryTurns,
		splitOrigins(*allowedOrigins),
	)

	router := httpTransport.NewRouter(ph, ch, hh, wh, spec, validator, logger.Named("http"))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   splitOrigins(*allowedOrigins),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(router)

	recovery := gorillaHandlers.RecoveryHandler(
		gorillaHandlers.RecoveryLogger(standardLogger),
		gorillaHandlers.PrintRecoveryStack(true),
	)

	// Create the HTTP Server
	server := &http.Server{
		Addr:         *bindAddress,
		Handler:      recovery(gorillaHandlers.CompressHandler(corsHandler)),
		ErrorLog:     standardLogger,
		IdleTimeout:  120 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: *writeTimeout,
	}

	// Start the server in a new goroutine
	go func() {
		logger.Info("Starting server", "bind_address", *bindAddress, "api_version", spec.Version())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Error starting server", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error shutting down server", "error", err)
	}
}

func splitOrigins(value string) []string {
	var origins []string
	for _, o := range strings.Split(value, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// answerTimeout leaves room to write the error response before the server
// write deadline closes the connection
func answerTimeout(writeTimeout time.Duration) time.Duration {
	return writeTimeout * 9 / 10
}
