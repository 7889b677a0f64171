package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"iam-assistant-backend/internal/assistant"
	"iam-assistant-backend/internal/config"
	"iam-assistant-backend/internal/db"
	"iam-assistant-backend/internal/store"
	"iam-assistant-backend/internal/types"
)

const (
	maxBodyBytes  = 64 << 10
	recordTimeout = 2 * time.Second
)

// chatPaths serve the same handler; the second keeps widgets built against
// the hosted edge function working unchanged.
var chatPaths = []string{"/api/ai-chat", "/functions/v1/ai-chat"}

type Server struct {
	router        *chi.Mux
	cfg           config.Config
	logger        *zap.Logger
	assistant     *assistant.Assistant
	recorder      store.InteractionRecorder
	memory        *store.MemoryStore
	database      *db.DB
	databaseStore *store.DatabaseStore
}

func NewServer(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	asst, err := assistant.FromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:     []string{cfg.AllowedOrigin},
		AllowedMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:     cfg.AllowedHeaders,
		MaxAge:             300,
		OptionsPassthrough: true,
	}))
	r.Use(crossOriginHeaders(cfg.AllowedOrigin, cfg.AllowedHeaders))

	s := &Server{
		router:    r,
		cfg:       cfg,
		logger:    logger,
		assistant: asst,
	}

	// Record to Postgres when DB_URL is provided, otherwise keep a bounded
	// in-memory history.
	if cfg.DatabaseURL != "" {
		database, err := db.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := database.RunMigrations(ctx, db.Migrations()); err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		logger.Info("database connection established")
		s.database = database
		s.databaseStore = store.NewDatabaseStore(database)
		s.recorder = s.databaseStore
	} else {
		s.memory = store.NewMemoryStore(cfg.InteractionBuffer)
		s.recorder = s.memory
	}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)
	for _, path := range chatPaths {
		s.router.Post(path, s.handleChat)
		s.router.Options(path, s.handlePreflight)
	}
}

func (s *Server) Router() http.Handler { return s.router }

// Close releases the database connection, if any.
func (s *Server) Close() error {
	if s.database != nil {
		return s.database.Close()
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := types.HealthResponse{Status: "ok", Strategy: s.assistant.Strategy()}
	if s.database != nil {
		ctx, cancel := context.WithTimeout(r.Context(), recordTimeout)
		defer cancel()
		if err := s.database.HealthCheck(ctx); err != nil {
			s.logger.Warn("database health check failed", zap.Error(err))
			resp.Status = "degraded"
			resp.Database = "unreachable"
		} else {
			resp.Database = "ok"
			if counts, err := s.databaseStore.CountByCategory(ctx); err == nil {
				resp.Categories = counts
				for _, n := range counts {
					resp.Interactions += n
				}
			}
		}
	} else {
		resp.Interactions, resp.Categories = s.memory.Stats()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handlePreflight answers bare OPTIONS requests; the cross-origin headers are
// already set by the middleware chain.
func (s *Server) handlePreflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req types.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Warn("malformed chat request",
			zap.Error(err),
			zap.String("request_id", middleware.GetReqID(r.Context())))
		s.writeAnswer(w, assistant.Apology())
		return
	}
	if req.Message == nil || strings.TrimSpace(*req.Message) == "" {
		s.logger.Warn("chat request without a usable message",
			zap.String("request_id", middleware.GetReqID(r.Context())))
		s.writeAnswer(w, assistant.Apology())
		return
	}

	message := *req.Message
	ans := s.assistant.Answer(r.Context(), message)
	s.record(r.Context(), message, ans)
	s.writeAnswer(w, ans)
}

// record never affects the reply; failures are only logged.
func (s *Server) record(ctx context.Context, message string, ans assistant.Answer) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	err := s.recorder.Record(ctx, store.Interaction{
		Message:        message,
		Response:       ans.Text,
		Category:       string(ans.Category),
		Source:         string(ans.Source),
		Rule:           ans.Rule,
		FallbackReason: ans.FallbackReason,
	})
	if err != nil {
		s.logger.Warn("failed to record interaction", zap.Error(err))
	}
}

func (s *Server) writeAnswer(w http.ResponseWriter, ans assistant.Answer) {
	writeJSON(w, http.StatusOK, types.ChatResponse{Response: ans.Text, Type: string(ans.Category)})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg, details string) {
	writeJSON(w, code, types.ErrorResponse{Error: msg, Details: details})
}
