// Package http exposes the governance gateway over HTTP: the governed chat
// endpoint, the tenant knowledge base, and the policy/log read surfaces.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"govgate/internal/governance"
	"govgate/internal/llm"
	"govgate/internal/logging"
	"govgate/internal/logstore"
	"govgate/internal/observability"
	"govgate/internal/policy"
	"govgate/internal/rag"
	"govgate/internal/token"
)

// Decider resolves the governance decision for one message.
type Decider interface {
	Decide(ctx context.Context, message string) governance.Decision
}

// Retriever is the knowledge-base surface the handlers consume.
type Retriever interface {
	Ingest(ctx context.Context, tenantID, text string, metadata map[string]string) (string, error)
	Search(ctx context.Context, tenantID, query string, k int) ([]string, error)
	List(ctx context.Context, tenantID string) ([]rag.DocumentInfo, error)
}

// Streamer forwards the decorated prompt to the upstream model.
type Streamer interface {
	Stream(ctx context.Context, modelID, systemPrompt, userMessage string, onDelta func(string) error) (llm.Response, error)
}

// LogSink records governed requests and serves recent history.
type LogSink interface {
	Insert(ctx context.Context, rec logstore.Record) error
	Recent(ctx context.Context, limit int) ([]logstore.Record, error)
}

// Options configures the HTTP server.
type Options struct {
	ListenAddr         string
	Debug              bool
	TopK               int
	ContextTokenBudget int
}

// Server is the gateway HTTP front end.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server

	decider   Decider
	retriever Retriever
	streamer  Streamer
	logs      LogSink
	policies  *policy.Store
	counter   *token.Counter
	metrics   *observability.Collector

	opts   Options
	logger logging.Logger
}

// NewServer wires routes and middleware. metrics may be nil.
func NewServer(opts Options, decider Decider, retriever Retriever, streamer Streamer, logs LogSink, policies *policy.Store, counter *token.Counter, metrics *observability.Collector, logger logging.Logger) *Server {
	if opts.TopK <= 0 {
		opts.TopK = rag.DefaultTopK
	}
	if opts.ContextTokenBudget <= 0 {
		opts.ContextTokenBudget = 1500
	}

	if !opts.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Tenant-ID", "X-User-ID"}
	engine.Use(cors.New(corsConfig))

	s := &Server{
		engine:    engine,
		decider:   decider,
		retriever: retriever,
		streamer:  streamer,
		logs:      logs,
		policies:  policies,
		counter:   counter,
		metrics:   metrics,
		opts:      opts,
		logger:    logging.OrNop(logger),
	}

	engine.GET("/health", s.handleHealth)
	engine.POST("/chat", s.handleChat)
	engine.GET("/policies", s.handlePolicies)
	engine.GET("/logs", s.handleLogs)
	engine.POST("/knowledge", s.handleIngest)
	engine.GET("/knowledge", s.handleListKnowledge)
	engine.POST("/knowledge/search", s.handleSearchKnowledge)

	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start begins serving. It blocks until the listener fails or Shutdown is
// called.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.opts.ListenAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("http server listening on %s", s.opts.ListenAddr)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// tenantID extracts the mandatory tenant header. Auth mechanics live in
// front of the gateway; the header is trusted here.
func tenantID(c *gin.Context) (string, bool) {
	tenant := c.GetHeader("X-Tenant-ID")
	if tenant == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-Tenant-ID header is required"})
		return "", false
	}
	return tenant, true
}

func userID(c *gin.Context, fallback string) string {
	if user := c.GetHeader("X-User-ID"); user != "" {
		return user
	}
	if fallback != "" {
		return fallback
	}
	return "anonymous"
}
