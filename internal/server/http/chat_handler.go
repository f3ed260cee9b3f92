package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"govgate/internal/async"
	"govgate/internal/logstore"
)

type chatRequest struct {
	UserID          string   `json:"user_id"`
	Message         string   `json:"message" binding:"required"`
	AttachmentTexts []string `json:"attachment_texts"`
}

type chatMeta struct {
	Mode          string   `json:"mode"`
	Model         string   `json:"model"`
	Domain        string   `json:"domain"`
	PolicyVersion string   `json:"policy_version"`
	PIIDetected   bool     `json:"pii_detected"`
	PIICategories []string `json:"pii_categories,omitempty"`
	ContextCount  int      `json:"context_count"`
}

// handleChat governs one request end to end: decision, retrieval, prompt
// decoration, then an SSE stream of reply fragments. Retrieval completes (or
// fails) before the first byte of the stream; it is not a suspension point
// inside the stream.
func (s *Server) handleChat(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}
	user := userID(c, req.UserID)

	// Attachment texts join the message for classification and PII scanning.
	governed := req.Message
	if len(req.AttachmentTexts) > 0 {
		governed = governed + "\n\n" + strings.Join(req.AttachmentTexts, "\n\n")
	}

	start := time.Now()
	ctx := c.Request.Context()
	decision := s.decider.Decide(ctx, governed)

	// A retrieval failure degrades to "no context" rather than aborting the
	// governed response.
	contexts, err := s.retriever.Search(ctx, tenant, req.Message, s.opts.TopK)
	if err != nil {
		s.logger.Warn("retrieval failed for tenant %s, continuing without context: %v", tenant, err)
		contexts = nil
	}

	systemPrompt := decision.SystemPrompt
	if block := s.contextBlock(contexts); block != "" {
		systemPrompt = systemPrompt + "\n\n" + block
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.SSEvent("meta", chatMeta{
		Mode:          decision.Mode,
		Model:         decision.Model,
		Domain:        decision.Domain,
		PolicyVersion: decision.PolicyVersion,
		PIIDetected:   decision.PII.Detected,
		PIICategories: decision.PII.Categories,
		ContextCount:  len(contexts),
	})
	c.Writer.Flush()

	llmStart := time.Now()
	resp, streamErr := s.streamer.Stream(ctx, decision.Model, systemPrompt, req.Message, func(delta string) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.SSEvent("delta", gin.H{"text": delta})
		c.Writer.Flush()
		return nil
	})
	s.metrics.RecordLLMRequest(ctx, decision.Model, streamErr, time.Since(llmStart))

	switch {
	case streamErr == nil:
		c.SSEvent("done", gin.H{"latency_ms": time.Since(start).Milliseconds()})
		c.Writer.Flush()
	case errors.Is(streamErr, context.Canceled):
		// Caller disconnected; upstream consumption already stopped.
		s.logger.Debug("chat stream cancelled by client (tenant=%s)", tenant)
	default:
		s.logger.Error("chat stream failed (model=%s): %v", decision.Model, streamErr)
		c.SSEvent("error", gin.H{"error": "upstream model request failed"})
		c.Writer.Flush()
	}

	// Best-effort log write, off the request path. A cancelled stream still
	// records whatever reply accumulated.
	record := logstore.Record{
		Timestamp:     time.Now(),
		UserID:        user,
		TenantID:      tenant,
		Mode:          decision.Mode,
		Model:         decision.Model,
		PolicyVersion: decision.PolicyVersion,
		PIIDetected:   decision.PII.Detected,
		PIICategories: decision.PII.Categories,
		LatencyMS:     time.Since(start).Milliseconds(),
		Input:         req.Message,
		Output:        resp.Reply,
	}
	async.Go(s.logger, "chat-log", func() {
		logCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.logs.Insert(logCtx, record); err != nil {
			s.logger.Warn("request log write failed: %v", err)
		}
	})
}

// contextBlock renders the fused retrieval results as a prompt section,
// truncated to the configured token budget.
func (s *Server) contextBlock(contexts []string) string {
	if len(contexts) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Relevant context from the tenant knowledge base:")
	for _, text := range contexts {
		b.WriteString("\n- ")
		b.WriteString(text)
	}

	return s.counter.Truncate(b.String(), s.opts.ContextTokenBudget)
}
