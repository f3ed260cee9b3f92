package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"govgate/internal/rag"
	"govgate/internal/security/redaction"
)

type ingestRequest struct {
	Text     string            `json:"text" binding:"required"`
	Metadata map[string]string `json:"metadata"`
}

func (s *Server) handleIngest(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	docID, err := s.retriever.Ingest(c.Request.Context(), tenant, req.Text, req.Metadata)
	if err != nil {
		s.logger.Error("ingest failed for tenant %s (metadata=%v): %v",
			tenant, redaction.RedactStringMap(req.Metadata), err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "document ingestion failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": docID})
}

func (s *Server) handleListKnowledge(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	docs, err := s.retriever.List(c.Request.Context(), tenant)
	if err != nil {
		s.logger.Error("list knowledge failed for tenant %s: %v", tenant, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing documents failed"})
		return
	}
	if docs == nil {
		docs = []rag.DocumentInfo{}
	}

	c.JSON(http.StatusOK, docs)
}

type searchRequest struct {
	Query string `json:"query" binding:"required"`
	K     int    `json:"k"`
}

func (s *Server) handleSearchKnowledge(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}
	if req.K <= 0 {
		req.K = s.opts.TopK
	}

	results, err := s.retriever.Search(c.Request.Context(), tenant, req.Query, req.K)
	if err != nil {
		s.logger.Error("knowledge search failed for tenant %s: %v", tenant, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "search failed"})
		return
	}
	if results == nil {
		results = []string{}
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}
