package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (s *Server) handlePolicies(c *gin.Context) {
	c.JSON(http.StatusOK, s.policies.Current())
}

// maxLogLimit bounds one /logs response; records carry full input/output text.
const maxLogLimit = 500

func (s *Server) handleLogs(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}
	if limit > maxLogLimit {
		limit = maxLogLimit
	}

	records, err := s.logs.Recent(c.Request.Context(), limit)
	if err != nil {
		s.logger.Error("read recent logs failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reading logs failed"})
		return
	}

	c.JSON(http.StatusOK, records)
}
