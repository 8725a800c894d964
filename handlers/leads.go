package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	leadRepo "voyago/database/repository/lead"
	"voyago/services/crm"
)

// leadFilterFromQuery reads the shared admin filter parameters: reason,
// limit and sinceHours.
func leadFilterFromQuery(c *gin.Context) leadRepo.LeadFilter {
	filter := leadRepo.LeadFilter{Reason: c.Query("reason")}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			filter.Limit = n
		}
	}
	if v := c.Query("sinceHours"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Since = time.Now().Add(-time.Duration(n) * time.Hour)
		}
	}
	return filter
}

// ListLeadsHandler returns recorded leads for managers, newest first.
func ListLeadsHandler(svc crm.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		leads, err := svc.List(leadFilterFromQuery(c))
		if err != nil {
			getLogger(c).Error("list leads", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list leads"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"leads": leads, "count": len(leads)})
	}
}

// CountLeadsHandler returns the number of leads matching the filter.
func CountLeadsHandler(svc crm.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := svc.Count(leadFilterFromQuery(c))
		if err != nil {
			getLogger(c).Error("count leads", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count leads"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": n})
	}
}
