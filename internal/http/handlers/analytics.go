package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/clientbase-backend/internal/http/middleware"
	"github.com/yungbote/clientbase-backend/internal/http/response"
	"github.com/yungbote/clientbase-backend/internal/services"
)

type AnalyticsHandler struct {
	analyticsService services.AnalyticsService
}

func NewAnalyticsHandler(analyticsService services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// GET /api/workspaces/:workspaceId/analytics
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	respondReport(c, "dashboard", func() (any, error) {
		return h.analyticsService.Dashboard(c.Request.Context(), middleware.WorkspaceID(c))
	})
}

func (h *AnalyticsHandler) Overview(c *gin.Context) {
	respondReport(c, "overview", func() (any, error) {
		return h.analyticsService.Overview(c.Request.Context(), middleware.WorkspaceID(c))
	})
}

func (h *AnalyticsHandler) Status(c *gin.Context) {
	respondReport(c, "status_distribution", func() (any, error) {
		return h.analyticsService.StatusDistribution(c.Request.Context(), middleware.WorkspaceID(c))
	})
}

func (h *AnalyticsHandler) Priority(c *gin.Context) {
	respondReport(c, "priority_distribution", func() (any, error) {
		return h.analyticsService.PriorityDistribution(c.Request.Context(), middleware.WorkspaceID(c))
	})
}

// GET .../analytics/growth?months=12
func (h *AnalyticsHandler) Growth(c *gin.Context) {
	months, _ := strconv.Atoi(c.Query("months"))
	respondReport(c, "growth_trends", func() (any, error) {
		return h.analyticsService.GrowthTrends(c.Request.Context(), middleware.WorkspaceID(c), months)
	})
}

func (h *AnalyticsHandler) Industries(c *gin.Context) {
	respondReport(c, "industry_analysis", func() (any, error) {
		return h.analyticsService.IndustryAnalysis(c.Request.Context(), middleware.WorkspaceID(c))
	})
}

func (h *AnalyticsHandler) Engagement(c *gin.Context) {
	respondReport(c, "contact_engagement", func() (any, error) {
		return h.analyticsService.ContactEngagement(c.Request.Context(), middleware.WorkspaceID(c))
	})
}

func (h *AnalyticsHandler) Health(c *gin.Context) {
	respondReport(c, "health_scores", func() (any, error) {
		return h.analyticsService.HealthScores(c.Request.Context(), middleware.WorkspaceID(c), time.Now())
	})
}

func respondReport(c *gin.Context, key string, run func() (any, error)) {
	out, err := run()
	if err != nil {
		internalError(c, err)
		return
	}
	response.RespondOK(c, gin.H{key: out})
}
