// internal/handlers/dashboard/dashboard_handler.go
package dashboard

import (
	"net/http"

	"postsaathi-service/internal/middleware"
	"postsaathi-service/internal/pkg/response"
	service "postsaathi-service/internal/service/investment"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	investmentService *service.Service
}

func NewDashboardHandler(investmentService *service.Service) *DashboardHandler {
	return &DashboardHandler{
		investmentService: investmentService,
	}
}

// Stats returns the agent's own dashboard aggregates.
func (h *DashboardHandler) Stats(c *gin.Context) {
	a := middleware.MustGetAgent(c)

	stats, err := h.investmentService.Stats(c.Request.Context(), a.ID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to compute stats", nil)
		return
	}

	// The agent view has no meaningful agent count.
	stats.TotalAgents = 1
	response.Success(c, http.StatusOK, "stats retrieved", stats)
}
