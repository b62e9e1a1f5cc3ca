package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-jobswipe-backend/internal/delivery/http/response"
	"go-jobswipe-backend/internal/usecase"
)

type HealthHandler struct {
	healthUC usecase.HealthUsecase
}

func NewHealthHandler(r *gin.RouterGroup, healthUC usecase.HealthUsecase) {
	handler := &HealthHandler{healthUC: healthUC}
	r.GET("/health", handler.Health)
}

// Health godoc
// @Summary      Health check
// @Description  Reports database and redis reachability. 503 when a required dependency is down
// @Tags         system
// @Produce      json
// @Success      200  {object}  response.Response{data=map[string]string}
// @Failure      503  {object}  response.Response{error=map[string]string}
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	status, ok := h.healthUC.Check(c.Request.Context())
	if !ok {
		response.Error(c, http.StatusServiceUnavailable, "System unavailable", status)
		return
	}
	response.Success(c, http.StatusOK, "System operational", status)
}
