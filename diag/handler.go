package diag

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Bigdaddy1990/pawkit/errors"
	"github.com/Bigdaddy1990/pawkit/logger"
	"github.com/Bigdaddy1990/pawkit/observability"
	"github.com/Bigdaddy1990/pawkit/resilience"
	"github.com/Bigdaddy1990/pawkit/version"
)

// Handler serves the diagnostics routes for one resilience manager.
type Handler struct {
	service string
	mgr     *resilience.Manager
	log     *logger.Logger
}

// NewHandler creates a diagnostics handler for the given manager.
func NewHandler(service string, mgr *resilience.Manager) *Handler {
	return &Handler{
		service: service,
		mgr:     mgr,
		log:     logger.Get("diag"),
	}
}

// Register mounts the diagnostics routes on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/health", h.health)
	r.GET("/circuit-breakers", h.listBreakers)
	r.POST("/circuit-breakers/reset", h.resetAll)
	r.POST("/circuit-breakers/:name/reset", h.resetOne)
}

// health reports service health derived from breaker states. An open
// breaker makes the service unhealthy (503), a half-open one degraded.
func (h *Handler) health(c *gin.Context) {
	sh := observability.BreakerHealth(h.service, version.Version, h.mgr)

	status := http.StatusOK
	if sh.Status == observability.HealthStatusDown {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, sh)
}

// listBreakers returns a stats snapshot for every registered breaker.
func (h *Handler) listBreakers(c *gin.Context) {
	c.JSON(http.StatusOK, h.mgr.AllStats())
}

// resetOne resets the named breaker. 404 when nothing is registered under
// the name; resets never create breakers.
func (h *Handler) resetOne(c *gin.Context) {
	name := c.Param("name")
	if !h.mgr.ResetCircuitBreaker(name) {
		c.JSON(apperrors.ResponseFor(apperrors.NotFound("circuit breaker", name)))
		return
	}

	h.log.Info("circuit breaker reset via diagnostics", logger.Fields(logger.FieldBreaker, name))
	c.JSON(http.StatusOK, gin.H{
		"name":  name,
		"stats": h.mgr.GetCircuitBreaker(name).Stats(),
	})
}

// resetAll resets every registered breaker.
func (h *Handler) resetAll(c *gin.Context) {
	count := h.mgr.ResetAll()
	h.log.Info("all circuit breakers reset via diagnostics", logger.Fields("count", count))
	c.JSON(http.StatusOK, gin.H{"reset": count})
}
