package execution

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/ksred/dca-engine/pkg/response"
)

// GinHandlers contains HTTP handlers for the engine's administrative
// endpoints.
type GinHandlers struct {
	coordinator *Coordinator
}

func NewGinHandlers(coordinator *Coordinator) *GinHandlers {
	return &GinHandlers{
		coordinator: coordinator,
	}
}

// StatusHandler reports engine liveness and whether an execution
// pass is currently in flight.
func (h *GinHandlers) StatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.OK(c, gin.H{
			"status":         "ok",
			"pass_in_flight": h.coordinator.running.Load(),
		})
	}
}

// TriggerHandler handles POST requests that run one execution pass
// synchronously. The route is guarded by the X-API-Key middleware.
// Completion returns 200 regardless of individual strategy outcomes;
// a tick or trigger colliding with an in-flight pass returns 409
// instead of running a second pass, and only an engine-level fault
// that prevented the pass from running returns 500.
func (h *GinHandlers) TriggerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := h.coordinator.RunPass(c.Request.Context())
		if errors.Is(err, ErrPassInProgress) {
			response.Conflict(c, err.Error())
			return
		}
		if err != nil {
			response.InternalError(c, err.Error())
			return
		}

		response.OK(c, result)
	}
}
