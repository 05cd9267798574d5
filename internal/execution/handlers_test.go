package execution

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ksred/dca-engine/internal/strategy"
	"github.com/ksred/dca-engine/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "bot-secret"

func setupRouter(t *testing.T, f *coordinatorFixture) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	router := gin.New()

	handlers := NewGinHandlers(f.coordinator)
	router.GET("/api/v1/status", handlers.StatusHandler())
	bot := router.Group("/api/v1/bot")
	bot.Use(middleware.APIKeyAuth(testAPIKey))
	bot.POST("/execute", handlers.TriggerHandler())

	return router
}

func trigger(router *gin.Engine, apiKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bot/execute", nil)
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestTriggerRunsPass(t *testing.T) {
	f := setupCoordinator(t)
	f.addStrategy(t, "user-1", "BTCUSDT", 100)

	w := trigger(setupRouter(t, f), testAPIKey)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool       `json:"success"`
		Data    PassResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, PassResult{Due: 1, Succeeded: 1}, body.Data)

	assert.Len(t, f.allLogs(t), 1)
}

func TestTriggerReturns200DespiteStrategyFailures(t *testing.T) {
	f := setupCoordinator(t)
	f.addStrategy(t, "user-1", "BTCUSDT", 100)
	f.gateway.orderErrs["BTCUSDT"] = assert.AnError

	w := trigger(setupRouter(t, f), testAPIKey)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data PassResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, PassResult{Due: 1, Failed: 1}, body.Data)
}

func TestTriggerRejectsMissingKey(t *testing.T) {
	f := setupCoordinator(t)
	router := setupRouter(t, f)

	w := trigger(router, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = trigger(router, "wrong-key")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// No pass ran.
	assert.Empty(t, f.allLogs(t))
}

func TestTriggerUnconfiguredSecretRejectsAll(t *testing.T) {
	f := setupCoordinator(t)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/v1/bot/execute", middleware.APIKeyAuth(""), NewGinHandlers(f.coordinator).TriggerHandler())

	w := trigger(router, "anything")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTriggerEngineFault(t *testing.T) {
	f := setupCoordinator(t)
	require.NoError(t, f.db.Migrator().DropTable(&strategy.Strategy{}))

	w := trigger(setupRouter(t, f), testAPIKey)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestStatusReportsPassInFlight(t *testing.T) {
	f := setupCoordinator(t)
	router := setupRouter(t, f)

	status := func() (int, map[string]interface{}) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		var body struct {
			Data map[string]interface{} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		return w.Code, body.Data
	}

	code, data := status()
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", data["status"])
	assert.Equal(t, false, data["pass_in_flight"])

	f.coordinator.running.Store(true)
	_, data = status()
	assert.Equal(t, true, data["pass_in_flight"])
}

func TestTriggerConflictsWithRunningPass(t *testing.T) {
	f := setupCoordinator(t)
	f.coordinator.running.Store(true)

	w := trigger(setupRouter(t, f), testAPIKey)
	assert.Equal(t, http.StatusConflict, w.Code)
}
