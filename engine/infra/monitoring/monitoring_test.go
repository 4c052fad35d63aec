package monitoring

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rosterhq/roster/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric"
)

func testCtx() context.Context {
	return logger.ContextWithLogger(context.Background(), logger.NewForTests())
}

func TestNewMonitoringService(t *testing.T) {
	t.Run("Should create service with default config when nil provided", func(t *testing.T) {
		service, err := NewMonitoringService(testCtx(), nil)
		require.NoError(t, err)
		assert.NotNil(t, service)
		assert.NotNil(t, service.config)
		assert.False(t, service.config.Enabled)
		assert.Equal(t, "/metrics", service.config.Path)
		assert.False(t, service.IsInitialized())
	})
	t.Run("Should fail with invalid config", func(t *testing.T) {
		cfg := &Config{Enabled: true, Path: ""}
		service, err := NewMonitoringService(testCtx(), cfg)
		assert.Error(t, err)
		assert.Nil(t, service)
		assert.Contains(t, err.Error(), "monitoring path cannot be empty")
	})
	t.Run("Should initialize with Prometheus exporter when enabled", func(t *testing.T) {
		cfg := &Config{Enabled: true, Path: "/metrics"}
		service, err := NewMonitoringService(testCtx(), cfg)
		require.NoError(t, err)
		assert.True(t, service.IsInitialized())
		assert.NotNil(t, service.exporter)
		assert.NotNil(t, service.provider)
		assert.NotNil(t, service.meter)
		assert.Nil(t, service.InitializationError())
	})
	t.Run("Should use no-op meter when disabled", func(t *testing.T) {
		cfg := &Config{Enabled: false, Path: "/metrics"}
		service, err := NewMonitoringService(testCtx(), cfg)
		require.NoError(t, err)
		assert.False(t, service.IsInitialized())
		assert.Nil(t, service.exporter)
		assert.Nil(t, service.provider)
		assert.NotNil(t, service.meter)
	})
}

func TestMonitoringService_Meter(t *testing.T) {
	t.Run("Should return meter instance", func(t *testing.T) {
		cfg := &Config{Enabled: true, Path: "/metrics"}
		service, err := NewMonitoringService(testCtx(), cfg)
		require.NoError(t, err)
		meter := service.Meter()
		assert.NotNil(t, meter)
		assert.Implements(t, (*metric.Meter)(nil), meter)
	})
}

func TestMonitoringService_GinMiddleware(t *testing.T) {
	t.Run("Should return functional middleware when initialized", func(t *testing.T) {
		cfg := &Config{Enabled: true, Path: "/metrics"}
		service, err := NewMonitoringService(testCtx(), cfg)
		require.NoError(t, err)
		mw := service.GinMiddleware(testCtx())
		require.NotNil(t, mw)
		gin.SetMode(gin.TestMode)
		router := gin.New()
		router.Use(mw)
		router.GET("/test", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
		req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
	t.Run("Should return no-op middleware when not initialized", func(t *testing.T) {
		cfg := &Config{Enabled: false, Path: "/metrics"}
		service, err := NewMonitoringService(testCtx(), cfg)
		require.NoError(t, err)
		mw := service.GinMiddleware(testCtx())
		require.NotNil(t, mw)
		gin.SetMode(gin.TestMode)
		router := gin.New()
		router.Use(mw)
		router.GET("/test", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
		req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestMonitoringService_ExporterHandler(t *testing.T) {
	t.Run("Should return 503 when not initialized", func(t *testing.T) {
		cfg := &Config{Enabled: false, Path: "/metrics"}
		service, err := NewMonitoringService(testCtx(), cfg)
		require.NoError(t, err)
		handler := service.ExporterHandler()
		req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "Monitoring service not initialized")
	})
	t.Run("Should return metrics when initialized", func(t *testing.T) {
		cfg := &Config{Enabled: true, Path: "/metrics"}
		service, err := NewMonitoringService(testCtx(), cfg)
		require.NoError(t, err)
		handler := service.ExporterHandler()
		req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	})
}

func TestMonitoringService_Shutdown(t *testing.T) {
	t.Run("Should shutdown gracefully when initialized", func(t *testing.T) {
		cfg := &Config{Enabled: true, Path: "/metrics"}
		service, err := NewMonitoringService(testCtx(), cfg)
		require.NoError(t, err)
		assert.NoError(t, service.Shutdown(context.Background()))
	})
	t.Run("Should handle shutdown when not initialized", func(t *testing.T) {
		cfg := &Config{Enabled: false, Path: "/metrics"}
		service, err := NewMonitoringService(testCtx(), cfg)
		require.NoError(t, err)
		assert.NoError(t, service.Shutdown(context.Background()))
	})
}

func TestNewMonitoringServiceWithFallback(t *testing.T) {
	t.Run("Should return initialized service when config is valid", func(t *testing.T) {
		cfg := &Config{Enabled: true, Path: "/metrics"}
		service := NewMonitoringServiceWithFallback(testCtx(), cfg)
		require.NotNil(t, service)
		assert.True(t, service.IsInitialized())
		assert.Nil(t, service.InitializationError())
	})
	t.Run("Should return degraded service when config is invalid", func(t *testing.T) {
		cfg := &Config{Enabled: true, Path: "invalid-path"}
		service := NewMonitoringServiceWithFallback(testCtx(), cfg)
		require.NotNil(t, service)
		assert.False(t, service.IsInitialized())
		assert.NotNil(t, service.InitializationError())
		assert.NotNil(t, service.Meter())
	})
	t.Run("Should handle nil config gracefully", func(t *testing.T) {
		service := NewMonitoringServiceWithFallback(testCtx(), nil)
		require.NotNil(t, service)
		assert.False(t, service.IsInitialized())
		assert.Nil(t, service.InitializationError())
	})
}
