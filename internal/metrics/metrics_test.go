package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGinMiddleware_CountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(GinMiddleware())
	router.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/items/:id", "418"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/42", nil))

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/items/:id", "418"))
	assert.Equal(t, before+1, after)
}

func TestRecordAuthorizationDenied_AnonymousLabel(t *testing.T) {
	before := testutil.ToFloat64(authorizationDenied.WithLabelValues("alert:create", "anonymous"))

	RecordAuthorizationDenied("alert:create", "")

	assert.Equal(t, before+1, testutil.ToFloat64(authorizationDenied.WithLabelValues("alert:create", "anonymous")))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/metrics", Handler())
	RecordCapacityUpdate("applied")
	ObserveNearbyQuery(time.Millisecond, 3)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, "disaster_resource_capacity_updates_total"))
	assert.True(t, strings.Contains(body, "disaster_proximity_scanned_resources"))
}
