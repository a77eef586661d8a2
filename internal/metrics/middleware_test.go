package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareRecordsRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/chats/:chat_id", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/chats/:chat_id", "404"))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/chats/abc", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)

	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/chats/:chat_id", "404"))
	require.Equal(t, before+1, after)
}

func TestMiddlewareUnknownRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "unknown", "404"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "unknown", "404"))
	require.Equal(t, before+1, after)
}

func TestHandlerExposesCollectors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	Register()
	Register()
	QueryOutcomes.WithLabelValues("answered").Inc()

	r := gin.New()
	r.GET("/metrics", Handler())
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "gcn_query_outcomes_total")
}
