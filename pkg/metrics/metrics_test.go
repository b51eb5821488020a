package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRelay(t *testing.T) {
	success := relayCalls.WithLabelValues("interpret", "success")
	failure := relayCalls.WithLabelValues("interpret", "error")
	beforeOK, beforeErr := testutil.ToFloat64(success), testutil.ToFloat64(failure)

	ObserveRelay("interpret", time.Now(), nil)
	ObserveRelay("interpret", time.Now(), errors.New("quota exceeded"))
	ObserveRelay("interpret", time.Now(), errors.New("timeout"))

	assert.Equal(t, beforeOK+1, testutil.ToFloat64(success))
	assert.Equal(t, beforeErr+2, testutil.ToFloat64(failure))
}

func TestMiddleware_LabelsByRouteTemplate(t *testing.T) {
	e := echo.New()
	e.Use(Middleware())
	e.GET("/api/post/:id", func(c echo.Context) error {
		if c.Param("id") == "missing" {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return c.NoContent(http.StatusOK)
	})

	ok := httpRequests.WithLabelValues(http.MethodGet, "/api/post/:id", "200")
	notFound := httpRequests.WithLabelValues(http.MethodGet, "/api/post/:id", "404")
	beforeOK, beforeNotFound := testutil.ToFloat64(ok), testutil.ToFloat64(notFound)

	for _, path := range []string{"/api/post/1", "/api/post/2", "/api/post/missing"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, beforeOK+2, testutil.ToFloat64(ok))
	assert.Equal(t, beforeNotFound+1, testutil.ToFloat64(notFound))
	assert.Equal(t, float64(0), testutil.ToFloat64(httpInFlight))
}

func TestHandler_ExposesRegistry(t *testing.T) {
	ObserveRelay("image", time.Now(), nil)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `dreamscape_relay_calls_total{operation="image",outcome="success"}`))
	assert.True(t, strings.Contains(body, "go_goroutines"))
}
