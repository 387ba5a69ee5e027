package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_CountsByRoutePattern(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/restaurant/:id", func(c fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/boom", func(c fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "x") })

	for _, path := range []string{"/restaurant/a", "/restaurant/b", "/boom"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		_ = resp.Body.Close()
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/restaurant/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/boom", "418")))
}

func TestObserveTokens_NilSafe(t *testing.T) {
	var nilMetrics *Metrics
	nilMetrics.ObserveTokens(1, 2)
	nilMetrics.ChatResult(ChatResultOK)

	m := NewMetrics(prometheus.NewRegistry())
	m.ObserveTokens(10, 4)
	m.ChatResult(ChatResultOK)
	assert.Equal(t, 10.0, testutil.ToFloat64(m.LLMTokensTotal.WithLabelValues("prompt")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.LLMTokensTotal.WithLabelValues("completion")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChatMessagesTotal.WithLabelValues(ChatResultOK)))
}
