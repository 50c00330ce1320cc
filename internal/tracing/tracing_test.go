package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

var exporter = tracetest.NewInMemoryExporter()

func TestMain(m *testing.M) {
	if err := InitWithExporter("sipoma-test", exporter); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestStartSpan_RecordsError(t *testing.T) {
	exporter.Reset()

	_, span := StartSpan(context.Background(), "approval.approve")
	span.End(errors.New("boom"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "approval.approve", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
}

func TestStartSpan_ChildOfParent(t *testing.T) {
	exporter.Reset()

	ctx, parent := StartSpan(context.Background(), "parent")
	_, child := StartSpan(ctx, "child")
	child.End(nil)
	parent.End(nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "child", spans[0].Name)
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
}

func TestNilSpanEnd(t *testing.T) {
	var span *Span
	assert.NotPanics(t, func() { span.End(nil) })
}

func TestMiddleware(t *testing.T) {
	exporter.Reset()

	e := echo.New()
	e.Use(Middleware())
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/broken", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "down")
	})

	for _, path := range []string{"/health", "/broken"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "GET /health", spans[0].Name)
	assert.NotEqual(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "GET /broken", spans[1].Name)
	assert.Equal(t, codes.Error, spans[1].Status.Code)
}
