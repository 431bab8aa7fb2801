package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewProvider_RecordsSpans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp, err := newProvider(context.Background(), Options{ServiceName: "echoes-test", Version: "test"},
		sdktrace.WithSpanProcessor(rec))
	require.NoError(t, err)

	_, span := tp.Tracer("game").Start(context.Background(), "tick")
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "tick", ended[0].Name())

	var service string
	for _, kv := range ended[0].Resource().Attributes() {
		if kv.Key == "service.name" {
			service = kv.Value.AsString()
		}
	}
	assert.Equal(t, "echoes-test", service)

	require.NoError(t, shutdownFor(tp)(context.Background()))
}

func TestNewProvider_Sampling(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp, err := newProvider(context.Background(), Options{ServiceName: "echoes-test", SampleRatio: 0.000001},
		sdktrace.WithSpanProcessor(rec))
	require.NoError(t, err)
	defer tp.Shutdown(context.Background())

	for i := 0; i < 20; i++ {
		_, span := tp.Tracer("game").Start(context.Background(), "tick")
		span.End()
	}
	assert.Less(t, len(rec.Ended()), 20, "Почти все спаны отбрасываются семплером")
}
