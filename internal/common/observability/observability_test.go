package observability

import (
	"context"
	"strings"
	"testing"
	"time"

	"subscription-manager/internal/common/logger"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestObservability(t *testing.T) (*Observability, *promclient.Registry, *tracetest.SpanRecorder) {
	t.Helper()
	reg := promclient.NewRegistry()
	recorder := tracetest.NewSpanRecorder()

	obs, err := New("subscription-manager-test", logger.NewTestLogger(t),
		WithRegisterer(reg),
		WithSpanProcessor(recorder),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = obs.Shutdown(context.Background()) })
	return obs, reg, recorder
}

func TestObservability_RecordsJobMetrics(t *testing.T) {
	obs, reg, _ := newTestObservability(t)
	ctx := context.Background()

	obs.RecordJobProcessed(ctx, "subscription.change", "success")
	obs.RecordJobDuration(ctx, "subscription.change", 12*time.Millisecond, "success")

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.True(t, hasPrefix(names, "subscription_jobs_processed"), "gathered: %v", names)
	assert.True(t, hasPrefix(names, "subscription_jobs_duration"), "gathered: %v", names)
}

func TestObservability_InstallsGlobalTracer(t *testing.T) {
	_, _, recorder := newTestObservability(t)

	_, span := otel.Tracer("test").Start(context.Background(), "subscription.change")
	span.SetAttributes(attribute.String("subscription.direction", "upgrade"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "subscription.change", ended[0].Name())
	assert.Equal(t, "subscription-manager-test", serviceName(ended[0].Resource().Attributes()))
}

func TestObservability_NilSafe(t *testing.T) {
	var obs *Observability
	assert.NotPanics(t, func() {
		obs.RecordJobProcessed(context.Background(), "subscription.change", "success")
		obs.RecordJobDuration(context.Background(), "subscription.change", time.Second, "success")
		_ = obs.Shutdown(context.Background())
	})
}

func hasPrefix(names []string, prefix string) bool {
	for _, n := range names {
		if strings.HasPrefix(strings.ReplaceAll(n, ".", "_"), prefix) {
			return true
		}
	}
	return false
}

func serviceName(attrs []attribute.KeyValue) string {
	for _, kv := range attrs {
		if kv.Key == "service.name" {
			return kv.Value.AsString()
		}
	}
	return ""
}
