package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func setupMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)
	t.Cleanup(func() { provider.Shutdown(context.Background()) })

	metrics, err := InitMetrics()
	require.NoError(t, err)
	return metrics, reader
}

func conflictDataPoints(t *testing.T, reader *sdkmetric.ManualReader) []metricdata.DataPoint[int64] {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != "booking.conflict.count" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			return sum.DataPoints
		}
	}
	t.Fatal("booking.conflict.count not collected")
	return nil
}

func TestRecordBookingConflict_TagsDoctor(t *testing.T) {
	metrics, reader := setupMetrics(t)

	RecordBookingConflict(context.Background(), metrics, "doc-1")

	points := conflictDataPoints(t, reader)
	require.Len(t, points, 1)
	assert.Equal(t, int64(1), points[0].Value)

	doctorID, ok := points[0].Attributes.Value(attribute.Key("doctor.id"))
	require.True(t, ok)
	assert.Equal(t, "doc-1", doctorID.AsString())
}

func TestRecordBookingConflict_UnknownDoctorOmitsAttribute(t *testing.T) {
	metrics, reader := setupMetrics(t)

	RecordBookingConflict(context.Background(), metrics, "")

	points := conflictDataPoints(t, reader)
	require.Len(t, points, 1)
	assert.Equal(t, int64(1), points[0].Value)

	_, ok := points[0].Attributes.Value(attribute.Key("doctor.id"))
	assert.False(t, ok, "empty doctor id must not become an attribute")
}
