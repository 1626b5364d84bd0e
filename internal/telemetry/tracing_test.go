package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSetupDisabledIsNoop(t *testing.T) {
	before := otel.GetTracerProvider()
	shutdown := Setup(false)
	assert.Equal(t, before, otel.GetTracerProvider())
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupRecordsSpans(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetLevel(logrus.DebugLevel)
	logger.SetFormatter(&logrus.JSONFormatter{})

	recorder := tracetest.NewSpanRecorder()
	shutdown := Setup(true, recorder, NewLogProcessor(logger))

	_, span := otel.Tracer("test").Start(context.Background(), "FetchCombined")
	span.SetAttributes(attribute.String("query", "cats"))
	span.End()
	require.NoError(t, shutdown(context.Background()))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "FetchCombined", spans[0].Name())

	var service string
	for _, kv := range spans[0].Resource().Attributes() {
		if kv.Key == "service.name" {
			service = kv.Value.AsString()
		}
	}
	assert.Equal(t, "imagesearch", service)

	assert.Contains(t, buf.String(), `"span":"FetchCombined"`)
	assert.Contains(t, buf.String(), `"query":"cats"`)
}
