package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
	"go.trai.ch/snapkeep/internal/adapters/telemetry"
	"go.trai.ch/snapkeep/internal/app"
	"go.trai.ch/snapkeep/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestComponents_Shutdown(t *testing.T) {
	t.Run("sdk tracer", func(t *testing.T) {
		prev := otel.GetTracerProvider()
		t.Cleanup(func() { otel.SetTracerProvider(prev) })

		ctrl := gomock.NewController(t)
		mockLogger := mocks.NewMockLogger(ctrl)
		tracer := telemetry.NewLoggingTracer(telemetry.InstrumentationName, mockLogger)

		c := app.NewComponents(nil, mockLogger, tracer)
		assert.NoError(t, c.Shutdown(context.Background()))
	})

	t.Run("tracer without a provider", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		c := app.NewComponents(nil, mocks.NewMockLogger(ctrl), mocks.NewMockTracer(ctrl))
		assert.NoError(t, c.Shutdown(context.Background()))
	})
}
