package tracing_test

import (
	"context"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/dd0wney/cluso-attacktree/pkg/tracing"
)

func TestSetup_NoopWhenEndpointEmpty(t *testing.T) {
	t.Setenv(tracing.EnvEndpoint, "")
	t.Setenv(tracing.EnvEnabled, "")

	shutdown, err := tracing.Setup(context.Background(), "test-service")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetup_NoopWhenExplicitlyDisabled(t *testing.T) {
	t.Setenv(tracing.EnvEndpoint, "http://localhost:4318")
	t.Setenv(tracing.EnvEnabled, "false")

	shutdown, err := tracing.Setup(context.Background(), "test-service")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetup_CreatesProviderWhenEndpointSet(t *testing.T) {
	// Use a non-routable address so no actual export happens.
	t.Setenv(tracing.EnvEndpoint, "http://192.0.2.1:4318")
	t.Setenv(tracing.EnvEnabled, "")

	shutdown, err := tracing.Setup(context.Background(), "test-service")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Shutdown should flush cleanly even though the endpoint is unreachable.
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestTracerPrefersExplicit(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())

	explicit := tp.Tracer("explicit")
	if got := tracing.Tracer(explicit); got != explicit {
		t.Error("Tracer should return the tracer it was given")
	}
	if tracing.Tracer(nil) == nil {
		t.Error("Tracer(nil) should fall back to the global provider")
	}
}
