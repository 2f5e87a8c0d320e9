package tracing

import (
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestInitTracer_DisabledInstallsPropagators(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	shutdown, err := InitTracer(context.Background(), Config{ServiceName: "shopfront"})
	if err != nil {
		t.Fatalf("InitTracer(disabled) returned error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown(disabled) returned error: %v", err)
	}

	fields := otel.GetTextMapPropagator().Fields()
	found := false
	for _, f := range fields {
		if f == "traceparent" {
			found = true
		}
	}
	if !found {
		t.Errorf("traceparent propagator not installed, fields = %v", fields)
	}
}

func TestSampler_Description(t *testing.T) {
	tests := map[float64]string{
		1.0: "AlwaysOnSampler",
		0.0: "AlwaysOffSampler",
		0.5: "TraceIDRatioBased",
	}
	for rate, want := range tests {
		desc := Sampler(rate).Description()
		if !strings.HasPrefix(desc, "ParentBased") || !strings.Contains(desc, want) {
			t.Errorf("Sampler(%v) = %q, want ParentBased with %s", rate, desc, want)
		}
	}
}
