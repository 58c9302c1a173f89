package exporters

import (
	"fmt"

	"scaleplus-loyalty/pkg/config"

	"go.opentelemetry.io/otel/sdk/trace"
)

// Provide picks the OTLP transport named by OTEL.PROTOCOL.
func Provide(cfg *config.Config) (trace.SpanExporter, error) {
	switch cfg.Otel.Protocol {
	case "", "grpc":
		return ProvideGrpc(cfg)
	case "http":
		return ProvideHttp(cfg)
	default:
		return nil, fmt.Errorf("unsupported otel protocol %q", cfg.Otel.Protocol)
	}
}
