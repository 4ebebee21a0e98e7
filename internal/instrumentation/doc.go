// Package instrumentation provides OpenTelemetry metrics, tracing and audit
// logging for graphcal.
//
// # Metrics
//
// Graph API Metrics:
//   - graph_api_operations_total: Counter of Graph calls by operation and status
//   - graph_api_operation_duration_seconds: Histogram of Graph call durations
//
// Authentication Metrics:
//   - oauth_token_requests_total: Counter of token endpoint requests by result
//
// Validation Metrics:
//   - event_validation_failures_total: Counter of event requests rejected locally
//
// # Tracing
//
// A client span named graph.<operation> is created for every Graph call.
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: graphcal)
//
// graphcal is a short-lived CLI, so the Prometheus exporter writes into a
// private registry instead of serving /metrics. Provider.WriteTextfile dumps it
// in the node_exporter textfile collector format at the end of a run.
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordGraphOperation(ctx, instrumentation.OperationCreate, instrumentation.StatusSuccess, time.Since(start))
//	_ = provider.WriteTextfile("/var/lib/node_exporter/graphcal.prom")
package instrumentation
