package metrics

import (
	"time"

	"github.com/medfront/medfront/internal/observability"
)

// Application-level metrics following Prometheus conventions
var (
	// Operations metrics
	OperationsTotal       = "app_operations_total"
	OperationsErrorsTotal = "app_operations_errors_total"

	// Connection metrics
	ActiveConnections = "app_active_connections"

	// Health check metrics
	HealthCheckTotal    = "app_health_check_total"
	HealthCheckDuration = "app_health_check_duration_ms"

	// Server lifecycle metrics
	ServerStartTime = "app_server_start_time_seconds"
	ServerUptime    = "app_server_uptime_seconds"

	// Document extraction metrics
	ExtractionsTotal = "app_document_extractions_total"
)

// RecordExtraction counts one document extraction attempt by extractor
// kind and dispatch outcome ("dispatched", "unsupported", "decode_error").
func RecordExtraction(extractor string, outcome string) {
	count(ExtractionsTotal, map[string]string{
		"extractor": extractor,
		"outcome":   outcome,
	})
}

// RecordOperation counts an application operation by outcome.
func RecordOperation(operation string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	count(OperationsTotal, map[string]string{
		"operation": operation,
		"status":    status,
	})
}

// RecordOperationError counts an operation failure by error type.
func RecordOperationError(operation string, errorType string) {
	count(OperationsErrorsTotal, map[string]string{
		"operation":  operation,
		"error_type": errorType,
	})
}

// SetActiveConnections sets the current number of active connections.
func SetActiveConnections(connections int64) {
	gauge(ActiveConnections, float64(connections), nil)
}

// RecordHealthCheck counts a health check run and records its duration.
func RecordHealthCheck(checkName string, healthy bool, duration time.Duration) {
	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}
	count(HealthCheckTotal, map[string]string{
		"check":  checkName,
		"status": status,
	})
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Histogram(
			HealthCheckDuration,
			duration,
			map[string]string{"check": checkName},
		)
	}
}

// SetServerStartTime records the server start time (Unix timestamp).
func SetServerStartTime(timestamp int64) {
	gauge(ServerStartTime, float64(timestamp), nil)
}

// SetServerUptime records the server uptime in seconds.
func SetServerUptime(seconds int64) {
	gauge(ServerUptime, float64(seconds), nil)
}

func gauge(name string, value float64, labels map[string]string) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(name, value, labels)
	}
}
