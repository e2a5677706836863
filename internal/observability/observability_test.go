package observability

import (
	"testing"

	"github.com/fulmenhq/gofulmen/crucible"
	"go.uber.org/zap"
)

func TestInitCLILogger(t *testing.T) {
	InitCLILogger("medfront-test", false)
	if CLILogger == nil {
		t.Fatal("CLI logger should not be nil after initialization")
	}
	CLILogger.Info("cli logger ready", zap.String("mode", "default"))

	InitCLILogger("medfront-test", true)
	if CLILogger == nil {
		t.Fatal("CLI logger should not be nil in verbose mode")
	}
	CLILogger.Debug("verbose logging enabled")
}

func TestInitServerLoggerWithNamespace(t *testing.T) {
	InitServerLogger("medfront-test", "debug", "medfront")
	if ServerLogger == nil {
		t.Fatal("server logger should not be nil after initialization")
	}
	ServerLogger.Info("server logger ready",
		zap.String("component", "observability"),
		zap.Int("attempt", 1))
}

func TestSeverityName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"trace", "TRACE"},
		{"debug", "DEBUG"},
		{"info", "INFO"},
		{"WARN", "WARN"},
		{"warning", "WARN"},
		{" error ", "ERROR"},
		{"nonsense", "INFO"},
		{"", "INFO"},
	}

	for _, tc := range cases {
		if got := severityName(tc.in); got != tc.want {
			t.Errorf("severityName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestInitMetricsBindsAPort(t *testing.T) {
	if err := InitMetrics("medfront-test", 0); err != nil {
		t.Fatalf("failed to initialize metrics: %v", err)
	}
	if TelemetrySystem == nil {
		t.Fatal("telemetry system should not be nil after initialization")
	}
	if PrometheusExporter == nil {
		t.Fatal("prometheus exporter should not be nil after initialization")
	}
	if GetMetricsPort() <= 0 {
		t.Fatalf("expected a bound metrics port, got %d", GetMetricsPort())
	}

	_ = TelemetrySystem.Counter("observability_test_total", 1, map[string]string{"source": "test"})
}

// The version handler reports embedded crucible metadata; make sure it is
// present in the build.
func TestCrucibleVersionAvailable(t *testing.T) {
	version := crucible.GetVersion()
	if version.Gofulmen == "" {
		t.Error("gofulmen version should not be empty")
	}
	if version.Crucible == "" {
		t.Error("crucible version should not be empty")
	}
}
