package observability

import (
	"context"
	"net/http"
	"net/http/pprof"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/grafana/pyroscope-go"
	"github.com/uptrace/uptrace-go/uptrace"

	"github.com/felixbhw/n17-dash/internal/config"
	"github.com/felixbhw/n17-dash/internal/platform/logging"
)

// Telemetry owns the process-wide exporters started for the API binary:
// Uptrace traces and logs, Pyroscope profiles and the pprof listener. Each
// part is optional and configured independently.
type Telemetry struct {
	logger   *logging.Logger
	uptrace  bool
	profiler *pyroscope.Profiler
	pprof    *http.Server
}

// Start brings up every enabled exporter. On error the parts that already
// started are shut down before returning.
func Start(cfg config.Config, logger *logging.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = logging.Default()
	}
	t := &Telemetry{logger: logger.Named("telemetry")}

	t.startUptrace(cfg)

	if err := t.startPyroscope(cfg); err != nil {
		_ = t.Shutdown(context.Background())
		return nil, errors.Wrap(err, "start pyroscope")
	}
	t.startPprof(cfg)

	return t, nil
}

func (t *Telemetry) startUptrace(cfg config.Config) {
	logging.SetMirror(nil)
	if !cfg.UptraceEnabled || strings.TrimSpace(cfg.UptraceDSN) == "" {
		t.logger.Info("uptrace disabled", "enabled", cfg.UptraceEnabled)
		return
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		uptrace.WithLoggingEnabled(cfg.UptraceLogsEnabled),
	)
	t.uptrace = true
	if cfg.UptraceLogsEnabled {
		logging.SetMirror(newLogMirror(cfg.ServiceVersion))
	}
	t.logger.Info("uptrace enabled",
		"service_version", cfg.ServiceVersion,
		"environment", cfg.AppEnv,
		"logs_enabled", cfg.UptraceLogsEnabled,
	)
}

func (t *Telemetry) startPyroscope(cfg config.Config) error {
	if !cfg.PyroscopeEnabled {
		t.logger.Info("pyroscope disabled")
		return nil
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.PyroscopeAppName,
		ServerAddress:   cfg.PyroscopeServerAddress,
		AuthToken:       cfg.PyroscopeAuthToken,
		UploadRate:      cfg.PyroscopeUploadRate,
		Tags: map[string]string{
			"env":     cfg.AppEnv,
			"service": cfg.ServiceName,
		},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
	})
	if err != nil {
		return err
	}
	t.profiler = profiler
	t.logger.Info("pyroscope enabled", "server_address", cfg.PyroscopeServerAddress, "application", cfg.PyroscopeAppName)
	return nil
}

func (t *Telemetry) startPprof(cfg config.Config) {
	if !cfg.PprofEnabled {
		t.logger.Info("pprof disabled")
		return
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	t.pprof = &http.Server{
		Addr:              cfg.PprofAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	srv := t.pprof
	go func() {
		t.logger.Info("pprof listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.logger.Error("pprof server failed", "error", err)
		}
	}()
}

// Shutdown stops the exporters in reverse start order and returns every
// failure combined. It is safe on a nil Telemetry.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}

	var result error
	if t.pprof != nil {
		if err := t.pprof.Shutdown(ctx); err != nil {
			result = errors.CombineErrors(result, errors.Wrap(err, "stop pprof"))
		}
		t.pprof = nil
	}
	if t.profiler != nil {
		if err := t.profiler.Stop(); err != nil {
			result = errors.CombineErrors(result, errors.Wrap(err, "stop pyroscope"))
		}
		t.profiler = nil
	}
	if t.uptrace {
		logging.SetMirror(nil)
		if err := uptrace.Shutdown(ctx); err != nil {
			result = errors.CombineErrors(result, errors.Wrap(err, "shutdown uptrace"))
		}
		t.uptrace = false
	}
	return result
}
