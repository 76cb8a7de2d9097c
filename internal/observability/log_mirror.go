package observability

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	otellog "go.opentelemetry.io/otel/log"
	otelglobal "go.opentelemetry.io/otel/log/global"
	"go.uber.org/zap/zapcore"

	"github.com/felixbhw/n17-dash/internal/platform/logging"
)

const logInstrumentation = "n17-dash/internal/platform/logging"

// Request log lines for these paths stay local; probes hit them every few
// seconds.
var quietPaths = map[string]struct{}{
	"/healthz": {},
}

func newLogMirror(serviceVersion string) logging.MirrorFunc {
	otelLogger := otelglobal.Logger(logInstrumentation, otellog.WithInstrumentationVersion(serviceVersion))

	return func(ctx context.Context, level logging.Level, msg string, args ...any) {
		if ctx == nil {
			ctx = context.Background()
		}
		if isQuietRequest(msg, args) {
			return
		}
		severity := severityOf(level)
		if !otelLogger.Enabled(ctx, otellog.EnabledParameters{Severity: severity, EventName: msg}) {
			return
		}

		now := time.Now().UTC()
		var record otellog.Record
		record.SetTimestamp(now)
		record.SetObservedTimestamp(now)
		record.SetSeverity(severity)
		record.SetSeverityText(strings.ToUpper(level.String()))
		record.SetEventName(msg)
		record.SetBody(otellog.StringValue(msg))
		if attrs := logAttributes(args); len(attrs) > 0 {
			record.AddAttributes(attrs...)
		}
		otelLogger.Emit(ctx, record)
	}
}

func isQuietRequest(msg string, args []any) bool {
	if msg != "http request" {
		return false
	}
	for i := 0; i+1 < len(args); i += 2 {
		if key, _ := args[i].(string); key == "path" {
			path, _ := args[i+1].(string)
			_, quiet := quietPaths[path]
			return quiet
		}
	}
	return false
}

func logAttributes(args []any) []otellog.KeyValue {
	if len(args) == 0 {
		return nil
	}
	out := make([]otellog.KeyValue, 0, (len(args)+1)/2)
	for i := 0; i < len(args); i += 2 {
		key, _ := args[i].(string)
		if strings.TrimSpace(key) == "" {
			key = fmt.Sprintf("arg_%d", i/2)
		}
		if i+1 >= len(args) {
			out = append(out, otellog.Empty(key))
			break
		}
		out = append(out, otellog.KeyValue{Key: key, Value: logValue(args[i+1])})
	}
	return out
}

func severityOf(level zapcore.Level) otellog.Severity {
	switch {
	case level <= zapcore.DebugLevel:
		return otellog.SeverityDebug
	case level == zapcore.InfoLevel:
		return otellog.SeverityInfo
	case level == zapcore.WarnLevel:
		return otellog.SeverityWarn
	case level >= zapcore.DPanicLevel:
		return otellog.SeverityFatal
	default:
		return otellog.SeverityError
	}
}

// logValue keeps scalars typed and flattens anything composite (news ids,
// extraction summaries, status maps) to its JSON text.
func logValue(value any) otellog.Value {
	switch v := value.(type) {
	case nil:
		return otellog.Value{}
	case string:
		return otellog.StringValue(v)
	case bool:
		return otellog.BoolValue(v)
	case int:
		return otellog.IntValue(v)
	case int32:
		return otellog.Int64Value(int64(v))
	case int64:
		return otellog.Int64Value(v)
	case float64:
		return otellog.Float64Value(v)
	case time.Time:
		return otellog.StringValue(v.UTC().Format(time.RFC3339Nano))
	case time.Duration:
		return otellog.StringValue(v.String())
	case error:
		return otellog.StringValue(v.Error())
	case fmt.Stringer:
		return otellog.StringValue(v.String())
	case []string:
		items := make([]otellog.Value, 0, len(v))
		for _, item := range v {
			items = append(items, otellog.StringValue(item))
		}
		return otellog.SliceValue(items...)
	}

	raw, err := sonic.ConfigStd.Marshal(value)
	if err != nil {
		return otellog.StringValue(fmt.Sprint(value))
	}
	return otellog.StringValue(string(raw))
}
