package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/felixbhw/n17-dash/internal/platform/logging"
	"github.com/felixbhw/n17-dash/internal/platform/resilience"
)

const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StorePostgres = "postgres"
)

// Config stores runtime configuration for the service and the CLI.
type Config struct {
	AppEnv                  string
	ServiceName             string
	ServiceVersion          string
	HTTPAddr                string
	ReadTimeout             time.Duration
	WriteTimeout            time.Duration
	CORSAllowedOrigins      []string
	LogLevel                logging.Level
	StoreDriver             string
	DataDir                 string
	DBURL                   string
	DBDisablePreparedBinary bool
	ManualMappingsPath      string
	ManualMappingsOptional  bool
	HomeTeamID              string
	OpenAIBaseURL           string
	OpenAIAPIKey            string
	OpenAIModel             string
	OpenAITemperature       float64
	OpenAITimeout           time.Duration
	OpenAIMaxRetries        int
	OpenAICircuit           resilience.CircuitBreakerConfig
	APIFootballBaseURL      string
	APIFootballKey          string
	APIFootballTimeout      time.Duration
	APIFootballMaxRetries   int
	APIFootballCircuit      resilience.CircuitBreakerConfig
	RosterCacheTTL          time.Duration
	LinkListCacheTTL        time.Duration
	ArticleFetchEnabled     bool
	ArticleFetchTimeout     time.Duration
	ArticleFetchMaxChars    int
	LinkerEnabled           bool
	LinkerInterval          time.Duration
	LinkerMaxWorkers        int
	LinkerMaxRejections     int
	InternalJobToken        string
	PprofEnabled            bool
	PprofAddr               string
	UptraceEnabled          bool
	UptraceDSN              string
	UptraceLogsEnabled      bool
	PyroscopeEnabled        bool
	PyroscopeServerAddress  string
	PyroscopeAppName        string
	PyroscopeAuthToken      string
	PyroscopeUploadRate     time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := getEnvAsPositiveDuration("APP_READ_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}
	writeTimeout, err := getEnvAsPositiveDuration("APP_WRITE_TIMEOUT", "15s")
	if err != nil {
		return Config{}, err
	}

	storeDriver := strings.ToLower(strings.TrimSpace(getEnv("STORE_DRIVER", StoreFile)))
	switch storeDriver {
	case StoreMemory, StoreFile, StorePostgres:
	default:
		return Config{}, fmt.Errorf("invalid STORE_DRIVER %q: valid values are %s, %s, %s", storeDriver, StoreMemory, StoreFile, StorePostgres)
	}
	dataDir := strings.TrimSpace(getEnv("DATA_DIR", "./data"))
	dbURL := strings.TrimSpace(getEnv("DB_URL", ""))
	if storeDriver == StorePostgres && dbURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required when STORE_DRIVER=postgres")
	}
	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	manualMappingsPath := strings.TrimSpace(getEnv("MANUAL_MAPPINGS_PATH", ""))
	manualMappingsOptional := false
	if manualMappingsPath == "" && storeDriver == StoreFile {
		// The data dir default may not exist yet on a fresh install.
		manualMappingsPath = strings.TrimRight(dataDir, "/") + "/manual_player_mappings.json"
		manualMappingsOptional = true
	}

	homeTeamID := strings.TrimSpace(getEnv("HOME_TEAM_ID", "47"))
	if _, err := strconv.ParseInt(homeTeamID, 10, 64); err != nil {
		return Config{}, fmt.Errorf("HOME_TEAM_ID must be numeric: %w", err)
	}

	openAITemperature, err := strconv.ParseFloat(getEnv("OPENAI_TEMPERATURE", "0"), 64)
	if err != nil {
		return Config{}, fmt.Errorf("parse OPENAI_TEMPERATURE: %w", err)
	}
	if openAITemperature < 0 || openAITemperature > 2 {
		return Config{}, fmt.Errorf("OPENAI_TEMPERATURE must be between 0 and 2")
	}
	openAITimeout, err := getEnvAsPositiveDuration("OPENAI_TIMEOUT", "60s")
	if err != nil {
		return Config{}, err
	}
	openAIMaxRetries, err := getEnvAsNonNegativeInt("OPENAI_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, err
	}
	openAICircuit, err := parseCircuit("OPENAI")
	if err != nil {
		return Config{}, err
	}

	apiFootballTimeout, err := getEnvAsPositiveDuration("APIFOOTBALL_TIMEOUT", "20s")
	if err != nil {
		return Config{}, err
	}
	apiFootballMaxRetries, err := getEnvAsNonNegativeInt("APIFOOTBALL_MAX_RETRIES", 1)
	if err != nil {
		return Config{}, err
	}
	apiFootballCircuit, err := parseCircuit("APIFOOTBALL")
	if err != nil {
		return Config{}, err
	}

	rosterCacheTTL, err := getEnvAsPositiveDuration("ROSTER_CACHE_TTL", "6h")
	if err != nil {
		return Config{}, err
	}

	linkListCacheTTL, err := getEnvAsPositiveDuration("LINK_LIST_CACHE_TTL", "30s")
	if err != nil {
		return Config{}, err
	}

	articleFetchEnabled, err := strconv.ParseBool(getEnv("ARTICLE_FETCH_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ARTICLE_FETCH_ENABLED: %w", err)
	}
	articleFetchTimeout, err := getEnvAsPositiveDuration("ARTICLE_FETCH_TIMEOUT", "15s")
	if err != nil {
		return Config{}, err
	}
	articleFetchMaxChars, err := getEnvAsInt("ARTICLE_FETCH_MAX_CHARS", 8000)
	if err != nil {
		return Config{}, fmt.Errorf("parse ARTICLE_FETCH_MAX_CHARS: %w", err)
	}
	if articleFetchMaxChars < 1 {
		return Config{}, fmt.Errorf("ARTICLE_FETCH_MAX_CHARS must be >= 1")
	}

	linkerEnabled, err := strconv.ParseBool(getEnv("LINKER_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse LINKER_ENABLED: %w", err)
	}
	linkerInterval, err := getEnvAsPositiveDuration("LINKER_INTERVAL", "5m")
	if err != nil {
		return Config{}, err
	}
	linkerMaxWorkers, err := getEnvAsInt("LINKER_MAX_WORKERS", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse LINKER_MAX_WORKERS: %w", err)
	}
	if linkerMaxWorkers < 1 {
		return Config{}, fmt.Errorf("LINKER_MAX_WORKERS must be >= 1")
	}
	linkerMaxRejections, err := getEnvAsInt("LINKER_MAX_REJECTIONS", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse LINKER_MAX_REJECTIONS: %w", err)
	}
	if linkerMaxRejections < 1 {
		return Config{}, fmt.Errorf("LINKER_MAX_REJECTIONS must be >= 1")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := getEnvAsPositiveDuration("PYROSCOPE_UPLOAD_RATE", "15s")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:                  appEnv,
		ServiceName:             getEnv("APP_SERVICE_NAME", "n17-dash"),
		ServiceVersion:          getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:             readTimeout,
		WriteTimeout:            writeTimeout,
		CORSAllowedOrigins:      splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:                logging.ParseLevel(strings.ToLower(strings.TrimSpace(getEnv("APP_LOG_LEVEL", "info")))),
		StoreDriver:             storeDriver,
		DataDir:                 dataDir,
		DBURL:                   dbURL,
		DBDisablePreparedBinary: dbDisablePreparedBinary,
		ManualMappingsPath:      manualMappingsPath,
		ManualMappingsOptional:  manualMappingsOptional,
		HomeTeamID:              homeTeamID,
		OpenAIBaseURL:           strings.TrimSpace(getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1")),
		OpenAIAPIKey:            strings.TrimSpace(getEnv("OPENAI_API_KEY", "")),
		OpenAIModel:             strings.TrimSpace(getEnv("OPENAI_MODEL", "gpt-4o-mini")),
		OpenAITemperature:       openAITemperature,
		OpenAITimeout:           openAITimeout,
		OpenAIMaxRetries:        openAIMaxRetries,
		OpenAICircuit:           openAICircuit,
		APIFootballBaseURL:      strings.TrimSpace(getEnv("APIFOOTBALL_BASE_URL", "https://v3.football.api-sports.io")),
		APIFootballKey:          strings.TrimSpace(getEnv("APIFOOTBALL_KEY", "")),
		APIFootballTimeout:      apiFootballTimeout,
		APIFootballMaxRetries:   apiFootballMaxRetries,
		APIFootballCircuit:      apiFootballCircuit,
		RosterCacheTTL:          rosterCacheTTL,
		LinkListCacheTTL:        linkListCacheTTL,
		ArticleFetchEnabled:     articleFetchEnabled,
		ArticleFetchTimeout:     articleFetchTimeout,
		ArticleFetchMaxChars:    articleFetchMaxChars,
		LinkerEnabled:           linkerEnabled,
		LinkerInterval:          linkerInterval,
		LinkerMaxWorkers:        linkerMaxWorkers,
		LinkerMaxRejections:     linkerMaxRejections,
		InternalJobToken:        strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
		PprofEnabled:            pprofEnabled,
		PprofAddr:               pprofAddr,
		UptraceEnabled:          uptraceEnabled,
		UptraceDSN:              uptraceDSN,
		UptraceLogsEnabled:      uptraceLogsEnabled,
		PyroscopeEnabled:        pyroscopeEnabled,
		PyroscopeServerAddress:  pyroscopeServerAddress,
		PyroscopeAuthToken:      strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeUploadRate:     pyroscopeUploadRate,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PprofEnabled && cfg.PprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if appEnv == EnvProd && cfg.InternalJobToken == "" {
		return Config{}, fmt.Errorf("INTERNAL_JOB_TOKEN is required when APP_ENV=prod")
	}

	return cfg, nil
}

// parseCircuit reads <PREFIX>_CIRCUIT_{ENABLED,FAILURE_COUNT,OPEN_TIMEOUT,HALF_OPEN_MAX_REQ}.
func parseCircuit(prefix string) (resilience.CircuitBreakerConfig, error) {
	defaults := resilience.DefaultCircuitBreakerConfig()

	enabledKey := prefix + "_CIRCUIT_ENABLED"
	enabled, err := strconv.ParseBool(getEnv(enabledKey, strconv.FormatBool(defaults.Enabled)))
	if err != nil {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("parse %s: %w", enabledKey, err)
	}

	failureKey := prefix + "_CIRCUIT_FAILURE_COUNT"
	failureCount, err := getEnvAsInt(failureKey, defaults.FailureThreshold)
	if err != nil {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("parse %s: %w", failureKey, err)
	}
	if failureCount < 1 {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("%s must be >= 1", failureKey)
	}

	openTimeout, err := getEnvAsPositiveDuration(prefix+"_CIRCUIT_OPEN_TIMEOUT", defaults.OpenTimeout.String())
	if err != nil {
		return resilience.CircuitBreakerConfig{}, err
	}

	halfOpenKey := prefix + "_CIRCUIT_HALF_OPEN_MAX_REQ"
	halfOpenMaxReq, err := getEnvAsInt(halfOpenKey, defaults.HalfOpenMaxReq)
	if err != nil {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("parse %s: %w", halfOpenKey, err)
	}
	if halfOpenMaxReq < 1 {
		return resilience.CircuitBreakerConfig{}, fmt.Errorf("%s must be >= 1", halfOpenKey)
	}

	return resilience.CircuitBreakerConfig{
		Enabled:          enabled,
		FailureThreshold: failureCount,
		OpenTimeout:      openTimeout,
		HalfOpenMaxReq:   halfOpenMaxReq,
	}, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsNonNegativeInt(key string, fallback int) (int, error) {
	value, err := getEnvAsInt(key, fallback)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("%s must be >= 0", key)
	}
	return value, nil
}

func getEnvAsPositiveDuration(key, fallback string) (time.Duration, error) {
	value, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return value, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
