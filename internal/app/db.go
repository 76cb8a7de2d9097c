package app

import (
	"context"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/felixbhw/n17-dash/internal/config"
)

const (
	preparedBinaryParam = "disable_prepared_binary_result"
	maxTracedQueryBytes = 512
)

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := postgresDSN(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(databaseName(dsn)),
		otelsql.WithQueryFormatter(traceQuery),
	)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}
	return db, nil
}

// postgresDSN adds disable_prepared_binary_result=yes to URL-style DSNs so
// the store works behind transaction poolers. An explicit value is kept.
func postgresDSN(raw string, disablePreparedBinary bool) string {
	raw = strings.TrimSpace(raw)
	if !disablePreparedBinary {
		return raw
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" {
		return raw
	}
	query := parsed.Query()
	if query.Get(preparedBinaryParam) != "" {
		return raw
	}
	query.Set(preparedBinaryParam, "yes")
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

// databaseName reads dbname from either a postgres:// URL or a key=value DSN.
func databaseName(dsn string) string {
	dsn = strings.TrimSpace(dsn)
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		converted, err := pq.ParseURL(dsn)
		if err != nil {
			return ""
		}
		dsn = converted
	}
	for _, token := range strings.Fields(dsn) {
		if name, ok := strings.CutPrefix(token, "dbname="); ok {
			return strings.Trim(name, `"'`)
		}
	}
	return ""
}

// traceQuery collapses whitespace so multi-line statements read as one span
// attribute, and caps the length.
func traceQuery(query string) string {
	normalized := strings.Join(strings.Fields(query), " ")
	if len(normalized) <= maxTracedQueryBytes {
		return normalized
	}
	return normalized[:maxTracedQueryBytes] + "..."
}
