package postgres

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestIsUniqueViolation(t *testing.T) {
	t.Run("matches wrapped unique violation", func(t *testing.T) {
		err := fmt.Errorf("insert news item: %w", &pq.Error{Code: "23505"})
		if !isUniqueViolation(err) {
			t.Fatalf("expected true for unique violation")
		}
	})

	t.Run("ignores other pq errors", func(t *testing.T) {
		if isUniqueViolation(&pq.Error{Code: "42P01"}) {
			t.Fatalf("expected false for undefined table")
		}
	})
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(fmt.Errorf("get: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped ErrNoRows to be not found")
	}
	if isNotFound(fmt.Errorf("boom")) {
		t.Fatalf("expected plain error to not be not found")
	}
}

func TestNullString(t *testing.T) {
	if got := nullString("  "); got.Valid {
		t.Fatalf("expected blank to be null, got %+v", got)
	}
	if got := nullString(" incoming "); !got.Valid || got.String != "incoming" {
		t.Fatalf("unexpected value: %+v", got)
	}
}

func TestUnprocessedIDsQuery_ExcludesFailed(t *testing.T) {
	query, args, err := unprocessedIDsQuery().ToSql()
	if err != nil {
		t.Fatalf("build query: %v", err)
	}
	want := "SELECT id FROM news_items WHERE processed_at IS NULL AND failed_at IS NULL ORDER BY id"
	if query != want {
		t.Fatalf("unexpected query:\n got %s\nwant %s", query, want)
	}
	if len(args) != 0 {
		t.Fatalf("expected no args, got %v", args)
	}
}
