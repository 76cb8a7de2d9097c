package optional

import (
	"testing"

	"github.com/bytedance/sonic"
)

type payload struct {
	Status Field[string] `json:"status"`
	Score  Field[int]    `json:"score"`
}

func TestField_DistinguishesAbsentNullAndSet(t *testing.T) {
	t.Parallel()

	var p payload
	if err := sonic.ConfigStd.Unmarshal([]byte(`{"status": null}`), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Status.IsNull() {
		t.Fatalf("expected explicit null, got state %d", p.Status.State())
	}
	if !p.Score.IsAbsent() {
		t.Fatalf("expected absent score, got state %d", p.Score.State())
	}

	p = payload{}
	if err := sonic.ConfigStd.Unmarshal([]byte(`{"status": "rumors", "score": 70}`), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	status, ok := p.Status.Get()
	if !ok || status != "rumors" {
		t.Fatalf("unexpected status: %q %v", status, ok)
	}
	if score, ok := p.Score.Get(); !ok || score != 70 {
		t.Fatalf("unexpected score: %d %v", score, ok)
	}
}

func TestField_RejectsWrongType(t *testing.T) {
	t.Parallel()

	var p payload
	if err := sonic.ConfigStd.Unmarshal([]byte(`{"score": "high"}`), &p); err == nil {
		t.Fatalf("expected type error")
	}
}

func TestMap(t *testing.T) {
	t.Parallel()

	double := func(v int) int { return v * 2 }
	if got, _ := Map(Of(21), double).Get(); got != 42 {
		t.Fatalf("expected mapped value 42, got %d", got)
	}
	if !Map(Null[int](), double).IsNull() {
		t.Fatalf("expected null to stay null")
	}
	if !Map(Field[int]{}, double).IsAbsent() {
		t.Fatalf("expected absent to stay absent")
	}
}
