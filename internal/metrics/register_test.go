package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegister_Idempotent(t *testing.T) {
	Register()
	Register()
}

func TestRegisterWith_CustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := RegisterWith(reg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := RegisterWith(reg); err != nil {
		t.Fatalf("second registration must be tolerated: %v", err)
	}

	EmbeddingDegradedTotal.WithLabelValues("fallback").Inc()
	n, err := testutil.GatherAndCount(reg, "ayat_embedding_degraded_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n == 0 {
		t.Error("expected ayat_embedding_degraded_total in custom registry")
	}
}
