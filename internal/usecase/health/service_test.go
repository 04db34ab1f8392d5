package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

type mockEmbeddingChecker struct {
	err error
}

func (m *mockEmbeddingChecker) HealthCheck(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockPinger{}, &mockPinger{}, &mockEmbeddingChecker{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	for _, name := range []string{VectorStore, TextStore, Embedding} {
		if r.Checks[name] != CheckOK {
			t.Errorf("expected %s %q, got %q", name, CheckOK, r.Checks[name])
		}
	}
}

func TestCheck_VectorStoreDownIsUnhealthy(t *testing.T) {
	svc := New(&mockPinger{err: errors.New("conn refused")}, &mockPinger{}, &mockEmbeddingChecker{})
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks[VectorStore] != CheckError {
		t.Errorf("expected vector_store %q, got %q", CheckError, r.Checks[VectorStore])
	}
}

func TestCheck_TextStoreDownIsDegraded(t *testing.T) {
	svc := New(&mockPinger{}, &mockPinger{err: errors.New("pg down")}, &mockEmbeddingChecker{})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks[TextStore] != CheckError {
		t.Errorf("expected text_store %q, got %q", CheckError, r.Checks[TextStore])
	}
}

func TestCheck_EmbeddingError(t *testing.T) {
	svc := New(&mockPinger{}, &mockPinger{}, &mockEmbeddingChecker{err: errors.New("timeout")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks[Embedding] != CheckError {
		t.Errorf("expected embedding %q, got %q", CheckError, r.Checks[Embedding])
	}
	if r.Checks[VectorStore] != CheckOK {
		t.Errorf("expected vector_store %q, got %q", CheckOK, r.Checks[VectorStore])
	}
}

func TestCheck_OptionalComponentsAbsent(t *testing.T) {
	svc := New(&mockPinger{}, nil, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks[TextStore]; ok {
		t.Error("text_store check should be absent when nil")
	}
	if _, ok := r.Checks[Embedding]; ok {
		t.Error("embedding check should be absent when nil")
	}
}
