package multi

import (
	"context"
	"errors"
	"testing"

	"github.com/crimson-sun/talepnlp/internal/model"
)

// mockOutput records calls for test assertions.
type mockOutput struct {
	recs   []model.Record
	closed bool
	err    error // if set, Write and Close return this error
}

func (m *mockOutput) Write(_ context.Context, rec model.Record) error {
	m.recs = append(m.recs, rec)
	return m.err
}

func (m *mockOutput) Close() error {
	m.closed = true
	return m.err
}

func TestFanOutDeliversToAll(t *testing.T) {
	a, b := &mockOutput{}, &mockOutput{}
	m := New(a, b)

	for _, text := range []string{"bir", "iki", "uc"} {
		if err := m.Write(context.Background(), model.Record{Text: text}); err != nil {
			t.Fatalf("Write error: %v", err)
		}
	}
	for name, o := range map[string]*mockOutput{"a": a, "b": b} {
		if len(o.recs) != 3 {
			t.Errorf("%s got %d records, want 3", name, len(o.recs))
		}
		if o.recs[2].Text != "uc" {
			t.Errorf("%s last record = %q, want uc", name, o.recs[2].Text)
		}
	}
}

func TestErrorDoesNotPreventDelivery(t *testing.T) {
	boom := errors.New("disk full")
	a, b := &mockOutput{err: boom}, &mockOutput{}
	m := New(a, b)

	err := m.Write(context.Background(), model.Record{Text: "x"})
	if !errors.Is(err, boom) {
		t.Fatalf("Write error = %v, want %v", err, boom)
	}
	if len(b.recs) != 1 {
		t.Errorf("second output got %d records, want 1", len(b.recs))
	}
}

func TestCloseCollectsErrors(t *testing.T) {
	boom := errors.New("close failed")
	a, b := &mockOutput{err: boom}, &mockOutput{}
	m := New(a, b)

	if err := m.Close(); !errors.Is(err, boom) {
		t.Errorf("Close error = %v, want %v", err, boom)
	}
	if !a.closed || !b.closed {
		t.Error("every output should be closed")
	}
}

func TestNilOutputsSkipped(t *testing.T) {
	a := &mockOutput{}
	m := New(nil, a, nil)
	if m.Len() != 1 {
		t.Fatalf("Len = %d, want 1", m.Len())
	}
	if err := m.Write(context.Background(), model.Record{}); err != nil {
		t.Errorf("Write error: %v", err)
	}
}
