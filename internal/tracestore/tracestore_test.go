package tracestore_test

import (
	"context"
	"testing"

	"github.com/andreasronge/ptc-runner-sub009/internal/trace"
	"github.com/andreasronge/ptc-runner-sub009/internal/tracestore"
)

func openTestStore(t *testing.T) *tracestore.Store {
	t.Helper()
	s, err := tracestore.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	step := &trace.Step{Version: trace.FormatVersion, TraceID: "t1", Return: "6"}
	if err := s.Save(ctx, step); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Get(ctx, "t1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("Get(t1) = nil, want a step")
	}
	if got.Return != "6" {
		t.Errorf("got.Return = %v, want 6", got.Return)
	}
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)
	got, err := s.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("Get(missing) = %+v, want nil", got)
	}
}

func TestSaveUpsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, &trace.Step{TraceID: "t1", Return: "1"}); err != nil {
		t.Fatalf("Save 1: %v", err)
	}
	if err := s.Save(ctx, &trace.Step{TraceID: "t1", Return: "2"}); err != nil {
		t.Fatalf("Save 2: %v", err)
	}
	got, err := s.Get(ctx, "t1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Return != "2" {
		t.Errorf("got.Return = %v, want 2 (upsert should overwrite)", got.Return)
	}
}

func TestChildren(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, &trace.Step{TraceID: "parent"}); err != nil {
		t.Fatalf("Save parent: %v", err)
	}
	if err := s.Save(ctx, &trace.Step{TraceID: "child1", ParentTraceID: "parent"}); err != nil {
		t.Fatalf("Save child1: %v", err)
	}
	if err := s.Save(ctx, &trace.Step{TraceID: "child2", ParentTraceID: "parent"}); err != nil {
		t.Fatalf("Save child2: %v", err)
	}

	children, err := s.Children(ctx, "parent")
	if err != nil {
		t.Fatalf("Children: %v", err)
	}
	if len(children) != 2 {
		t.Fatalf("len(children) = %d, want 2", len(children))
	}
}
