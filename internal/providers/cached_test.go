package providers

import (
	"context"
	"errors"
	"testing"
)

type stubModel struct {
	calls   int
	content string
	err     error
}

func (s *stubModel) Name() string { return "stub" }

func (s *stubModel) Generate(ctx context.Context, req Request) (Response, error) {
	s.calls++
	if s.err != nil {
		return Response{}, s.err
	}
	return Response{Content: s.content}, nil
}

type mapStore map[string]string

func (m mapStore) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (m mapStore) Put(key, response string) error {
	m[key] = response
	return nil
}

func TestCached_HitSkipsModel(t *testing.T) {
	stub := &stubModel{content: `{"bugs": []}`}
	m := NewCached(stub, "m1", mapStore{})
	req := Request{UserPrompt: "review this"}

	first, err := m.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if first.Cached {
		t.Error("first call should not be served from cache")
	}

	second, err := m.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if !second.Cached || second.Content != first.Content {
		t.Errorf("second call = %+v, want cached copy of %q", second, first.Content)
	}
	if stub.calls != 1 {
		t.Errorf("model called %d times, want 1", stub.calls)
	}
}

func TestCached_DifferentPromptsMiss(t *testing.T) {
	stub := &stubModel{content: "x"}
	m := NewCached(stub, "m1", mapStore{})
	m.Generate(context.Background(), Request{UserPrompt: "a"})
	m.Generate(context.Background(), Request{UserPrompt: "b"})
	m.Generate(context.Background(), Request{UserPrompt: "a", Temperature: 0.5})
	if stub.calls != 3 {
		t.Errorf("model called %d times, want 3", stub.calls)
	}
}

func TestCached_ErrorsNotStored(t *testing.T) {
	stub := &stubModel{err: errors.New("boom")}
	store := mapStore{}
	m := NewCached(stub, "m1", store)
	if _, err := m.Generate(context.Background(), Request{UserPrompt: "a"}); err == nil {
		t.Fatal("expected error")
	}
	if len(store) != 0 {
		t.Errorf("store has %d entries after error, want 0", len(store))
	}
}

func TestCached_RejectedResponsesNotStored(t *testing.T) {
	stub := &stubModel{content: "not json"}
	store := mapStore{}
	m := NewCached(stub, "m1", store)
	req := Request{
		UserPrompt: "a",
		Cacheable:  func(content string) bool { return content != "not json" },
	}

	for range 2 {
		resp, err := m.Generate(context.Background(), req)
		if err != nil {
			t.Fatalf("Generate error: %v", err)
		}
		if resp.Cached {
			t.Error("rejected response served from cache")
		}
	}
	if len(store) != 0 {
		t.Errorf("store has %d entries, want 0", len(store))
	}
	if stub.calls != 2 {
		t.Errorf("model called %d times, want 2", stub.calls)
	}
}

func TestNewCached_NilStore(t *testing.T) {
	stub := &stubModel{}
	if got := NewCached(stub, "m1", nil); got != Model(stub) {
		t.Error("NewCached with nil store should return the model unchanged")
	}
}
