package providers

import (
	"context"
	"testing"
	"time"
)

func TestRegistry(t *testing.T) {
	t.Run("register and get", func(t *testing.T) {
		r := NewRegistry()
		mock := NewMockClient()
		r.Register("mock", mock)

		got, err := r.Get("mock")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Name() != MockClientName {
			t.Errorf("unexpected client: %s", got.Name())
		}
	})

	t.Run("get unknown client errors", func(t *testing.T) {
		r := NewRegistry()
		if _, err := r.Get("nope"); err == nil {
			t.Error("expected error for unknown client")
		}
	})

	t.Run("unregister removes the client", func(t *testing.T) {
		r := NewRegistry()
		r.Register("mock", NewMockClient())
		r.Unregister("mock")
		if _, err := r.Get("mock"); err == nil {
			t.Error("expected error after unregister")
		}
	})
}

func TestRegistry_Reload(t *testing.T) {
	r := NewRegistry()

	t.Run("builds enabled providers only", func(t *testing.T) {
		r.Reload(RegistryConfig{Providers: map[string]ClientConfig{
			"primary":  {Type: "mock", Enabled: true},
			"disabled": {Type: "mock", Enabled: false},
		}})

		if _, err := r.Get("primary"); err != nil {
			t.Errorf("expected primary to be registered: %v", err)
		}
		if _, err := r.Get("disabled"); err == nil {
			t.Error("expected disabled provider to be skipped")
		}
	})

	t.Run("skips unknown provider types", func(t *testing.T) {
		r.Reload(RegistryConfig{Providers: map[string]ClientConfig{
			"weird": {Type: "telepathy", Enabled: true},
		}})
		if _, err := r.Get("weird"); err == nil {
			t.Error("expected unbuildable provider to be skipped")
		}
	})

	t.Run("removes providers absent from the new config", func(t *testing.T) {
		r.Reload(RegistryConfig{Providers: map[string]ClientConfig{
			"a": {Type: "mock", Enabled: true},
		}})
		r.Reload(RegistryConfig{Providers: map[string]ClientConfig{
			"b": {Type: "mock", Enabled: true},
		}})

		if _, err := r.Get("a"); err == nil {
			t.Error("expected a to be removed")
		}
		if _, err := r.Get("b"); err != nil {
			t.Errorf("expected b to be registered: %v", err)
		}
	})

	t.Run("builds real client types", func(t *testing.T) {
		r.Reload(RegistryConfig{Providers: map[string]ClientConfig{
			"openai":     {Type: OpenAIName, APIKey: "k", Enabled: true},
			"openrouter": {Type: OpenRouterName, APIKey: "k", Enabled: true},
		}})
		if len(r.List()) != 2 {
			t.Errorf("expected 2 providers, got %v", r.List())
		}
	})
}

func TestRateLimiter(t *testing.T) {
	t.Run("allows burst up to the rate", func(t *testing.T) {
		rl := NewRateLimiter(10)
		ctx := context.Background()

		start := time.Now()
		for i := 0; i < 5; i++ {
			if err := rl.Wait(ctx); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
			t.Errorf("burst within bucket should not block, took %v", elapsed)
		}
	})

	t.Run("blocks when the bucket is drained", func(t *testing.T) {
		rl := NewRateLimiter(2)
		ctx := context.Background()

		// Drain the bucket.
		for i := 0; i < 2; i++ {
			if err := rl.Wait(ctx); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		start := time.Now()
		if err := rl.Wait(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if elapsed := time.Since(start); elapsed < 200*time.Millisecond {
			t.Errorf("expected to wait for a token, waited %v", elapsed)
		}
	})

	t.Run("cancellation unblocks the wait", func(t *testing.T) {
		rl := NewRateLimiter(0.1)
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		// First token is free; the second would wait ~10s.
		if err := rl.Wait(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := rl.Wait(ctx); err == nil {
			t.Error("expected context error")
		}
	})

	t.Run("non-positive rate falls back to default", func(t *testing.T) {
		rl := NewRateLimiter(0)
		if rl.requestsPerSecond != 2.0 {
			t.Errorf("expected default rate 2.0, got %f", rl.requestsPerSecond)
		}
	})
}

func TestMockClient(t *testing.T) {
	t.Run("ordered responses with last repeating", func(t *testing.T) {
		mock := NewMockClient()
		mock.Responses = []string{"first", "second"}
		ctx := context.Background()

		for i, want := range []string{"first", "second", "second"} {
			res, err := mock.Generate(ctx, &VisionRequest{Prompt: "p"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Text != want {
				t.Errorf("call %d: expected %q, got %q", i, want, res.Text)
			}
		}
		if mock.RequestCount() != 3 {
			t.Errorf("expected 3 requests, got %d", mock.RequestCount())
		}
	})

	t.Run("fail after threshold", func(t *testing.T) {
		mock := NewMockClient()
		mock.FailAfter = 1
		ctx := context.Background()

		if _, err := mock.Generate(ctx, &VisionRequest{}); err != nil {
			t.Fatalf("first call should succeed: %v", err)
		}
		if _, err := mock.Generate(ctx, &VisionRequest{}); err == nil {
			t.Error("second call should fail")
		}
	})
}

func TestVisionRequest_MIMEType(t *testing.T) {
	req := &VisionRequest{}
	if got := req.mimeType(); got != "image/png" {
		t.Errorf("expected default image/png, got %s", got)
	}
	req.MIMEType = "image/jpeg"
	if got := req.mimeType(); got != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %s", got)
	}
}
