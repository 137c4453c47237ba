package cache

import (
	"context"
	"strings"
	"testing"

	"github.com/TobiSchelling/veritas/internal/verdict"
)

func TestKeyDependsOnModeAndText(t *testing.T) {
	k := Key("hybrid", "some text")
	if !strings.HasPrefix(k, keyPrefix) {
		t.Errorf("expected prefix %q in %q", keyPrefix, k)
	}
	if k != Key("hybrid", "some text") {
		t.Error("expected stable key")
	}
	if k == Key("ml_only", "some text") {
		t.Error("expected mode to change the key")
	}
	if k == Key("hybrid", "other text") {
		t.Error("expected text to change the key")
	}
	if Key("a", "bc") == Key("ab", "c") {
		t.Error("expected separator between mode and text")
	}
}

func TestNilCacheIsNoop(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	if c.Enabled() {
		t.Error("nil cache should be disabled")
	}
	c.Set(ctx, "hybrid", "text", verdict.Verdict{Label: verdict.Fake, Confidence: 0.9})
	if _, ok := c.Get(ctx, "hybrid", "text"); ok {
		t.Error("nil cache should never hit")
	}
	if err := c.Close(); err != nil {
		t.Errorf("unexpected close error: %v", err)
	}
}

func TestOpenWithoutAddress(t *testing.T) {
	if c := Open(context.Background(), "", 0); c != nil {
		t.Error("expected nil cache without address")
	}
}

func TestOpenUnreachable(t *testing.T) {
	if c := Open(context.Background(), "127.0.0.1:1", 0); c != nil {
		t.Error("expected nil cache when redis is unreachable")
	}
}
