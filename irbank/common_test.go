package irbank_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dshills/sfg/irbank"
)

// runCacheConformance exercises the Cache contract against any
// implementation: MemCache, SQLiteCache, MySQLCache all must behave
// identically from a caller's perspective.
func runCacheConformance(t *testing.T, c irbank.Cache) {
	t.Helper()
	ctx := context.Background()

	t.Run("body round trip", func(t *testing.T) {
		if _, err := c.GetBody(ctx, "missing-fp"); !errors.Is(err, irbank.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if err := c.PutBody(ctx, "fp1", []byte("payload-v1")); err != nil {
			t.Fatalf("PutBody: %v", err)
		}
		got, err := c.GetBody(ctx, "fp1")
		if err != nil {
			t.Fatalf("GetBody: %v", err)
		}
		if string(got) != "payload-v1" {
			t.Fatalf("got %q, want %q", got, "payload-v1")
		}
		if err := c.PutBody(ctx, "fp1", []byte("payload-v2")); err != nil {
			t.Fatalf("PutBody overwrite: %v", err)
		}
		got, err = c.GetBody(ctx, "fp1")
		if err != nil {
			t.Fatalf("GetBody after overwrite: %v", err)
		}
		if string(got) != "payload-v2" {
			t.Fatalf("got %q, want %q after overwrite", got, "payload-v2")
		}
	})

	t.Run("fused pair round trip", func(t *testing.T) {
		if _, err := c.GetFused(ctx, "a1", "b1"); !errors.Is(err, irbank.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if err := c.PutFused(ctx, "a1", "b1", "fused1"); err != nil {
			t.Fatalf("PutFused: %v", err)
		}
		fp, err := c.GetFused(ctx, "a1", "b1")
		if err != nil {
			t.Fatalf("GetFused: %v", err)
		}
		if fp != "fused1" {
			t.Fatalf("got %q, want %q", fp, "fused1")
		}
		if _, err := c.GetFused(ctx, "b1", "a1"); !errors.Is(err, irbank.ErrNotFound) {
			t.Fatalf("fused pair lookup must be order-sensitive, got %v", err)
		}
	})

	t.Run("demotion round trip", func(t *testing.T) {
		if _, err := c.GetDemotion(ctx, "fp2", "region1"); !errors.Is(err, irbank.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if err := c.PutDemotion(ctx, "fp2", "region1", "demoted1"); err != nil {
			t.Fatalf("PutDemotion: %v", err)
		}
		rewritten, err := c.GetDemotion(ctx, "fp2", "region1")
		if err != nil {
			t.Fatalf("GetDemotion: %v", err)
		}
		if rewritten != "demoted1" {
			t.Fatalf("got %q, want %q", rewritten, "demoted1")
		}
	})
}
