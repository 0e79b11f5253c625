package cache

import (
	"context"
	"testing"
	"time"
)

// RunComplianceTests checks any Cache implementation against the port's
// contract. Keys are prefixed so the suite can share a backend with other tests.
func RunComplianceTests(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		if err := c.Set(ctx, "tf.compliance-key", []byte("compliance-val"), time.Minute); err != nil {
			t.Fatal(err)
		}
		val, found, err := c.Get(ctx, "tf.compliance-key")
		if err != nil {
			t.Fatal(err)
		}
		if !found {
			t.Fatal("expected found after Set")
		}
		if string(val) != "compliance-val" {
			t.Fatalf("expected compliance-val, got %s", val)
		}
	})

	t.Run("GetMiss", func(t *testing.T) {
		_, found, err := c.Get(ctx, "tf.nonexistent-key")
		if err != nil {
			t.Fatal(err)
		}
		if found {
			t.Fatal("expected miss for nonexistent key")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		_ = c.Set(ctx, "tf.del-key", []byte("del-val"), time.Minute)
		if err := c.Delete(ctx, "tf.del-key"); err != nil {
			t.Fatal(err)
		}
		_, found, err := c.Get(ctx, "tf.del-key")
		if err != nil {
			t.Fatal(err)
		}
		if found {
			t.Fatal("expected miss after Delete")
		}
	})

	t.Run("DeleteNonexistent", func(t *testing.T) {
		if err := c.Delete(ctx, "tf.never-existed"); err != nil {
			t.Fatal("Delete of nonexistent key should not error")
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		_ = c.Set(ctx, "tf.ow-key", []byte("v1"), time.Minute)
		_ = c.Set(ctx, "tf.ow-key", []byte("v2"), time.Minute)
		val, found, err := c.Get(ctx, "tf.ow-key")
		if err != nil {
			t.Fatal(err)
		}
		if !found {
			t.Fatal("expected found after overwrite")
		}
		if string(val) != "v2" {
			t.Fatalf("expected v2 after overwrite, got %s", val)
		}
	})

	t.Run("BinarySafe", func(t *testing.T) {
		want := []byte{0x00, 0xff, '{', '}', '\n'}
		if err := c.Set(ctx, "tf.binary", want, time.Minute); err != nil {
			t.Fatal(err)
		}
		val, found, err := c.Get(ctx, "tf.binary")
		if err != nil {
			t.Fatal(err)
		}
		if !found || string(val) != string(want) {
			t.Fatalf("expected %v, got %v (found=%v)", want, val, found)
		}
	})
}
