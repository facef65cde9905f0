package cache

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRoundTrip(t *testing.T) {
	c := New(16)

	c.Set("k", "value", time.Minute)
	v, ok := c.Get("k")
	if !ok || v != "value" {
		t.Errorf("Expected stored value, got %v (found=%v)", v, ok)
	}
}

func TestMiss(t *testing.T) {
	c := New(16)
	if _, ok := c.Get("absent"); ok {
		t.Error("Expected miss for unknown key")
	}
}

func TestExpiry(t *testing.T) {
	c := New(16)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set("k", "value", time.Minute)

	now = now.Add(59 * time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Error("Entry should survive before TTL elapses")
	}

	now = now.Add(2 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Error("Entry should be absent after TTL elapses")
	}
	if c.Len() != 0 {
		t.Error("Expired entry should be removed on read")
	}
}

func TestZeroTTLNeverExpires(t *testing.T) {
	c := New(16)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set("k", "forever", 0)
	now = now.Add(1000 * time.Hour)
	if _, ok := c.Get("k"); !ok {
		t.Error("Zero-TTL entry should never expire")
	}
}

func TestKeyDeterministic(t *testing.T) {
	a := Key("filter=100", "In QA", "Done", "20")
	b := Key("filter=100", "In QA", "Done", "20")
	if a != b {
		t.Error("Identical shapes must hash identically")
	}

	c := Key("filter=100", "In QA", "Done", "21")
	if a == c {
		t.Error("Different shapes must hash differently")
	}

	// Field boundaries matter: ("ab","c") != ("a","bc")
	if Key("ab", "c") == Key("a", "bc") {
		t.Error("Key must separate parts")
	}
}

func TestDoComputesOnMissOnly(t *testing.T) {
	c := New(16)
	var calls int32

	compute := func() (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return "computed", nil
	}

	v, cached, err := c.Do("k", time.Minute, compute)
	if err != nil || v != "computed" || cached {
		t.Fatalf("First Do = (%v, %v, %v)", v, cached, err)
	}

	v, cached, err = c.Do("k", time.Minute, compute)
	if err != nil || v != "computed" || !cached {
		t.Fatalf("Second Do = (%v, %v, %v)", v, cached, err)
	}

	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("Expected 1 computation, got %d", calls)
	}
}

func TestDoErrorNotCached(t *testing.T) {
	c := New(16)

	_, _, err := c.Do("k", time.Minute, func() (interface{}, error) {
		return nil, fmt.Errorf("upstream down")
	})
	if err == nil {
		t.Fatal("Expected error from Do")
	}

	v, _, err := c.Do("k", time.Minute, func() (interface{}, error) {
		return "recovered", nil
	})
	if err != nil || v != "recovered" {
		t.Errorf("Failure must not be cached, got (%v, %v)", v, err)
	}
}

func TestDoDeduplicatesConcurrentMisses(t *testing.T) {
	c := New(16)
	var calls int32
	gate := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = c.Do("k", time.Minute, func() (interface{}, error) {
				atomic.AddInt32(&calls, 1)
				<-gate
				return "shared", nil
			})
		}()
	}

	// Let the goroutines pile up on the same key, then release
	time.Sleep(20 * time.Millisecond)
	close(gate)
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("Expected a single shared computation, got %d", got)
	}
}

func TestEntryCapEviction(t *testing.T) {
	c := New(4)
	now := time.Now()
	c.now = func() time.Time { return now }

	for i := 0; i < 4; i++ {
		c.Set(fmt.Sprintf("k%d", i), i, time.Duration(i+1)*time.Minute)
	}
	if c.Len() != 4 {
		t.Fatalf("Expected 4 entries, got %d", c.Len())
	}

	// Adding a fifth entry evicts the one closest to expiry (k0)
	c.Set("k4", 4, time.Hour)
	if c.Len() != 4 {
		t.Errorf("Cap exceeded: %d entries", c.Len())
	}
	if _, ok := c.Get("k0"); ok {
		t.Error("Expected earliest-expiring entry to be evicted")
	}
	if _, ok := c.Get("k4"); !ok {
		t.Error("New entry should be present")
	}
}

func TestEvictionPrefersExpired(t *testing.T) {
	c := New(2)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set("dead", 1, time.Second)
	c.Set("alive", 2, time.Hour)

	now = now.Add(time.Minute)
	c.Set("fresh", 3, time.Hour)

	if _, ok := c.Get("alive"); !ok {
		t.Error("Live entry should survive when an expired one could be evicted")
	}
	if _, ok := c.Get("fresh"); !ok {
		t.Error("New entry should be present")
	}
}

func TestClear(t *testing.T) {
	c := New(16)
	c.Set("k", 1, 0)
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Expected empty cache, got %d entries", c.Len())
	}
}
