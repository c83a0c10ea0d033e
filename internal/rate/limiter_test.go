package rate

import (
	"testing"
	"time"
)

func TestAllowWithinLimit(t *testing.T) {
	m := NewMemory()
	for i := 0; i < 3; i++ {
		ok, _ := m.Allow("k", 3, time.Minute)
		if !ok {
			t.Fatalf("call %d should be allowed", i)
		}
	}
	ok, retry := m.Allow("k", 3, time.Minute)
	if ok {
		t.Fatal("fourth call should be denied")
	}
	if retry <= 0 || retry > time.Minute {
		t.Fatalf("retry = %v", retry)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	m := NewMemory()
	if ok, _ := m.Allow("a", 1, time.Minute); !ok {
		t.Fatal("first key should be allowed")
	}
	if ok, _ := m.Allow("b", 1, time.Minute); !ok {
		t.Fatal("second key should be allowed")
	}
	if ok, _ := m.Allow("a", 1, time.Minute); ok {
		t.Fatal("first key should now be denied")
	}
}

func TestWindowResets(t *testing.T) {
	m := NewMemory()
	if ok, _ := m.Allow("k", 1, time.Millisecond); !ok {
		t.Fatal("first call should be allowed")
	}
	time.Sleep(5 * time.Millisecond)
	if ok, _ := m.Allow("k", 1, time.Millisecond); !ok {
		t.Fatal("call after window should be allowed")
	}
}

func TestPruneDropsExpiredBuckets(t *testing.T) {
	m := NewMemory()
	m.Allow("stale", 1, time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	m.prune(time.Now())
	if _, ok := m.buckets["stale"]; ok {
		t.Fatal("expired bucket should be pruned")
	}
}
