package lrucache

import "testing"

func TestPutGet(t *testing.T) {
	c := New[string, int](2)

	c.Put("a", 1)
	c.Put("b", 2)

	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("expected a=1, got %v ok=%v", v, ok)
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[string, int](2)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a") // a is now MRU, b is LRU
	c.Put("c", 3) // evicts b

	if c.Exists("b") {
		t.Fatalf("expected b to have been evicted")
	}

	if !c.Exists("a") || !c.Exists("c") {
		t.Fatalf("expected a and c to remain cached")
	}
}

func TestOverwriteMarksMostRecentlyUsed(t *testing.T) {
	c := New[string, int](2)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("a", 10) // a overwritten, now MRU
	c.Put("c", 3)  // evicts b, not a

	if c.Exists("b") {
		t.Fatalf("expected b to have been evicted")
	}

	v, ok := c.Get("a")
	if !ok || v != 10 {
		t.Fatalf("expected overwritten a=10, got %v ok=%v", v, ok)
	}
}

func TestSetCapacityEvictsImmediately(t *testing.T) {
	c := New[string, int](3)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)
	c.SetCapacity(1)

	if c.Len() != 1 {
		t.Fatalf("expected length 1 after shrinking capacity, got %d", c.Len())
	}

	if !c.Exists("c") {
		t.Fatalf("expected the most recently used entry to survive")
	}
}

func TestFlush(t *testing.T) {
	c := New[string, int](4)
	c.Put("a", 1)
	c.Flush()

	if c.Len() != 0 {
		t.Fatalf("expected empty cache after Flush, got len %d", c.Len())
	}
}
