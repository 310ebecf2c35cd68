package memory

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/Gunvolt24/autoagent/internal/domain"
)

type fakeClock struct {
	mu  sync.Mutex
	cur time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{cur: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cur
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.cur = f.cur.Add(d)
	f.mu.Unlock()
}

func TestSetGet_HitMiss(t *testing.T) {
	c := NewLRUCacheTTL[int](2, time.Minute)

	// miss
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected miss before Set")
	}

	// hit после Set
	c.Set("a", 1)
	got, ok := c.Get("a")
	if !ok || got != 1 {
		t.Fatalf("expected hit a=1, got %v ok=%v", got, ok)
	}
}

func TestSet_OverwriteResetsExpiryAndRecency(t *testing.T) {
	clk := newFakeClock()
	c := NewLRUCacheTTL(2, time.Minute, WithClock[string](clk.Now))

	c.Set("a", "v1")
	c.Set("b", "v1")
	clk.Advance(40 * time.Second)
	c.Set("a", "v2") // a снова свежий, срок от текущего момента

	clk.Advance(30 * time.Second) // b истёк (70s), a нет (30s)
	if got, ok := c.Get("a"); !ok || got != "v2" {
		t.Fatalf("expected a=v2, got %q ok=%v", got, ok)
	}
	if _, ok := c.Get("b"); ok {
		t.Fatalf("expected b to expire")
	}
	if c.Len() != 1 {
		t.Fatalf("expected Len=1, got %d", c.Len())
	}
}

func TestCapacity_KeepsMostRecent(t *testing.T) {
	const capacity = 3
	c := NewLRUCacheTTL[int](capacity, time.Minute)

	for i := 0; i < 10; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
		if c.Len() > capacity {
			t.Fatalf("Len=%d exceeds capacity after set #%d", c.Len(), i)
		}
	}

	want := []string{"k9", "k8", "k7"}
	if got := c.keys(); !reflect.DeepEqual(got, want) {
		t.Fatalf("resident keys: got %v want %v", got, want)
	}
}

func TestLRUEviction_GetTouches(t *testing.T) {
	c := NewLRUCacheTTL[string](2, time.Minute)

	c.Set("A", "a")
	c.Set("B", "b")
	// A сделать «свежим»
	if _, ok := c.Get("A"); !ok {
		t.Fatalf("expected hit for A")
	}
	// Добавляем C — вытеснит B (самый старый)
	c.Set("C", "c")

	if c.Has("B") {
		t.Fatalf("expected B to be evicted")
	}
	if !c.Has("A") || !c.Has("C") || c.Len() != 2 {
		t.Fatalf("expected A & C to stay in cache")
	}
}

func TestHas_DoesNotTouch(t *testing.T) {
	c := NewLRUCacheTTL[string](2, time.Minute)

	c.Set("A", "a")
	c.Set("B", "b")
	if !c.Has("A") {
		t.Fatalf("expected A present")
	}
	c.Set("C", "c") // A остаётся самым старым

	if c.Has("A") {
		t.Fatalf("Has must not refresh recency; A should be evicted")
	}
	if !c.Has("B") {
		t.Fatalf("expected B to stay")
	}
}

func TestTTL_ExpiryRemovesOnGet(t *testing.T) {
	clk := newFakeClock()
	c := NewLRUCacheTTL(5, time.Minute, WithClock[int](clk.Now))

	c.Set("ttl", 1)
	clk.Advance(59 * time.Second)
	if _, ok := c.Get("ttl"); !ok {
		t.Fatalf("expected hit before TTL elapses")
	}

	clk.Advance(2 * time.Second)
	if c.Len() != 1 {
		t.Fatalf("lazy expiry: expected Len=1 before read, got %d", c.Len())
	}
	if _, ok := c.Get("ttl"); ok {
		t.Fatalf("expected miss after TTL expires")
	}
	if c.Len() != 0 {
		t.Fatalf("expected Len=0 after expired Get, got %d", c.Len())
	}
}

func TestTTL_BoundaryIsInclusive(t *testing.T) {
	clk := newFakeClock()
	c := NewLRUCacheTTL(5, time.Minute, WithClock[int](clk.Now))

	c.Set("edge", 1)
	clk.Advance(time.Minute - time.Nanosecond)
	if _, ok := c.Get("edge"); !ok {
		t.Fatalf("expected hit one tick before expiry")
	}
	clk.Advance(time.Nanosecond) // now == expiresAt
	if _, ok := c.Get("edge"); ok {
		t.Fatalf("entry must be expired exactly at expiresAt")
	}
}

func TestTTL_GetDoesNotExtendLifetime(t *testing.T) {
	clk := newFakeClock()
	c := NewLRUCacheTTL(5, time.Minute, WithClock[int](clk.Now))

	c.Set("k", 1)
	clk.Advance(50 * time.Second)
	_, _ = c.Get("k")
	clk.Advance(20 * time.Second)

	if _, ok := c.Get("k"); ok {
		t.Fatalf("reads must not slide expiry")
	}
}

func TestHas_RemovesExpired(t *testing.T) {
	clk := newFakeClock()
	c := NewLRUCacheTTL(5, time.Second, WithClock[int](clk.Now))

	c.Set("k", 1)
	clk.Advance(2 * time.Second)
	if c.Has("k") {
		t.Fatalf("expected expired entry to be absent")
	}
	if c.Len() != 0 {
		t.Fatalf("expected Has to purge expired entry, Len=%d", c.Len())
	}
}

func TestZeroCapacity_RetainsNothing(t *testing.T) {
	c := NewLRUCacheTTL[int](0, time.Minute)

	c.Set("a", 1)
	if c.Len() != 0 {
		t.Fatalf("expected Len=0, got %d", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected miss with zero capacity")
	}
}

func TestZeroTTL_StaleOnNextRead(t *testing.T) {
	c := NewLRUCacheTTL[int](2, 0)

	c.Set("a", 1)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected entry to be stale with zero TTL")
	}
}

func TestDeleteAndClear(t *testing.T) {
	c := NewLRUCacheTTL[int](3, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)

	if !c.Delete("a") {
		t.Fatalf("expected Delete(a)=true")
	}
	if c.Delete("a") {
		t.Fatalf("expected second Delete(a)=false")
	}
	if got := c.keys(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Fatalf("recency list out of sync: %v", got)
	}

	c.Clear()
	if c.Len() != 0 || len(c.keys()) != 0 {
		t.Fatalf("expected empty cache after Clear")
	}
	c.Set("c", 3)
	if v, ok := c.Get("c"); !ok || v != 3 {
		t.Fatalf("cache must be usable after Clear")
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := NewLRUCacheTTL[int](16, time.Minute)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", (g*31+i)%40)
				c.Set(key, i)
				_, _ = c.Get(key)
				_ = c.Has(key)
				if i%17 == 0 {
					c.Delete(key)
				}
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 16 {
		t.Fatalf("Len=%d exceeds capacity", c.Len())
	}
	if len(c.keys()) != c.Len() {
		t.Fatalf("recency list and index diverged: %d vs %d", len(c.keys()), c.Len())
	}
}

func TestSearchCache_ReturnsCopies(t *testing.T) {
	sc := NewSearchCache(2, time.Minute)
	ctx := context.Background()

	mileage := 1000
	orig := domain.SearchResult{
		Vehicles:   []domain.Vehicle{{ID: "v1", Mileage: &mileage, Features: []string{"AWD"}}},
		TotalCount: 1,
	}
	sc.Set(ctx, "key", orig)

	// меняем исходник после Set — не должно влиять на кэш
	orig.Vehicles[0].Features[0] = "changed"

	r1, ok := sc.Get(ctx, "key")
	if !ok {
		t.Fatalf("expected hit")
	}
	// меняем то, что вернул Get — не должно влиять на кэш
	*r1.Vehicles[0].Mileage = 5
	r1.Vehicles[0].ID = "mutated"

	r2, _ := sc.Get(ctx, "key")
	if r2.Vehicles[0].Features[0] != "AWD" || *r2.Vehicles[0].Mileage != 1000 || r2.Vehicles[0].ID != "v1" {
		t.Fatalf("cache should store and return clones, got %+v", r2.Vehicles[0])
	}
	if !sc.Has(ctx, "key") || sc.Len() != 1 {
		t.Fatalf("expected key to be resident")
	}
}
