package memory

import (
	"container/list"
	"sync"
	"time"

	"github.com/Gunvolt24/autoagent/pkg/metrics"
)

type entry[V any] struct {
	key          string
	value        V
	expiresAt    time.Time
	lastAccessed time.Time
}

// LRUCacheTTL — ограниченный по размеру кэш с единым TTL и строгим LRU-вытеснением.
// Голова списка — самый свежий ключ, хвост — кандидат на вытеснение.
type LRUCacheTTL[V any] struct {
	capacity int
	ttl      time.Duration

	ll    *list.List
	index map[string]*list.Element

	// clone — копирование значения на входе и выходе; nil — хранить как есть.
	clone func(V) V
	now   func() time.Time

	mu sync.Mutex
}

// Option — настройка кэша при создании.
type Option[V any] func(*LRUCacheTTL[V])

// WithClone — копировать значения при Set и Get.
func WithClone[V any](fn func(V) V) Option[V] {
	return func(c *LRUCacheTTL[V]) { c.clone = fn }
}

// WithClock — подменить источник времени (для тестов).
func WithClock[V any](now func() time.Time) Option[V] {
	return func(c *LRUCacheTTL[V]) { c.now = now }
}

// NewLRUCacheTTL — создать кэш. capacity <= 0: ни одна запись не удерживается;
// ttl <= 0: запись устаревает к следующему чтению.
func NewLRUCacheTTL[V any](capacity int, ttl time.Duration, opts ...Option[V]) *LRUCacheTTL[V] {
	c := &LRUCacheTTL[V]{
		capacity: capacity,
		ttl:      ttl,
		ll:       list.New(),
		index:    make(map[string]*list.Element),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get — значение по ключу; найденная запись становится самой свежей.
// Граница срока включительная: запись истекла, если now >= expiresAt, и тогда
// удаляется и считается отсутствующей.
func (c *LRUCacheTTL[V]) Get(key string) (V, bool) {
	var zero V
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.index[key]
	if !ok {
		metrics.CacheOps.WithLabelValues("miss").Inc()
		return zero, false
	}
	ent := elem.Value.(*entry[V])
	if c.isExpired(ent, now) {
		metrics.CacheOps.WithLabelValues("expired").Inc()
		c.removeElement(elem)
		return zero, false
	}
	ent.lastAccessed = now
	c.ll.MoveToFront(elem)

	metrics.CacheOps.WithLabelValues("hit").Inc()
	return c.copyOf(ent.value), true
}

// Set — записать значение. Существующий ключ перезаписывается с новым сроком жизни;
// новый ключ при заполненном кэше сначала вытесняет ровно одну самую старую запись.
func (c *LRUCacheTTL[V]) Set(key string, value V) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	metrics.CacheOps.WithLabelValues("set").Inc()

	if elem, ok := c.index[key]; ok {
		ent := elem.Value.(*entry[V])
		ent.value = c.copyOf(value)
		ent.expiresAt = now.Add(c.ttl)
		ent.lastAccessed = now
		c.ll.MoveToFront(elem)
		return
	}

	if c.ll.Len() >= c.capacity {
		c.evictLRU()
	}

	elem := c.ll.PushFront(&entry[V]{
		key:          key,
		value:        c.copyOf(value),
		expiresAt:    now.Add(c.ttl),
		lastAccessed: now,
	})
	c.index[key] = elem

	// Нулевая ёмкость: запись вытесняется сразу же.
	if c.ll.Len() > c.capacity {
		c.evictLRU()
	}
	metrics.CacheSize.Set(float64(len(c.index)))
}

// Delete — удалить ключ; true, если запись была.
func (c *LRUCacheTTL[V]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.index[key]
	if !ok {
		return false
	}
	c.removeElement(elem)
	metrics.CacheOps.WithLabelValues("deleted").Inc()
	return true
}

// Has — есть ли живая запись. Истёкшую удаляет, порядок свежести не меняет.
func (c *LRUCacheTTL[V]) Has(key string) bool {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.index[key]
	if !ok {
		return false
	}
	if c.isExpired(elem.Value.(*entry[V]), now) {
		metrics.CacheOps.WithLabelValues("expired").Inc()
		c.removeElement(elem)
		return false
	}
	return true
}

// Clear — очистить кэш.
func (c *LRUCacheTTL[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ll.Init()
	c.index = make(map[string]*list.Element)
	metrics.CacheSize.Set(0)
}

// Len — число записей, включая истёкшие, но ещё не вычищенные.
func (c *LRUCacheTTL[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.index)
}

// keys — ключи от самого свежего к самому старому.
func (c *LRUCacheTTL[V]) keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, 0, c.ll.Len())
	for e := c.ll.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(*entry[V]).key)
	}
	return out
}

// ------вспомогательные функции------

func (c *LRUCacheTTL[V]) evictLRU() {
	if back := c.ll.Back(); back != nil {
		c.removeElement(back)
		metrics.CacheOps.WithLabelValues("evicted").Inc()
	}
}

func (c *LRUCacheTTL[V]) removeElement(elem *list.Element) {
	ent := elem.Value.(*entry[V])
	delete(c.index, ent.key)
	c.ll.Remove(elem)
	metrics.CacheSize.Set(float64(len(c.index)))
}

// isExpired — now >= expiresAt; при ttl=0 запись устаревает даже при грубых часах.
func (c *LRUCacheTTL[V]) isExpired(ent *entry[V], now time.Time) bool {
	return !now.Before(ent.expiresAt)
}

func (c *LRUCacheTTL[V]) copyOf(v V) V {
	if c.clone == nil {
		return v
	}
	return c.clone(v)
}
