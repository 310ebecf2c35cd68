package usecase

import "sync"

// ipLocks — мьютекс на адрес клиента; запись удаляется, когда её никто не держит.
type ipLocks struct {
	mu    sync.Mutex
	byKey map[string]*ipLock
}

type ipLock struct {
	sync.Mutex
	refs int
}

// lock — захватить мьютекс адреса; возвращает функцию освобождения.
func (l *ipLocks) lock(ip string) func() {
	l.mu.Lock()
	if l.byKey == nil {
		l.byKey = make(map[string]*ipLock)
	}
	m, ok := l.byKey[ip]
	if !ok {
		m = &ipLock{}
		l.byKey[ip] = m
	}
	m.refs++
	l.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		l.mu.Lock()
		if m.refs--; m.refs == 0 {
			delete(l.byKey, ip)
		}
		l.mu.Unlock()
	}
}

func (l *ipLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byKey)
}
