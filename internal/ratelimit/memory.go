package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type entry struct {
	limiter      *rate.Limiter
	lastSeen     time.Time
	blockedUntil time.Time
}

// Memory is a process-local limiter. It holds at most maxEntries keys and
// a background sweep drops keys that are neither blocked nor recently
// used. Call Close to stop the sweep.
type Memory struct {
	policy     Policy
	maxEntries int

	mu      sync.Mutex
	entries map[string]*entry

	now  func() time.Time
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// NewMemory starts a limiter sweeping every sweepEvery. A non-positive
// sweepEvery disables the background sweep.
func NewMemory(p Policy, maxEntries int, sweepEvery time.Duration) *Memory {
	m := &Memory{
		policy:     p,
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
		now:        time.Now,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	if sweepEvery > 0 {
		go m.run(sweepEvery)
	} else {
		close(m.done)
	}
	return m
}

func (m *Memory) run(every time.Duration) {
	defer close(m.done)
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			if n := m.Sweep(); n > 0 {
				logrus.WithField("removed", n).Debug("rate limiter sweep")
			}
		case <-m.stop:
			return
		}
	}
}

// Close stops the sweep goroutine and waits for it to exit.
func (m *Memory) Close() error {
	m.once.Do(func() { close(m.stop) })
	<-m.done
	return nil
}

func (m *Memory) Allow(_ context.Context, key string) (Result, error) {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		if m.maxEntries > 0 && len(m.entries) >= m.maxEntries {
			m.sweepLocked(now)
			if len(m.entries) >= m.maxEntries {
				m.evictOldestLocked()
			}
		}
		every := m.policy.Window / time.Duration(m.policy.Attempts)
		e = &entry{limiter: rate.NewLimiter(rate.Every(every), m.policy.Attempts)}
		m.entries[key] = e
	}
	e.lastSeen = now

	if now.Before(e.blockedUntil) {
		return Result{RetryAfter: e.blockedUntil.Sub(now)}, nil
	}
	if !e.limiter.AllowN(now, 1) {
		e.blockedUntil = now.Add(m.policy.Block)
		return Result{RetryAfter: m.policy.Block}, nil
	}
	remaining := int(math.Floor(e.limiter.TokensAt(now)))
	return Result{Allowed: true, Remaining: remaining}, nil
}

// Sweep removes expired keys and reports how many were dropped.
func (m *Memory) Sweep() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweepLocked(now)
}

// A key is expired once its block is over and it has been idle for a
// full window, by which time its bucket has refilled.
func (m *Memory) sweepLocked(now time.Time) int {
	removed := 0
	for k, e := range m.entries {
		if now.Before(e.blockedUntil) || now.Sub(e.lastSeen) < m.policy.Window {
			continue
		}
		delete(m.entries, k)
		removed++
	}
	return removed
}

func (m *Memory) evictOldestLocked() {
	var (
		oldestKey string
		oldest    time.Time
	)
	for k, e := range m.entries {
		if oldestKey == "" || e.lastSeen.Before(oldest) {
			oldestKey, oldest = k, e.lastSeen
		}
	}
	delete(m.entries, oldestKey)
}

// Len reports the number of tracked keys.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
