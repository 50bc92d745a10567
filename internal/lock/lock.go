// Package lock serializes writers of the same board column. A Move or
// Reposition locks every column it touches before reading generations, so two
// requests on the same column queue up instead of failing each other's CAS.
package lock

import (
	"context"
	"sort"
	"sync"

	"github.com/saulo-duarte/chronos-goals/internal/goal"
)

type Locker interface {
	// Lock acquires all columns, always in Column.Less order, and returns the
	// function that releases them.
	Lock(ctx context.Context, cols ...goal.Column) (unlock func(), err error)
}

func ordered(cols []goal.Column) []goal.Column {
	out := make([]goal.Column, 0, len(cols))
	seen := make(map[goal.Column]bool, len(cols))
	for _, c := range cols {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Local locks columns inside one process.
type Local struct {
	mu    sync.Mutex
	slots map[goal.Column]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

func NewLocal() *Local {
	return &Local{slots: make(map[goal.Column]*slot)}
}

func (l *Local) acquire(ctx context.Context, c goal.Column) error {
	l.mu.Lock()
	s, ok := l.slots[c]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[c] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		l.drop(c, s)
		return ctx.Err()
	}
}

func (l *Local) release(c goal.Column) {
	l.mu.Lock()
	s := l.slots[c]
	l.mu.Unlock()
	<-s.ch
	l.drop(c, s)
}

func (l *Local) drop(c goal.Column, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, c)
	}
}

func (l *Local) Lock(ctx context.Context, cols ...goal.Column) (func(), error) {
	cols = ordered(cols)
	held := make([]goal.Column, 0, len(cols))
	unlock := func() {
		for i := len(held) - 1; i >= 0; i-- {
			l.release(held[i])
		}
	}
	for _, c := range cols {
		if err := l.acquire(ctx, c); err != nil {
			unlock()
			return nil, err
		}
		held = append(held, c)
	}
	return unlock, nil
}
