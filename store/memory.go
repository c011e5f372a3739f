package store

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// Memory implements Store with mutex-guarded maps, mirroring the Redis
// semantics closely enough for tests and dev mode: idempotent set
// add/remove, commutative float increments, per-key expiry.
type Memory struct {
	mu       sync.Mutex
	sets     map[string]map[string]bool
	scalars  map[string]string
	deadline map[string]time.Time
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		sets:     make(map[string]map[string]bool),
		scalars:  make(map[string]string),
		deadline: make(map[string]time.Time),
	}
}

// reap drops key if its deadline has passed. Callers hold mu.
func (s *Memory) reap(key string) {
	dl, ok := s.deadline[key]
	if !ok || time.Now().Before(dl) {
		return
	}
	delete(s.sets, key)
	delete(s.scalars, key)
	delete(s.deadline, key)
}

func (s *Memory) AddMember(_ context.Context, key, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reap(key)
	if s.sets[key] == nil {
		s.sets[key] = make(map[string]bool)
	}
	s.sets[key][member] = true
	return nil
}

func (s *Memory) RemoveMember(_ context.Context, key, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reap(key)
	delete(s.sets[key], member)
	return nil
}

func (s *Memory) Members(_ context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reap(key)
	members := make([]string, 0, len(s.sets[key]))
	for m := range s.sets[key] {
		members = append(members, m)
	}
	return members, nil
}

func (s *Memory) Cardinality(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reap(key)
	return int64(len(s.sets[key])), nil
}

func (s *Memory) IncrementScalar(_ context.Context, key string, delta float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reap(key)
	current := 0.0
	if raw, ok := s.scalars[key]; ok {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, err
		}
		current = parsed
	}
	current += delta
	s.scalars[key] = strconv.FormatFloat(current, 'f', -1, 64)
	return current, nil
}

func (s *Memory) GetScalar(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reap(key)
	v, ok := s.scalars[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *Memory) SetScalar(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scalars[key] = value
	delete(s.deadline, key)
	return nil
}

func (s *Memory) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reap(key)
	if _, ok := s.scalars[key]; ok {
		return true, nil
	}
	return len(s.sets[key]) > 0, nil
}

func (s *Memory) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sets, key)
	delete(s.scalars, key)
	delete(s.deadline, key)
	return nil
}

func (s *Memory) Expire(_ context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reap(key)
	if ttl <= 0 {
		delete(s.sets, key)
		delete(s.scalars, key)
		delete(s.deadline, key)
		return nil
	}
	if _, ok := s.scalars[key]; ok {
		s.deadline[key] = time.Now().Add(ttl)
		return nil
	}
	if _, ok := s.sets[key]; ok {
		s.deadline[key] = time.Now().Add(ttl)
	}
	return nil
}
