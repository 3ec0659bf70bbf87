package database

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore implements Store on an in-process tree. It mirrors Realtime
// Database semantics close enough for service tests: JSON value
// normalization, null-for-missing reads, server timestamp substitution and
// atomic multi-location updates under one lock.
type MemoryStore struct {
	mu   sync.Mutex
	root map[string]interface{}

	// Now supplies the epoch-ms clock used for server timestamps.
	// Overridable in tests.
	Now func() int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		root: make(map[string]interface{}),
		Now:  func() int64 { return time.Now().UnixMilli() },
	}
}

func (s *MemoryStore) Get(ctx context.Context, path string, v interface{}) error {
	s.mu.Lock()
	node := s.getNode(splitPath(path))
	s.mu.Unlock()

	raw, err := json.Marshal(node)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func (s *MemoryStore) Set(ctx context.Context, path string, v interface{}) error {
	val, err := s.normalize(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setNode(splitPath(path), val)
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, path string, values map[string]interface{}) error {
	base := splitPath(path)
	normalized := make(map[string][]string, len(values))
	vals := make(map[string]interface{}, len(values))
	for child, v := range values {
		val, err := s.normalize(v)
		if err != nil {
			return err
		}
		normalized[child] = append(append([]string{}, base...), splitPath(child)...)
		vals[child] = val
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for child, segs := range normalized {
		s.setNode(segs, vals[child])
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setNode(splitPath(path), nil)
	return nil
}

func (s *MemoryStore) Push(ctx context.Context, path string, v interface{}) (string, error) {
	val, err := s.normalize(v)
	if err != nil {
		return "", err
	}
	key := NewPushKey()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setNode(append(splitPath(path), key), val)
	return key, nil
}

func (s *MemoryStore) Create(ctx context.Context, path string, v interface{}) (bool, error) {
	val, err := s.normalize(v)
	if err != nil {
		return false, err
	}
	segs := splitPath(path)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getNode(segs) != nil {
		return false, nil
	}
	s.setNode(segs, val)
	return true, nil
}

func (s *MemoryStore) QueryChildEqual(ctx context.Context, path, child string, value interface{}, limit int, v interface{}) error {
	want, err := s.normalize(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	node := s.getNode(splitPath(path))
	s.mu.Unlock()

	result := make(map[string]interface{})
	if children, ok := node.(map[string]interface{}); ok {
		keys := make([]string, 0, len(children))
		for k := range children {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if limit > 0 && len(result) >= limit {
				break
			}
			entry, ok := children[k].(map[string]interface{})
			if !ok {
				continue
			}
			if reflect.DeepEqual(entry[child], want) {
				result[k] = entry
			}
		}
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// normalize round-trips v through JSON and substitutes server timestamp
// sentinels, the way the server would on write.
func (s *MemoryStore) normalize(v interface{}) (interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("memory store: %w", err)
	}
	var val interface{}
	if err := json.Unmarshal(raw, &val); err != nil {
		return nil, err
	}
	return s.resolveTimestamps(val), nil
}

func (s *MemoryStore) resolveTimestamps(v interface{}) interface{} {
	m, ok := v.(map[string]interface{})
	if !ok {
		return v
	}
	if sv, ok := m[".sv"]; ok && len(m) == 1 && sv == "timestamp" {
		return float64(s.Now())
	}
	for k, child := range m {
		m[k] = s.resolveTimestamps(child)
	}
	return m
}

func (s *MemoryStore) getNode(segs []string) interface{} {
	var node interface{} = s.root
	for _, seg := range segs {
		m, ok := node.(map[string]interface{})
		if !ok {
			return nil
		}
		node = m[seg]
	}
	return node
}

func (s *MemoryStore) setNode(segs []string, val interface{}) {
	if len(segs) == 0 {
		if m, ok := val.(map[string]interface{}); ok {
			s.root = m
		} else {
			s.root = make(map[string]interface{})
		}
		return
	}
	parent := s.root
	for _, seg := range segs[:len(segs)-1] {
		child, ok := parent[seg].(map[string]interface{})
		if !ok {
			child = make(map[string]interface{})
			parent[seg] = child
		}
		parent = child
	}
	last := segs[len(segs)-1]
	if val == nil {
		delete(parent, last)
		return
	}
	parent[last] = val
}

func splitPath(path string) []string {
	var segs []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			segs = append(segs, seg)
		}
	}
	return segs
}
