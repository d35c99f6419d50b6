package testing

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/secrets"
)

// SecretEntry is one entry held by MemoryStore.
type SecretEntry struct {
	Ref     secrets.Reference
	Payload []byte
	Tags    map[string]string
}

// MemoryStore is an in-memory secrets.Store with optional injected failures.
type MemoryStore struct {
	mu sync.Mutex

	entries   map[string]*SecretEntry
	putErrors map[string]error
	delErrors map[string]error
	seq       int
	ops       []Call
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries:   map[string]*SecretEntry{},
		putErrors: map[string]error{},
		delErrors: map[string]error{},
	}
}

// Seed stores payload under key as if it had been created earlier.
func (m *MemoryStore) Seed(key string, payload []byte) secrets.Reference {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.put(key, payload, nil)
}

// FailPut makes Put of key return err.
func (m *MemoryStore) FailPut(key string, err error) *MemoryStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putErrors[key] = err
	return m
}

// FailDelete makes Delete of key return err.
func (m *MemoryStore) FailDelete(key string, err error) *MemoryStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delErrors[key] = err
	return m
}

func (m *MemoryStore) put(key string, payload []byte, tags map[string]string) secrets.Reference {
	m.seq++
	ref := secrets.Reference(fmt.Sprintf("arn:aws:secretsmanager:us-east-1:000000000000:secret:%s-%06d", key, m.seq))
	m.entries[key] = &SecretEntry{Ref: ref, Payload: slices.Clone(payload), Tags: maps.Clone(tags)}
	return ref
}

// Put implements secrets.Store.
func (m *MemoryStore) Put(_ context.Context, key string, payload []byte, tags map[string]string) (secrets.Reference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = append(m.ops, Call{Op: "put", Name: key})

	if err, ok := m.putErrors[key]; ok {
		return "", err
	}
	if _, ok := m.entries[key]; ok {
		return "", secrets.ErrAlreadyExists
	}
	return m.put(key, payload, tags), nil
}

// Get implements secrets.Store.
func (m *MemoryStore) Get(_ context.Context, ref secrets.Reference) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.Ref == ref {
			return slices.Clone(e.Payload), nil
		}
	}
	return nil, secrets.ErrNotFound
}

// Delete implements secrets.Store.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = append(m.ops, Call{Op: "delete", Name: key})

	if err, ok := m.delErrors[key]; ok {
		return err
	}
	if _, ok := m.entries[key]; !ok {
		return secrets.ErrNotFound
	}
	delete(m.entries, key)
	return nil
}

// Exists implements secrets.Store.
func (m *MemoryStore) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[key]
	return ok, nil
}

// Lookup implements secrets.Store.
func (m *MemoryStore) Lookup(_ context.Context, key string) (secrets.Reference, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return "", false, nil
	}
	return e.Ref, true, nil
}

// Entry returns a copy of the entry stored under key.
func (m *MemoryStore) Entry(key string) (SecretEntry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return SecretEntry{}, false
	}
	return SecretEntry{Ref: e.Ref, Payload: slices.Clone(e.Payload), Tags: maps.Clone(e.Tags)}, true
}

// Keys returns every stored key, sorted.
func (m *MemoryStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Sorted(maps.Keys(m.entries))
}

// Deletes returns the keys passed to Delete, in call order.
func (m *MemoryStore) Deletes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for _, op := range m.ops {
		if op.Op == "delete" {
			keys = append(keys, op.Name)
		}
	}
	return keys
}

// Puts returns the keys passed to Put, in call order.
func (m *MemoryStore) Puts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for _, op := range m.ops {
		if op.Op == "put" {
			keys = append(keys, op.Name)
		}
	}
	return keys
}
