package secrets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/util/labels"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/util/naming"
)

// Manager creates, looks up and deletes the secrets of a single zone.
type Manager struct {
	zone   string
	store  Store
	logger *slog.Logger
}

// NewManager returns a Manager for zone backed by store.
func NewManager(zone string, store Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{zone: zone, store: store, logger: logger.With("zone", zone)}
}

// Zone returns the zone the manager is bound to.
func (m *Manager) Zone() string {
	return m.zone
}

// Key returns the store key of purpose, <zone>/<purpose>.
func (m *Manager) Key(purpose Purpose) string {
	return naming.Secret(m.zone, string(purpose))
}

// Create stores payload under the purpose key. It never overwrites: an
// existing entry yields a *ConflictError.
func (m *Manager) Create(ctx context.Context, purpose Purpose, payload []byte) (Reference, error) {
	key := m.Key(purpose)
	if len(payload) == 0 {
		return "", fmt.Errorf("refusing to create empty secret %s", key)
	}

	tags := labels.NewLabelBuilder(m.zone).WithPurpose(string(purpose)).Build()
	ref, err := m.store.Put(ctx, key, payload, tags)
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return "", &ConflictError{Key: key}
		}
		return "", fmt.Errorf("failed to create secret %s: %w", key, err)
	}

	m.logger.Debug("secret created", "key", key, "bytes", len(payload))
	return ref, nil
}

// Delete removes the purpose entry. It reports whether something was
// removed; an absent entry is not an error.
func (m *Manager) Delete(ctx context.Context, purpose Purpose) (bool, error) {
	key := m.Key(purpose)
	if err := m.store.Delete(ctx, key); err != nil {
		if errors.Is(err, ErrNotFound) {
			m.logger.Debug("secret already absent", "key", key)
			return false, nil
		}
		return false, fmt.Errorf("failed to delete secret %s: %w", key, err)
	}
	return true, nil
}

// Lookup returns the reference of the purpose entry if present.
func (m *Manager) Lookup(ctx context.Context, purpose Purpose) (Reference, bool, error) {
	key := m.Key(purpose)
	ref, found, err := m.store.Lookup(ctx, key)
	if err != nil {
		return "", false, fmt.Errorf("failed to look up secret %s: %w", key, err)
	}
	return ref, found, nil
}

// Exists reports whether the purpose entry is present.
func (m *Manager) Exists(ctx context.Context, purpose Purpose) (bool, error) {
	key := m.Key(purpose)
	ok, err := m.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to check secret %s: %w", key, err)
	}
	return ok, nil
}

// Get returns the payload behind ref.
func (m *Manager) Get(ctx context.Context, ref Reference) ([]byte, error) {
	payload, err := m.store.Get(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret %s: %w", ref, err)
	}
	return payload, nil
}

// Ensure returns the reference of an existing purpose entry or creates
// it with the payload produced by load. load is only called when the
// entry is absent. The returned bool reports whether the entry was reused.
func (m *Manager) Ensure(ctx context.Context, purpose Purpose, load func() ([]byte, error)) (Reference, bool, error) {
	ref, found, err := m.Lookup(ctx, purpose)
	if err != nil {
		return "", false, err
	}
	if found {
		m.logger.Info("reusing existing secret", "key", m.Key(purpose))
		return ref, true, nil
	}

	payload, err := load()
	if err != nil {
		return "", false, err
	}
	ref, err = m.Create(ctx, purpose, payload)
	return ref, false, err
}
