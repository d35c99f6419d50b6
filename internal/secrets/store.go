package secrets

import "context"

// Purpose names what a secret entry holds.
type Purpose string

// Known purposes.
const (
	License     Purpose = "license"
	GlobalToken Purpose = "global-token"
	TLSKey      Purpose = "tls-key"
	TLSCert     Purpose = "tls-cert"
)

// Purposes returns every purpose in creation order.
func Purposes() []Purpose {
	return []Purpose{License, GlobalToken, TLSKey, TLSCert}
}

// Reference is the store-assigned handle of a secret entry (an ARN for
// Secrets Manager). It is only valid after a successful Put.
type Reference string

func (r Reference) String() string {
	return string(r)
}

// Store is the key/value secret backend.
type Store interface {
	// Put stores payload under key and returns its reference.
	// An existing key yields ErrAlreadyExists.
	Put(ctx context.Context, key string, payload []byte, tags map[string]string) (Reference, error)

	// Get returns the payload behind ref, or ErrNotFound.
	Get(ctx context.Context, ref Reference) ([]byte, error)

	// Delete removes key without a recovery window, or returns ErrNotFound.
	Delete(ctx context.Context, key string) error

	// Exists reports whether key is present.
	Exists(ctx context.Context, key string) (bool, error)

	// Lookup returns the reference of key if it is present.
	Lookup(ctx context.Context, key string) (Reference, bool, error)
}
