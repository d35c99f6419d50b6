// Package secrets manages the zone-scoped secret entries a deployment needs.
//
// A Manager is bound to one zone and names every entry <zone>/<purpose>.
// Create is deliberately not an upsert: a second Create for an existing
// key fails with a *ConflictError. Delete is idempotent and treats an
// absent entry as success. Whether secrets are deleted at all on teardown
// is decided by the caller.
package secrets
