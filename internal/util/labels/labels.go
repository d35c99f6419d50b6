package labels

import "sort"

// Standard tag keys for zone resources.
const (
	// KeyZone identifies which zone a resource belongs to
	KeyZone = "kmecs:zone"

	// KeyRole identifies the stack role (vpc, control-plane, ...)
	KeyRole = "kmecs:role"

	// KeyPurpose identifies the purpose of a secret (license, tls-key, ...)
	KeyPurpose = "kmecs:purpose"

	// KeyManagedBy identifies the management system
	KeyManagedBy = "kmecs:managed-by"
)

// ManagedByKmecs is the KeyManagedBy value for resources created by this tool.
const ManagedByKmecs = "kmecs"

// LabelBuilder provides a fluent interface for building resource tags.
type LabelBuilder struct {
	labels map[string]string
}

// NewLabelBuilder creates a new builder with the zone and manager pre-set.
func NewLabelBuilder(zone string) *LabelBuilder {
	return &LabelBuilder{
		labels: map[string]string{
			KeyZone:      zone,
			KeyManagedBy: ManagedByKmecs,
		},
	}
}

// WithRole adds a stack role tag.
func (lb *LabelBuilder) WithRole(role string) *LabelBuilder {
	lb.labels[KeyRole] = role
	return lb
}

// WithPurpose adds a secret purpose tag.
func (lb *LabelBuilder) WithPurpose(purpose string) *LabelBuilder {
	lb.labels[KeyPurpose] = purpose
	return lb
}

// Merge adds all labels from the provided map.
func (lb *LabelBuilder) Merge(extra map[string]string) *LabelBuilder {
	for k, v := range extra {
		lb.labels[k] = v
	}
	return lb
}

// Build returns a copy of the labels map.
func (lb *LabelBuilder) Build() map[string]string {
	result := make(map[string]string, len(lb.labels))
	for k, v := range lb.labels {
		result[k] = v
	}
	return result
}

// SortedKeys returns the keys of a label map in lexical order, so that
// the tag lists sent to AWS are deterministic.
func SortedKeys(labels map[string]string) []string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
