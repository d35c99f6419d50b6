package naming

import (
	"fmt"
	"strings"
)

// Naming functions for zone resources.
// Stack names must stay valid CloudFormation identifiers, secret names use
// the zone as a path prefix.

// Stack returns the CloudFormation stack name for a zone role.
func Stack(zone, role string) string {
	return fmt.Sprintf("%s-%s", zone, role)
}

// Secret returns the Secrets Manager name for a zone secret purpose.
func Secret(zone, purpose string) string {
	return fmt.Sprintf("%s/%s", zone, purpose)
}

// SecretPrefix returns the name prefix shared by all secrets of a zone.
func SecretPrefix(zone string) string {
	return zone + "/"
}

// TemplateObjectKey returns the S3 object key used when a stack template
// is uploaded instead of passed inline.
func TemplateObjectKey(zone, role, digest string) string {
	return fmt.Sprintf("kmecs/%s/%s-%s.yaml", zone, role, digest)
}

// RequestToken returns a CloudFormation client request token.
// Tokens must start with a letter and contain only letters, digits and dashes.
func RequestToken(operation, id string) string {
	return strings.ToLower(fmt.Sprintf("kmecs-%s-%s", operation, id))
}
