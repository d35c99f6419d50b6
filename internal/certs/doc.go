// Package certs produces the TLS key pair served by the zone control plane.
//
// The certificate must be valid both for the externally reachable load
// balancer name and for the internal service discovery name, so the
// Provisioner asks a Tool for a server certificate covering both and then
// checks the result before handing it back.
package certs
