// Package secretsmanager implements the zone secret store on AWS Secrets
// Manager.
//
// Entries are created with CreateSecret and never overwritten: an existing
// name is reported as [secrets.ErrAlreadyExists]. Deletes skip the recovery
// window so a zone can be redeployed immediately under the same names, and
// a secret that is pending deletion is treated as absent.
package secretsmanager
