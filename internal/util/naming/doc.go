// Package naming provides consistent naming functions for zone resources.
//
// CloudFormation stacks follow the pattern {zone}-{role} and Secrets Manager
// entries follow {zone}/{purpose}. Both are derived from the zone name alone
// so that teardown can find every resource without persisted state.
package naming
