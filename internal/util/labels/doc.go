// Package labels provides consistent tagging for zone resources on AWS.
//
// Every stack and secret created by kmecs carries a kmecs:zone tag, stacks
// additionally carry their role. Tags are built with a small builder and
// converted to the SDK tag types by the platform clients.
package labels
