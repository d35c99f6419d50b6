// Package retry provides exponential backoff retry logic for transient failures.
//
// The [Do] function retries an operation with configurable max attempts,
// initial delay, and maximum delay. It is used around read-only AWS calls
// (stack and secret describes) that are subject to API throttling.
// Errors wrapped with [Fatal], or rejected by a [WithRetryIf] predicate,
// end the loop immediately.
package retry
