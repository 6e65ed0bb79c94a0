// Package sanitizer normalizes user supplied text before validation and storage.
//
// All functions are idempotent: applying them twice yields the same result as
// applying them once. Invalid input is normalized as far as possible rather
// than rejected; rejection is the validator's job.
package sanitizer
