// Package retry provides exponential backoff retry logic for transient failures.
//
// [Do] retries an operation with configurable max retries, initial delay and
// maximum delay. It is used to establish SSH sessions against hosts whose
// sshd may still be starting. Errors wrapped with [Permanent] stop the loop
// immediately, e.g. authentication failures.
package retry
