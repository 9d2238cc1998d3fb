// Package llm provides the language-model client boundary.
//
// The package defines the Client interface used by the scaffolder (code
// generation) and, indirectly, by scaffolds at runtime (the executor model
// is resolved inside the sandbox). Failures are classified as transient
// (retryable: rate limits, server errors) or fatal (invalid requests, auth
// failures) so callers can apply the right policy. The Retrying decorator
// wraps any Client with bounded exponential backoff for transient errors.
package llm
