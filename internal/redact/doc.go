// Package redact scrubs source code before it is sent to a model.
//
// Secrets are found with regular expressions for common shapes (private key
// headers, AWS keys, provider API keys, GitHub and Slack tokens, JWTs,
// bearer tokens and secret-looking assignments) and replaced with
// [REDACTED]. [Policy.Apply] reports the replacements per kind.
//
// Files whose path matches a policy glob are blocked outright.
package redact
