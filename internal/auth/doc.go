// Package auth maintains per-user OAuth access tokens, refreshing them
// against the configured token endpoint and persisting the results.
package auth
