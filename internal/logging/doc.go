// Package logging provides slog construction plus shared attribute helpers
// and field-name constants so worker components log consistently.
package logging
