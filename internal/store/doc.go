// Package store persists worker state in SQLite: user credentials, project
// watch settings, template collections, and the append-only ledger of
// processed file ids.
package store
