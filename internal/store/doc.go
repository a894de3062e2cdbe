// Package store persists dubbing projects to a directory-backed store: a
// single index document for listings plus one JSON payload per project. Every
// write goes through a temp file and an atomic rename, and a save updates the
// payload and index as one logical operation with rollback, so the two can
// never disagree after a crash. An advisory file lock keeps a second process
// from opening the same store.
package store
