// Package legacy migrates the old keyed-cache store into projects. The old
// store kept one cache entry per processing stage per source file; migration
// folds each file's entries into a single project at the most advanced stage
// reached, and never creates a second project for a file hash the store
// already knows.
package legacy
