// Package bundle packages a project and its segment audio into a single
// self-contained zip archive, and restores such archives into the store. The
// archive holds the full project payload, a manifest with the format version,
// and one wav file per segment that had audio attached at export time.
package bundle
