// Package project defines the dubbing project aggregate: timed segments with
// their text pipeline, the six per-stage segment collections, workflow stages
// with fixed completion weights, and the derived statistics recomputed after
// every mutation.
//
// A Project is a plain in-memory value; persistence is owned entirely by
// internal/store. The only non-serializable state is the transient audio
// buffer a Segment may hold between synthesis and confirmation.
package project
