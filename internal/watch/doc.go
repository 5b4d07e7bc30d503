// Package watch re-runs the split whenever one of its input files changes.
//
// The parent directories of the watched files are observed rather than the
// files themselves, so editors that save by renaming a temporary file over
// the original keep triggering runs. Bursts of events are debounced and
// runs never overlap.
package watch
