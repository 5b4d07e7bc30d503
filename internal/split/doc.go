// Package split drives a run: it renders the source URL, fetches and parses
// the manifest, classifies every resource, writes one file per resource and
// finally one descriptor per package.
//
// Documents are processed strictly in order. A document without a kind is
// skipped but keeps its index, so resource indexes always match positions in
// the fetched stream.
package split
