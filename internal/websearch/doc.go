// Package websearch implements the ephemeral web-retrieval path: a live web
// search, concurrent page fetches with per-URL failure tolerance, and a
// throwaway summarization index over just the fetched pages. Nothing in this
// package persists; the transient index lives for one query and is discarded.
package websearch
