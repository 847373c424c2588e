package model

import "errors"

// Stage-fatal error classes. Stages wrap these with context so the pipeline
// surfaces exactly one error identifying where it failed.
var (
	// ErrTranscriptUnavailable means the video has no fetchable transcript in
	// any language. There is no usable input, so the request fails before any
	// generative or search call is made.
	ErrTranscriptUnavailable = errors.New("transcript unavailable")

	// ErrSynthesisFailure means the generative-text service was unreachable or
	// returned unusable output for a stage that required it.
	ErrSynthesisFailure = errors.New("synthesis failure")

	// ErrRetrievalFailure means the search service was unreachable for every
	// query. Individual query failures are recoverable and only reduce
	// evidence coverage.
	ErrRetrievalFailure = errors.New("retrieval failure")
)
