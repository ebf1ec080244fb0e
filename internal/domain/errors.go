package domain

import "errors"

var (
	// ErrMissingInput signals a request without an image or text query.
	ErrMissingInput = errors.New("missing input")
	// ErrNotFound signals a missing catalog item.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized signals a missing or invalid API credential.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUpstreamUnavailable signals an unreachable store or model provider.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrUpstreamTimeout signals a timed-out external call.
	ErrUpstreamTimeout = errors.New("upstream timeout")
	// ErrModelResponse signals model output that is not valid JSON after sanitizing.
	ErrModelResponse = errors.New("unparseable model response")
	// ErrVectorDimMismatch signals an embedding of unexpected dimensionality.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrUnsupportedImage signals an image payload the encoder cannot accept.
	ErrUnsupportedImage = errors.New("unsupported image")
)
