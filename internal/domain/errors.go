package domain

import "errors"

var (
	// ErrUnknownProduct is returned when a product id is not in the trained product mapping.
	ErrUnknownProduct = errors.New("unknown product")

	// ErrNoHistoryForSeason is returned when a product has no sales in the requested season.
	ErrNoHistoryForSeason = errors.New("no history for this product & season")

	// ErrInvalidArgument is returned for malformed dates, out of range periods or ratios,
	// and missing or non-coercible tool arguments.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnknownTool is returned when a tool name is not registered.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrArtifactLoad wraps any failure to read the model, product map or sales history.
	ErrArtifactLoad = errors.New("artifact load failed")
)
