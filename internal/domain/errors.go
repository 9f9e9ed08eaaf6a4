package domain

import "errors"

var (
	// ErrInvalidProfile is returned when a user profile holds out-of-range values
	ErrInvalidProfile = errors.New("invalid user profile")

	// ErrUnknownSkinType is returned when a skin type label is not one of the five known types
	ErrUnknownSkinType = errors.New("unknown skin type")

	// ErrUnknownStressLevel is returned when a stress level label is not Low, Medium or High
	ErrUnknownStressLevel = errors.New("unknown stress level")

	// ErrMalformedDataset is returned when the product table is missing required columns
	ErrMalformedDataset = errors.New("malformed product dataset")

	// ErrDatasetNotLoaded is returned when a service is used before a catalog is available
	ErrDatasetNotLoaded = errors.New("product dataset not loaded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")
)
