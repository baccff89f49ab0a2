package store

import "log/slog"

// Errors
var (
	ErrInvalidKey    = &KVError{"invalid key"}
	ErrNoSpace       = &KVError{"not enough space"}
	ErrValueTooLarge = &KVError{"key or value too large"}
	ErrInvalidRegion = &KVError{"invalid region"}
)

// KVError represents a key-value store error
type KVError struct {
	Message string
}

func (e *KVError) Error() string {
	return e.Message
}

// Stats holds usage figures of the region
type Stats struct {
	Keys      int `json:"keys"`
	Size      int `json:"size"`
	Available int `json:"available"`
	Used      int `json:"used"`
}

// Option configures a KeyValueStore
type Option func(*KeyValueStore)

// WithLogger sets the logger used for debug tracing
func WithLogger(logger *slog.Logger) Option {
	return func(kv *KeyValueStore) {
		if logger != nil {
			kv.logger = logger
		}
	}
}
