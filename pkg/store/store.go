package store

// Store is the engine surface used by the settings layer.
type Store interface {
	Get(key string) (string, bool)
	Has(key string) bool
	Set(key, value string) error
	Delete(key string) (bool, error)
	Foreach(fn func(key, value string))
	Keys() []string
	Count() int
	Available() int
	Size() int
	Stats() Stats
}

var _ Store = (*KeyValueStore)(nil)
