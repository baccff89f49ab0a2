package settings

import "strconv"

// Key names a setting, optionally indexed: relayBoot + 3 is "relayBoot3".
type Key struct {
	Prefix string
	Index  int
}

// IndexedKey returns the key of the index-th instance of prefix.
func IndexedKey(prefix string, index int) Key {
	return Key{Prefix: prefix, Index: index}
}

// PlainKey returns an unindexed key.
func PlainKey(name string) Key {
	return Key{Prefix: name, Index: -1}
}

// Value returns the stored key name.
func (k Key) Value() string {
	if k.Index < 0 {
		return k.Prefix
	}
	return k.Prefix + strconv.Itoa(k.Index)
}

func (k Key) String() string {
	return k.Value()
}
