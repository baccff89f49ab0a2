package store

import (
	"log/slog"

	"github.com/ssargent/embedis/pkg/codec"
	"github.com/ssargent/embedis/pkg/medium"
)

// erase removes entry from the region and returns the new free boundary.
// free is the lowest address of the lowest entry.
//
// Entries written after the erased one (lower addresses) are shifted up over
// it and the vacated bottom is filled with 0xFF. When the erased entry is the
// lowest one its key length is zeroed instead, which ends the entry list there.
func (kv *KeyValueStore) erase(entry codec.Entry, free int) int {
	lo, hi := entry.Begin(), entry.End()
	size := hi - lo

	if free < lo {
		kv.trace("store: shifting entries",
			slog.Int("from", free), slog.Int("to", lo), slog.Int("by", size))

		src := codec.FromEnd(kv.source, free, lo)
		dst := codec.FromEnd(kv.source, free+size, hi)
		for src.Dec(); src.Valid(); src.Dec() {
			dst.Dec()
			dst.Write(src.Read())
		}

		fill := codec.NewCursor(kv.source, free, free+size)
		for ; fill.Valid(); fill.Inc() {
			fill.Write(medium.Erased)
		}
		return free + size
	}

	kv.trace("store: truncating at erased entry", slog.Int("at", hi))
	kv.source.Write(hi-1, 0)
	kv.source.Write(hi-2, 0)
	return hi
}
