//go:build fuzz
// +build fuzz

package codec

import (
	"testing"

	"github.com/ssargent/embedis/pkg/medium"
)

// FuzzWriterReader_RoundTrip tests write/scan round-trip with random inputs
func FuzzWriterReader_RoundTrip(f *testing.F) {
	f.Add("key", "value")
	f.Add("wifiName0", "")
	f.Add("\x00\x01\x02", "\xFF\xFF")

	f.Fuzz(func(t *testing.T, key, value string) {
		if len(key) == 0 || len(key) > 1000 || len(value) > 1000 {
			t.Skip("Input outside the tested range")
		}

		size := EntrySize(key, value) + HeaderSize
		m := medium.NewMemory(size)

		w := NewWriter(m, 0, size)
		if !w.WriteEntry(key, value) {
			t.Fatalf("WriteEntry failed for key=%q value=%q", key, value)
		}

		r := NewReader(m, 0, size)
		entry, ok := r.NextEntry()
		if !ok {
			t.Fatalf("NextEntry failed for key=%q value=%q", key, value)
		}

		if got := entry.Key.Read(m); got != key {
			t.Errorf("Key mismatch: got %q, want %q", got, key)
		}
		if got := entry.Value.Read(m); got != value {
			t.Errorf("Value mismatch: got %q, want %q", got, value)
		}
	})
}

// FuzzReader_MalformedRegion tests that arbitrary bytes never escape the region
func FuzzReader_MalformedRegion(f *testing.F) {
	f.Add([]byte{0x00, 0x00})
	f.Add([]byte{0xFF, 0xFF, 0xFF})
	f.Add([]byte{'a', 0x00, 0x01, 0x05, 0x00})

	f.Fuzz(func(t *testing.T, image []byte) {
		if len(image) < 2 || len(image) > 4096 {
			t.Skip("Input outside the tested range")
		}

		m := medium.NewMemory(len(image))
		if err := m.Load(image); err != nil {
			t.Fatal(err)
		}

		r := NewReader(m, 0, len(image))
		for i := 0; i < len(image); i++ {
			rec, ok := r.Next()
			if !ok {
				return
			}
			if rec.Begin < 0 || rec.Top() > len(image) {
				t.Fatalf("record [%d, %d) escaped the region of %d bytes", rec.Begin, rec.Top(), len(image))
			}
		}
	})
}
