//go:build bench
// +build bench

package codec

import (
	"strings"
	"testing"

	"github.com/ssargent/embedis/pkg/medium"
)

func BenchmarkWriter_WriteEntry(b *testing.B) {
	benchmarks := []struct {
		name  string
		key   string
		value string
	}{
		{name: "small", key: "relayBoot0", value: "1"},
		{name: "medium", key: strings.Repeat("k", 32), value: strings.Repeat("v", 256)},
		{name: "large", key: strings.Repeat("k", 64), value: strings.Repeat("v", 2048)},
	}

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			size := EntrySize(bm.key, bm.value)
			m := medium.NewMemory(size)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				w := NewWriter(m, 0, size)
				if !w.WriteEntry(bm.key, bm.value) {
					b.Fatal("WriteEntry failed")
				}
			}
		})
	}
}

func BenchmarkReader_Scan(b *testing.B) {
	m := medium.NewMemory(4096)
	w := NewWriter(m, 0, 4096)
	for i := 0; w.WriteEntry("key"+strings.Repeat("x", i%8), "value"); i++ {
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r := NewReader(m, 0, 4096)
		for {
			if _, ok := r.NextEntry(); !ok {
				break
			}
		}
	}
}
