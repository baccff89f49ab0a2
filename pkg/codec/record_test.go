package codec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ssargent/embedis/pkg/medium"
)

func TestWriter_Layout(t *testing.T) {
	m := medium.NewMemory(16)

	w := NewWriter(m, 0, 16)
	if !w.WriteEntry("a", "1") {
		t.Fatal("WriteEntry failed")
	}

	expected := []byte{
		0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
		'1', 0x00, 0x01, // value record: payload, len_hi, len_lo
		'a', 0x00, 0x01, // key record
	}
	if !bytes.Equal(m.Bytes(), expected) {
		t.Errorf("layout mismatch:\n got %x\nwant %x", m.Bytes(), expected)
	}
	if w.Position() != 10 {
		t.Errorf("Position mismatch: got %d, want 10", w.Position())
	}
}

func TestWriter_PayloadOrder(t *testing.T) {
	m := medium.NewMemory(32)

	w := NewWriter(m, 0, 32)
	if !w.WriteRecord("hello") {
		t.Fatal("WriteRecord failed")
	}

	got := m.Bytes()[25:30]
	if string(got) != "hello" {
		t.Errorf("payload not in natural order: %q", got)
	}
	if m.Read(31) != 5 || m.Read(30) != 0 {
		t.Errorf("length bytes mismatch: lo=%d hi=%d", m.Read(31), m.Read(30))
	}
}

func TestWriter_DoesNotFit(t *testing.T) {
	m := medium.NewMemory(8)

	w := NewWriter(m, 0, 8)
	if w.WriteEntry("key", "value") {
		t.Fatal("expected WriteEntry to refuse an oversized entry")
	}
	for i := 0; i < 8; i++ {
		if m.Read(i) != medium.Erased {
			t.Fatalf("byte %d was modified", i)
		}
	}
}

func TestReader_RoundTrip(t *testing.T) {
	testCases := []struct {
		name  string
		key   string
		value string
	}{
		{name: "simple string key-value", key: "wifiName0", value: "home"},
		{name: "empty value", key: "mqttUser", value: ""},
		{name: "binary data", key: "\x00\x01\x02", value: "\xFF\xFE\x00"},
		{name: "long value", key: "k", value: strings.Repeat("v", 300)},
		{name: "unicode data", key: "🔑", value: "émojis 🎯"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := medium.NewMemory(512)

			w := NewWriter(m, 0, 512)
			if !w.WriteEntry(tc.key, tc.value) {
				t.Fatal("WriteEntry failed")
			}

			r := NewReader(m, 0, 512)
			entry, ok := r.NextEntry()
			if !ok {
				t.Fatalf("NextEntry failed in state %s", r.State())
			}

			if got := entry.Key.Read(m); got != tc.key {
				t.Errorf("Key mismatch: got %q, want %q", got, tc.key)
			}
			if got := entry.Value.Read(m); got != tc.value {
				t.Errorf("Value mismatch: got %q, want %q", got, tc.value)
			}
			if !entry.Key.Equal(m, tc.key) {
				t.Error("Equal should match the stored key")
			}
			if entry.Size() != EntrySize(tc.key, tc.value) {
				t.Errorf("Size mismatch: got %d, want %d", entry.Size(), EntrySize(tc.key, tc.value))
			}
			if entry.End() != 512 || entry.Begin() != r.Position() {
				t.Errorf("range mismatch: [%d, %d) position %d", entry.Begin(), entry.End(), r.Position())
			}

			// erased space below ends the scan
			if _, ok := r.NextEntry(); ok {
				t.Error("expected the scan to end")
			}
			if r.State() != StateEnd {
				t.Errorf("State mismatch: got %s, want End", r.State())
			}
		})
	}
}

func TestReader_MultipleEntries(t *testing.T) {
	m := medium.NewMemory(128)

	w := NewWriter(m, 0, 128)
	pairs := [][2]string{{"a", "1"}, {"bb", "22"}, {"ccc", ""}}
	for _, p := range pairs {
		if !w.WriteEntry(p[0], p[1]) {
			t.Fatalf("WriteEntry(%q) failed", p[0])
		}
	}

	r := NewReader(m, 0, 128)
	for _, p := range pairs {
		entry, ok := r.NextEntry()
		if !ok {
			t.Fatalf("missing entry %q", p[0])
		}
		if entry.Key.Read(m) != p[0] || entry.Value.Read(m) != p[1] {
			t.Errorf("entry mismatch: got (%q, %q), want (%q, %q)",
				entry.Key.Read(m), entry.Value.Read(m), p[0], p[1])
		}
	}

	r.Rewind()
	if r.State() != StateBegin || r.Position() != 128 {
		t.Errorf("Rewind mismatch: state %s position %d", r.State(), r.Position())
	}
	if entry, ok := r.NextEntry(); !ok || !entry.Key.Equal(m, "a") {
		t.Error("expected first entry after Rewind")
	}
}

func TestReader_EmptyKeyStopsScan(t *testing.T) {
	m := medium.NewMemory(32)

	w := NewWriter(m, 0, 32)
	w.WriteEntry("a", "1")
	w.WriteTerminator()
	// stale data below the terminator must never be reported
	w.WriteEntry("stale", "x")

	r := NewReader(m, 0, 32)
	if _, ok := r.NextEntry(); !ok {
		t.Fatal("expected first entry")
	}
	if _, ok := r.NextEntry(); ok {
		t.Fatal("expected empty key to stop the scan")
	}
	if _, ok := r.NextEntry(); ok {
		t.Fatal("reader must stay in End")
	}
}

func TestReader_MalformedLength(t *testing.T) {
	m := medium.NewMemory(16)

	// length 0x0100 cannot fit in the 14 bytes left
	m.Write(15, 0x00)
	m.Write(14, 0x01)

	r := NewReader(m, 0, 16)
	if _, ok := r.Next(); ok {
		t.Fatal("expected malformed record to end the scan")
	}
	if r.State() != StateEnd {
		t.Errorf("State mismatch: got %s, want End", r.State())
	}
}

func TestReader_TooSmall(t *testing.T) {
	m := medium.NewMemory(4)

	r := NewReader(m, 3, 4)
	if _, ok := r.Next(); ok {
		t.Fatal("a single byte region cannot hold a record")
	}
}

func TestRecord_Overwrite(t *testing.T) {
	m := medium.NewMemory(32)

	w := NewWriter(m, 0, 32)
	w.WriteEntry("relayBoot0", "1")

	r := NewReader(m, 0, 32)
	entry, _ := r.NextEntry()

	if entry.Value.Overwrite(m, "22") {
		t.Error("Overwrite must refuse a different length")
	}
	if !entry.Value.Overwrite(m, "2") {
		t.Fatal("Overwrite failed")
	}
	if got := entry.Value.Read(m); got != "2" {
		t.Errorf("Value mismatch: got %q, want %q", got, "2")
	}
}

func TestState_String(t *testing.T) {
	states := map[State]string{
		StateBegin:      "Begin",
		StateLenByte1:   "LenByte1",
		StateLenByte2:   "LenByte2",
		StateValue:      "Value",
		StateEmptyValue: "EmptyValue",
		StateOutput:     "Output",
		StateEnd:        "End",
		State(42):       "Unknown",
	}
	for s, want := range states {
		if s.String() != want {
			t.Errorf("String mismatch: got %q, want %q", s.String(), want)
		}
	}
}
