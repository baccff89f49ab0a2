package medium

// Memory is a RAM-only medium. Commit only counts.
type Memory struct {
	data    []byte
	commits int
}

// NewMemory returns an erased medium of the given size.
func NewMemory(size int) *Memory {
	m := &Memory{data: make([]byte, size)}
	for i := range m.data {
		m.data[i] = Erased
	}
	return m
}

func (m *Memory) Read(offset int) byte {
	return m.data[offset]
}

func (m *Memory) Write(offset int, value byte) {
	m.data[offset] = value
}

// Commit only counts; memory has nothing to persist.
func (m *Memory) Commit() error {
	m.commits++
	return nil
}

func (m *Memory) Size() int {
	return len(m.data)
}

// Commits returns how many times Commit was called.
func (m *Memory) Commits() int {
	return m.commits
}

// Bytes returns a copy of the contents.
func (m *Memory) Bytes() []byte {
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out
}

// Load replaces the contents without counting a commit.
func (m *Memory) Load(image []byte) error {
	if len(image) != len(m.data) {
		return ErrSizeMismatch
	}
	copy(m.data, image)
	return nil
}
