package store

// Mem is an in-memory KV used in tests and as a stand-in medium.
// A non-zero Capacity bounds the total byte size of stored values;
// Set fails with ErrCapacity once the bound would be exceeded.
type Mem struct {
	Capacity int

	data map[string]string
}

var _ KV = (*Mem)(nil)

// NewMem returns an empty unbounded in-memory medium.
func NewMem() *Mem {
	return &Mem{data: make(map[string]string)}
}

func (m *Mem) Get(key string) (string, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Mem) Set(key, value string) error {
	if m.Capacity > 0 {
		size := len(value)
		for k, v := range m.data {
			if k != key {
				size += len(v)
			}
		}
		if size > m.Capacity {
			return ErrCapacity
		}
	}
	m.data[key] = value
	return nil
}

func (m *Mem) Remove(key string) error {
	delete(m.data, key)
	return nil
}

func (m *Mem) Keys() ([]string, error) {
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys, nil
}

// Len returns the number of stored keys.
func (m *Mem) Len() int {
	return len(m.data)
}
