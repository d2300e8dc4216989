package output

// Config is the mutable per-output configuration the compositor keeps next
// to an output: the mode it wants, scale, transform, position and whether
// the output is enabled.
type Config struct {
	// Mode is the requested mode size; Refresh is in millihertz, zero when
	// any refresh rate is acceptable.
	Mode      Size
	Refresh   int
	Scale     float64
	Transform Transform
	Position  Point
	Enabled   bool
}

// ConfigStore maps output identities to their configuration. It replaces
// storing mutable side data on the output value itself.
//
// ConfigStore is not safe for concurrent use.
type ConfigStore struct {
	configs map[ID]*Config
}

// NewConfigStore creates an empty store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{configs: make(map[ID]*Config)}
}

// Get returns the configuration of an output.
func (s *ConfigStore) Get(id ID) (*Config, bool) {
	c, ok := s.configs[id]
	return c, ok
}

// Ensure returns the configuration of an output, inserting the result of
// defaults when none is stored yet.
func (s *ConfigStore) Ensure(id ID, defaults func() Config) *Config {
	if c, ok := s.configs[id]; ok {
		return c
	}
	c := defaults()
	s.configs[id] = &c
	return &c
}

// Delete drops the configuration of an output.
func (s *ConfigStore) Delete(id ID) {
	delete(s.configs, id)
}

// Len returns the number of stored configurations.
func (s *ConfigStore) Len() int {
	return len(s.configs)
}
