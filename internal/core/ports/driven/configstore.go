package driven

// ConfigStore is flat key/value configuration persisted somewhere durable.
// Keys are dot paths such as "vector_store.provider". Typed getters return
// the zero value for missing keys and for values of the wrong type.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetFloat(key string) float64
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set stores one value and persists it.
	Set(key string, value any) error

	// SetMany stores all values and persists them in a single write.
	SetMany(values map[string]any) error

	// Save persists the current values.
	Save() error

	// Load replaces the current values with what is persisted.
	Load() error

	// Path locates the backing file, for display.
	Path() string
}
