package definition

import "reflect"

// FieldDef describes a single configuration field: its dotted config path,
// default value, and the CLI flag and environment variable that can set it.
type FieldDef struct {
	Path      string       // Dotted config path such as "server.port"
	Default   any          // Default value applied before any source
	CLIFlag   string       // CLI flag name such as "port"; empty when not flag-settable
	Shorthand string       // Single character flag shorthand
	EnvVar    string       // Environment variable name such as "SERVER_PORT"
	Type      reflect.Type // Go type of the field
	Help      string       // Flag help text
}

// Registry is the single source of truth for configuration field metadata.
type Registry struct {
	fields map[string]FieldDef
}

// NewRegistry creates an empty field registry.
func NewRegistry() *Registry {
	return &Registry{fields: make(map[string]FieldDef)}
}

// Register adds a field definition, replacing any previous entry at the same path.
func (r *Registry) Register(field *FieldDef) {
	r.fields[field.Path] = *field
}

// GetField returns the definition registered at path.
func (r *Registry) GetField(path string) (FieldDef, bool) {
	field, exists := r.fields[path]
	return field, exists
}

// GetDefault returns the default value for path, or nil when unregistered.
func (r *Registry) GetDefault(path string) any {
	if field, exists := r.fields[path]; exists {
		return field.Default
	}
	return nil
}

// GetAllFields returns a copy of every registered field keyed by path.
func (r *Registry) GetAllFields() map[string]FieldDef {
	result := make(map[string]FieldDef, len(r.fields))
	for path, field := range r.fields {
		result[path] = field
	}
	return result
}

// GetCLIFlagMapping maps CLI flag names to their config paths.
func (r *Registry) GetCLIFlagMapping() map[string]string {
	mapping := make(map[string]string)
	for path, field := range r.fields {
		if field.CLIFlag != "" {
			mapping[field.CLIFlag] = path
		}
	}
	return mapping
}
