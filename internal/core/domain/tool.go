package domain

// ParameterType is the JSON schema type of a tool parameter.
type ParameterType string

// Supported parameter types.
const (
	ParameterString  ParameterType = "string"
	ParameterInteger ParameterType = "integer"
)

// ToolParameter describes a single argument of a tool.
type ToolParameter struct {
	Name        string
	Type        ParameterType
	Description string
	Required    bool
}

// ToolDefinition is the provider-neutral schema of a tool offered to a model.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  []ToolParameter
}

// Required returns the names of the required parameters in declaration order.
func (d ToolDefinition) Required() []string {
	var names []string
	for _, p := range d.Parameters {
		if p.Required {
			names = append(names, p.Name)
		}
	}
	return names
}

// JSONSchema renders the parameters as a JSON schema object.
func (d ToolDefinition) JSONSchema() map[string]any {
	props := make(map[string]any, len(d.Parameters))
	for _, p := range d.Parameters {
		props[p.Name] = map[string]any{
			"type":        string(p.Type),
			"description": p.Description,
		}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if req := d.Required(); len(req) > 0 {
		schema["required"] = req
	}
	return schema
}

// ToolCall is a structured request from the model to invoke a tool.
type ToolCall struct {
	// ID correlates the call with its result. Providers without IDs get a generated one.
	ID string

	// Name is the registered tool name.
	Name string

	// Arguments are the decoded JSON arguments.
	Arguments map[string]any
}

// ToolCallRecord collects the sources touched by tool executions for one query.
// Sources keep first-seen order and are de-duplicated by label.
type ToolCallRecord struct {
	sources []Source
	seen    map[string]struct{}
}

// NewToolCallRecord creates an empty record.
func NewToolCallRecord() *ToolCallRecord {
	return &ToolCallRecord{seen: make(map[string]struct{})}
}

// Add records a source unless its label was already recorded.
func (r *ToolCallRecord) Add(s Source) {
	if r.seen == nil {
		r.seen = make(map[string]struct{})
	}
	if _, ok := r.seen[s.Label]; ok {
		return
	}
	r.seen[s.Label] = struct{}{}
	r.sources = append(r.sources, s)
}

// Sources returns a copy of the recorded sources.
func (r *ToolCallRecord) Sources() []Source {
	out := make([]Source, len(r.sources))
	copy(out, r.sources)
	return out
}

// Reset clears the record.
func (r *ToolCallRecord) Reset() {
	r.sources = nil
	r.seen = make(map[string]struct{})
}
