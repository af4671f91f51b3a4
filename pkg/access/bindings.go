package access

// Term is a single RDF term in a query solution.
type Term struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Datatype string `json:"datatype,omitempty"`
	Lang     string `json:"xml:lang,omitempty"`
}

// Binding maps variable names to the terms bound in one solution.
type Binding map[string]Term

// Bindings is the solution sequence of a SELECT query.
type Bindings []Binding

// Values returns the value bound to name in every solution that binds it.
func (b Bindings) Values(name string) []string {
	values := make([]string, 0, len(b))
	for _, solution := range b {
		if term, ok := solution[name]; ok {
			values = append(values, term.Value)
		}
	}
	return values
}
