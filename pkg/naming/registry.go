package naming

import "fmt"

// ConflictError reports a role name derived from a graph that is already
// taken, either by another graph or by one of the policy's fixed roles.
type ConflictError struct {
	Role string
	// Existing is the graph already owning Role; empty when Role is reserved.
	Existing string
	Graph    string
}

func (e *ConflictError) Error() string {
	if e.Existing == "" {
		return fmt.Sprintf("naming conflict: role %s derived from %s is reserved", e.Role, e.Graph)
	}
	return fmt.Sprintf("naming conflict: role %s derived from both %s and %s", e.Role, e.Existing, e.Graph)
}

// Registry remembers which graph owns each derived role name.
type Registry struct {
	owners map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{owners: make(map[string]string)}
}

// Register claims role for graph. Registering the same pair twice is a no-op;
// claiming a role already owned by another graph returns a *ConflictError.
func (r *Registry) Register(role, graph string) error {
	graph = Canonicalize(graph)
	if existing, ok := r.owners[role]; ok && existing != graph {
		return &ConflictError{Role: role, Existing: existing, Graph: graph}
	}
	r.owners[role] = graph
	return nil
}
