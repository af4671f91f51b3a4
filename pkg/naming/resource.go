package naming

import (
	"strings"

	"github.com/decomp/ngsec/pkg/access"
)

// DefaultGraphIRI is the reserved context holding triples outside any named graph.
const DefaultGraphIRI = "tag:stardog:api:context:default"

// Canonicalize strips surrounding whitespace and angle brackets from an IRI.
func Canonicalize(iri string) string {
	return strings.Trim(strings.TrimSpace(iri), "<>")
}

// IRI renders a graph name as a SPARQL IRI reference.
func IRI(iri string) string {
	return "<" + Canonicalize(iri) + ">"
}

// ResourceRef identifies the target of a permission.
type ResourceRef struct {
	Type  access.ResourceType
	DB    string
	Graph string
}

// DBRef refers to a whole database.
func DBRef(db string) ResourceRef {
	return ResourceRef{Type: access.ResourceDB, DB: db}
}

// GraphRef refers to one named graph of a database.
func GraphRef(db, iri string) ResourceRef {
	return ResourceRef{Type: access.ResourceNamedGraph, DB: db, Graph: Canonicalize(iri)}
}

// DefaultGraphRef refers to the default graph of a database.
func DefaultGraphRef(db string) ResourceRef {
	return GraphRef(db, DefaultGraphIRI)
}

// String returns the resource path used in permission grants: the database
// name for databases and db\graph for named graphs.
func (r ResourceRef) String() string {
	if r.Type == access.ResourceDB {
		return r.DB
	}
	return r.DB + `\` + r.Graph
}

// Permission builds the grant of action on r.
func (r ResourceRef) Permission(action access.Action) access.Permission {
	return access.Permission{
		Action:       action,
		ResourceType: r.Type,
		Resource:     r.String(),
	}
}
