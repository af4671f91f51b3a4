package graph

import (
	"fmt"
	"strings"

	"github.com/decomp/ngsec/pkg/naming"
)

const namedGraphsQuery = `SELECT DISTINCT ?graph { GRAPH ?graph {} }`

func countQuery(graph string) string {
	return fmt.Sprintf(`SELECT (COUNT(*) AS ?total) FROM %s { ?s ?p ?o }`, naming.IRI(graph))
}

func aliasesQuery(graph string) string {
	return fmt.Sprintf(`SELECT ?alias { GRAPH <%s> { ?alias <%s> %s } }`,
		AliasGraph, AliasPredicate, naming.IRI(graph))
}

func graphsByAliasQuery(alias string) string {
	return fmt.Sprintf(`SELECT ?graph { GRAPH <%s> { %s <%s> ?graph } }`,
		AliasGraph, aliasTerm(alias), AliasPredicate)
}

func graphsByKeywordQuery(keyword string) string {
	return fmt.Sprintf(`SELECT DISTINCT ?graph { GRAPH ?graph {} FILTER(CONTAINS(LCASE(STR(?graph)), LCASE("%s"))) }`,
		escapeLiteral(keyword))
}

func aliasTriple(alias, graph string) string {
	return fmt.Sprintf(`{ GRAPH <%s> { %s <%s> %s } }`,
		AliasGraph, aliasTerm(alias), AliasPredicate, naming.IRI(graph))
}

// aliasTerm keeps prefixed names (":a-tosc") as they are and wraps anything
// else in angle brackets.
func aliasTerm(alias string) string {
	alias = strings.TrimSpace(alias)
	if strings.HasPrefix(alias, ":") {
		return alias
	}
	return naming.IRI(alias)
}

var literalEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`)

func escapeLiteral(s string) string {
	return literalEscaper.Replace(s)
}
