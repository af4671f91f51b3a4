package fake

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/decomp/ngsec/pkg/access"
	"github.com/decomp/ngsec/pkg/graph"
)

const (
	aliasGraph     = graph.AliasGraph
	aliasPredicate = graph.AliasPredicate
)

var (
	namedGraphsRe = regexp.MustCompile(`^SELECT DISTINCT \?graph \{ GRAPH \?graph \{\} \}$`)
	countRe       = regexp.MustCompile(`^SELECT \(COUNT\(\*\) AS \?total\) FROM <([^>]*)> \{ \?s \?p \?o \}$`)
	aliasesRe     = regexp.MustCompile(`^SELECT \?alias \{ GRAPH <` + regexp.QuoteMeta(aliasGraph) + `> \{ \?alias <` + regexp.QuoteMeta(aliasPredicate) + `> <([^>]*)> \} \}$`)
	byAliasRe     = regexp.MustCompile(`^SELECT \?graph \{ GRAPH <` + regexp.QuoteMeta(aliasGraph) + `> \{ (\S+) <` + regexp.QuoteMeta(aliasPredicate) + `> \?graph \} \}$`)
	byKeywordRe   = regexp.MustCompile(`^SELECT DISTINCT \?graph \{ GRAPH \?graph \{\} FILTER\(CONTAINS\(LCASE\(STR\(\?graph\)\), LCASE\("((?:[^"\\]|\\.)*)"\)\)\) \}$`)

	addRe      = regexp.MustCompile(`^ADD <([^>]*)> TO <([^>]*)>$`)
	dropRe     = regexp.MustCompile(`^DROP GRAPH <([^>]*)>$`)
	aliasDatRe = regexp.MustCompile(`^(INSERT|DELETE) DATA \{ GRAPH <([^>]*)> \{ (\S+) <([^>]*)> <([^>]*)> \} \}$`)
)

func evalSelect(data dataset, query string) (access.Bindings, error) {
	query = strings.TrimSpace(query)
	switch {
	case namedGraphsRe.MatchString(query):
		return graphRows(data, func(string) bool { return true }), nil

	case countRe.MatchString(query):
		g := countRe.FindStringSubmatch(query)[1]
		return access.Bindings{{"total": {Type: "literal", Value: strconv.Itoa(len(data[g])),
			Datatype: "http://www.w3.org/2001/XMLSchema#integer"}}}, nil

	case aliasesRe.MatchString(query):
		target := aliasesRe.FindStringSubmatch(query)[1]
		var rows access.Bindings
		for _, t := range sortedTriples(data[aliasGraph]) {
			if t.P == aliasPredicate && t.O == target {
				rows = append(rows, access.Binding{"alias": {Type: "uri", Value: t.S}})
			}
		}
		return rows, nil

	case byAliasRe.MatchString(query):
		subject := expand(byAliasRe.FindStringSubmatch(query)[1])
		var rows access.Bindings
		for _, t := range sortedTriples(data[aliasGraph]) {
			if t.P == aliasPredicate && t.S == subject {
				rows = append(rows, access.Binding{"graph": {Type: "uri", Value: t.O}})
			}
		}
		return rows, nil

	case byKeywordRe.MatchString(query):
		keyword := strings.ToLower(unescape(byKeywordRe.FindStringSubmatch(query)[1]))
		return graphRows(data, func(g string) bool {
			return strings.Contains(strings.ToLower(g), keyword)
		}), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedQuery, query)
}

func evalUpdate(data dataset, update string) error {
	update = strings.TrimSpace(update)
	switch {
	case addRe.MatchString(update):
		m := addRe.FindStringSubmatch(update)
		for t := range data[m[1]] {
			insert(data, m[2], t)
		}
		return nil

	case dropRe.MatchString(update):
		g := dropRe.FindStringSubmatch(update)[1]
		if len(data[g]) == 0 {
			return &access.RemoteError{Op: "update", Resource: g, StatusCode: 400, Message: "graph does not exist"}
		}
		delete(data, g)
		return nil

	case aliasDatRe.MatchString(update):
		m := aliasDatRe.FindStringSubmatch(update)
		t := triple{S: expand(m[3]), P: m[4], O: m[5]}
		if m[1] == "INSERT" {
			insert(data, m[2], t)
			return nil
		}
		delete(data[m[2]], t)
		if len(data[m[2]]) == 0 {
			delete(data, m[2])
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedQuery, update)
}

func insert(data dataset, g string, t triple) {
	triples := data[g]
	if triples == nil {
		triples = map[triple]struct{}{}
		data[g] = triples
	}
	triples[t] = struct{}{}
}

// graphRows lists the non-empty named graphs accepted by keep, excluding the
// alias graph.
func graphRows(data dataset, keep func(string) bool) access.Bindings {
	names := make([]string, 0, len(data))
	for g, triples := range data {
		if g == aliasGraph || len(triples) == 0 || !keep(g) {
			continue
		}
		names = append(names, g)
	}
	sort.Strings(names)
	rows := make(access.Bindings, 0, len(names))
	for _, g := range names {
		rows = append(rows, access.Binding{"graph": {Type: "uri", Value: g}})
	}
	return rows
}

func sortedTriples(triples map[triple]struct{}) []triple {
	out := make([]triple, 0, len(triples))
	for t := range triples {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].S != out[j].S {
			return out[i].S < out[j].S
		}
		return out[i].O < out[j].O
	})
	return out
}

// expand resolves a prefixed name with the empty prefix against the default
// namespace and strips angle brackets from IRIs.
func expand(term string) string {
	term = strings.TrimSpace(term)
	if strings.HasPrefix(term, ":") {
		return DefaultNamespace + term[1:]
	}
	return strings.Trim(term, "<>")
}

var unescaper = strings.NewReplacer(`\\`, `\`, `\"`, `"`, `\n`, "\n", `\r`, "\r")

func unescape(s string) string {
	return unescaper.Replace(s)
}
