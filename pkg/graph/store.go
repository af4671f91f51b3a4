package graph

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/decomp/ngsec/pkg/access"
	"github.com/decomp/ngsec/pkg/naming"
)

const (
	// AliasGraph holds every alias binding of a database.
	AliasGraph = "tag:stardog:api:graph:aliases"
	// AliasPredicate binds an alias to a named graph.
	AliasPredicate = "tag:stardog:api:graph:alias"
)

// Store runs graph and alias operations against one database.
type Store struct {
	exec access.QueryExecutor
	db   string
}

// NewStore binds a Store to db.
func NewStore(exec access.QueryExecutor, db string) *Store {
	return &Store{exec: exec, db: db}
}

// DB returns the database the store is bound to.
func (s *Store) DB() string {
	return s.db
}

// Begin opens a transaction on the store's database.
func (s *Store) Begin(ctx context.Context) (*access.Tx, error) {
	tx, err := s.exec.BeginTransaction(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if !access.InTx(tx) {
		return nil, access.ErrNoTransaction
	}
	return tx, nil
}

// Commit commits tx.
func (s *Store) Commit(ctx context.Context, tx *access.Tx) error {
	return s.exec.CommitTransaction(ctx, tx)
}

// Rollback discards tx.
func (s *Store) Rollback(ctx context.Context, tx *access.Tx) error {
	return s.exec.RollbackTransaction(ctx, tx)
}

// NamedGraphs returns the distinct named graphs present in the database.
func (s *Store) NamedGraphs(ctx context.Context) ([]string, error) {
	rows, err := s.exec.Select(ctx, s.db, namedGraphsQuery, nil)
	if err != nil {
		return nil, err
	}
	return rows.Values("graph"), nil
}

// CountTriples returns the number of triples in graph.
func (s *Store) CountTriples(ctx context.Context, tx *access.Tx, graph string) (int, error) {
	rows, err := s.exec.Select(ctx, s.db, countQuery(graph), tx)
	if err != nil {
		return 0, err
	}
	totals := rows.Values("total")
	if len(totals) == 0 {
		return 0, nil
	}
	n, err := strconv.Atoi(totals[0])
	if err != nil {
		return 0, fmt.Errorf("graph: bad triple count %q for %s: %w", totals[0], graph, err)
	}
	return n, nil
}

// Aliases returns the aliases bound to graph as prefixed names (":name").
func (s *Store) Aliases(ctx context.Context, tx *access.Tx, graph string) ([]string, error) {
	rows, err := s.exec.Select(ctx, s.db, aliasesQuery(graph), tx)
	if err != nil {
		return nil, err
	}
	values := rows.Values("alias")
	aliases := make([]string, 0, len(values))
	for _, v := range values {
		aliases = append(aliases, ":"+localName(v))
	}
	return aliases, nil
}

// GraphsByAlias returns the graphs alias is bound to. A healthy alias has
// exactly one.
func (s *Store) GraphsByAlias(ctx context.Context, alias string) ([]string, error) {
	rows, err := s.exec.Select(ctx, s.db, graphsByAliasQuery(alias), nil)
	if err != nil {
		return nil, err
	}
	return rows.Values("graph"), nil
}

// GraphsByKeyword returns the named graphs whose IRI contains keyword,
// ignoring case.
func (s *Store) GraphsByKeyword(ctx context.Context, keyword string) ([]string, error) {
	rows, err := s.exec.Select(ctx, s.db, graphsByKeywordQuery(keyword), nil)
	if err != nil {
		return nil, err
	}
	return rows.Values("graph"), nil
}

// CopyGraph appends every triple of from into to.
func (s *Store) CopyGraph(ctx context.Context, tx *access.Tx, from, to string) error {
	return s.exec.Update(ctx, s.db, fmt.Sprintf("ADD %s TO %s", naming.IRI(from), naming.IRI(to)), tx)
}

// DropGraph removes graph and all its triples.
func (s *Store) DropGraph(ctx context.Context, tx *access.Tx, graph string) error {
	return s.exec.Update(ctx, s.db, "DROP GRAPH "+naming.IRI(graph), tx)
}

// AddAlias binds alias to graph.
func (s *Store) AddAlias(ctx context.Context, tx *access.Tx, alias, graph string) error {
	return s.exec.Update(ctx, s.db, "INSERT DATA "+aliasTriple(alias, graph), tx)
}

// RemoveAlias unbinds alias from graph.
func (s *Store) RemoveAlias(ctx context.Context, tx *access.Tx, alias, graph string) error {
	return s.exec.Update(ctx, s.db, "DELETE DATA "+aliasTriple(alias, graph), tx)
}

// AddAliases binds each alias to graph in order and returns how many
// succeeded. It stops at the first failure.
func (s *Store) AddAliases(ctx context.Context, tx *access.Tx, aliases []string, graph string) (int, error) {
	for i, alias := range aliases {
		if err := s.AddAlias(ctx, tx, alias, graph); err != nil {
			return i, fmt.Errorf("add alias %s to %s: %w", alias, graph, err)
		}
	}
	return len(aliases), nil
}

// RemoveAliases unbinds each alias from graph in order and returns how many
// succeeded. It stops at the first failure.
func (s *Store) RemoveAliases(ctx context.Context, tx *access.Tx, aliases []string, graph string) (int, error) {
	for i, alias := range aliases {
		if err := s.RemoveAlias(ctx, tx, alias, graph); err != nil {
			return i, fmt.Errorf("remove alias %s from %s: %w", alias, graph, err)
		}
	}
	return len(aliases), nil
}

// localName returns the part of an IRI after the first '#', else after the
// last '/', else after the last ':'. Values without one are returned as is.
func localName(iri string) string {
	if i := strings.Index(iri, "#"); i >= 0 && i < len(iri)-1 {
		return iri[i+1:]
	}
	if i := strings.LastIndex(iri, "/"); i >= 0 && i < len(iri)-1 {
		return iri[i+1:]
	}
	if i := strings.LastIndex(iri, ":"); i >= 0 && i < len(iri)-1 {
		return iri[i+1:]
	}
	return iri
}
