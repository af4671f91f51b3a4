package fake

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/decomp/ngsec/pkg/access"
)

// DefaultNamespace expands prefixed names with an empty prefix (":name").
const DefaultNamespace = "http://api.stardog.com/"

type triple struct {
	S, P, O string
}

type dataset map[string]map[triple]struct{}

func (d dataset) clone() dataset {
	out := make(dataset, len(d))
	for g, triples := range d {
		copied := make(map[triple]struct{}, len(triples))
		for t := range triples {
			copied[t] = struct{}{}
		}
		out[g] = copied
	}
	return out
}

type database struct {
	data    dataset
	options map[string]any
	online  bool
}

type failure struct {
	op    string
	match string
	err   error
}

// Server is an in-memory access.Client.
type Server struct {
	mu       sync.Mutex
	roles    map[string][]access.Permission
	users    map[string][]string
	dbs      map[string]*database
	txs      map[string]dataset
	nextTx   int
	failures []failure
	calls    map[string]int
}

var _ access.Client = (*Server)(nil)

// NewServer creates a server holding the given empty databases, each with
// aliases and named graph security disabled.
func NewServer(dbs ...string) *Server {
	s := &Server{
		roles: map[string][]access.Permission{},
		users: map[string][]string{},
		dbs:   map[string]*database{},
		txs:   map[string]dataset{},
		calls: map[string]int{},
	}
	for _, db := range dbs {
		s.dbs[db] = &database{
			data: dataset{},
			options: map[string]any{
				"graph.aliases":         false,
				"security.named.graphs": false,
			},
			online: true,
		}
	}
	return s
}

// Fail makes op fail with err whenever its primary argument contains match.
// An empty match fails every call. Later registrations take precedence.
func (s *Server) Fail(op, match string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failure{op: op, match: match, err: err})
}

// Heal removes every injected failure.
func (s *Server) Heal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = nil
}

// Calls returns how many times op has been invoked.
func (s *Server) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// call records an invocation and returns the injected failure, if any.
// Callers hold s.mu.
func (s *Server) call(op, arg string) error {
	s.calls[op]++
	for i := len(s.failures) - 1; i >= 0; i-- {
		f := s.failures[i]
		if f.op == op && strings.Contains(arg, f.match) {
			return f.err
		}
	}
	return nil
}

// AddUser creates a user holding roles.
func (s *Server) AddUser(name string, roles ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[name] = slices.Clone(roles)
}

// UserRoles returns the roles of a user, sorted.
func (s *Server) UserRoles(name string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	roles := slices.Clone(s.users[name])
	sort.Strings(roles)
	return roles
}

// Roles returns every role name, sorted.
func (s *Server) Roles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.roles))
	for name := range s.roles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasRole reports whether a role exists.
func (s *Server) HasRole(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.roles[name]
	return ok
}

// Permissions returns the permissions held by a role.
func (s *Server) Permissions(role string) []access.Permission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.roles[role])
}

// AddGraph fills graph with n generated triples.
func (s *Server) AddGraph(db, graph string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.mustDB(db)
	triples := d.data[graph]
	if triples == nil {
		triples = map[triple]struct{}{}
		d.data[graph] = triples
	}
	for i := 0; i < n; i++ {
		triples[triple{S: graph + "/s" + strconv.Itoa(i), P: "urn:p", O: strconv.Itoa(i)}] = struct{}{}
	}
}

// BindAlias binds alias to graph outside any transaction.
func (s *Server) BindAlias(db, alias, graph string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	insert(s.mustDB(db).data, aliasGraph, triple{S: expand(alias), P: aliasPredicate, O: graph})
}

// TripleCount returns the committed number of triples in graph.
func (s *Server) TripleCount(db, graph string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.mustDB(db).data[graph])
}

// HasGraph reports whether graph holds committed triples.
func (s *Server) HasGraph(db, graph string) bool {
	return s.TripleCount(db, graph) > 0
}

// AliasTargets returns the committed graphs alias is bound to, sorted.
func (s *Server) AliasTargets(db, alias string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	subject := expand(alias)
	var graphs []string
	for t := range s.mustDB(db).data[aliasGraph] {
		if t.S == subject && t.P == aliasPredicate {
			graphs = append(graphs, t.O)
		}
	}
	sort.Strings(graphs)
	return graphs
}

// Option returns the value of a database option.
func (s *Server) Option(db, name string) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mustDB(db).options[name]
}

// OpenTransactions returns the number of transactions neither committed nor
// rolled back.
func (s *Server) OpenTransactions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.txs)
}

func (s *Server) mustDB(name string) *database {
	d, ok := s.dbs[name]
	if !ok {
		panic("fake: unknown database " + name)
	}
	return d
}

func (s *Server) lookupDB(op, name string) (*database, error) {
	d, ok := s.dbs[name]
	if !ok {
		return nil, &access.RemoteError{Op: op, Resource: name, StatusCode: 404, Message: "database does not exist"}
	}
	return d, nil
}

func (s *Server) CreateRole(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("CreateRole", name); err != nil {
		return err
	}
	if _, ok := s.roles[name]; ok {
		return access.ErrAlreadyExists
	}
	s.roles[name] = nil
	return nil
}

func (s *Server) AssignPermission(ctx context.Context, role string, perm access.Permission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("AssignPermission", role); err != nil {
		return err
	}
	perms, ok := s.roles[role]
	if !ok {
		return &access.RemoteError{Op: "assign permission", Resource: role, StatusCode: 404, Message: "role does not exist"}
	}
	if slices.Contains(perms, perm) {
		return access.ErrAlreadyExists
	}
	s.roles[role] = append(perms, perm)
	return nil
}

func (s *Server) RemoveRole(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("RemoveRole", name); err != nil {
		return err
	}
	if _, ok := s.roles[name]; !ok {
		return &access.RemoteError{Op: "remove role", Resource: name, StatusCode: 404, Message: "role does not exist"}
	}
	delete(s.roles, name)
	for user, roles := range s.users {
		s.users[user] = slices.DeleteFunc(roles, func(r string) bool { return r == name })
	}
	return nil
}

func (s *Server) ListUsers(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("ListUsers", ""); err != nil {
		return nil, err
	}
	users := make([]string, 0, len(s.users))
	for name := range s.users {
		users = append(users, name)
	}
	sort.Strings(users)
	return users, nil
}

func (s *Server) ListUserRoles(ctx context.Context, user string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("ListUserRoles", user); err != nil {
		return nil, err
	}
	roles, ok := s.users[user]
	if !ok {
		return nil, &access.RemoteError{Op: "list user roles", Resource: user, StatusCode: 404, Message: "user does not exist"}
	}
	return slices.Clone(roles), nil
}

func (s *Server) SetUserRoles(ctx context.Context, user string, roles []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("SetUserRoles", user); err != nil {
		return err
	}
	if _, ok := s.users[user]; !ok {
		return &access.RemoteError{Op: "set user roles", Resource: user, StatusCode: 404, Message: "user does not exist"}
	}
	for _, role := range roles {
		if _, ok := s.roles[role]; !ok {
			return &access.RemoteError{Op: "set user roles", Resource: role, StatusCode: 400, Message: "role does not exist"}
		}
	}
	s.users[user] = slices.Clone(roles)
	return nil
}

func (s *Server) BeginTransaction(ctx context.Context, db string) (*access.Tx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("BeginTransaction", db); err != nil {
		return nil, err
	}
	d, err := s.lookupDB("begin transaction", db)
	if err != nil {
		return nil, err
	}
	s.nextTx++
	id := fmt.Sprintf("tx-%d", s.nextTx)
	s.txs[id] = d.data.clone()
	return &access.Tx{DB: db, ID: id}, nil
}

func (s *Server) CommitTransaction(ctx context.Context, tx *access.Tx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !access.InTx(tx) {
		return access.ErrNoTransaction
	}
	if err := s.call("CommitTransaction", tx.ID); err != nil {
		return err
	}
	staged, ok := s.txs[tx.ID]
	if !ok {
		return &access.RemoteError{Op: "commit transaction", Resource: tx.ID, StatusCode: 404, Message: "unknown transaction"}
	}
	s.mustDB(tx.DB).data = staged
	delete(s.txs, tx.ID)
	return nil
}

func (s *Server) RollbackTransaction(ctx context.Context, tx *access.Tx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !access.InTx(tx) {
		return access.ErrNoTransaction
	}
	if err := s.call("RollbackTransaction", tx.ID); err != nil {
		return err
	}
	if _, ok := s.txs[tx.ID]; !ok {
		return &access.RemoteError{Op: "rollback transaction", Resource: tx.ID, StatusCode: 404, Message: "unknown transaction"}
	}
	delete(s.txs, tx.ID)
	return nil
}

// dataset returns the data an operation on db sees: the staged copy inside
// tx, or the committed data.
func (s *Server) dataset(op, db string, tx *access.Tx) (dataset, error) {
	d, err := s.lookupDB(op, db)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return d.data, nil
	}
	staged, ok := s.txs[tx.ID]
	if !ok || tx.DB != db {
		return nil, &access.RemoteError{Op: op, Resource: tx.ID, StatusCode: 404, Message: "unknown transaction"}
	}
	return staged, nil
}

func (s *Server) Select(ctx context.Context, db, query string, tx *access.Tx) (access.Bindings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("Select", query); err != nil {
		return nil, err
	}
	data, err := s.dataset("query", db, tx)
	if err != nil {
		return nil, err
	}
	return evalSelect(data, query)
}

func (s *Server) Update(ctx context.Context, db, update string, tx *access.Tx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("Update", update); err != nil {
		return err
	}
	data, err := s.dataset("update", db, tx)
	if err != nil {
		return err
	}
	return evalUpdate(data, update)
}

func (s *Server) DatabaseOptions(ctx context.Context, db string, names ...string) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("DatabaseOptions", db); err != nil {
		return nil, err
	}
	d, err := s.lookupDB("get options", db)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(names))
	for _, name := range names {
		out[name] = d.options[name]
	}
	return out, nil
}

// offlineOnly lists options that can only change while a database is offline.
var offlineOnly = map[string]bool{"graph.aliases": true}

func (s *Server) SetDatabaseOptions(ctx context.Context, db string, options map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call("SetDatabaseOptions", db); err != nil {
		return err
	}
	d, err := s.lookupDB("set options", db)
	if err != nil {
		return err
	}
	for name := range options {
		if offlineOnly[name] && d.online {
			return &access.RemoteError{Op: "set options", Resource: db, StatusCode: 400,
				Message: fmt.Sprintf("option %s can only be set while the database is offline", name)}
		}
	}
	for name, value := range options {
		d.options[name] = value
	}
	return nil
}

func (s *Server) Offline(ctx context.Context, db string) error {
	return s.setOnline("Offline", db, false)
}

func (s *Server) Online(ctx context.Context, db string) error {
	return s.setOnline("Online", db, true)
}

// IsOnline reports whether db is online.
func (s *Server) IsOnline(db string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mustDB(db).online
}

func (s *Server) setOnline(op, db string, online bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.call(op, db); err != nil {
		return err
	}
	d, err := s.lookupDB(strings.ToLower(op), db)
	if err != nil {
		return err
	}
	d.online = online
	return nil
}

// ErrUnsupportedQuery is returned for query shapes the fake does not evaluate.
var ErrUnsupportedQuery = errors.New("fake: unsupported query")
