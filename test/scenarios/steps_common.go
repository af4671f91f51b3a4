package scenarios

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/cucumber/godog"

	"github.com/decomp/ngsec/pkg/access"
	"github.com/decomp/ngsec/pkg/access/fake"
	"github.com/decomp/ngsec/pkg/cutover"
	"github.com/decomp/ngsec/pkg/graph"
	"github.com/decomp/ngsec/pkg/metrics"
	"github.com/decomp/ngsec/pkg/naming"
	"github.com/decomp/ngsec/pkg/provision"
	"github.com/decomp/ngsec/pkg/reap"
)

// errInjected is returned by server calls a scenario told to fail.
var errInjected = errors.New("injected failure")

// StepsContext holds state shared between step definitions
type StepsContext struct {
	srv     *fake.Server
	store   *graph.Store
	policy  naming.Policy
	metrics *metrics.Metrics

	provisioned *provision.Report
	cutover     *cutover.Result
	reaped      *reap.Result

	// outcome of the last workflow step
	outcome string
	err     error
}

// NewStepsContext creates a new steps context
func NewStepsContext() *StepsContext {
	return &StepsContext{}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	// Background steps
	sc.Step(`^a database "([^"]*)" in domain "([^"]*)"$`, s.aDatabaseInDomain)
	sc.Step(`^the naming profile is "([^"]*)"$`, s.theNamingProfileIs)
	sc.Step(`^graph "([^"]*)" holds (\d+) triples$`, s.graphHoldsTriples)
	sc.Step(`^alias "([^"]*)" is bound to "([^"]*)"$`, s.aliasIsBoundTo)
	sc.Step(`^a role "([^"]*)"$`, s.aRole)
	sc.Step(`^a user "([^"]*)" holding "([^"]*)"$`, s.aUserHolding)
	sc.Step(`^a user "([^"]*)"$`, s.aUser)
	sc.Step(`^the server fails (\w+) calls matching "([^"]*)"$`, s.theServerFails)
	sc.Step(`^the server recovers$`, s.theServerRecovers)

	s.registerWorkflowSteps(sc)

	// Outcome steps
	sc.Step(`^it should succeed$`, s.itShouldSucceed)
	sc.Step(`^it should fail$`, s.itShouldFail)
	sc.Step(`^the outcome should be "([^"]*)"$`, s.theOutcomeShouldBe)

	// State steps
	sc.Step(`^role "([^"]*)" should exist$`, s.roleShouldExist)
	sc.Step(`^role "([^"]*)" should not exist$`, s.roleShouldNotExist)
	sc.Step(`^role "([^"]*)" should grant (\w+) on (db|named-graph) "([^"]*)"$`, s.roleShouldGrant)
	sc.Step(`^the roles should be "([^"]*)"$`, s.theRolesShouldBe)
	sc.Step(`^user "([^"]*)" should hold "([^"]*)"$`, s.userShouldHold)
	sc.Step(`^user "([^"]*)" should hold nothing$`, s.userShouldHoldNothing)
	sc.Step(`^graph "([^"]*)" should hold (\d+) triples$`, s.graphShouldHoldTriples)
	sc.Step(`^graph "([^"]*)" should not exist$`, s.graphShouldNotExist)
	sc.Step(`^alias "([^"]*)" should be bound to "([^"]*)"$`, s.aliasShouldBeBoundTo)
	sc.Step(`^no transaction should be left open$`, s.noTransactionShouldBeLeftOpen)
	sc.Step(`^option "([^"]*)" should be (true|false)$`, s.optionShouldBe)
	sc.Step(`^the database should be online$`, s.theDatabaseShouldBeOnline)
}

// Background steps

func (s *StepsContext) aDatabaseInDomain(db, domain string) error {
	s.srv = fake.NewServer(db)
	s.store = graph.NewStore(s.srv, db)
	s.policy = naming.Policy{DB: db, Domain: domain, Profile: naming.ProfilePerDatabase}
	s.metrics = metrics.New()
	return nil
}

func (s *StepsContext) theNamingProfileIs(name string) error {
	profile, err := naming.ProfileString(name)
	if err != nil {
		return err
	}
	s.policy.Profile = profile
	return nil
}

func (s *StepsContext) graphHoldsTriples(iri string, n int) error {
	s.srv.AddGraph(s.policy.DB, iri, n)
	return nil
}

func (s *StepsContext) aliasIsBoundTo(alias, iri string) error {
	s.srv.BindAlias(s.policy.DB, alias, iri)
	return nil
}

func (s *StepsContext) aRole(role string) error {
	return s.srv.CreateRole(context.Background(), role)
}

func (s *StepsContext) aUserHolding(user, roles string) error {
	s.srv.AddUser(user, list(roles)...)
	return nil
}

func (s *StepsContext) aUser(user string) error {
	s.srv.AddUser(user)
	return nil
}

func (s *StepsContext) theServerFails(op, match string) error {
	s.srv.Fail(op, match, errInjected)
	return nil
}

func (s *StepsContext) theServerRecovers() error {
	s.srv.Heal()
	return nil
}

// Outcome steps

func (s *StepsContext) itShouldSucceed() error {
	if s.err != nil {
		return fmt.Errorf("expected success, got: %w", s.err)
	}
	return nil
}

func (s *StepsContext) itShouldFail() error {
	if s.err == nil {
		return errors.New("expected an error, got none")
	}
	return nil
}

func (s *StepsContext) theOutcomeShouldBe(want string) error {
	if s.outcome != want {
		return fmt.Errorf("expected outcome %q, got %q (err: %v)", want, s.outcome, s.err)
	}
	return nil
}

// State steps

func (s *StepsContext) roleShouldExist(role string) error {
	if !s.srv.HasRole(role) {
		return fmt.Errorf("role %s does not exist; roles: %v", role, s.srv.Roles())
	}
	return nil
}

func (s *StepsContext) roleShouldNotExist(role string) error {
	if s.srv.HasRole(role) {
		return fmt.Errorf("role %s exists", role)
	}
	return nil
}

func (s *StepsContext) roleShouldGrant(role, action, resourceType, resource string) error {
	want := access.Permission{
		Action:       access.Action(action),
		ResourceType: access.ResourceType(resourceType),
		Resource:     resource,
	}
	perms := s.srv.Permissions(role)
	if !slices.Contains(perms, want) {
		return fmt.Errorf("role %s lacks %s; has %v", role, want, perms)
	}
	return nil
}

func (s *StepsContext) theRolesShouldBe(roles string) error {
	return sameSet("roles", list(roles), s.srv.Roles())
}

func (s *StepsContext) userShouldHold(user, roles string) error {
	return sameSet("roles of "+user, list(roles), s.srv.UserRoles(user))
}

func (s *StepsContext) userShouldHoldNothing(user string) error {
	return sameSet("roles of "+user, nil, s.srv.UserRoles(user))
}

func (s *StepsContext) graphShouldHoldTriples(iri string, n int) error {
	if got := s.srv.TripleCount(s.policy.DB, iri); got != n {
		return fmt.Errorf("graph %s holds %d triples, expected %d", iri, got, n)
	}
	return nil
}

func (s *StepsContext) graphShouldNotExist(iri string) error {
	if s.srv.HasGraph(s.policy.DB, iri) {
		return fmt.Errorf("graph %s still exists", iri)
	}
	return nil
}

func (s *StepsContext) aliasShouldBeBoundTo(alias, graphs string) error {
	return sameSet("graphs of "+alias, list(graphs), s.srv.AliasTargets(s.policy.DB, alias))
}

func (s *StepsContext) noTransactionShouldBeLeftOpen() error {
	if n := s.srv.OpenTransactions(); n != 0 {
		return fmt.Errorf("%d transactions left open", n)
	}
	return nil
}

func (s *StepsContext) optionShouldBe(name, value string) error {
	got := fmt.Sprint(s.srv.Option(s.policy.DB, name))
	if got != value {
		return fmt.Errorf("option %s is %s, expected %s", name, got, value)
	}
	return nil
}

func (s *StepsContext) theDatabaseShouldBeOnline() error {
	if !s.srv.IsOnline(s.policy.DB) {
		return fmt.Errorf("database %s is offline", s.policy.DB)
	}
	return nil
}

// list splits a comma separated step argument.
func list(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func sameSet(what string, want, got []string) error {
	want, got = slices.Clone(want), slices.Clone(got)
	slices.Sort(want)
	slices.Sort(got)
	if !slices.Equal(want, got) {
		return fmt.Errorf("%s: expected %v, got %v", what, want, got)
	}
	return nil
}
