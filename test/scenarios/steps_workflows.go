package scenarios

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cucumber/godog"

	"github.com/decomp/ngsec/pkg/cutover"
	"github.com/decomp/ngsec/pkg/migrate"
	"github.com/decomp/ngsec/pkg/provision"
	"github.com/decomp/ngsec/pkg/reap"
	"github.com/decomp/ngsec/pkg/settings"
)

const actor = "admin"

func (s *StepsContext) registerWorkflowSteps(sc *godog.ScenarioContext) {
	sc.Step(`^I provision the database$`, s.iProvisionTheDatabase)
	sc.Step(`^I migrate "([^"]*)" to "([^"]*)" answering "([^"]*)"$`, s.iMigrateAnswering)
	sc.Step(`^I cut "([^"]*)" over from "([^"]*)" to "([^"]*)"$`, s.iCutOver)
	sc.Step(`^I reap alias "([^"]*)"$`, s.iReapAlias)
	sc.Step(`^I apply the database settings$`, s.iApplyTheDatabaseSettings)

	sc.Step(`^the provisioned graphs should be "([^"]*)"$`, s.theProvisionedGraphsShouldBe)
	sc.Step(`^the dropped graphs should be "([^"]*)"$`, s.theDroppedGraphsShouldBe)
	sc.Step(`^the failed users should be "([^"]*)"$`, s.theFailedUsersShouldBe)
}

func (s *StepsContext) iProvisionTheDatabase() error {
	p := provision.New(s.srv, s.store, provision.Options{
		Policy:             s.policy,
		DefaultGraphWriter: "pelorus",
		ServiceGraphWriter: "concourse",
		Actor:              actor,
		Metrics:            s.metrics,
	})
	s.provisioned, s.err = p.Run(context.Background())
	return nil
}

func (s *StepsContext) iMigrateAnswering(from, to, answer string) error {
	o := migrate.New(s.store, migrate.Options{
		Confirmer: migrate.Prompt(strings.NewReader(answer+"\n"), io.Discard),
		Actor:     actor,
		Metrics:   s.metrics,
	})
	res, err := o.Migrate(context.Background(), from, to)
	s.err = err
	s.outcome = res.Outcome.String()
	return nil
}

func (s *StepsContext) iCutOver(alias, oldGraph, newGraph string) error {
	c := cutover.New(s.srv, s.store, cutover.Options{
		Policy:  s.policy,
		Actor:   actor,
		Metrics: s.metrics,
	})
	s.cutover, s.err = c.Run(context.Background(), newGraph, oldGraph, alias)
	var partial *cutover.PartialPopulationError
	switch {
	case errors.As(s.err, &partial):
		s.outcome = "partial"
	case s.err != nil:
		s.outcome = "failed"
	default:
		s.outcome = "complete"
	}
	return nil
}

func (s *StepsContext) iReapAlias(alias string) error {
	r := reap.New(s.store, reap.Options{Actor: actor, Metrics: s.metrics})
	s.reaped, s.err = r.Reap(context.Background(), alias)
	var dropErr *reap.DropError
	switch {
	case errors.As(s.err, &dropErr):
		s.outcome = "partial"
	case s.err != nil:
		s.outcome = "failed"
	default:
		s.outcome = "complete"
	}
	return nil
}

func (s *StepsContext) iApplyTheDatabaseSettings() error {
	_, s.err = settings.Ensure(context.Background(), s.srv, s.policy.DB, settings.Options{
		Actor:   actor,
		Metrics: s.metrics,
	})
	return nil
}

func (s *StepsContext) theProvisionedGraphsShouldBe(graphs string) error {
	if s.provisioned == nil {
		return errors.New("nothing was provisioned")
	}
	return sameSet("provisioned graphs", list(graphs), s.provisioned.Graphs)
}

func (s *StepsContext) theDroppedGraphsShouldBe(graphs string) error {
	if s.reaped == nil {
		return errors.New("nothing was reaped")
	}
	return sameSet("dropped graphs", list(graphs), s.reaped.Dropped)
}

func (s *StepsContext) theFailedUsersShouldBe(users string) error {
	if s.cutover == nil {
		return fmt.Errorf("no cutover ran")
	}
	return sameSet("failed users", list(users), s.cutover.UsersFailed)
}
