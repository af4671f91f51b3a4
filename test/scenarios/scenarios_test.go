package scenarios

import (
	"io"
	"os"
	"testing"

	"github.com/cucumber/godog"

	"github.com/decomp/ngsec/pkg/audit"
)

func TestMain(m *testing.M) {
	audit.DefaultLogger.SetWriter(io.Discard)
	os.Exit(m.Run())
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: func(sc *godog.ScenarioContext) {
			steps := NewStepsContext()
			steps.RegisterSteps(sc)
		},
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			Strict:   true,
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("Non-zero status returned, failed to run feature tests")
	}
}
