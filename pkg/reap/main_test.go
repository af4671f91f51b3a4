package reap

import (
	"io"
	"testing"

	"go.uber.org/goleak"

	"github.com/decomp/ngsec/pkg/audit"
)

func TestMain(m *testing.M) {
	audit.DefaultLogger.SetWriter(io.Discard)
	goleak.VerifyTestMain(m)
}
