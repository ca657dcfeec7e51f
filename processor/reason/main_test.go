package reason

import (
	"os"
	"testing"

	"go.uber.org/goleak"
)

// The container-backed integration tests keep background goroutines alive
// for the lifetime of the shared NATS container, so the leak check only
// runs for the unit suite.
func TestMain(m *testing.M) {
	if os.Getenv("INTEGRATION_TESTS") != "" {
		os.Exit(m.Run())
	}
	goleak.VerifyTestMain(m)
}
