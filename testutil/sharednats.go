package testutil

import (
	"log"
	"os"
	"testing"

	"github.com/c360/semreason/natsclient"
)

// RunWithSharedNATS runs a package's tests with one NATS container shared
// across the whole package, so integration suites do not exhaust Docker
// resources by starting their own. When INTEGRATION_TESTS is unset the
// tests run directly and container-backed tests skip themselves. setup
// receives the started client before any test runs; the returned exit
// code goes to os.Exit.
func RunWithSharedNATS(m *testing.M, setup func(*natsclient.TestClient), opts ...natsclient.TestOption) int {
	if os.Getenv("INTEGRATION_TESTS") == "" {
		log.Println("Running unit tests only. Set INTEGRATION_TESTS=1 to run integration tests.")
		return m.Run()
	}

	testClient, err := natsclient.NewSharedTestClient(opts...)
	if err != nil {
		log.Fatalf("Failed to create shared test client: %v", err)
	}
	setup(testClient)

	code := m.Run()

	testClient.Terminate()
	return code
}
