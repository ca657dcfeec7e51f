package component

import (
	"os"
	"testing"

	"github.com/nats-io/nats.go"

	"github.com/c360/semreason/natsclient"
	"github.com/c360/semreason/testutil"
)

var sharedNATSClient *nats.Conn

func TestMain(m *testing.M) {
	os.Exit(testutil.RunWithSharedNATS(m, func(tc *natsclient.TestClient) {
		sharedNATSClient = tc.Client.GetConnection()
	}, natsclient.WithJetStream()))
}

// getSharedNATSClient returns the container-backed NATS connection, or
// skips the calling test when integration tests are disabled.
func getSharedNATSClient(t *testing.T) *nats.Conn {
	t.Helper()
	if sharedNATSClient == nil {
		t.Skip("Skipping integration test. Set INTEGRATION_TESTS=1 to run.")
	}
	return sharedNATSClient
}
