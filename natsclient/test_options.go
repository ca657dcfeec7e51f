package natsclient

import "time"

// Preset option bundles for common test shapes. Each is a composition of
// the base options in test_client.go; later options still override them.

func composeOptions(opts ...TestOption) TestOption {
	return func(cfg *testConfig) {
		for _, opt := range opts {
			opt(cfg)
		}
	}
}

// WithFastStartup trims timeouts for quick unit tests.
func WithFastStartup() TestOption {
	return composeOptions(
		WithTestTimeout(2*time.Second),
		WithStartTimeout(10*time.Second))
}

// WithIntegrationDefaults enables JetStream with moderate timeouts.
func WithIntegrationDefaults() TestOption {
	return composeOptions(
		WithJetStream(),
		WithTestTimeout(5*time.Second),
		WithStartTimeout(30*time.Second))
}

// WithE2EDefaults enables JetStream and KV with generous timeouts.
func WithE2EDefaults() TestOption {
	return composeOptions(
		WithJetStream(),
		WithKV(),
		WithTestTimeout(10*time.Second),
		WithStartTimeout(60*time.Second))
}

// WithMinimalFeatures keeps the server to plain pub/sub for the fastest
// possible startup.
func WithMinimalFeatures() TestOption {
	return func(cfg *testConfig) {
		cfg.jetstream = false
		cfg.kv = false
		cfg.timeout = time.Second
		cfg.startTimeout = 5 * time.Second
	}
}
