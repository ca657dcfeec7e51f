// Package security defines the platform security configuration block.
// The types here are pure data; pkg/tlsutil turns them into tls.Configs
// and the config package validates them at load time.
package security

// Config is the security section of the platform configuration.
type Config struct {
	TLS TLSConfig `json:"tls,omitempty"`
}

// TLSConfig splits TLS settings into the serving half and the dialing
// half. A process can carry both.
type TLSConfig struct {
	Server ServerTLSConfig `json:"server,omitempty"`
	Client ClientTLSConfig `json:"client,omitempty"`
}

// ServerTLSConfig configures TLS termination for HTTP and WebSocket
// listeners. MinVersion accepts "1.2" or "1.3".
type ServerTLSConfig struct {
	Enabled    bool   `json:"enabled"`
	CertFile   string `json:"cert_file,omitempty"`
	KeyFile    string `json:"key_file,omitempty"`
	MinVersion string `json:"min_version,omitempty"`

	MTLS ServerMTLSConfig `json:"mtls,omitempty"`
}

// ServerMTLSConfig adds client-certificate validation to a TLS listener.
// With RequireClientCert false, clients may connect without a cert but
// any presented cert is still verified.
type ServerMTLSConfig struct {
	Enabled           bool     `json:"enabled"`
	ClientCAFiles     []string `json:"client_ca_files,omitempty"`
	RequireClientCert bool     `json:"require_client_cert,omitempty"`
	AllowedClientCNs  []string `json:"allowed_client_cns,omitempty"`
}

// ClientTLSConfig configures outbound TLS connections. The system CA
// bundle is always trusted; CAFiles add further roots on top of it.
// InsecureSkipVerify is for development and test environments only.
type ClientTLSConfig struct {
	CAFiles            []string `json:"ca_files,omitempty"`
	InsecureSkipVerify bool     `json:"insecure_skip_verify,omitempty"`
	MinVersion         string   `json:"min_version,omitempty"`

	MTLS ClientMTLSConfig `json:"mtls,omitempty"`
}

// ClientMTLSConfig supplies the certificate a client presents when the
// server requests one.
type ClientMTLSConfig struct {
	Enabled  bool   `json:"enabled"`
	CertFile string `json:"cert_file,omitempty"`
	KeyFile  string `json:"key_file,omitempty"`
}
