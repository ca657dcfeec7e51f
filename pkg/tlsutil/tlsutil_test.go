package tlsutil

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"io"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semreason/pkg/security"
)

// testCA issues certificates for handshake tests.
type testCA struct {
	cert  *x509.Certificate
	key   *ecdsa.PrivateKey
	caPEM []byte
}

func newTestCA(t *testing.T) *testCA {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "semreason test CA"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)

	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	return &testCA{
		cert:  cert,
		key:   key,
		caPEM: pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}),
	}
}

// issue returns PEM cert and key files for the given common name, written
// into dir.
func (ca *testCA) issue(t *testing.T, dir, cn string, usage x509.ExtKeyUsage) (certFile, keyFile string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject:      pkix.Name{CommonName: cn},
		DNSNames:     []string{cn},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{usage},
	}
	der, err := x509.CreateCertificate(rand.Reader, template, ca.cert, &key.PublicKey, ca.key)
	require.NoError(t, err)

	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	certFile = filepath.Join(dir, cn+".crt")
	keyFile = filepath.Join(dir, cn+".key")
	require.NoError(t, os.WriteFile(certFile,
		pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600))
	require.NoError(t, os.WriteFile(keyFile,
		pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0o600))
	return certFile, keyFile
}

func (ca *testCA) writeCAFile(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "ca.pem")
	require.NoError(t, os.WriteFile(path, ca.caPEM, 0o600))
	return path
}

func TestLoadServerTLSConfigDisabled(t *testing.T) {
	cfg, err := LoadServerTLSConfig(security.ServerTLSConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, cfg, "disabled TLS should yield a nil config")
}

func TestLoadServerTLSConfig(t *testing.T) {
	dir := t.TempDir()
	ca := newTestCA(t)
	certFile, keyFile := ca.issue(t, dir, "metrics.test", x509.ExtKeyUsageServerAuth)

	cfg, err := LoadServerTLSConfig(security.ServerTLSConfig{
		Enabled:    true,
		CertFile:   certFile,
		KeyFile:    keyFile,
		MinVersion: "1.3",
	})
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Len(t, cfg.Certificates, 1)
	assert.Equal(t, uint16(tls.VersionTLS13), cfg.MinVersion)
}

func TestLoadServerTLSConfigMissingCert(t *testing.T) {
	_, err := LoadServerTLSConfig(security.ServerTLSConfig{
		Enabled:  true,
		CertFile: "/nonexistent/server.crt",
		KeyFile:  "/nonexistent/server.key",
	})
	require.Error(t, err)
}

func TestLoadClientTLSConfigExtraCA(t *testing.T) {
	dir := t.TempDir()
	ca := newTestCA(t)
	caFile := ca.writeCAFile(t, dir)

	cfg, err := LoadClientTLSConfig(security.ClientTLSConfig{
		CAFiles:    []string{caFile},
		MinVersion: "1.2",
	})
	require.NoError(t, err)
	require.NotNil(t, cfg.RootCAs)
	assert.Equal(t, uint16(tls.VersionTLS12), cfg.MinVersion)
	assert.False(t, cfg.InsecureSkipVerify)
}

func TestLoadClientTLSConfigBadCA(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.pem")
	require.NoError(t, os.WriteFile(bad, []byte("not a certificate"), 0o600))

	_, err := LoadClientTLSConfig(security.ClientTLSConfig{CAFiles: []string{bad}})
	require.Error(t, err)

	_, err = LoadClientTLSConfig(security.ClientTLSConfig{CAFiles: []string{"/nonexistent/ca.pem"}})
	require.Error(t, err)
}

func TestLoadClientTLSConfigInsecure(t *testing.T) {
	cfg, err := LoadClientTLSConfig(security.ClientTLSConfig{InsecureSkipVerify: true})
	require.NoError(t, err)
	assert.True(t, cfg.InsecureSkipVerify)
}

func TestParseTLSVersion(t *testing.T) {
	assert.Equal(t, uint16(tls.VersionTLS13), tlsVersion("1.3"))
	assert.Equal(t, uint16(tls.VersionTLS12), tlsVersion("1.2"))
	assert.Equal(t, uint16(tls.VersionTLS12), tlsVersion(""), "default is 1.2")
	assert.Equal(t, uint16(tls.VersionTLS12), tlsVersion("1.0"), "unknown falls back to 1.2")
}

func TestServerMTLSClientAuthModes(t *testing.T) {
	dir := t.TempDir()
	ca := newTestCA(t)
	certFile, keyFile := ca.issue(t, dir, "server.test", x509.ExtKeyUsageServerAuth)
	caFile := ca.writeCAFile(t, dir)

	serverCfg := security.ServerTLSConfig{Enabled: true, CertFile: certFile, KeyFile: keyFile}

	required, err := LoadServerTLSConfigWithMTLS(serverCfg, security.ServerMTLSConfig{
		Enabled:           true,
		ClientCAFiles:     []string{caFile},
		RequireClientCert: true,
	})
	require.NoError(t, err)
	assert.Equal(t, tls.RequireAndVerifyClientCert, required.ClientAuth)

	optional, err := LoadServerTLSConfigWithMTLS(serverCfg, security.ServerMTLSConfig{
		Enabled:       true,
		ClientCAFiles: []string{caFile},
	})
	require.NoError(t, err)
	assert.Equal(t, tls.VerifyClientCertIfGiven, optional.ClientAuth)

	disabled, err := LoadServerTLSConfigWithMTLS(serverCfg, security.ServerMTLSConfig{})
	require.NoError(t, err)
	assert.Equal(t, tls.NoClientCert, disabled.ClientAuth)
}

func TestVerifyAllowedClientCN(t *testing.T) {
	ca := newTestCA(t)
	chain := [][]*x509.Certificate{{
		{Subject: pkix.Name{CommonName: "reader.test"}},
		ca.cert,
	}}

	assert.NoError(t, checkClientCN(chain, []string{"writer.test", "reader.test"}))
	assert.Error(t, checkClientCN(chain, []string{"writer.test"}))
	assert.Error(t, checkClientCN(nil, []string{"reader.test"}))
}

// TestMutualTLSHandshake drives a full in-memory handshake between
// configs built by this package.
func TestMutualTLSHandshake(t *testing.T) {
	dir := t.TempDir()
	ca := newTestCA(t)
	serverCert, serverKey := ca.issue(t, dir, "server.test", x509.ExtKeyUsageServerAuth)
	clientCert, clientKey := ca.issue(t, dir, "client.test", x509.ExtKeyUsageClientAuth)
	caFile := ca.writeCAFile(t, dir)

	serverTLS, err := LoadServerTLSConfigWithMTLS(
		security.ServerTLSConfig{Enabled: true, CertFile: serverCert, KeyFile: serverKey},
		security.ServerMTLSConfig{
			Enabled:           true,
			ClientCAFiles:     []string{caFile},
			RequireClientCert: true,
			AllowedClientCNs:  []string{"client.test"},
		})
	require.NoError(t, err)

	clientTLS, err := LoadClientTLSConfigWithMTLS(
		security.ClientTLSConfig{CAFiles: []string{caFile}},
		security.ClientMTLSConfig{Enabled: true, CertFile: clientCert, KeyFile: clientKey})
	require.NoError(t, err)
	clientTLS.ServerName = "server.test"

	assert.NoError(t, handshake(t, serverTLS, clientTLS))
}

func TestMutualTLSHandshakeRejectsBareClient(t *testing.T) {
	dir := t.TempDir()
	ca := newTestCA(t)
	serverCert, serverKey := ca.issue(t, dir, "server.test", x509.ExtKeyUsageServerAuth)
	caFile := ca.writeCAFile(t, dir)

	serverTLS, err := LoadServerTLSConfigWithMTLS(
		security.ServerTLSConfig{Enabled: true, CertFile: serverCert, KeyFile: serverKey},
		security.ServerMTLSConfig{
			Enabled:           true,
			ClientCAFiles:     []string{caFile},
			RequireClientCert: true,
		})
	require.NoError(t, err)

	clientTLS, err := LoadClientTLSConfig(security.ClientTLSConfig{CAFiles: []string{caFile}})
	require.NoError(t, err)
	clientTLS.ServerName = "server.test"

	assert.Error(t, handshake(t, serverTLS, clientTLS), "server must reject a client without a certificate")
}

// handshake runs both sides of a TLS handshake over an in-memory pipe and
// returns the first error either side reports.
func handshake(t *testing.T, serverCfg, clientCfg *tls.Config) error {
	t.Helper()

	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()

	deadline := time.Now().Add(5 * time.Second)
	_ = clientConn.SetDeadline(deadline)
	_ = serverConn.SetDeadline(deadline)

	errCh := make(chan error, 1)
	go func() {
		server := tls.Server(serverConn, serverCfg)
		err := server.Handshake()
		if err == nil {
			// Drive the connection far enough to surface client cert
			// rejection, which TLS 1.3 reports post-handshake.
			buf := make([]byte, 1)
			if _, readErr := server.Read(buf); readErr != nil && !errors.Is(readErr, io.EOF) {
				err = readErr
			}
		}
		// Unblocks a client write that would otherwise wait on the pipe.
		serverConn.Close()
		errCh <- err
	}()

	client := tls.Client(clientConn, clientCfg)
	clientErr := client.Handshake()
	if clientErr == nil {
		// Give the server a byte so its Read returns.
		_, clientErr = client.Write([]byte{0})
	}
	client.Close()

	serverErr := <-errCh
	if clientErr != nil {
		return clientErr
	}
	return serverErr
}
