package cert

import (
	"crypto/x509"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	grpctls "github.com/nati-dev/nati-console/internal/grpc/tls"
)

func testPaths(dir, name string) Paths {
	return Paths{
		CACert: filepath.Join(dir, "ca.crt"),
		CAKey:  filepath.Join(dir, "ca.key"),
		Cert:   filepath.Join(dir, name+".crt"),
		Key:    filepath.Join(dir, name+".key"),
	}
}

func TestEnsureServer(t *testing.T) {
	dir := t.TempDir()
	p := testPaths(dir, "server")

	require.NoError(t, EnsureServer(p, []string{"console.local", "10.0.0.5"}))

	block, err := readPEM(p.Cert)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(block.Bytes)
	require.NoError(t, err)
	assert.Equal(t, "console.local", cert.Subject.CommonName)
	assert.Equal(t, []string{"console.local"}, cert.DNSNames)
	require.Len(t, cert.IPAddresses, 1)
	assert.Equal(t, "10.0.0.5", cert.IPAddresses[0].String())

	caCert, _, err := loadCA(p.CACert, p.CAKey)
	require.NoError(t, err)
	pool := x509.NewCertPool()
	pool.AddCert(caCert)
	_, err = cert.Verify(x509.VerifyOptions{Roots: pool, DNSName: "console.local"})
	assert.NoError(t, err)

	info, err := os.Stat(p.Key)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	_, err = grpctls.LoadServerCredentials(p.Cert, p.Key, p.CACert, 0)
	assert.NoError(t, err)
	_, err = grpctls.LoadClientCredentials("", "", p.CACert, "")
	assert.NoError(t, err)
}

func TestEnsureServer_KeepsExisting(t *testing.T) {
	dir := t.TempDir()
	p := testPaths(dir, "server")
	require.NoError(t, EnsureServer(p, nil))

	before, err := os.ReadFile(p.Cert)
	require.NoError(t, err)
	require.NoError(t, EnsureServer(p, []string{"other.host"}))
	after, err := os.ReadFile(p.Cert)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestIssueClient(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, EnsureServer(testPaths(dir, "server"), nil))

	p := testPaths(dir, "studio")
	require.NoError(t, IssueClient(p, "studio"))

	block, err := readPEM(p.Cert)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(block.Bytes)
	require.NoError(t, err)
	assert.Equal(t, "studio", cert.Subject.CommonName)
	assert.Equal(t, []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth}, cert.ExtKeyUsage)

	_, err = grpctls.LoadClientCredentials(p.Cert, p.Key, p.CACert, "")
	assert.NoError(t, err)
}

func TestIssueClient_Errors(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, IssueClient(testPaths(dir, "x"), ""))
	assert.Error(t, IssueClient(testPaths(dir, "x"), "studio"), "no CA yet")
}
