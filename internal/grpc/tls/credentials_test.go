package tls

import (
	"crypto/tls"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClientAuthType(t *testing.T) {
	tests := []struct {
		input    string
		expected tls.ClientAuthType
	}{
		{"", tls.NoClientCert},
		{"none", tls.NoClientCert},
		{"request", tls.RequestClientCert},
		{"require", tls.RequireAndVerifyClientCert},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseClientAuthType(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := ParseClientAuthType("always")
	assert.Error(t, err)
}

func TestLoadServerCredentials_MissingFiles(t *testing.T) {
	_, err := LoadServerCredentials("/missing.pem", "/missing.key", "", tls.NoClientCert)
	assert.ErrorContains(t, err, "failed to load server certificate")
}

func TestLoadClientCredentials_CA(t *testing.T) {
	_, err := LoadClientCredentials("", "", "", "")
	assert.ErrorContains(t, err, "CA certificate file is required")

	bogus := filepath.Join(t.TempDir(), "ca.crt")
	require.NoError(t, os.WriteFile(bogus, []byte("not a certificate"), 0o644))
	_, err = LoadClientCredentials("", "", bogus, "")
	assert.ErrorContains(t, err, "no certificates found")
}
