package util

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearProxyEnv(t *testing.T) {
	for _, k := range []string{"HTTP_PROXY", "http_proxy", "HTTPS_PROXY", "https_proxy", "NO_PROXY", "no_proxy", "REQUEST_METHOD"} {
		t.Setenv(k, "")
	}
}

func TestNewProxyFunc_Explicit(t *testing.T) {
	clearProxyEnv(t)
	proxy := NewProxyFunc("http://proxy.local:3128", "http://secure-proxy.local:3128", "internal.example")

	req, err := http.NewRequest(http.MethodGet, "http://libraries.example/pcsaft.json", nil)
	require.NoError(t, err)
	u, err := proxy(req)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "proxy.local:3128", u.Host)

	req, err = http.NewRequest(http.MethodGet, "https://libraries.example/pcsaft.json", nil)
	require.NoError(t, err)
	u, err = proxy(req)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "secure-proxy.local:3128", u.Host)

	req, err = http.NewRequest(http.MethodGet, "http://internal.example/pcsaft.json", nil)
	require.NoError(t, err)
	u, err = proxy(req)
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestNewProxyFunc_EnvironmentFallback(t *testing.T) {
	clearProxyEnv(t)
	proxy := NewProxyFunc("", "", "")

	req, err := http.NewRequest(http.MethodGet, "http://libraries.example/pcsaft.json", nil)
	require.NoError(t, err)
	u, err := proxy(req)
	require.NoError(t, err)
	assert.Nil(t, u)
}
