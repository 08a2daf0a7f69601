package util

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateID(t *testing.T) {

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := GenerateID()
		assert.NotEmpty(t, id)
		assert.False(t, seen[id], "id repeated: %s", id)
		seen[id] = true
	}
}

func TestGenerateName(t *testing.T) {

	name := GenerateName()
	assert.GreaterOrEqual(t, len(name), 5)
	t.Logf("generated name: %s", name)
}

func TestAvailablePort(t *testing.T) {

	port, err := AvailablePort()
	require.NoError(t, err)
	assert.Greater(t, port, 0)
	assert.LessOrEqual(t, port, 65535)
}

func TestNewNetClient(t *testing.T) {

	client := NewNetClient(3 * time.Second)
	require.NotNil(t, client)
	assert.Equal(t, 3*time.Second, client.Timeout)
}

func TestFetch(t *testing.T) {

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	client := NewNetClient(2 * time.Second)
	headers := map[string]string{"Content-Type": "application/json"}

	status, body, err := Fetch(client, "POST", srv.URL, headers, strings.NewReader(`{}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestFetch_StatusPassedThrough(t *testing.T) {

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "script error", http.StatusBadGateway)
	}))
	defer srv.Close()

	// a failed request is still a completed request, the caller gets
	// the status and body rather than an error
	status, body, err := Fetch(NewNetClient(2*time.Second), "GET", srv.URL, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Contains(t, string(body), "script error")
}

func TestFetch_Unreachable(t *testing.T) {

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, _, err := Fetch(NewNetClient(time.Second), "GET", url, nil, nil)
	require.Error(t, err)
}
