package cloud

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestREST_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/config.json", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("auth"))
		io.WriteString(w, `{"maxEntries": 288, "ntpServer": "pool.ntp.org"}`)
	}))
	defer srv.Close()

	c := NewREST(srv.URL, "secret")
	obj, err := c.Get("config")
	require.NoError(t, err)

	n, err := obj.Int("maxEntries")
	require.NoError(t, err)
	assert.Equal(t, 288, n)
}

func TestREST_GetErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewREST(srv.URL, "bad")
	_, err := c.Get("config")
	assert.ErrorContains(t, err, "unexpected status")
}

func TestREST_GetAbsentKey(t *testing.T) {
	// Firebase answers the literal "null" for an absent key; that must be a
	// failure, never an empty success.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "null")
	}))
	defer srv.Close()

	c := NewREST(srv.URL, "")
	_, err := c.Get("config")
	assert.ErrorContains(t, err, "no value")
}

func TestREST_GetMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"broken`)
	}))
	defer srv.Close()

	c := NewREST(srv.URL, "")
	_, err := c.Get("config")
	assert.ErrorContains(t, err, "decode")
}

func TestREST_Set(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/log/7.json", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		io.WriteString(w, "{}")
	}))
	defer srv.Close()

	c := NewREST(srv.URL, "")
	err := c.Set("log/7", Record{Time: 100, Temp0: 1, Temp1: 2, Active: true})
	require.NoError(t, err)
	assert.Equal(t, true, gotBody["active"])
	assert.Equal(t, 100.0, gotBody["time"])
}

func TestREST_SetErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewREST(srv.URL, "")
	err := c.Set("log/0", Record{})
	assert.ErrorContains(t, err, "unexpected status")
}

func TestNewREST_HostWithoutScheme(t *testing.T) {
	c := NewREST("example.firebaseio.com", "tok")
	assert.Equal(t, "https://example.firebaseio.com/config.json?auth=tok", c.url("config"))
}
