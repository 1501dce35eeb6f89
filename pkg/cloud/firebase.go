package cloud

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds each REST round-trip. The polling loop is synchronous,
// so a hung request would stall the whole device without this.
const DefaultTimeout = 10 * time.Second

// REST talks to a Firebase Realtime Database over its REST interface: a path
// maps to "<base>/<path>.json", with the auth token appended as a query
// parameter. The auth token is an opaque string supplied externally.
type REST struct {
	base string
	auth string
	hc   *http.Client
}

// NewREST creates a client for the database at host (with or without scheme).
func NewREST(host, auth string) *REST {
	base := host
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	return &REST{
		base: strings.TrimRight(base, "/"),
		auth: auth,
		hc:   &http.Client{Timeout: DefaultTimeout},
	}
}

func (c *REST) url(path string) string {
	u := c.base + "/" + path + ".json"
	if c.auth != "" {
		u += "?auth=" + url.QueryEscape(c.auth)
	}
	return u
}

// Get retrieves the JSON object stored at path.
func (c *REST) Get(path string) (Object, error) {
	resp, err := c.hc.Get(c.url(path))
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get %s: unexpected status %s", path, resp.Status)
	}

	var obj Object
	if err := json.NewDecoder(resp.Body).Decode(&obj); err != nil {
		return nil, fmt.Errorf("get %s: decode: %w", path, err)
	}
	if obj == nil {
		// Firebase answers "null" for an absent key.
		return nil, fmt.Errorf("get %s: no value at path", path)
	}
	return obj, nil
}

// Set overwrites the value stored at path.
func (c *REST) Set(path string, value any) error {
	body, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("set %s: marshal: %w", path, err)
	}

	req, err := http.NewRequest(http.MethodPut, c.url(path), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("set %s: unexpected status %s", path, resp.Status)
	}
	return nil
}
