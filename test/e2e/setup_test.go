//go:build e2e

// End-to-end tests against a running legajos server. Point them at it with
// LEGAJOS_E2E_BASE_URL and an admin login in LEGAJOS_E2E_USER and
// LEGAJOS_E2E_PASSWORD; they skip when the server is not reachable.
package e2e_test

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"os"
	"testing"
	"time"
)

type testEnv struct {
	baseURL   string
	username  string
	password  string
	available bool
}

var env *testEnv

func TestMain(m *testing.M) {
	env = &testEnv{
		baseURL:  getenv("LEGAJOS_E2E_BASE_URL", "http://localhost:5001"),
		username: getenv("LEGAJOS_E2E_USER", "admin"),
		password: getenv("LEGAJOS_E2E_PASSWORD", "admin"),
	}
	if err := waitForHealthy(env.baseURL, 30*time.Second); err != nil {
		fmt.Fprintf(os.Stderr, "e2e: server not available, skipping: %v\n", err)
	} else {
		env.available = true
	}
	os.Exit(m.Run())
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func waitForHealthy(baseURL string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	client := &http.Client{Timeout: 2 * time.Second}
	var lastErr error
	for time.Now().Before(deadline) {
		resp, err := client.Get(baseURL + "/healthz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
			lastErr = fmt.Errorf("readiness returned %d", resp.StatusCode)
		} else {
			lastErr = err
		}
		time.Sleep(500 * time.Millisecond)
	}
	return lastErr
}

// newSessionClient returns a client with its own cookie jar.
func newSessionClient(t *testing.T) *http.Client {
	t.Helper()
	if !env.available {
		t.Skip("legajos server not available")
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{Jar: jar, Timeout: 60 * time.Second}
}
