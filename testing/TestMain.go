// Package testing puts every package that imports it into test mode, so
// binaries and services skip their external side effects under go test.
package testing

import (
	"os"
	stdtesting "testing"
)

func init() {
	setDefault("ODYSSEY_POS_TEST_MODE", "1")
	setDefault("GOTENBERG_URL", "http://127.0.0.1:0")
}

func setDefault(key, value string) {
	if _, ok := os.LookupEnv(key); !ok {
		_ = os.Setenv(key, value)
	}
}

// TestMain can be assigned by packages that need an explicit entry point.
func TestMain(m *stdtesting.M) {
	os.Exit(m.Run())
}
