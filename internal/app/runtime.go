package app

import (
	"os"
	"sync"
)

// TestModeEnv switches the binaries into a no-op mode under go test.
const TestModeEnv = "ODYSSEY_POS_TEST_MODE"

// InTestMode reports whether the binaries should skip connecting to Postgres,
// Redis and the queue. The flag is read once per process.
var InTestMode = sync.OnceValue(func() bool {
	return os.Getenv(TestModeEnv) == "1"
})
