// Package testing switches the service into test mode for every test binary
// that imports it, so command entrypoints return before dialing Postgres,
// Redis or blob storage.
package testing

import (
	"os"
	"sync"
)

const testModeEnv = "SSTH_TEST_MODE"

// Defaults fill settings a test run needs but a developer shell rarely has.
var Defaults = map[string]string{
	"AUTH_JWT_SECRET":  "test-secret",
	"STORAGE_PROVIDER": "memory",
}

var once sync.Once

func init() {
	Apply()
}

// Apply forces SSTH_TEST_MODE on and sets each default the environment does
// not already provide. Only the first call has any effect.
func Apply() {
	once.Do(func() {
		_ = os.Setenv(testModeEnv, "1")
		for key, value := range Defaults {
			if os.Getenv(key) == "" {
				_ = os.Setenv(key, value)
			}
		}
	})
}
