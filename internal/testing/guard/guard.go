// Package guard flips the process into test mode when imported by a test binary.
package guard

import (
	"os"
	"sync"
)

// EnvTestMode mirrors the flag read by app.InTestMode.
const EnvTestMode = "SALESBOARD_TEST_MODE"

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv(EnvTestMode) == "" {
			_ = os.Setenv(EnvTestMode, "1")
		}
		if os.Getenv("GOTENBERG_URL") == "" {
			_ = os.Setenv("GOTENBERG_URL", "http://127.0.0.1:0")
		}
	})
}
