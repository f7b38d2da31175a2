// Package guard forces test mode for packages that import it, so test
// binaries never start real runtime side effects.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("RRSA_TEST_MODE") == "" {
			_ = os.Setenv("RRSA_TEST_MODE", "1")
		}
	})
}
