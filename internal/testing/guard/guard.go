package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("CUMBRE_TEST_MODE") == "" {
			_ = os.Setenv("CUMBRE_TEST_MODE", "1")
		}
	})
}
