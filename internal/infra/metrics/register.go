// File: internal/infra/metrics/register.go
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var once sync.Once

// MustRegister registers all pipeline collectors exactly once.
func MustRegister(reg prometheus.Registerer) {
	once.Do(func() {
		reg.MustRegister(
			docsProcessed,
			fetchFailures,
			completionLatency,
			healingAttempts,
		)
	})
}
