package metrics

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ayat"

var registerOnce sync.Once

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		EmbeddingRequestsTotal,
		EmbeddingRequestDuration,
		EmbeddingTokensTotal,
		EmbeddingErrorsTotal,
		EmbeddingDegradedTotal,
		EmbeddingCacheTotal,
		SearchDuration,
		SearchErrorsTotal,
		FusedCandidates,
		EnrichmentFallbackTotal,
		GenerationAttemptsTotal,
		GenerationDuration,
		ExplanationsTotal,
	}
}

// Register registers pipeline metrics with the default registry. Must be called once from main.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(collectors()...)
	})
}

// RegisterWith registers pipeline metrics with reg. Collectors already present are skipped.
func RegisterWith(reg prometheus.Registerer) error {
	for _, c := range collectors() {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}
