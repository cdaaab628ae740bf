package secretcrypt

import (
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/xerrors"
)

// Metric label values.
const (
	OperationEncrypt = "encrypt"
	OperationDecrypt = "decrypt"

	ResultEncrypted      = "encrypted"
	ResultDecrypted      = "decrypted"
	ResultPassthrough    = "passthrough"
	ResultKeyUnavailable = "key_unavailable"
	ResultFailed         = "failed"
)

type metrics struct {
	operations *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "secretcrypt",
			Name:      "operations_total",
			Help:      "Total number of encrypt and decrypt calls by outcome.",
		}, []string{"operation", "result"}),
	}

	if reg != nil {
		if err := reg.Register(m.operations); err != nil {
			// Several crypters may share a registry.
			var are prometheus.AlreadyRegisteredError
			if !xerrors.As(err, &are) {
				return nil, xerrors.Errorf("register operations counter: %w", err)
			}
			existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				return nil, xerrors.Errorf("collector %T already registered as operations counter", are.ExistingCollector)
			}
			m.operations = existing
		}
	}

	return m, nil
}

func (m *metrics) record(operation, result string) {
	m.operations.WithLabelValues(operation, result).Inc()
}
