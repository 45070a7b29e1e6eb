package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.LoginsTotal.WithLabelValues(OutcomeSuccess).Inc()
	m.LoginsTotal.WithLabelValues(OutcomeFailure).Add(2)
	m.LockoutsTotal.Inc()

	assert.Equal(t, float64(1), testutil.ToFloat64(m.LoginsTotal.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.LoginsTotal.WithLabelValues(OutcomeFailure)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.LockoutsTotal))

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "support_portal_auth_logins_total")
	assert.Contains(t, names, "support_portal_auth_lockouts_total")
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	assert.Panics(t, func() { New(reg) })
}

func TestNop_Independent(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop()
		Nop()
	})
}
