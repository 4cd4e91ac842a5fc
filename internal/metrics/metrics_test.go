package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestBegin(t *testing.T) {
	m := New(prometheus.NewRegistry())

	done := m.Begin("ec2.DescribeRegions", "EC2")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.inFlight.WithLabelValues("ec2.DescribeRegions")))

	done(OutcomeSuccess)
	done(OutcomeProvider)

	assert.Equal(t, float64(0), testutil.ToFloat64(m.inFlight.WithLabelValues("ec2.DescribeRegions")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.invocations.WithLabelValues("ec2.DescribeRegions", "EC2", OutcomeSuccess)))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.invocations.WithLabelValues("ec2.DescribeRegions", "EC2", OutcomeProvider)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestProviderError(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ProviderError("RDS", "throttling")
	m.ProviderError("RDS", "throttling")
	m.ProviderError("CloudWatch", "auth")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.providerErrors.WithLabelValues("RDS", "throttling")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.providerErrors))
}

func TestDefault(t *testing.T) {
	assert.Same(t, Default(), Default())
}
