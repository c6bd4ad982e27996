package dist

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChiSquarePValue(t *testing.T) {
	sd := NewDistributions()

	// df=2 survival is exp(-x/2)
	assert.InDelta(t, math.Exp(-3), sd.ChiSquarePValue(6, 2), 1e-12)
	// 3.841 is the 95th percentile at df=1
	assert.InDelta(t, 0.05, sd.ChiSquarePValue(3.841458820694124, 1), 1e-9)
	assert.Equal(t, 1.0, sd.ChiSquarePValue(0, 3))
	assert.True(t, math.IsNaN(sd.ChiSquarePValue(1, 0)))
	assert.InDelta(t, 0.0, sd.ChiSquarePValue(1e6, 1), 1e-12)
}

func TestFTestPValue(t *testing.T) {
	sd := NewDistributions()

	// F(1, d2) = T(d2)²; F=4.964603 is the 0.05 critical value for (1, 10)
	assert.InDelta(t, 0.05, sd.FTestPValue(4.964602743730711, 1, 10), 1e-6)
	assert.Equal(t, 1.0, sd.FTestPValue(0, 2, 10))
	assert.True(t, math.IsNaN(sd.FTestPValue(2, 0, 10)))
}

func TestCramersV(t *testing.T) {
	sd := NewDistributions()

	assert.InDelta(t, 1.0, sd.CramersV(100, 100, 2, 2), 1e-12)
	assert.Equal(t, 0.0, sd.CramersV(5, 100, 1, 3))
	assert.Equal(t, 0.0, sd.CramersV(5, 0, 2, 2))
}
