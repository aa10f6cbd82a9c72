package screen

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screenviz/internal/errors"
)

func TestClassifySignificance_SingleMode(t *testing.T) {
	th := Single(0.1)
	for _, metric := range []float64{0, 1e-12, 0.05, 0.0999999} {
		ok, err := ClassifySignificance(metric, th, 1)
		require.NoError(t, err)
		assert.True(t, ok, "metric %v should be significant", metric)
	}
	for _, metric := range []float64{0.1, 0.1000001, 0.5, 1} {
		ok, err := ClassifySignificance(metric, th, 1)
		require.NoError(t, err)
		assert.False(t, ok, "metric %v should not be significant", metric)
	}
}

func TestClassifySignificance_IncProductOutsideInterval(t *testing.T) {
	th := TwoSided(-0.5, 0.5, MethodIncProduct)
	cases := []struct {
		metric float64
		want   bool
	}{
		{-0.6, true},
		{-0.5, false},
		{0, false},
		{0.5, false},
		{0.50001, true},
	}
	for _, c := range cases {
		// fold change sign is irrelevant for inc-product
		for _, fc := range []float64{-3, 0, 3} {
			got, err := ClassifySignificance(c.metric, th, fc)
			require.NoError(t, err)
			assert.Equal(t, c.want, got, "metric=%v fc=%v", c.metric, fc)
		}
	}
}

func TestClassifySignificance_IncPValueDirection(t *testing.T) {
	th := TwoSided(0.01, 0.05, MethodIncPValue)

	neg, err := ClassifySignificance(0.03, th, -1.5)
	require.NoError(t, err)
	pos, err := ClassifySignificance(0.03, th, 1.5)
	require.NoError(t, err)

	assert.False(t, neg, "negative fold change compares against the low threshold")
	assert.True(t, pos, "positive fold change compares against the high threshold")

	zero, err := ClassifySignificance(0.03, th, 0)
	require.NoError(t, err)
	assert.True(t, zero, "zero fold change uses the high threshold")
}

func TestClassifySignificance_TwoSidedTakesPrecedence(t *testing.T) {
	th := TwoSided(0.01, 0.05, MethodIncPValue)
	single := 0.5
	th.Threshold = &single

	got, err := ClassifySignificance(0.2, th, 1)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestClassifySignificance_ConfigErrors(t *testing.T) {
	low, high := 0.01, 0.05
	cases := map[string]Thresholds{
		"empty":                         {},
		"missing high":                  {Low: &low, Method: MethodIncPValue},
		"pair without two-sided method": {Low: &low, High: &high, Method: MethodRRA},
	}
	for name, th := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ClassifySignificance(0.01, th, 1)
			require.Error(t, err)
			assert.Equal(t, errors.CodeThresholdConfig, errors.GetCode(err))
		})
	}
}

func TestClassifySignificance_NaNIsNotSignificant(t *testing.T) {
	got, err := ClassifySignificance(math.NaN(), Single(0.1), 1)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestClassifyDirection(t *testing.T) {
	assert.Equal(t, Enriched, ClassifyDirection(2, true, "GENE1", ""))
	assert.Equal(t, Depleted, ClassifyDirection(-2, true, "GENE1", ""))
	assert.Equal(t, NotSignificant, ClassifyDirection(2, false, "GENE1", ""))
	assert.Equal(t, NotSignificant, ClassifyDirection(0, true, "GENE1", ""))
	assert.Equal(t, Control, ClassifyDirection(5, true, "non-targeting_1", "non-targeting"))
	assert.Equal(t, Control, ClassifyDirection(0, false, "non-targeting_1", "non-targeting"))
	assert.Equal(t, Enriched, ClassifyDirection(5, true, "non-targeting_1", ""))
}

func TestClassifyDirection_Idempotent(t *testing.T) {
	records, err := Derive([]Record{
		{Identifier: "A", FoldChange: 1, PValue: 0.01, ThresholdMetric: 0.01},
		{Identifier: "B", FoldChange: -1, PValue: 0.01, ThresholdMetric: 0.01},
		{Identifier: "C", FoldChange: 0, PValue: 0.01, ThresholdMetric: 0.01},
		{Identifier: "ntc-1", FoldChange: 1, PValue: 0.5, ThresholdMetric: 0.5},
	}, DeriveOptions{Thresholds: Single(0.1), ControlToken: "ntc"})
	require.NoError(t, err)

	for _, r := range records {
		again := ClassifyDirection(r.FoldChange, r.IsSignificant, r.Identifier, "ntc")
		assert.Equal(t, r.Classification, again, r.Identifier)
	}
}

func TestClassifyAmalgam(t *testing.T) {
	assert.Equal(t, Amalgam, ClassifyAmalgam("amalgam_3", "amalgam", NotSignificant))
	assert.Equal(t, Amalgam, ClassifyAmalgam("amalgam_3", "amalgam", Enriched))
	assert.Equal(t, Control, ClassifyAmalgam("amalgam_3", "amalgam", Control))
	assert.Equal(t, Enriched, ClassifyAmalgam("KRAS", "amalgam", Enriched))
	assert.Equal(t, Enriched, ClassifyAmalgam("amalgam_3", "", Enriched))
}

func TestSizeFor(t *testing.T) {
	assert.Equal(t, Large, SizeFor(true))
	assert.Equal(t, Small, SizeFor(false))
	assert.Equal(t, 10, int(Large))
	assert.Equal(t, 5, int(Small))
}

func TestLogSignificanceAndClamp(t *testing.T) {
	assert.InDelta(t, 2.0, LogSignificance(0.01), 1e-12)
	assert.Equal(t, 0.0, LogSignificance(1))
	assert.True(t, math.IsInf(LogSignificance(0), 1))

	assert.Equal(t, 30.0, Clamp(math.Inf(1), 30))
	assert.Equal(t, 4.0, Clamp(4, 30))
	assert.True(t, math.IsNaN(Clamp(math.NaN(), 30)))

	assert.Equal(t, 0.3, Magnitude(0.1, 0.3))
	assert.Equal(t, 2.5, Magnitude(-2.5, 0.3))
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("INC-PVALUE")
	require.NoError(t, err)
	assert.Equal(t, MethodIncPValue, m)

	_, err = ParseMethod("mle")
	assert.Error(t, err)
}
