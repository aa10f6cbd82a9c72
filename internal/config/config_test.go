package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screenviz/domain/screen"
	"screenviz/internal/errors"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"SCREENVIZ_HOST", "SCREENVIZ_PORT", "SCREENVIZ_NTC_TOKEN", "SCREENVIZ_AMALGAM_TOKEN", "GIN_MODE"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, DefaultHost, cfg.Server.Host)
	assert.Equal(t, "release", cfg.Server.GinMode)
	assert.Equal(t, DefaultNTCToken, cfg.Screen.NTCToken)
	assert.Equal(t, DefaultAmalgamToken, cfg.Screen.AmalgamToken)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SCREENVIZ_PORT", "9000")
	t.Setenv("SCREENVIZ_NTC_TOKEN", "NTC")
	t.Setenv("GIN_MODE", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "NTC", cfg.Screen.NTCToken)
	assert.Equal(t, "debug", cfg.Server.GinMode)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("SCREENVIZ_PORT", "70000")
	_, err := Load()
	assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid))

	t.Setenv("SCREENVIZ_PORT", "8050")
	t.Setenv("GIN_MODE", "loud")
	_, err = Load()
	assert.Error(t, err)
}

func TestParseVolcanoFile(t *testing.T) {
	vf, err := ParseVolcanoFile([]byte("gene: id\nx: lfc\ny: p\nz: q\nmethod: inc-pvalue\nthreshold_low: 0.05\nthreshold_high: 0.1\nntc_token: NTC\n"))
	require.NoError(t, err)
	assert.Equal(t, "id", vf.Gene)
	assert.Equal(t, "NTC", vf.NTCToken)

	th, err := vf.Thresholds()
	require.NoError(t, err)
	assert.Equal(t, screen.MethodIncPValue, th.Method)
	assert.Equal(t, 0.05, *th.Low)
	assert.Nil(t, th.Threshold)
}

func TestParseVolcanoFile_RRAZeroThreshold(t *testing.T) {
	vf, err := ParseVolcanoFile([]byte("method: rra\nthreshold: 0\n"))
	require.NoError(t, err)
	th, err := vf.Thresholds()
	require.NoError(t, err)
	assert.Equal(t, 0.0, *th.Threshold)
}

func TestParseVolcanoFile_Errors(t *testing.T) {
	cases := map[string]string{
		"no method":         "threshold: 0.1\n",
		"bad method":        "method: mle\nthreshold: 0.1\n",
		"rra missing":       "method: rra\nthreshold_low: 0.1\n",
		"pair missing high": "method: inc-product\nthreshold_low: 0.1\n",
		"bad yaml":          "method: [\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseVolcanoFile([]byte(doc))
			assert.Error(t, err)
		})
	}

	_, err := ParseVolcanoFile([]byte("method: inc-product\nthreshold_low: 0.1\n"))
	assert.True(t, errors.HasCode(err, errors.CodeThresholdConfig))
}

func TestLoadVolcanoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "volcano.yaml")
	require.NoError(t, os.WriteFile(path, []byte("method: inc-product\nthreshold_low: -1\nthreshold_high: 1\n"), 0o644))

	vf, err := LoadVolcanoFile(path)
	require.NoError(t, err)
	th, err := vf.Thresholds()
	require.NoError(t, err)
	assert.Equal(t, screen.MethodIncProduct, th.Method)

	_, err = LoadVolcanoFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
