package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"screenviz/domain/screen"
	"screenviz/internal/errors"
)

// VolcanoFile is the YAML file accepted by the gene and sgrna commands.
// It replaces the column flags and the threshold:
//
//	gene: gene
//	x: log_fold_change
//	y: pvalue
//	z: fdr
//	method: inc-pvalue
//	threshold_low: 0.05
//	threshold_high: 0.1
//	ntc_token: non-targeting
type VolcanoFile struct {
	Gene          string   `yaml:"gene"`
	X             string   `yaml:"x"`
	Y             string   `yaml:"y"`
	Z             string   `yaml:"z"`
	Method        string   `yaml:"method"`
	Threshold     *float64 `yaml:"threshold"`
	ThresholdLow  *float64 `yaml:"threshold_low"`
	ThresholdHigh *float64 `yaml:"threshold_high"`
	NTCToken      string   `yaml:"ntc_token"`
}

// LoadVolcanoFile parses and validates a volcano YAML file
func LoadVolcanoFile(path string) (*VolcanoFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config %s", path)
	}
	return ParseVolcanoFile(data)
}

// ParseVolcanoFile decodes YAML and checks that the method has the thresholds it needs
func ParseVolcanoFile(data []byte) (*VolcanoFile, error) {
	var vf VolcanoFile
	if err := yaml.Unmarshal(data, &vf); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, errors.Wrap(err, "invalid YAML config"))
	}
	if _, err := vf.Thresholds(); err != nil {
		return nil, err
	}
	return &vf, nil
}

// Thresholds converts the file into significance settings. rra needs
// threshold; inc-product and inc-pvalue need threshold_low and threshold_high.
func (vf *VolcanoFile) Thresholds() (screen.Thresholds, error) {
	if vf.Method == "" {
		return screen.Thresholds{}, errors.ConfigInvalid("the config must specify a method: 'rra', 'inc-pvalue', or 'inc-product'")
	}
	method, err := screen.ParseMethod(vf.Method)
	if err != nil {
		return screen.Thresholds{}, errors.WithCode(errors.CodeConfigInvalid, err)
	}

	t := screen.Thresholds{Method: method}
	if method.TwoSided() {
		if vf.ThresholdLow == nil || vf.ThresholdHigh == nil {
			return screen.Thresholds{}, errors.ThresholdConfig("method " + vf.Method + " requires threshold_low and threshold_high")
		}
		t.Low, t.High = vf.ThresholdLow, vf.ThresholdHigh
	} else {
		if vf.Threshold == nil {
			return screen.Thresholds{}, errors.ThresholdConfig("method rra requires threshold")
		}
		t.Threshold = vf.Threshold
	}
	return t, t.Validate()
}
