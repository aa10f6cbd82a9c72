package screen

// DeriveOptions carries everything the row-wise derivation needs besides the record
type DeriveOptions struct {
	Thresholds   Thresholds
	ControlToken string
	AmalgamToken string
	// ControlByGene matches the control token against Gene instead of Identifier
	ControlByGene bool
}

// Derive returns a copy of records with LogSignificance, IsSignificant,
// Classification and Size filled in. The input slice is not modified.
// Threshold settings are validated before any row is touched.
func Derive(records []Record, opts DeriveOptions) ([]Record, error) {
	if err := opts.Thresholds.Validate(); err != nil {
		return nil, err
	}

	out := make([]Record, len(records))
	for i, r := range records {
		significant, err := ClassifySignificance(r.ThresholdMetric, opts.Thresholds, r.FoldChange)
		if err != nil {
			return nil, err
		}
		r.LogSignificance = LogSignificance(r.PValue)
		r.IsSignificant = significant
		controlKey := r.Identifier
		if opts.ControlByGene {
			controlKey = r.Gene
		}
		r.Classification = ClassifyAmalgam(r.Identifier, opts.AmalgamToken,
			ClassifyDirection(r.FoldChange, significant, controlKey, opts.ControlToken))
		r.Size = SizeFor(significant)
		out[i] = r
	}
	return out, nil
}

// Summary counts records per label
type Summary struct {
	Total       int
	Significant int
	Counts      map[Label]int
}

// Summarize tallies derived records
func Summarize(records []Record) Summary {
	s := Summary{Total: len(records), Counts: make(map[Label]int)}
	for _, r := range records {
		if r.IsSignificant {
			s.Significant++
		}
		s.Counts[r.Classification]++
	}
	return s
}

// Significant filters derived records to the significant ones, preserving order
func Significant(records []Record) []Record {
	var out []Record
	for _, r := range records {
		if r.IsSignificant {
			out = append(out, r)
		}
	}
	return out
}
