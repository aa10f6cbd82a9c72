package app

import (
	"fmt"
	"math"
	"path/filepath"

	"screenviz/domain/dataset"
	"screenviz/domain/figure"
	"screenviz/domain/screen"
	"screenviz/internal/errors"
	"screenviz/ports"
)

// Columns the results dashboard reads from each table
var (
	RequiredSGRNAColumns = []string{"sgrna", "gene", "log2fc", "pvalue_twosided", "fdr", "base"}
	RequiredGeneColumns  = []string{"gene", "log2fc", "pvalue", "fdr"}
)

const (
	DefaultClamp   = 30
	MinClamp       = 1
	MaxClamp       = 100
	magnitudeFloor = 0.3
)

// DashboardParams are the per-tab controls of the results dashboard
type DashboardParams struct {
	Threshold float64
	Clamp     float64
	UseFDR    bool
}

// DefaultDashboardParams matches the controls' initial state
func DefaultDashboardParams() DashboardParams {
	return DashboardParams{Threshold: 0.1, Clamp: DefaultClamp, UseFDR: true}
}

// Normalize restricts the clamp ceiling to the slider range and falls back to
// the default threshold for NaN or negative input
func (p DashboardParams) Normalize() DashboardParams {
	if math.IsNaN(p.Clamp) {
		p.Clamp = DefaultClamp
	}
	p.Clamp = math.Min(math.Max(p.Clamp, MinClamp), MaxClamp)
	if math.IsNaN(p.Threshold) || p.Threshold < 0 {
		p.Threshold = DefaultDashboardParams().Threshold
	}
	return p
}

// ResolveResultFiles picks the sgRNA and gene tables from a prefix or from explicit paths.
// Explicit paths win over the prefix.
func ResolveResultFiles(prefix, sgrnaFile, geneFile string) (string, string, error) {
	if prefix != "" {
		if sgrnaFile == "" {
			sgrnaFile = prefix + ".sgrna_results.tsv"
		}
		if geneFile == "" {
			geneFile = prefix + ".gene_results.tsv"
		}
	}
	if sgrnaFile == "" {
		return "", "", errors.InvalidInput("Must provide either a prefix (-n) or both sgrna (-s) and gene (-g) files (sgrna file missing)")
	}
	if geneFile == "" {
		return "", "", errors.InvalidInput("Must provide either a prefix (-n) or both sgrna (-s) and gene (-g) files (gene file missing)")
	}
	return filepath.Clean(sgrnaFile), filepath.Clean(geneFile), nil
}

// ResultsDashboard holds both result tables and builds the dashboard views
type ResultsDashboard struct {
	SGRNA *dataset.Table
	Gene  *dataset.Table

	sgrnaRecords []screen.Record
	geneRecords  []screen.Record
	ntcToken     string
	amalgamToken string
}

// LoadResultsDashboard reads both tables through reader
func LoadResultsDashboard(reader ports.TableReaderPort, sgrnaFile, geneFile, ntcToken, amalgamToken string) (*ResultsDashboard, error) {
	sgrna, err := reader.Read(sgrnaFile)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load sgRNA results %s", sgrnaFile)
	}
	gene, err := reader.Read(geneFile)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load gene results %s", geneFile)
	}
	return NewResultsDashboard(sgrna, gene, ntcToken, amalgamToken)
}

// NewResultsDashboard validates the required columns of both tables
func NewResultsDashboard(sgrna, gene *dataset.Table, ntcToken, amalgamToken string) (*ResultsDashboard, error) {
	if err := sgrna.Require(RequiredSGRNAColumns...); err != nil {
		return nil, err
	}
	if err := gene.Require(RequiredGeneColumns...); err != nil {
		return nil, err
	}
	sgrnaRecords, err := sgrna.Records(dataset.Columns{
		Identifier: "sgrna", Gene: "gene", FoldChange: "log2fc",
		PValue: "pvalue_twosided", Threshold: "fdr", BaseMean: "base",
	})
	if err != nil {
		return nil, err
	}
	geneRecords, err := gene.Records(dataset.Columns{
		Identifier: "gene", FoldChange: "log2fc", PValue: "pvalue", Threshold: "fdr",
	})
	if err != nil {
		return nil, err
	}
	return &ResultsDashboard{
		SGRNA:        sgrna,
		Gene:         gene,
		sgrnaRecords: sgrnaRecords,
		geneRecords:  geneRecords,
		ntcToken:     ntcToken,
		amalgamToken: amalgamToken,
	}, nil
}

func (d *ResultsDashboard) derive(records []screen.Record, p DashboardParams, sgrna bool) ([]screen.Record, error) {
	opts := screen.DeriveOptions{Thresholds: screen.Single(p.Threshold)}
	if sgrna {
		opts.ControlToken = d.ntcToken
		opts.ControlByGene = true
	} else {
		opts.AmalgamToken = d.amalgamToken
	}
	return screen.Derive(records, opts)
}

// yValue is the clamped -log10 of FDR or p-value
func yValue(r screen.Record, p DashboardParams) float64 {
	v := r.LogSignificance
	if p.UseFDR {
		v = screen.LogSignificance(r.ThresholdMetric)
	}
	return screen.Clamp(v, p.Clamp)
}

func yTitle(p DashboardParams) string {
	metric := "p-value"
	if p.UseFDR {
		metric = "FDR"
	}
	return fmt.Sprintf("-log10(%s) [clamped at %g]", metric, p.Clamp)
}

// magnitudeSize scales max(|lfc|, 0.3) to a marker diameter
func magnitudeSize(foldChange float64) float64 {
	m := screen.Magnitude(foldChange, magnitudeFloor)
	if math.IsNaN(m) {
		m = magnitudeFloor
	}
	return math.Min(4+4*m, 24)
}

// ThresholdY is where the dashed threshold guide sits
func ThresholdY(p DashboardParams) float64 {
	return math.Min(screen.LogSignificance(p.Threshold), p.Clamp)
}

func (d *ResultsDashboard) volcano(records []screen.Record, p DashboardParams, title string, sized bool) figure.Figure {
	fc := make([]float64, len(records))
	for i, r := range records {
		fc[i] = r.FoldChange
	}
	xr := figure.SymmetricRange(fc, 1.1)
	yr := figure.Range{Min: 0, Max: p.Clamp * 1.05}

	fig := figure.Figure{
		Title:  title,
		XTitle: "log2 Fold Change",
		YTitle: yTitle(p),
		Width:  1000,
		Height: 600,
		XRange: &xr,
		YRange: &yr,
	}
	for _, label := range screen.Labels {
		s := figure.Series{Name: string(label), Color: DashboardColors[label]}
		for _, r := range records {
			if r.Classification != label {
				continue
			}
			s.X = append(s.X, r.FoldChange)
			s.Y = append(s.Y, yValue(r, p))
			s.Text = append(s.Text, r.Identifier)
			if sized {
				s.Sizes = append(s.Sizes, magnitudeSize(r.FoldChange))
			}
		}
		if len(s.X) > 0 {
			fig.Series = append(fig.Series, s)
		}
	}
	fig.Lines = finiteLines(figure.HLine("Threshold", thresholdColor, ThresholdY(p), xr.Min, xr.Max, true))
	return fig
}

// SGRNAVolcano is the sgRNA tab volcano plot
func (d *ResultsDashboard) SGRNAVolcano(p DashboardParams) (figure.Figure, error) {
	p = p.Normalize()
	records, err := d.derive(d.sgrnaRecords, p, true)
	if err != nil {
		return figure.Figure{}, err
	}
	return d.volcano(records, p, "sgRNA Differential Abundance Analysis", false), nil
}

// GeneVolcano is the gene tab volcano plot, sized by fold change magnitude
func (d *ResultsDashboard) GeneVolcano(p DashboardParams) (figure.Figure, error) {
	p = p.Normalize()
	records, err := d.derive(d.geneRecords, p, false)
	if err != nil {
		return figure.Figure{}, err
	}
	return d.volcano(records, p, "Gene Differential Abundance Analysis", true), nil
}

// SGRNAMA plots log2 fold change against log10(base + 1)
func (d *ResultsDashboard) SGRNAMA(p DashboardParams) (figure.Figure, error) {
	p = p.Normalize()
	records, err := d.derive(d.sgrnaRecords, p, true)
	if err != nil {
		return figure.Figure{}, err
	}

	xs := make([]float64, len(records))
	for i, r := range records {
		xs[i] = math.Log10(r.BaseMean + 1)
	}
	xr := figure.UpperRange(xs, 1.05)

	fig := figure.Figure{
		Title:  "MA Plot",
		XTitle: "log10(Base Mean)",
		YTitle: "log2 Fold Change",
		Width:  1000,
		Height: 600,
		XRange: &xr,
	}
	for _, label := range screen.Labels {
		s := figure.Series{Name: string(label), Color: DashboardColors[label]}
		for i, r := range records {
			if r.Classification != label {
				continue
			}
			s.X = append(s.X, xs[i])
			s.Y = append(s.Y, r.FoldChange)
			s.Sizes = append(s.Sizes, magnitudeSize(r.FoldChange))
			s.Text = append(s.Text, r.Identifier)
		}
		if len(s.X) > 0 {
			fig.Series = append(fig.Series, s)
		}
	}
	fig.Lines = []figure.Line{figure.HLine("Origin", thresholdColor, 0, xr.Min, xr.Max, false)}
	return fig, nil
}

// FilterByFDR returns the rows of t with fdr below threshold
func FilterByFDR(t *dataset.Table, threshold float64) [][]string {
	fdr, err := t.Floats("fdr")
	if err != nil {
		return nil
	}
	return t.Filter(func(i int) bool { return fdr[i] < threshold })
}
