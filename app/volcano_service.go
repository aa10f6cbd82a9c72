package app

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"screenviz/domain/dataset"
	"screenviz/domain/figure"
	"screenviz/domain/screen"
	"screenviz/internal"
	"screenviz/internal/config"
	"screenviz/internal/errors"
	"screenviz/ports"
)

// VolcanoLevel is the granularity of a result table
type VolcanoLevel string

const (
	LevelGene  VolcanoLevel = "gene"
	LevelSGRNA VolcanoLevel = "sgrna"
)

// VolcanoRequest describes one volcano plot run
type VolcanoRequest struct {
	Input        string
	Output       string
	Level        VolcanoLevel
	Columns      dataset.Columns
	Thresholds   screen.Thresholds
	ControlToken string
	// ConfigPath points at a YAML file that replaces Columns, Thresholds and ControlToken
	ConfigPath string
}

// DefaultGeneRequest holds the gene command defaults
func DefaultGeneRequest() VolcanoRequest {
	return VolcanoRequest{
		Output: "volcano.html",
		Level:  LevelGene,
		Columns: dataset.Columns{
			Identifier: "gene",
			FoldChange: "log_fold_change",
			PValue:     "pvalue",
			Threshold:  "fdr",
		},
		Thresholds: screen.Single(0.1),
	}
}

// DefaultSGRNARequest holds the sgrna command defaults
func DefaultSGRNARequest() VolcanoRequest {
	return VolcanoRequest{
		Output: "sgrna_volcano.html",
		Level:  LevelSGRNA,
		Columns: dataset.Columns{
			Identifier: "sgrna",
			Gene:       "gene",
			FoldChange: "log2_fold_change",
			PValue:     "pvalue_twosided",
			Threshold:  "fdr",
		},
		Thresholds: screen.Single(0.1),
	}
}

// applyConfig overlays a YAML volcano file onto the request
func (req *VolcanoRequest) applyConfig(vf *config.VolcanoFile) error {
	th, err := vf.Thresholds()
	if err != nil {
		return err
	}
	req.Thresholds = th
	if vf.Gene != "" {
		if req.Level == LevelSGRNA {
			req.Columns.Gene = vf.Gene
		} else {
			req.Columns.Identifier = vf.Gene
		}
	}
	if vf.X != "" {
		req.Columns.FoldChange = vf.X
	}
	if vf.Y != "" {
		req.Columns.PValue = vf.Y
	}
	if vf.Z != "" {
		req.Columns.Threshold = vf.Z
	}
	req.ControlToken = vf.NTCToken
	return nil
}

// VolcanoResult is what a run produced
type VolcanoResult struct {
	Records []screen.Record
	Summary screen.Summary
	Figure  figure.Figure
	Output  string
}

// VolcanoService builds gene-level and sgRNA-level volcano plots
type VolcanoService struct {
	reader   ports.TableReaderPort
	renderer ports.ChartRendererPort
	logger   *internal.Logger
}

// NewVolcanoService creates a volcano service
func NewVolcanoService(reader ports.TableReaderPort, renderer ports.ChartRendererPort, logger *internal.Logger) *VolcanoService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &VolcanoService{reader: reader, renderer: renderer, logger: logger}
}

// Run loads the table, classifies every record and writes the plot
func (s *VolcanoService) Run(ctx context.Context, req VolcanoRequest) (*VolcanoResult, error) {
	if req.ConfigPath != "" {
		vf, err := config.LoadVolcanoFile(req.ConfigPath)
		if err != nil {
			return nil, err
		}
		if err := req.applyConfig(vf); err != nil {
			return nil, errors.Wrapf(err, "invalid config %s", req.ConfigPath)
		}
	}
	if err := req.Thresholds.Validate(); err != nil {
		return nil, err
	}

	table, err := s.reader.Read(req.Input)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", req.Input)
	}
	records, err := table.Records(req.Columns)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	derived, err := screen.Derive(records, screen.DeriveOptions{
		Thresholds:    req.Thresholds,
		ControlToken:  req.ControlToken,
		ControlByGene: req.Level == LevelSGRNA,
	})
	if err != nil {
		return nil, err
	}
	summary := screen.Summarize(derived)
	s.logger.Debug("Classified %d records, %d significant", summary.Total, summary.Significant)

	fig := VolcanoFigure(derived, req)
	report := figure.Report{
		Title:   fig.Title,
		Summary: summaryMarkdown(req, summary),
		Legend:  legendFor(summary, VolcanoColors),
		Figures: []figure.Figure{fig},
		Table:   significantTable(table, derived),
	}

	s.logger.Info("Saving volcano plot to: %s", req.Output)
	if err := s.renderer.Save(req.Output, report); err != nil {
		return nil, err
	}
	return &VolcanoResult{Records: derived, Summary: summary, Figure: fig, Output: req.Output}, nil
}

// VolcanoFigure lays out fold change against -log10 p, one series per label,
// with threshold guides for the active mode.
func VolcanoFigure(records []screen.Record, req VolcanoRequest) figure.Figure {
	fc := make([]float64, len(records))
	ls := make([]float64, len(records))
	for i, r := range records {
		fc[i] = r.FoldChange
		ls[i] = r.LogSignificance
	}
	xr := figure.SymmetricRange(fc, 1.1)
	yr := figure.UpperRange(ls, 1.1)
	xmax := xr.Max / 1.1

	title := "Volcano plot of gene enrichment analysis"
	if req.Level == LevelSGRNA {
		title = "Volcano plot of sgRNA enrichment analysis"
	}
	fig := figure.Figure{
		Title:  title,
		XTitle: req.Columns.FoldChange,
		YTitle: "-log10(" + req.Columns.PValue + ")",
		Width:  1200,
		Height: 800,
		XRange: &xr,
		YRange: &yr,
	}

	for _, label := range screen.Labels {
		s := figure.Series{Name: string(label), Color: VolcanoColors[label]}
		for _, r := range records {
			if r.Classification != label {
				continue
			}
			s.X = append(s.X, r.FoldChange)
			s.Y = append(s.Y, r.LogSignificance)
			s.Sizes = append(s.Sizes, float64(r.Size))
			s.Text = append(s.Text, r.Identifier)
		}
		if len(s.X) > 0 {
			fig.Series = append(fig.Series, s)
		}
	}

	fig.Lines = ThresholdGuides(req.Thresholds, req.Columns, xmax)
	return fig
}

// ThresholdGuides draws the significance boundary. Single mode only draws
// when the threshold column is the plotted p-value column.
func ThresholdGuides(t screen.Thresholds, cols dataset.Columns, xmax float64) []figure.Line {
	if xmax <= 0 {
		xmax = 1
	}
	if t.Low != nil && t.High != nil && t.Method.TwoSided() {
		low, high := *t.Low, *t.High
		lowName := fmt.Sprintf("Threshold (%.3E)", low)
		highName := fmt.Sprintf("Threshold (%.3E)", high)
		switch t.Method {
		case screen.MethodIncPValue:
			return finiteLines(
				figure.HLine(lowName, VolcanoColors[screen.Depleted], screen.LogSignificance(low), -xmax, 0, false),
				figure.HLine(highName, VolcanoColors[screen.Enriched], screen.LogSignificance(high), 0, xmax, false),
			)
		case screen.MethodIncProduct:
			if xmax <= 0.1 {
				return nil
			}
			lowLine := figure.Hyperbola(lowName, VolcanoColors[screen.Depleted], low, -xmax, -0.1, 100)
			highLine := figure.Hyperbola(highName, VolcanoColors[screen.Enriched], high, 0.1, xmax, 100)
			lowLine.Dashed, highLine.Dashed = false, false
			return []figure.Line{lowLine, highLine}
		}
		return nil
	}
	if t.Threshold != nil && cols.Threshold == cols.PValue {
		y := screen.LogSignificance(*t.Threshold)
		return finiteLines(figure.HLine("Threshold", thresholdColor, y, -xmax, xmax, true))
	}
	return nil
}

// finiteLines drops guides that would sit at infinity, such as -log10(0)
func finiteLines(lines ...figure.Line) []figure.Line {
	var out []figure.Line
	for _, l := range lines {
		ok := true
		for _, y := range l.Y {
			if math.IsInf(y, 0) || math.IsNaN(y) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, l)
		}
	}
	return out
}

func legendFor(summary screen.Summary, colors map[screen.Label]string) []figure.LegendEntry {
	var out []figure.LegendEntry
	for _, label := range screen.Labels {
		if summary.Counts[label] > 0 {
			out = append(out, figure.LegendEntry{Name: string(label), Color: colors[label]})
		}
	}
	return out
}

func summaryMarkdown(req VolcanoRequest, summary screen.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%d** of %d records are significant", summary.Significant, summary.Total)
	if th := req.Thresholds; th.Low != nil && th.High != nil && th.Method.TwoSided() {
		fmt.Fprintf(&b, " (method `%s` on `%s`, low %g, high %g).\n\n", th.Method, req.Columns.Threshold, *th.Low, *th.High)
	} else if req.Thresholds.Threshold != nil {
		fmt.Fprintf(&b, " (`%s` < %g).\n\n", req.Columns.Threshold, *req.Thresholds.Threshold)
	}
	for _, label := range screen.Labels {
		if n := summary.Counts[label]; n > 0 {
			fmt.Fprintf(&b, "- %s: %d\n", label, n)
		}
	}
	return b.String()
}

// significantTable lists the input rows of significant records with their label
func significantTable(table *dataset.Table, records []screen.Record) *figure.ReportTable {
	t := &figure.ReportTable{
		Caption: "Significant records",
		Headers: append(append([]string{}, table.Headers...), "classification", "-log10(p)"),
	}
	for i, r := range records {
		if !r.IsSignificant {
			continue
		}
		row := append(append([]string{}, table.Rows[i]...), string(r.Classification), strconv.FormatFloat(r.LogSignificance, 'g', 4, 64))
		t.Rows = append(t.Rows, row)
	}
	return t
}
