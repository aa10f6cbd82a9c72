package app

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"

	"screenviz/domain/dataset"
	"screenviz/domain/figure"
	"screenviz/domain/screen"
	"screenviz/internal"
	"screenviz/internal/errors"
	"screenviz/ports"
)

// ScreenSide names the input file and columns of one screen in a comparison
type ScreenSide struct {
	Input           string
	MergeColumn     string
	VariableColumn  string
	ThresholdColumn string
	LogTransform    bool
}

// CompareRequest describes a two-screen comparison
type CompareRequest struct {
	A         ScreenSide
	B         ScreenSide
	Threshold float64
	Output    string
}

// DefaultCompareRequest holds the compare command defaults
func DefaultCompareRequest() CompareRequest {
	side := ScreenSide{MergeColumn: "gene", VariableColumn: "pvalue", ThresholdColumn: "fdr", LogTransform: true}
	return CompareRequest{A: side, B: side, Threshold: 0.1, Output: "comparison.html"}
}

// CompareResult is what a comparison produced
type CompareResult struct {
	Records []screen.ComparisonRecord
	Counts  map[screen.ComparisonLabel]int
	Figure  figure.Figure
	Output  string
}

// CompareService plots one screen's statistic against another's
type CompareService struct {
	reader   ports.TableReaderPort
	renderer ports.ChartRendererPort
	logger   *internal.Logger
}

// NewCompareService creates a comparison service
func NewCompareService(reader ports.TableReaderPort, renderer ports.ChartRendererPort, logger *internal.Logger) *CompareService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &CompareService{reader: reader, renderer: renderer, logger: logger}
}

// Run loads both screens concurrently, joins them and writes the plot
func (s *CompareService) Run(ctx context.Context, req CompareRequest) (*CompareResult, error) {
	var tableA, tableB *dataset.Table
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.load(gctx, req.A)
		tableA = t
		return err
	})
	g.Go(func() error {
		t, err := s.load(gctx, req.B)
		tableB = t
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	joined, err := dataset.InnerJoin(tableA, tableB, req.A.MergeColumn, req.B.MergeColumn)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Joined %d rows of %s with %d rows of %s into %d pairs",
		tableA.Len(), req.A.Input, tableB.Len(), req.B.Input, len(joined))

	valA, _ := tableA.Floats(req.A.VariableColumn)
	thA, _ := tableA.Floats(req.A.ThresholdColumn)
	valB, _ := tableB.Floats(req.B.VariableColumn)
	thB, _ := tableB.Floats(req.B.ThresholdColumn)

	pairs := make([]screen.ComparisonRecord, len(joined))
	for i, j := range joined {
		pairs[i] = screen.ComparisonRecord{
			Key:        j.Key,
			ValueA:     valA[j.Left],
			ValueB:     valB[j.Right],
			ThresholdA: thA[j.Left],
			ThresholdB: thB[j.Right],
		}
	}
	records := screen.DeriveComparison(pairs, req.Threshold, req.A.LogTransform, req.B.LogTransform)

	counts := make(map[screen.ComparisonLabel]int)
	for _, r := range records {
		counts[r.Classification]++
	}

	fig := ComparisonFigure(records, req)
	report := figure.Report{
		Title:   fig.Title,
		Summary: compareMarkdown(req, len(records), counts),
		Figures: []figure.Figure{fig},
		Table:   comparisonTable(records, req),
	}
	for _, label := range screen.ComparisonLabels {
		if counts[label] > 0 {
			report.Legend = append(report.Legend, figure.LegendEntry{Name: string(label), Color: ComparisonColors[label]})
		}
	}

	s.logger.Info("Saving comparison plot to: %s", req.Output)
	if err := s.renderer.Save(req.Output, report); err != nil {
		return nil, err
	}
	return &CompareResult{Records: records, Counts: counts, Figure: fig, Output: req.Output}, nil
}

func (s *CompareService) load(ctx context.Context, side ScreenSide) (*dataset.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, err := s.reader.Read(side.Input)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", side.Input)
	}
	if err := t.Require(side.MergeColumn, side.VariableColumn, side.ThresholdColumn); err != nil {
		return nil, err
	}
	return t, nil
}

func axisName(side ScreenSide, suffix string) string {
	name := side.VariableColumn + "_" + suffix
	if side.LogTransform {
		return "-log10(" + name + ")"
	}
	return name
}

// ComparisonFigure plots screen A on x and screen B on y, one series per label
func ComparisonFigure(records []screen.ComparisonRecord, req CompareRequest) figure.Figure {
	fig := figure.Figure{
		Title:  "Comparison of two screen results",
		XTitle: axisName(req.A, "a"),
		YTitle: axisName(req.B, "b"),
		Width:  1400,
		Height: 1400,
	}
	for _, label := range screen.ComparisonLabels {
		s := figure.Series{Name: string(label), Color: ComparisonColors[label]}
		for _, r := range records {
			if r.Classification != label {
				continue
			}
			s.X = append(s.X, r.X)
			s.Y = append(s.Y, r.Y)
			s.Sizes = append(s.Sizes, float64(r.Size))
			s.Text = append(s.Text, r.Key)
		}
		if len(s.X) > 0 {
			fig.Series = append(fig.Series, s)
		}
	}
	return fig
}

func compareMarkdown(req CompareRequest, total int, counts map[screen.ComparisonLabel]int) string {
	md := fmt.Sprintf("**%d** keys shared between `%s` (A) and `%s` (B), threshold %g.\n\n", total, req.A.Input, req.B.Input, req.Threshold)
	for _, label := range screen.ComparisonLabels {
		md += fmt.Sprintf("- %s: %d\n", label, counts[label])
	}
	return md
}

func comparisonTable(records []screen.ComparisonRecord, req CompareRequest) *figure.ReportTable {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', 6, 64) }
	t := &figure.ReportTable{
		Caption: "Keys significant in at least one screen",
		Headers: []string{
			req.A.MergeColumn,
			req.A.VariableColumn + "_a", req.A.ThresholdColumn + "_a",
			req.B.VariableColumn + "_b", req.B.ThresholdColumn + "_b",
			"classification",
		},
	}
	for _, r := range records {
		if r.Classification == screen.SignificantInNone {
			continue
		}
		t.Rows = append(t.Rows, []string{r.Key, f(r.ValueA), f(r.ThresholdA), f(r.ValueB), f(r.ThresholdB), string(r.Classification)})
	}
	return t
}
