package app

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"screenviz/domain/enrichment"
	"screenviz/domain/figure"
	"screenviz/domain/screen"
	"screenviz/internal"
	"screenviz/internal/errors"
	"screenviz/ports"
)

const (
	SidedUp   = "up"
	SidedDown = "down"

	edgeColor      = "#c8c8c8"
	termLabelWidth = 40
)

// IdeaRequest describes one enrichment network run
type IdeaRequest struct {
	Input   string
	GeneSet string
	// Output is a prefix; files are written to <Output>.<geneset>.html and .tsv
	Output          string
	GeneColumn      string
	FCColumn        string
	PValueColumn    string
	ThresholdColumn string
	Threshold       float64
	TermThreshold   float64
	Sided           string
	Top             int
	GenePalette     string
	TermPalette     string
	UpPalette       string
	DownPalette     string
}

// DefaultIdeaRequest holds the idea command defaults
func DefaultIdeaRequest() IdeaRequest {
	return IdeaRequest{
		GeneSet:         "BP",
		Output:          "network",
		GeneColumn:      "gene",
		FCColumn:        "log_fold_change",
		PValueColumn:    "fdr",
		ThresholdColumn: "fdr",
		Threshold:       0.1,
		TermThreshold:   0.1,
		Top:             30,
		GenePalette:     "RdBu_r",
		TermPalette:     "Greens",
		UpPalette:       "Reds",
		DownPalette:     "Blues",
	}
}

// IdeaGene is a significant gene entering the enrichment
type IdeaGene struct {
	Gene       string
	FoldChange float64
	PValue     float64
}

// IdeaResult is what an enrichment run produced
type IdeaResult struct {
	Library    string
	Genes      []IdeaGene
	Terms      []enrichment.Result
	Figure     figure.Figure
	HTMLOutput string
	TSVOutput  string
}

// IdeaService runs gene-set over-representation on significant genes and
// draws the terms and genes as a network
type IdeaService struct {
	reader   ports.TableReaderPort
	writer   ports.TableWriterPort
	genesets ports.GeneSetPort
	renderer ports.ChartRendererPort
	logger   *internal.Logger
}

// NewIdeaService creates an enrichment network service
func NewIdeaService(reader ports.TableReaderPort, writer ports.TableWriterPort, genesets ports.GeneSetPort, renderer ports.ChartRendererPort, logger *internal.Logger) *IdeaService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &IdeaService{reader: reader, writer: writer, genesets: genesets, renderer: renderer, logger: logger}
}

// Run selects significant genes, tests them against the library and writes the outputs
func (s *IdeaService) Run(ctx context.Context, req IdeaRequest) (*IdeaResult, error) {
	genePaletteName := req.GenePalette
	switch req.Sided {
	case "":
	case SidedUp:
		genePaletteName = req.UpPalette
	case SidedDown:
		genePaletteName = req.DownPalette
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("--sided must be 'up' or 'down', got %q", req.Sided))
	}
	genePalette, err := figure.LookupPalette(genePaletteName)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}
	termPalette, err := figure.LookupPalette(req.TermPalette)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}

	table, err := s.reader.Read(req.Input)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", req.Input)
	}
	if err := table.Require(req.GeneColumn, req.FCColumn, req.PValueColumn, req.ThresholdColumn); err != nil {
		return nil, err
	}
	genes, _ := table.Column(req.GeneColumn)
	fc, _ := table.Floats(req.FCColumn)
	pv, _ := table.Floats(req.PValueColumn)
	th, _ := table.Floats(req.ThresholdColumn)

	sig := SelectSignificantGenes(genes, fc, pv, th, req.Threshold, req.Sided)
	s.logger.Info("%d significant genes of %d selected for enrichment", len(sig), len(genes))

	lib, err := s.genesets.Load(req.GeneSet)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := make([]string, len(sig))
	for i, g := range sig {
		query[i] = g.Gene
	}
	terms := enrichment.Filter(enrichment.Analyze(lib, query, genes), req.TermThreshold, req.Top)
	if len(terms) == 0 {
		return nil, errors.ValidationError("No gene sets were enriched for provided geneset: " + req.GeneSet)
	}

	result := &IdeaResult{
		Library:    lib.Name,
		Genes:      sig,
		Terms:      terms,
		Figure:     NetworkFigure(sig, terms, genePalette, termPalette, req.Sided != ""),
		HTMLOutput: fmt.Sprintf("%s.%s.html", req.Output, lib.Name),
		TSVOutput:  fmt.Sprintf("%s.%s.tsv", req.Output, lib.Name),
	}

	rows := make([][]string, len(terms))
	for i, t := range terms {
		rows[i] = t.Row()
	}
	if err := s.writer.Write(result.TSVOutput, enrichment.Headers, rows); err != nil {
		return nil, err
	}

	report := figure.Report{
		Title:   "Gene set enrichment network: " + lib.Name,
		Summary: ideaMarkdown(req, lib.Name, len(sig), terms),
		Figures: []figure.Figure{result.Figure},
		Table:   &figure.ReportTable{Caption: "Enriched terms", Headers: enrichment.Headers, Rows: rows},
	}
	s.logger.Info("Saving enrichment network to: %s", result.HTMLOutput)
	if err := s.renderer.Save(result.HTMLOutput, report); err != nil {
		return nil, err
	}
	return result, nil
}

// SelectSignificantGenes keeps genes whose threshold metric is below
// threshold. sided "up" keeps positive fold changes; "down" keeps negative
// ones and flips their sign.
func SelectSignificantGenes(genes []string, fc, pv, th []float64, threshold float64, sided string) []IdeaGene {
	var out []IdeaGene
	for i, g := range genes {
		if !(th[i] < threshold) {
			continue
		}
		f := fc[i]
		switch sided {
		case SidedUp:
			if !(f > 0) {
				continue
			}
		case SidedDown:
			if !(f < 0) {
				continue
			}
			f = -f
		}
		out = append(out, IdeaGene{Gene: g, FoldChange: f, PValue: pv[i]})
	}
	return out
}

// NetworkFigure places terms on an inner ring and their genes on an outer
// ring, ordered by first connected term, with an edge per membership. Gene
// nodes are colored by fold change and terms by -log10 adjusted p.
func NetworkFigure(genes []IdeaGene, terms []enrichment.Result, genePalette, termPalette figure.Palette, sided bool) figure.Figure {
	fig := figure.Figure{
		Title:      "IDEA network",
		Width:      1200,
		Height:     1200,
		XRange:     &figure.Range{Min: -2.6, Max: 2.6},
		YRange:     &figure.Range{Min: -2.6, Max: 2.6},
		HideAxes:   true,
		HideLegend: true,
	}

	byGene := make(map[string]IdeaGene, len(genes))
	for _, g := range genes {
		if _, ok := byGene[g.Gene]; !ok {
			byGene[g.Gene] = g
		}
	}

	var order []string
	placed := make(map[string]bool)
	for _, t := range terms {
		for _, g := range t.Genes {
			if !placed[g] {
				placed[g] = true
				order = append(order, g)
			}
		}
	}

	termPos := ring(len(terms), 1.0)
	genePos := ring(len(order), 2.0)
	geneIndex := make(map[string]int, len(order))
	for i, g := range order {
		geneIndex[g] = i
	}

	for ti, t := range terms {
		for _, g := range t.Genes {
			gp := genePos[geneIndex[g]]
			fig.Lines = append(fig.Lines, figure.Line{
				Color: edgeColor,
				X:     []float64{termPos[ti][0], gp[0]},
				Y:     []float64{termPos[ti][1], gp[1]},
			})
		}
	}

	lo, hi := geneColorBounds(order, byGene, sided)
	geneSeries := figure.Series{Name: "genes", Size: 12}
	for i, g := range order {
		geneSeries.X = append(geneSeries.X, genePos[i][0])
		geneSeries.Y = append(geneSeries.Y, genePos[i][1])
		geneSeries.Colors = append(geneSeries.Colors, genePalette.Scale(byGene[g].FoldChange, lo, hi))
		geneSeries.Sizes = append(geneSeries.Sizes, geneNodeSize(byGene[g].PValue))
		geneSeries.Text = append(geneSeries.Text, g)
		fig.Labels = append(fig.Labels, figure.Label{X: genePos[i][0], Y: genePos[i][1], Text: g})
	}

	termScores := make([]float64, len(terms))
	for i, t := range terms {
		termScores[i] = screen.LogSignificance(math.Max(t.AdjustedP, math.SmallestNonzeroFloat64))
	}
	tlo, thi, _ := figure.Bounds(termScores)
	termSeries := figure.Series{Name: "terms", Size: 24}
	for i, t := range terms {
		termSeries.X = append(termSeries.X, termPos[i][0])
		termSeries.Y = append(termSeries.Y, termPos[i][1])
		termSeries.Colors = append(termSeries.Colors, termPalette.Scale(termScores[i], tlo-0.25*(thi-tlo+1), thi))
		termSeries.Text = append(termSeries.Text, t.Term)
		fig.Labels = append(fig.Labels, figure.Label{X: termPos[i][0], Y: termPos[i][1], Text: truncate(t.Term, termLabelWidth)})
	}

	fig.Series = []figure.Series{geneSeries, termSeries}
	return fig
}

// geneColorBounds is [0, max] for one-sided runs and symmetric around zero otherwise
func geneColorBounds(order []string, byGene map[string]IdeaGene, sided bool) (float64, float64) {
	values := make([]float64, len(order))
	for i, g := range order {
		values[i] = byGene[g].FoldChange
	}
	if sided {
		_, hi, ok := figure.Bounds(values)
		if !ok {
			return 0, 1
		}
		return 0, hi
	}
	r := figure.SymmetricRange(values, 1)
	return r.Min, r.Max
}

func geneNodeSize(p float64) float64 {
	ls := screen.LogSignificance(p)
	if math.IsNaN(ls) || ls < 0 {
		ls = 0
	}
	return 8 + math.Min(ls, 10)
}

// ring spaces n points evenly on a circle, starting at the top
func ring(n int, radius float64) [][2]float64 {
	out := make([][2]float64, n)
	for i := range out {
		angle := math.Pi/2 - 2*math.Pi*float64(i)/float64(n)
		out[i] = [2]float64{radius * math.Cos(angle), radius * math.Sin(angle)}
	}
	return out
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}

func ideaMarkdown(req IdeaRequest, library string, nGenes int, terms []enrichment.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%d** significant genes (`%s` < %g", nGenes, req.ThresholdColumn, req.Threshold)
	if req.Sided != "" {
		fmt.Fprintf(&b, ", %s only", req.Sided)
	}
	fmt.Fprintf(&b, ") tested against **%s**; %d terms with adjusted p < %g shown.\n\n", library, len(terms), req.TermThreshold)

	top := append([]enrichment.Result(nil), terms...)
	sort.SliceStable(top, func(a, b int) bool { return top[a].CombinedScore > top[b].CombinedScore })
	if len(top) > 5 {
		top = top[:5]
	}
	b.WriteString("Highest combined scores:\n\n")
	for _, t := range top {
		fmt.Fprintf(&b, "1. %s (%s, adj. p %.3g)\n", t.Term, t.OverlapString(), t.AdjustedP)
	}
	return b.String()
}
