package ui

import (
	"bytes"
	"encoding/json"
	"html/template"
	"math"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"screenviz/adapters/table"
	"screenviz/app"
	"screenviz/domain/figure"
	"screenviz/domain/qc"
	"screenviz/internal"
	"screenviz/internal/errors"
	"screenviz/internal/profiling"
	"screenviz/ports"
	"screenviz/ui/middleware"
)

// DefaultHighlightGene is preselected in the scatter when the matrix has it
const DefaultHighlightGene = "non-targeting"

// QCApp serves the quality-control dashboard over a count matrix
type QCApp struct {
	router    *chi.Mux
	matrix    *qc.CountMatrix
	source    string
	renderer  ports.ChartRendererPort
	analyzer  *profiling.DistributionAnalyzer
	templates *template.Template
	metrics   *middleware.Metrics
	logger    *internal.Logger

	once        sync.Once
	correlation profiling.CorrelationMatrix
	profiles    []profiling.SampleProfile
}

// NewQCApp creates the QC dashboard
func NewQCApp(matrix *qc.CountMatrix, source string, renderer ports.ChartRendererPort, logger *internal.Logger) (*QCApp, error) {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	a := &QCApp{
		router:    chi.NewRouter(),
		matrix:    matrix,
		source:    source,
		renderer:  renderer,
		analyzer:  profiling.NewDistributionAnalyzer(),
		templates: templates,
		metrics:   middleware.NewMetrics("qc"),
		logger:    logger,
	}
	a.setupMiddleware()
	a.setupRoutes()
	return a, nil
}

// setupMiddleware configures HTTP middleware
func (a *QCApp) setupMiddleware() {
	a.router.Use(chimw.Logger)
	a.router.Use(chimw.Recoverer)
	a.router.Use(chimw.Compress(5))
	a.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{"Content-Disposition", middleware.RequestIDHeader},
		MaxAge:         300,
	}))
	a.router.Use(middleware.RequestID)
	a.router.Use(a.metrics.HTTP)
}

// setupRoutes configures the application routes
func (a *QCApp) setupRoutes() {
	a.router.Get("/", a.handleIndex)
	a.router.Get("/health", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("ok")) })
	a.router.Handle("/metrics", a.metrics.Handler())

	a.router.Route("/api", func(r chi.Router) {
		r.Get("/samples", a.handleSamples)
		r.Get("/scatter", a.handleScatter)
		r.Get("/scatter.svg", a.handleScatterSVG)
		r.Get("/table", a.handleTable)
		r.Get("/export", a.handleExport)
		r.Get("/correlation", a.handleCorrelation)
		r.Get("/totals", a.handleTotals)
		r.Get("/totals.svg", a.handleTotalsSVG)
		r.Get("/membership", a.handleMembership)
		r.Get("/membership.svg", a.handleMembershipSVG)
		r.Get("/membership/genes", a.handleMembershipGenes)
		r.Get("/kde", a.handleKDE)
		r.Get("/kde.svg", a.handleKDESVG)
		r.Get("/profiles", a.handleProfiles)
	})
}

// Handler exposes the router for embedding and tests
func (a *QCApp) Handler() http.Handler { return a.router }

// Start starts the HTTP server
func (a *QCApp) Start(addr string) error {
	a.logger.Info("Starting QC dashboard on http://%s", addr)
	return http.ListenAndServe(addr, a.router)
}

// summaries computes the correlation matrix and sample profiles once
func (a *QCApp) summaries() (profiling.CorrelationMatrix, []profiling.SampleProfile) {
	a.once.Do(func() {
		raw := make(map[string][]float64, len(a.matrix.Samples))
		for _, s := range a.matrix.Samples {
			raw[s], _ = a.matrix.Values(s, false)
			logged, _ := a.matrix.Values(s, true)
			p, err := a.analyzer.AnalyzeSample(s, logged)
			if err != nil {
				a.logger.Warn("[QC] skipping profile of %s: %v", s, err)
				continue
			}
			a.profiles = append(a.profiles, p)
		}
		a.correlation = profiling.SpearmanMatrix(a.matrix.Samples, raw)
	})
	return a.correlation, a.profiles
}

func (a *QCApp) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatus(err)
	if status >= http.StatusInternalServerError {
		a.logger.Error("[QC] %s: %v", r.URL.Path, err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writeJSON marshals the whole body before the status line goes out
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

// nullable replaces NaN correlations, which JSON cannot carry, with null
func nullable(values [][]float64) [][]*float64 {
	out := make([][]*float64, len(values))
	for i, row := range values {
		out[i] = make([]*float64, len(row))
		for j := range row {
			if !math.IsNaN(row[j]) {
				out[i][j] = &row[j]
			}
		}
	}
	return out
}

func writeSVG(w http.ResponseWriter, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", "image/svg+xml")
	buf.WriteTo(w)
}

type qcPage struct {
	Title       string
	Source      string
	Guides      int
	Samples     []string
	YIndex      int
	Genes       []string
	Highlight   string
	AllSamples  string
	Correlation profiling.CorrelationMatrix
	Profiles    []profiling.SampleProfile
}

func (a *QCApp) handleIndex(w http.ResponseWriter, r *http.Request) {
	corr, profiles := a.summaries()
	page := qcPage{
		Title:       "sgRNA Count Quality Control",
		Source:      a.source,
		Guides:      a.matrix.Len(),
		Samples:     a.matrix.Samples,
		Genes:       a.matrix.GeneList(),
		Highlight:   a.matrix.DefaultHighlight(DefaultHighlightGene),
		AllSamples:  qc.AllSamples,
		Correlation: corr,
		Profiles:    profiles,
	}
	if len(page.Samples) > 1 {
		page.YIndex = 1
	}
	var buf bytes.Buffer
	if err := renderTemplate(&buf, a.templates, "qc.html", page); err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

func (a *QCApp) handleSamples(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"samples":   a.matrix.Samples,
		"genes":     a.matrix.GeneList(),
		"highlight": a.matrix.DefaultHighlight(DefaultHighlightGene),
	})
}

// scatterQuery is the shared x/y/log/highlight/selection query of the scatter, table and export endpoints
type scatterQuery struct {
	X, Y      string
	Log       bool
	Highlight string
	Selection *qc.Rect
}

func (a *QCApp) parseScatterQuery(r *http.Request) (scatterQuery, error) {
	q := r.URL.Query()
	sq := scatterQuery{X: q.Get("x"), Y: q.Get("y")}
	if sq.X == "" {
		sq.X = a.matrix.Samples[0]
	}
	if sq.Y == "" {
		sq.Y = a.matrix.Samples[0]
		if len(a.matrix.Samples) > 1 {
			sq.Y = a.matrix.Samples[1]
		}
	}
	var err error
	if sq.Log, err = parseBoolParam(q.Get("log"), true); err != nil {
		return sq, err
	}
	if q.Has("highlight") {
		sq.Highlight = q.Get("highlight")
	} else {
		sq.Highlight = a.matrix.DefaultHighlight(DefaultHighlightGene)
	}

	keys := []string{"x0", "x1", "y0", "y1"}
	present := 0
	for _, k := range keys {
		if q.Get(k) != "" {
			present++
		}
	}
	switch present {
	case 0:
	case len(keys):
		var bounds [4]float64
		for i, k := range keys {
			if bounds[i], err = parseFloatParam(q.Get(k), 0); err != nil {
				return sq, err
			}
		}
		sq.Selection = &qc.Rect{X0: bounds[0], X1: bounds[1], Y0: bounds[2], Y1: bounds[3]}
	default:
		return sq, errors.InvalidInput("selection needs all of x0, x1, y0 and y1")
	}
	return sq, nil
}

func (a *QCApp) scatterView(r *http.Request) (*qc.ScatterView, error) {
	sq, err := a.parseScatterQuery(r)
	if err != nil {
		return nil, err
	}
	return a.matrix.Scatter(sq.X, sq.Y, sq.Log, sq.Highlight, sq.Selection)
}

func (a *QCApp) handleScatter(w http.ResponseWriter, r *http.Request) {
	view, err := a.scatterView(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *QCApp) handleScatterSVG(w http.ResponseWriter, r *http.Request) {
	view, err := a.scatterView(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := a.renderer.Scatter(&buf, app.QCScatterFigure(view), figure.FormatSVG); err != nil {
		a.fail(w, r, err)
		return
	}
	writeSVG(w, &buf)
}

// selectedRows renders the rows inside the selection, all rows without one
func (a *QCApp) selectedRows(r *http.Request) ([]string, [][]string, error) {
	sq, err := a.parseScatterQuery(r)
	if err != nil {
		return nil, nil, err
	}
	idx, err := a.matrix.SelectRows(sq.X, sq.Y, sq.Log, sq.Selection)
	if err != nil {
		return nil, nil, err
	}
	headers, rows := a.matrix.Rows(idx, sq.Log)
	return headers, rows, nil
}

func (a *QCApp) handleTable(w http.ResponseWriter, r *http.Request) {
	headers, rows, err := a.selectedRows(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"headers": headers, "rows": rows, "count": len(rows)})
}

func (a *QCApp) handleExport(w http.ResponseWriter, r *http.Request) {
	headers, rows, err := a.selectedRows(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	filename, contentType := "exported_data.tsv", "text/tab-separated-values"
	if r.URL.Query().Get("format") == "xlsx" {
		filename = "exported_data.xlsx"
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		err = table.WriteXLSX(&buf, headers, rows)
	} else {
		err = table.WriteTSV(&buf, headers, rows)
	}
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.logger.Debug("[QC] exporting %d rows as %s", len(rows), filename)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	buf.WriteTo(w)
}

func (a *QCApp) handleCorrelation(w http.ResponseWriter, r *http.Request) {
	corr, _ := a.summaries()
	writeJSON(w, http.StatusOK, map[string]interface{}{"samples": corr.Samples, "values": nullable(corr.Values)})
}

func (a *QCApp) handleTotals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.matrix.TotalReads())
}

func (a *QCApp) handleTotalsSVG(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := a.renderer.Bars(&buf, app.TotalsChart(a.matrix.TotalReads()), figure.FormatSVG); err != nil {
		a.fail(w, r, err)
		return
	}
	writeSVG(w, &buf)
}

func (a *QCApp) membershipSample(r *http.Request) (string, error) {
	sample := r.URL.Query().Get("sample")
	if sample == "" || sample == qc.AllSamples {
		return qc.AllSamples, nil
	}
	if _, err := a.matrix.Values(sample, false); err != nil {
		return "", err
	}
	return sample, nil
}

func (a *QCApp) handleMembership(w http.ResponseWriter, r *http.Request) {
	sample, err := a.membershipSample(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a.matrix.MembershipHistogram(sample))
}

func (a *QCApp) handleMembershipSVG(w http.ResponseWriter, r *http.Request) {
	sample, err := a.membershipSample(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := a.renderer.Bars(&buf, app.MembershipChart(sample, a.matrix.MembershipHistogram(sample)), figure.FormatSVG); err != nil {
		a.fail(w, r, err)
		return
	}
	writeSVG(w, &buf)
}

func (a *QCApp) handleMembershipGenes(w http.ResponseWriter, r *http.Request) {
	sample, err := a.membershipSample(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a.matrix.GeneMembership(sample))
}

// densities estimates the KDE of log counts for the requested samples, every sample by default
func (a *QCApp) densities(r *http.Request) ([]profiling.Density, error) {
	samples := r.URL.Query()["sample"]
	if len(samples) == 0 {
		samples = a.matrix.Samples
	}
	out := make([]profiling.Density, 0, len(samples))
	for _, s := range samples {
		logged, err := a.matrix.Values(s, true)
		if err != nil {
			return nil, err
		}
		d, err := profiling.GaussianKDE(s, logged, profiling.DefaultBandwidth, profiling.DefaultGridPoints)
		if err != nil {
			a.logger.Warn("[QC] %v", err)
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (a *QCApp) handleKDE(w http.ResponseWriter, r *http.Request) {
	d, err := a.densities(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (a *QCApp) handleKDESVG(w http.ResponseWriter, r *http.Request) {
	d, err := a.densities(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := a.renderer.Scatter(&buf, app.KDEFigure(d, figure.Palettes["Viridis"]), figure.FormatSVG); err != nil {
		a.fail(w, r, err)
		return
	}
	writeSVG(w, &buf)
}

func (a *QCApp) handleProfiles(w http.ResponseWriter, r *http.Request) {
	_, profiles := a.summaries()
	writeJSON(w, http.StatusOK, profiles)
}
