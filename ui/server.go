package ui

import (
	"bytes"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"screenviz/app"
	"screenviz/domain/dataset"
	"screenviz/domain/figure"
	"screenviz/internal"
	"screenviz/ports"
	"screenviz/ui/middleware"
)

// ResultsServer serves the results dashboard
type ResultsServer struct {
	router    *gin.Engine
	dashboard *app.ResultsDashboard
	renderer  ports.ChartRendererPort
	templates *template.Template
	metrics   *middleware.Metrics
	logger    *internal.Logger
	files     [2]string
}

// ResultsServerConfig holds what the results server needs besides its data
type ResultsServerConfig struct {
	GinMode   string
	SGRNAFile string
	GeneFile  string
}

// NewResultsServer creates the results dashboard server
func NewResultsServer(dashboard *app.ResultsDashboard, renderer ports.ChartRendererPort, cfg ResultsServerConfig, logger *internal.Logger) (*ResultsServer, error) {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &ResultsServer{
		router:    gin.New(),
		dashboard: dashboard,
		renderer:  renderer,
		templates: templates,
		metrics:   middleware.NewMetrics("results"),
		logger:    logger,
		files:     [2]string{cfg.SGRNAFile, cfg.GeneFile},
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// setupMiddleware configures Gin middleware
func (s *ResultsServer) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.GinRequestID())
	s.router.Use(s.metrics.Gin())
	s.router.Use(s.requestLogger())
}

// setupRoutes configures the application routes
func (s *ResultsServer) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := s.router.Group("/api")
	api.GET("/sgrna/volcano.svg", s.handlePlot(s.dashboard.SGRNAVolcano))
	api.GET("/sgrna/ma.svg", s.handlePlot(s.dashboard.SGRNAMA))
	api.GET("/gene/volcano.svg", s.handlePlot(s.dashboard.GeneVolcano))
	api.GET("/sgrna/table", s.handleTable(s.dashboard.SGRNA))
	api.GET("/gene/table", s.handleTable(s.dashboard.Gene))
}

// Handler exposes the router for embedding and tests
func (s *ResultsServer) Handler() http.Handler { return s.router }

// Start starts the web server
func (s *ResultsServer) Start(addr string) error {
	s.logger.Info("Starting results dashboard on http://%s", addr)
	return s.router.Run(addr)
}

func (s *ResultsServer) requestLogger() gin.HandlerFunc {
	z := s.logger.Zap()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		z.Debug("request",
			zap.String("dashboard", "results"),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString("request_id")),
		)
	}
}

func (s *ResultsServer) fail(c *gin.Context, err error) {
	status := httpStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("[Results] %s: %v", c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

type resultsPage struct {
	Title     string
	SGRNAFile string
	GeneFile  string
	SGRNARows int
	GeneRows  int
	Threshold float64
	Clamp     float64
	MinClamp  int
	MaxClamp  int
	Tabs      []resultsTab
}

type resultsTab struct {
	ID      string
	Heading string
	Plots   []string
}

func (s *ResultsServer) handleIndex(c *gin.Context) {
	p := app.DefaultDashboardParams()
	page := resultsPage{
		Title:     "CRISPR Screen Results Dashboard",
		SGRNAFile: s.files[0],
		GeneFile:  s.files[1],
		SGRNARows: s.dashboard.SGRNA.Len(),
		GeneRows:  s.dashboard.Gene.Len(),
		Threshold: p.Threshold,
		Clamp:     p.Clamp,
		MinClamp:  app.MinClamp,
		MaxClamp:  app.MaxClamp,
		Tabs: []resultsTab{
			{ID: "sgrna", Heading: "sgRNA Differential Abundance", Plots: []string{"volcano", "ma"}},
			{ID: "gene", Heading: "Gene Differential Abundance", Plots: []string{"volcano"}},
		},
	}
	var buf bytes.Buffer
	if err := renderTemplate(&buf, s.templates, "results.html", page); err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (s *ResultsServer) params(c *gin.Context) (app.DashboardParams, error) {
	p := app.DefaultDashboardParams()
	var err error
	if p.Threshold, err = parseFloatParam(c.Query("threshold"), p.Threshold); err != nil {
		return p, err
	}
	if p.Clamp, err = parseFloatParam(c.Query("clamp"), p.Clamp); err != nil {
		return p, err
	}
	if p.UseFDR, err = parseBoolParam(c.Query("use_fdr"), p.UseFDR); err != nil {
		return p, err
	}
	return p.Normalize(), nil
}

func (s *ResultsServer) handlePlot(build func(app.DashboardParams) (figure.Figure, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := s.params(c)
		if err != nil {
			s.fail(c, err)
			return
		}
		fig, err := build(p)
		if err != nil {
			s.fail(c, err)
			return
		}
		var buf bytes.Buffer
		if err := s.renderer.Scatter(&buf, fig, figure.FormatSVG); err != nil {
			s.fail(c, err)
			return
		}
		c.Data(http.StatusOK, "image/svg+xml", buf.Bytes())
	}
}

func (s *ResultsServer) handleTable(t *dataset.Table) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := s.params(c)
		if err != nil {
			s.fail(c, err)
			return
		}
		rows := app.FilterByFDR(t, p.Threshold)
		c.JSON(http.StatusOK, gin.H{
			"headers": t.Headers,
			"rows":    t.RowMaps(rows),
			"count":   len(rows),
		})
	}
}
