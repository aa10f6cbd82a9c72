package figure

// LegendEntry is a color swatch shown above a report's figures
type LegendEntry struct {
	Name  string
	Color string
}

// ReportTable is the tabular section of a report
type ReportTable struct {
	Caption string
	Headers []string
	Rows    [][]string
}

// Report is a standalone page: a markdown summary, figures and an optional table
type Report struct {
	Title   string
	Summary string
	Legend  []LegendEntry
	Figures []Figure
	Table   *ReportTable
}
