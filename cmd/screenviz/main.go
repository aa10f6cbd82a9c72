package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"screenviz/adapters/geneset"
	"screenviz/adapters/render"
	"screenviz/adapters/table"
	"screenviz/app"
	"screenviz/domain/screen"
	"screenviz/internal"
	"screenviz/internal/config"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.Logging.Level))
	internal.DefaultLogger = logger

	rootCmd := &cobra.Command{
		Use:           "screenviz",
		Short:         "Visualize CRISPR screen results",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newGeneCmd(logger),
		newSGRNACmd(cfg, logger),
		newCompareCmd(logger),
		newIdeaCmd(cfg, logger),
		newQCCmd(cfg, logger),
		newResultsCmd(cfg, logger),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// volcanoFlags registers the flags shared by gene and sgrna. A --config file
// replaces the column flags and --threshold.
func volcanoFlags(cmd *cobra.Command, req *app.VolcanoRequest, threshold *float64) {
	cmd.Flags().StringVarP(&req.Input, "input", "i", "", "Input file")
	cmd.Flags().StringVarP(&req.Output, "output", "o", req.Output, "Output file (.html, .svg or .png)")
	cmd.Flags().StringVarP(&req.Columns.FoldChange, "fc-column", "f", req.Columns.FoldChange, "Column name of fold change values")
	cmd.Flags().StringVarP(&req.Columns.PValue, "pval-column", "p", req.Columns.PValue, "Column name of score column")
	cmd.Flags().StringVarP(&req.Columns.Threshold, "threshold-column", "t", req.Columns.Threshold, "Column name of threshold column")
	cmd.Flags().Float64Var(threshold, "threshold", 0.1, "Threshold value")
	cmd.Flags().StringVarP(&req.ConfigPath, "config", "c", "", "YAML file with columns, method and thresholds")
	_ = cmd.MarkFlagRequired("input")
}

func newGeneCmd(logger *internal.Logger) *cobra.Command {
	req := app.DefaultGeneRequest()
	var threshold float64

	cmd := &cobra.Command{
		Use:   "gene",
		Short: "Visualize the volcano plot of the gene enrichment analysis",
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Thresholds = screen.Single(threshold)
			svc := app.NewVolcanoService(table.NewReader(logger), render.NewChartRenderer(), logger)
			_, err := svc.Run(cmd.Context(), req)
			return err
		},
	}
	volcanoFlags(cmd, &req, &threshold)
	cmd.Flags().StringVarP(&req.Columns.Identifier, "gene-column", "g", req.Columns.Identifier, "Column name of gene names")
	cmd.Flags().StringVar(&req.ControlToken, "ntc-token", "", "Label identifiers containing this token as controls")
	return cmd
}

func newSGRNACmd(cfg *config.Config, logger *internal.Logger) *cobra.Command {
	req := app.DefaultSGRNARequest()
	var threshold float64

	cmd := &cobra.Command{
		Use:   "sgrna",
		Short: "Visualize the volcano plot of the sgRNA enrichment analysis",
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Thresholds = screen.Single(threshold)
			svc := app.NewVolcanoService(table.NewReader(logger), render.NewChartRenderer(), logger)
			_, err := svc.Run(cmd.Context(), req)
			return err
		},
	}
	volcanoFlags(cmd, &req, &threshold)
	cmd.Flags().StringVarP(&req.Columns.Identifier, "sgrna-column", "s", req.Columns.Identifier, "Column name of sgRNA names")
	cmd.Flags().StringVarP(&req.Columns.Gene, "gene-column", "g", req.Columns.Gene, "Column name of gene names")
	cmd.Flags().StringVar(&req.ControlToken, "ntc-token", cfg.Screen.NTCToken, "Label guides of genes containing this token as controls")
	return cmd
}

func newCompareCmd(logger *internal.Logger) *cobra.Command {
	req := app.DefaultCompareRequest()
	var noLogA, noLogB bool

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare the gene enrichments between two analyses of the same screen",
		RunE: func(cmd *cobra.Command, args []string) error {
			req.A.LogTransform = !noLogA
			req.B.LogTransform = !noLogB
			svc := app.NewCompareService(table.NewReader(logger), render.NewChartRenderer(), logger)
			_, err := svc.Run(cmd.Context(), req)
			return err
		},
	}
	f := cmd.Flags()
	f.StringVarP(&req.A.Input, "screen-a", "i", "", "Input file to use as the first screen")
	f.StringVarP(&req.B.Input, "screen-b", "I", "", "Input file to use as the second screen")
	f.StringVarP(&req.A.VariableColumn, "variable-column-a", "x", req.A.VariableColumn, "Column name to plot for the first screen")
	f.StringVarP(&req.B.VariableColumn, "variable-column-b", "X", req.B.VariableColumn, "Column name to plot for the second screen")
	f.StringVarP(&req.A.ThresholdColumn, "threshold-column-a", "t", req.A.ThresholdColumn, "Threshold column of the first screen")
	f.StringVarP(&req.B.ThresholdColumn, "threshold-column-b", "T", req.B.ThresholdColumn, "Threshold column of the second screen")
	f.StringVarP(&req.A.MergeColumn, "merge-column-a", "m", req.A.MergeColumn, "Column to merge on the first screen")
	f.StringVarP(&req.B.MergeColumn, "merge-column-b", "M", req.B.MergeColumn, "Column to merge on the second screen")
	f.BoolVarP(&noLogA, "no-log-transform-a", "n", false, "Do not log transform the first screen")
	f.BoolVarP(&noLogB, "no-log-transform-b", "N", false, "Do not log transform the second screen")
	f.Float64Var(&req.Threshold, "threshold", req.Threshold, "Threshold value")
	f.StringVarP(&req.Output, "output", "o", req.Output, "Output file (.html, .svg or .png)")
	_ = cmd.MarkFlagRequired("screen-a")
	_ = cmd.MarkFlagRequired("screen-b")
	return cmd
}

func newIdeaCmd(cfg *config.Config, logger *internal.Logger) *cobra.Command {
	req := app.DefaultIdeaRequest()
	var geneSetDir string

	cmd := &cobra.Command{
		Use:   "idea",
		Short: "Perform gene set enrichment and visualize the result as a network",
		Long: `Runs an over-representation test of the significant genes against a GMT
gene set library and draws terms with their overlapping genes.

The library is looked up in --geneset-dir (default SCREENVIZ_GENESET_DIR):
-s BP resolves BP.gmt, or an explicit path to a .gmt file may be given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := app.NewIdeaService(
				table.NewReader(logger),
				table.NewWriter(),
				geneset.NewStore(geneSetDir, logger),
				render.NewChartRenderer(),
				logger,
			)
			_, err := svc.Run(cmd.Context(), req)
			return err
		},
	}
	f := cmd.Flags()
	f.StringVarP(&req.Input, "input", "i", "", "Input file")
	f.StringVarP(&req.Output, "output", "o", req.Output, "Output prefix, files are written to <prefix>.<geneset>.html and .tsv")
	f.StringVarP(&req.GeneSet, "geneset", "s", req.GeneSet, "Gene set library to test against")
	f.StringVar(&geneSetDir, "geneset-dir", cfg.Paths.GeneSetDir, "Directory holding GMT libraries")
	f.StringVarP(&req.GeneColumn, "gene-column", "g", req.GeneColumn, "Column name of gene names")
	f.StringVarP(&req.FCColumn, "fc-column", "f", req.FCColumn, "Column name of fold change values")
	f.StringVarP(&req.PValueColumn, "pval-column", "p", req.PValueColumn, "Column name of score column")
	f.StringVarP(&req.ThresholdColumn, "threshold-column", "t", req.ThresholdColumn, "Column name of threshold column")
	f.Float64Var(&req.Threshold, "threshold", req.Threshold, "Threshold for differentially expressed genes")
	f.Float64Var(&req.TermThreshold, "term-threshold", req.TermThreshold, "Adjusted p-value threshold for enriched terms")
	f.StringVar(&req.Sided, "sided", "", "One-sided enrichment, either 'up' or 'down'")
	f.IntVar(&req.Top, "top", req.Top, "Number of top terms to show")
	f.StringVar(&req.TermPalette, "term-palette", req.TermPalette, "Color palette for term nodes")
	f.StringVar(&req.GenePalette, "gene-palette", req.GenePalette, "Color palette for gene nodes")
	f.StringVar(&req.UpPalette, "up-color", req.UpPalette, "Color palette for up-regulated genes")
	f.StringVar(&req.DownPalette, "down-color", req.DownPalette, "Color palette for down-regulated genes")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
