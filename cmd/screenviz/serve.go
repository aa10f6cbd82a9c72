package main

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"screenviz/adapters/render"
	"screenviz/adapters/table"
	"screenviz/app"
	"screenviz/domain/qc"
	"screenviz/internal"
	"screenviz/internal/config"
	"screenviz/internal/errors"
	"screenviz/ui"
)

// listenAddr picks the first free port at or above port
func listenAddr(host string, port int) (string, error) {
	free, err := ui.FindFreePort(host, port)
	if err != nil {
		return "", err
	}
	return net.JoinHostPort(host, strconv.Itoa(free)), nil
}

func newQCCmd(cfg *config.Config, logger *internal.Logger) *cobra.Command {
	var input, guideColumn, geneColumn string
	var port int

	cmd := &cobra.Command{
		Use:   "qc",
		Short: "Visualize quality control metrics interactively on the input data",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := table.NewReader(logger).Read(input)
			if err != nil {
				return errors.Wrapf(err, "failed to load count matrix %s", input)
			}
			matrix, err := qc.NewCountMatrix(t, guideColumn, geneColumn)
			if err != nil {
				return err
			}
			logger.Info("Loaded %d guides across %d samples", matrix.Len(), len(matrix.Samples))

			qcApp, err := ui.NewQCApp(matrix, input, render.NewChartRenderer(), logger)
			if err != nil {
				return err
			}
			addr, err := listenAddr(cfg.Server.Host, port)
			if err != nil {
				return err
			}
			return qcApp.Start(addr)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&input, "input", "i", "", "Count matrix from sgcount")
	f.IntVarP(&port, "port", "p", cfg.Server.Port, "Port number to run the visualization on")
	f.StringVarP(&guideColumn, "guide-column", "s", "Guide", "Column name of sgRNA names")
	f.StringVarP(&geneColumn, "gene-column", "g", "Gene", "Column name of gene names")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newResultsCmd(cfg *config.Config, logger *internal.Logger) *cobra.Command {
	var prefix, sgrnaFile, geneFile, ntcToken, amalgamToken string
	var port int

	cmd := &cobra.Command{
		Use:   "results",
		Short: "Visualize CRISPR screen results interactively",
		Long: fmt.Sprintf(`Serves the sgRNA-level and gene-level result tables as a dashboard.

Give either a prefix (-n), which matches <prefix>.sgrna_results.tsv and
<prefix>.gene_results.tsv, or both -s and -g. The dashboard listens on the
first free port at or above --port (default %d).`, config.DefaultPort),
		RunE: func(cmd *cobra.Command, args []string) error {
			sgrnaPath, genePath, err := app.ResolveResultFiles(prefix, sgrnaFile, geneFile)
			if err != nil {
				return err
			}
			dashboard, err := app.LoadResultsDashboard(table.NewReader(logger), sgrnaPath, genePath, ntcToken, amalgamToken)
			if err != nil {
				return err
			}
			server, err := ui.NewResultsServer(dashboard, render.NewChartRenderer(), ui.ResultsServerConfig{
				GinMode:   cfg.Server.GinMode,
				SGRNAFile: sgrnaPath,
				GeneFile:  genePath,
			}, logger)
			if err != nil {
				return err
			}
			addr, err := listenAddr(cfg.Server.Host, port)
			if err != nil {
				return err
			}
			return server.Start(addr)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&sgrnaFile, "sgrna-file", "s", "", "Input file for sgRNA-level results")
	f.StringVarP(&geneFile, "gene-file", "g", "", "Input file for gene-level results")
	f.StringVarP(&prefix, "prefix", "n", "", "Prefix for the input files")
	f.StringVar(&ntcToken, "ntc-token", cfg.Screen.NTCToken, "Token to identify negative controls in the sgRNA file")
	f.StringVar(&amalgamToken, "amalgam-token", cfg.Screen.AmalgamToken, "Token to identify amalgam genes in the gene file")
	f.IntVarP(&port, "port", "p", cfg.Server.Port, "Port number to run the visualization on")
	return cmd
}
