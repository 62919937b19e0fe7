package main

import (
	"github.com/spf13/cobra"

	"github.com/iWorld-y/market_radar/app/market_radar/pkg/engine"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/logger"
	"github.com/iWorld-y/market_radar/app/market_radar/pkg/report"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [symbol]",
	Short: "Analyze one ticker symbol",
	Long:  `Request the narrative analysis and the market pulse for a symbol concurrently, then print the parsed sections, metrics and gauge.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

var analyzeHTML string

func init() {
	analyzeCmd.Flags().StringVar(&analyzeHTML, "html", "", "Also render the analysis to this HTML file")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, cleanup, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	snap, err := follow(ctx, engine.NewAnalysisOrchestrator(e), args[0], cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if err := printJSON(cmd.OutOrStdout(), snap.Result); err != nil {
		return err
	}

	if analyzeHTML != "" {
		data := report.NewPageData(snap.Result, e.Config().Analysis.DetailCards)
		if err := report.WriteFile(analyzeHTML, data); err != nil {
			return err
		}
		logger.Log.Infof("分析报告已生成: %s", analyzeHTML)
	}
	return nil
}
