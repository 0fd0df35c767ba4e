package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dstrand/maturity-agent/internal/llm"
	"github.com/dstrand/maturity-agent/internal/observability"
	"github.com/dstrand/maturity-agent/internal/pipeline"
	"github.com/dstrand/maturity-agent/internal/report"
	"github.com/dstrand/maturity-agent/internal/retrieval"
	"github.com/dstrand/maturity-agent/internal/types"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full assessment workflow end-to-end",
	Long: `Orchestrates the assessment workflow: statistics -> maturity assessment -> report composition -> quality critique (with bounded revisions) -> optional document rendering.

Survey records are read from a JSON file: an array of objects with question_id, question_text, average_score, response_count, category, process, lifecycle, comments.`,
	RunE: runWorkflowCmd,
}

var (
	runRecordsPath  string
	runDimension    string
	runCustomer     string
	runCustomerCode string
	runOutputPath   string
	runThreshold    float64
	runMaxRevisions int
	runNoRevision   bool
	runNoFormat     bool
	runAPIKey       string
	runWeaviateHost string
	runVerbose      bool
)

func init() {
	runCommand.Flags().StringVarP(&runRecordsPath, "records", "r", "", "Path to survey records JSON file (required)")
	runCommand.Flags().StringVarP(&runDimension, "dimension", "d", "", "Governance dimension being assessed, e.g. \"Data Quality\" (required)")
	runCommand.Flags().StringVar(&runCustomer, "customer", "", "Customer name for the report header")
	runCommand.Flags().StringVar(&runCustomerCode, "customer-code", "", "Customer short code")
	runCommand.Flags().StringVarP(&runOutputPath, "output", "o", "", "PDF output path (omit to skip document rendering)")
	runCommand.Flags().Float64Var(&runThreshold, "threshold", 7.0, "Quality threshold the draft must reach (0-10, 0 accepts everything)")
	runCommand.Flags().IntVar(&runMaxRevisions, "max-revisions", 2, "Maximum revision rounds before a below-threshold draft is accepted")
	runCommand.Flags().BoolVar(&runNoRevision, "no-revision", false, "Accept the first critique verdict without revision rounds")
	runCommand.Flags().BoolVar(&runNoFormat, "no-format", false, "Skip document rendering even when --output is set")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print stage summaries and debug logs")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	runCommand.Flags().StringVar(&runAPIKey, "api-key", "", "Gemini API key (optional, defaults to GEMINI_API_KEY env var)")

	// Knowledge base for retrieval-grounded assessment
	runCommand.Flags().StringVar(&runWeaviateHost, "weaviate-host", "", "Weaviate host for knowledge-base retrieval (optional, defaults to WEAVIATE_HOST env var)")

	_ = runCommand.MarkFlagRequired("records")
	_ = runCommand.MarkFlagRequired("dimension")

	rootCmd.AddCommand(runCommand)
}

func runWorkflowCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	records, err := loadRecords(runRecordsPath)
	if err != nil {
		return err
	}

	apiKey := runAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}

	logger, err := buildLogger(runVerbose)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), apiKey)
	if err != nil {
		return fmt.Errorf("failed to create completion client: %w", err)
	}
	defer func() { _ = client.Close() }()

	retriever, err := buildRetriever(logger)
	if err != nil {
		return err
	}

	config := pipeline.DefaultWorkflowConfig()
	config.QualityThreshold = runThreshold
	config.MaxRevisions = runMaxRevisions
	config.EnableRevision = !runNoRevision
	config.EnableFormatting = !runNoFormat

	opts := pipeline.RunOptions{
		Dimension:  runDimension,
		Records:    records,
		Customer:   report.Customer{Name: runCustomer, Code: runCustomerCode},
		Client:     client,
		Retriever:  retriever,
		OutputPath: runOutputPath,
		Config:     config,
		Logger:     logger,
	}

	printer := observability.NewPrinter(os.Stdout)
	if runVerbose {
		opts.OnProgress = func(event pipeline.ProgressEvent) {
			fmt.Fprintf(os.Stdout, "[%s] %s\n", event.Stage, event.Message)
		}
	}

	result := pipeline.RunWorkflow(ctx, opts)

	if runVerbose {
		if statsResult, ok := result.StageResults[types.StageStatistics]; ok && statsResult.Success {
			printer.PrintStats(statsResult.Output.(*types.SurveyStats))
		}
		if assessResult, ok := result.StageResults[types.StageMaturity]; ok && assessResult.Success {
			printer.PrintAssessment(assessResult.Output.(*types.MaturityAssessment))
		}
		printer.PrintReport(result.FinalReport)
	}
	printer.PrintWorkflowResult(result)

	if !result.Success {
		return fmt.Errorf("workflow failed: %s", result.Error)
	}
	return nil
}

// loadRecords reads and decodes the survey records file.
func loadRecords(path string) ([]types.SurveyRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read records file: %w", err)
	}

	var records []types.SurveyRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse records file %s: %w", path, err)
	}
	return records, nil
}

// buildRetriever wires the knowledge base when a host is configured; without
// one the assessment runs context-free.
func buildRetriever(logger *zap.Logger) (retrieval.Retriever, error) {
	host := runWeaviateHost
	if host == "" {
		host = os.Getenv("WEAVIATE_HOST")
	}
	if host == "" {
		logger.Info("no knowledge base configured, assessing without retrieved context")
		return retrieval.Noop{}, nil
	}

	retriever, err := retrieval.NewWeaviateRetriever(retrieval.WeaviateConfig{Host: host})
	if err != nil {
		return nil, fmt.Errorf("failed to create retriever: %w", err)
	}
	return retriever, nil
}

func buildLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return config.Build()
}
