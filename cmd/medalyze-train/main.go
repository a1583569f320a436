// Package main provides the model training CLI entrypoint.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/config"
	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/observability"
	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/train"
)

var (
	cfgFile     string
	datasetPath string
	modelsDir   string
	noProgress  bool

	cfg    *config.Config
	logger *observability.Logger
)

var rootCmd = &cobra.Command{
	Use:   "medalyze-train",
	Short: "Train the symptom-to-disease prediction model",
	Long: `medalyze-train fits the TF-IDF vectorizer and naive Bayes classifier
on the labeled symptom dataset, evaluates on a held-out split, and
persists the trained artifacts for the prediction API.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		if datasetPath != "" {
			cfg.Paths.DatasetPath = datasetPath
		}
		if modelsDir != "" {
			cfg.Paths.ModelsDir = modelsDir
		}

		logger = observability.NewLogger(observability.LogConfig{
			Level:       cfg.Observability.LogLevel,
			Format:      cfg.Observability.LogFormat,
			ServiceName: "medalyze-train",
		})
		return nil
	},
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Run the full training pipeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		trainer := train.NewTrainer(cfg, logger)

		if !trainer.LoadAndValidate() {
			return fmt.Errorf("dataset load failed, see log for details")
		}

		var bar *progressbar.ProgressBar
		if !noProgress {
			trainer.Progress = func(done, total int) {
				if bar == nil {
					bar = newBar(total, "Preprocessing symptoms")
				}
				_ = bar.Set(done)
			}
		}
		if err := trainer.Preprocess(); err != nil {
			return err
		}
		if bar != nil {
			_ = bar.Finish()
		}

		accuracy, err := trainer.Train()
		if err != nil {
			return err
		}
		if !trainer.Save() {
			color.New(color.FgRed).Fprintf(os.Stderr, "✗ accuracy %.4f below floor %.4f, artifacts not saved\n",
				accuracy, cfg.Training.AccuracyFloor)
			return fmt.Errorf("model accuracy too low")
		}
		if err := trainer.GenerateReport(); err != nil {
			logger.Warn().Err(err).Msg("Failed to write training report")
		}

		printSummary(trainer.Report())
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the last training report",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(cfg.Paths.ReportPath)
		if err != nil {
			return fmt.Errorf("no training report at %s, run train first", cfg.Paths.ReportPath)
		}
		fmt.Print(string(data))
		return nil
	},
}

func newBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(
		total,
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
	)
}

func printSummary(report *train.Report) {
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Printf("✓ Model trained and saved\n")
	fmt.Printf("  accuracy:  %.4f\n", report.Accuracy)
	fmt.Printf("  samples:   %d train / %d test\n", report.TrainingSamples, report.TestSamples)
	fmt.Printf("  features:  %d\n", report.FeatureCount)
	fmt.Printf("  diseases:  %d\n", report.DiseaseCount)
	if report.CVSkipped {
		yellow.Printf("⚠ cross-validation skipped: %s\n", report.CVSkipReason)
	} else {
		fmt.Printf("  cv mean:   %.4f over %d folds\n", report.CVMean(), len(report.CVScores))
	}
}

func main() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&datasetPath, "dataset", "", "override dataset path")
	rootCmd.PersistentFlags().StringVar(&modelsDir, "models-dir", "", "override models directory")
	rootCmd.PersistentFlags().BoolVar(&noProgress, "no-progress", false, "disable the progress bar")

	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(reportCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
