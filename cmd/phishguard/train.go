package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/phishguard/internal/classifier"
	"github.com/nao1215/phishguard/internal/lexical"
)

// NewTrainCmd creates the train command.
func NewTrainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the lexical classifier on a synthetic dataset",
		Long: `Train fits the logistic-regression classifier on a generated dataset of
trusted-brand URLs and look-alike phishing URLs, then saves the artifact.

The same artifact is retrained automatically when it is missing or corrupt,
so this command is only needed to change the dataset size or seed.

Examples:
  phishguard train
  phishguard train --samples 5000 --seed 7 --output ./model.json`,
		RunE: runTrain,
	}

	cmd.Flags().Int("samples", 0, "Number of synthetic samples (default from config)")
	cmd.Flags().Int64("seed", 0, "Random seed of the dataset (default from config)")
	cmd.Flags().StringP("output", "o", "", "Artifact path (default from config)")

	return cmd
}

func runTrain(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("samples") {
		cfg.TrainingSamples, err = flags.GetInt("samples")
		if err != nil {
			return err
		}
	}

	if flags.Changed("seed") {
		cfg.TrainingSeed, err = flags.GetInt64("seed")
		if err != nil {
			return err
		}
	}

	path, err := flags.GetString("output")
	if err != nil {
		return err
	}
	if path != "" {
		cfg.ModelPath = path
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	newLogger(cmd.ErrOrStderr(), cfg.Verbose, false)

	extractor := lexical.New(cfg.Rules.SuspiciousTLDs)
	trainer := &classifier.SyntheticTrainer{
		Samples:   cfg.TrainingSamples,
		Seed:      cfg.TrainingSeed,
		Extractor: extractor,
	}

	m, err := trainer.Train(cmd.Context())
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	accuracy, err := classifier.Accuracy(m, trainer.Dataset(), extractor)
	if err != nil {
		return fmt.Errorf("failed to evaluate model: %w", err)
	}

	if err := classifier.Save(cfg.ModelPath, m); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Trained on %d samples (seed %d)\n", cfg.TrainingSamples, cfg.TrainingSeed)
	fmt.Fprintf(out, "Training accuracy: %.1f%%\n", accuracy*100)
	fmt.Fprintf(out, "Model saved to: %s\n", cfg.ModelPath)
	return nil
}
