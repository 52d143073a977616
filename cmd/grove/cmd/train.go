package cmd

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/grove/pipeline"
	"github.com/YuminosukeSato/grove/tracking"
)

var (
	dataPath    string
	modelPath   string
	promMetrics bool
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "run the training pipeline",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if dataPath != "" {
			cfg.Data.LocalPath = dataPath
		}
		if modelPath != "" {
			cfg.Output.ModelPath = modelPath
		}

		opts := []pipeline.Option{pipeline.WithOutput(cmd.OutOrStdout())}
		if promMetrics {
			sink := tracking.MultiSink{
				tracking.NewLogSink(nil),
				tracking.NewPrometheusSink(prometheus.DefaultRegisterer),
			}
			opts = append(opts, pipeline.WithSink(sink))
		}

		p, err := pipeline.NewPipeline(cfg, opts...)
		if err != nil {
			return err
		}
		_, err = p.Run(cmd.Context())
		return err
	},
}

func init() {
	flags := trainCmd.Flags()
	flags.StringVar(&dataPath, "data", "", "local dataset path, overrides the config file")
	flags.StringVar(&modelPath, "model", "", "model artifact path, overrides the config file")
	flags.BoolVar(&promMetrics, "prometheus", false, "also register run metrics on the default Prometheus registry")

	rootCmd.AddCommand(trainCmd)
}
