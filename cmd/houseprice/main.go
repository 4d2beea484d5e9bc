// Command houseprice runs the housing-price regression pipeline: it
// loads the train and test tables, prepares the numeric features,
// selects a forest by cross-validated grid search, and writes the
// submission table.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mizuiro/houseprice/pipeline"
	"github.com/mizuiro/houseprice/pkg/log"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	trainPath := flag.String("train", "", "labeled training table (overrides config)")
	testPath := flag.String("test", "", "unlabeled test table (overrides config)")
	outPath := flag.String("out", "", "submission output file (overrides config)")
	flag.Parse()

	cfg, err := pipeline.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *trainPath != "" {
		cfg.TrainPath = *trainPath
	}
	if *testPath != "" {
		cfg.TestPath = *testPath
	}
	if *outPath != "" {
		cfg.SubmissionPath = *outPath
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log.SetupLogger(cfg.LogLevel)
	logger := log.GetLogger()

	result, err := pipeline.Run(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("pipeline failed", log.ErrAttr(err))
		os.Exit(1)
	}

	fmt.Print(result.CVTable.String())
	fmt.Printf("selected mtry=%d (cv rmse=%.6f)\n", result.BestMaxFeatures, result.BestRMSE)
	if cfg.SubmissionPath != "" {
		fmt.Printf("submission written to %s (%d rows)\n", cfg.SubmissionPath, len(result.IDs))
	}
}
