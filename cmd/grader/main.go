// Grader runs every submission in a directory against a collection of
// price datasets and prints the leaderboard.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	arbiter "github.com/tantralabs/arbiter"
	"github.com/tantralabs/arbiter/data"
	"github.com/tantralabs/arbiter/logger"
	"github.com/tantralabs/arbiter/models"
	"github.com/tantralabs/arbiter/strategies"
	"github.com/tantralabs/arbiter/submissions"
)

func registerBuiltins() {
	submissions.Register("uniform", func(params map[string]float64) (models.AllocationFunc, error) {
		return strategies.Uniform(), nil
	})
	submissions.Register("momentum", func(params map[string]float64) (models.AllocationFunc, error) {
		lookback := 50
		if v, ok := params["lookback"]; ok {
			lookback = int(v)
		}
		return strategies.Momentum(lookback), nil
	})
	submissions.Register("inverse_volatility", func(params map[string]float64) (models.AllocationFunc, error) {
		return strategies.InverseVolatility(), nil
	})
}

func main() {
	configPath := flag.String("config", "config.json", "grader config file")
	logResults := flag.Bool("log-results", false, "log batch summaries to the backtest database")
	flag.Parse()

	registerBuiltins()

	config, err := models.LoadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	logger.SetLevel(config.LogLevel)

	datasets, err := data.LoadCSVDir(config.DataDir)
	if err != nil {
		log.Fatal(err)
	}
	log.Println("Loaded", len(datasets), "datasets from", config.DataDir)

	subs, loadErrors, err := submissions.LoadDir(config.SubmissionDir)
	if err != nil {
		log.Fatal(err)
	}
	for _, loadErr := range loadErrors {
		logger.Errorf("Load error: %v\n", loadErr)
	}
	if len(subs) == 0 {
		log.Fatal("no loadable submissions in ", config.SubmissionDir)
	}
	log.Println("Grading", len(subs), "submissions over", len(datasets), "datasets")

	results, err := arbiter.RunBatchAll(subs, datasets, config.Options)
	if err != nil {
		log.Fatal(err)
	}

	board, err := arbiter.RankSubmissions(results, config.Weights)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Print(arbiter.FormatLeaderboard(board))

	if config.ExportDir != "" {
		if err := os.MkdirAll(config.ExportDir, os.ModePerm); err != nil {
			log.Fatal(err)
		}
		for _, res := range results {
			for _, run := range res.Batch.Runs {
				if run.Failure {
					continue
				}
				if err := arbiter.ExportReturnsCSV(run, config.ExportDir); err != nil {
					logger.Errorf("Export failed for %v: %v\n", run.ID, err)
				}
			}
		}
	}
	if *logResults {
		for _, res := range results {
			if err := arbiter.LogBatchResult(res.Name, res.Batch); err != nil {
				logger.Errorf("Result logging failed for %v: %v\n", res.Name, err)
			}
		}
	}
}
