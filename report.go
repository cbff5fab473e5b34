package arbiter

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/structs"
	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	client "github.com/influxdata/influxdb1-client/v2"

	"github.com/tantralabs/arbiter/models"
	"github.com/tantralabs/arbiter/utils"
)

var currentRunUUID = uuid.New().String()

// PrintBacktest dumps one run's performance vector in key-value form.
func PrintBacktest(result models.BacktestResult) {
	if result.Failure {
		log.Printf("Backtest %v on %v FAILED: %v\n", result.ID, result.Dataset, strings.Join(result.Messages, "; "))
		return
	}
	kv := utils.CreateKeyValuePairs(structs.Map(result.Performance), true)
	log.Printf("Backtest %v on %v (%v): %s", result.ID, result.Dataset, result.CPUTime, kv)
}

// FormatLeaderboard renders the leaderboard as a fixed-width table, rows
// in rank order, columns = the four percentile scores plus the final
// score. Invalid entries render a dash in every score column.
func FormatLeaderboard(board *models.Leaderboard) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-4s %-24s %10s %10s %10s %10s %10s\n",
		"rank", "name", "sharpe", "drawdown", "cpu", "failure", "score")
	for i, e := range board.Entries {
		if !e.Valid {
			fmt.Fprintf(&b, "%-4d %-24s %10s %10s %10s %10s %10s\n", i+1, e.Name, "-", "-", "-", "-", "-")
			continue
		}
		fmt.Fprintf(&b, "%-4d %-24s %10.2f %10.2f %10.2f %10.2f %10.2f\n",
			i+1, e.Name, e.SharpeScore, e.DrawdownScore, e.CPUTimeScore, e.FailureScore, e.FinalScore)
	}
	return b.String()
}

type returnRow struct {
	Timestamp string  `csv:"timestamp"`
	Return    float64 `csv:"return"`
	Wealth    float64 `csv:"wealth"`
}

// ExportReturnsCSV writes a successful run's return and wealth series to
// <dir>/<dataset>_<id>.csv.
func ExportReturnsCSV(result models.BacktestResult, dir string) error {
	if result.Failure || result.Returns == nil {
		return fmt.Errorf("backtest %v has no return series to export", result.ID)
	}
	rows := make([]returnRow, len(result.Returns.Returns))
	for i := range rows {
		rows[i] = returnRow{
			Timestamp: result.Returns.Dates[i].Format("2006-01-02"),
			Return:    result.Returns.Returns[i],
			Wealth:    result.Wealth[i],
		}
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", result.Dataset, result.ID))
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, os.ModePerm)
	if err != nil {
		return err
	}
	defer file.Close()
	return gocsv.MarshalFile(&rows, file)
}

// LogBatchResult writes a submission's batch summary to the backtest
// database. Requires the `ARBITER_BACKTEST_DB_URL` env variable; user and
// password come from `ARBITER_BACKTEST_DB_USER`/`_PASSWORD`.
func LogBatchResult(name string, batch models.BatchResult) error {
	influxURL := os.Getenv("ARBITER_BACKTEST_DB_URL")
	if influxURL == "" {
		return fmt.Errorf("you need to set the `ARBITER_BACKTEST_DB_URL` env variable")
	}

	influx, err := client.NewHTTPClient(client.HTTPConfig{
		Addr:     influxURL,
		Username: os.Getenv("ARBITER_BACKTEST_DB_USER"),
		Password: os.Getenv("ARBITER_BACKTEST_DB_PASSWORD"),
		Timeout:  time.Millisecond * 1000 * 10,
	})
	if err != nil {
		return err
	}
	defer influx.Close()

	bp, _ := client.NewBatchPoints(client.BatchPointsConfig{
		Database:  "backtests",
		Precision: "us",
	})

	tags := map[string]string{
		"submission": name,
		"run_id":     currentRunUUID,
	}
	fields := map[string]interface{}{
		"failure_ratio": batch.FailureRatio,
		"cpu_time_avg":  batch.CPUTimeAverage,
	}
	if !models.IsUnavailable(batch.Summary.Sharpe) {
		for i, field := range models.PerformanceFields() {
			fields[field] = batch.Summary.Vector()[i]
		}
	}
	pt, err := client.NewPoint("result", tags, fields, time.Now())
	if err != nil {
		return err
	}
	bp.AddPoint(pt)
	return client.Client.Write(influx, bp)
}
