package data

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tantralabs/arbiter/models"
)

const sampleCSV = `date,AAA,BBB
2020-01-01,100,50
2020-01-02,110,45
2020-01-03,121,54
`

func writeCSV(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeCSV(t, t.TempDir(), "sample.csv", sampleCSV)
	series, err := LoadCSV(path)
	if err != nil {
		t.Fatal(err)
	}
	if series.Name != "sample" {
		t.Error("dataset name =", series.Name)
	}
	if series.NumRows() != 3 || series.NumAssets() != 2 {
		t.Fatal("shape =", series.NumRows(), "x", series.NumAssets())
	}
	if series.Assets[0] != "AAA" || series.Close[1][1] != 45 {
		t.Error("unexpected contents")
	}
	if !series.Dates[0].Before(series.Dates[2]) {
		t.Error("dates must be increasing")
	}
}

func TestLoadCSVRejectsBadInput(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadCSV(writeCSV(t, dir, "header.csv", "AAA,BBB\n1,2\n")); !errors.Is(err, models.ErrData) {
		t.Error("missing date column should be a data error, got", err)
	}
	if _, err := LoadCSV(writeCSV(t, dir, "cell.csv", "date,AAA\n2020-01-01,oops\n2020-01-02,2\n")); !errors.Is(err, models.ErrData) {
		t.Error("non-numeric close should be a data error, got", err)
	}
	if _, err := LoadCSV(writeCSV(t, dir, "empty.csv", "date,AAA\n")); !errors.Is(err, models.ErrData) {
		t.Error("empty table should be a data error, got", err)
	}
}

func TestLoadCSVDir(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "b.csv", sampleCSV)
	writeCSV(t, dir, "a.csv", sampleCSV)
	writeCSV(t, dir, "readme.md", "ignore me")

	datasets, err := LoadCSVDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(datasets) != 2 || datasets[0].Name != "a" || datasets[1].Name != "b" {
		t.Error("datasets must load in file-name order, got", datasets)
	}

	if _, err := LoadCSVDir(t.TempDir()); !errors.Is(err, models.ErrData) {
		t.Error("empty dataset dir should be a data error, got", err)
	}
}
