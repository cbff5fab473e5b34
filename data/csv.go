package data

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tantralabs/arbiter/models"
)

// LoadCSV reads a wide-format price table: header `date,ASSET1,ASSET2,...`
// then one row per trading date with ISO dates and close prices. The
// asset columns are dynamic, so this goes through encoding/csv rather
// than a struct-bound codec.
func LoadCSV(path string) (*models.PriceSeries, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v: %v", models.ErrData, path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: %v has no price rows", models.ErrData, path)
	}
	header := records[0]
	if len(header) < 2 || !strings.EqualFold(header[0], "date") {
		return nil, fmt.Errorf("%w: %v: first column must be `date` followed by asset columns", models.ErrData, path)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	series := &models.PriceSeries{Name: name, Assets: header[1:]}
	for i, record := range records[1:] {
		date, err := time.Parse("2006-01-02", record[0])
		if err != nil {
			return nil, fmt.Errorf("%w: %v row %d: %v", models.ErrData, path, i+1, err)
		}
		row := make([]float64, len(series.Assets))
		for j, cell := range record[1:] {
			row[j], err = strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %v row %d asset %v: %v", models.ErrData, path, i+1, series.Assets[j], err)
			}
		}
		series.Dates = append(series.Dates, date)
		series.Close = append(series.Close, row)
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}
	return series, nil
}

// LoadCSVDir loads every .csv file in dir as one dataset, sorted by file
// name for a stable dataset order.
func LoadCSVDir(dir string) ([]*models.PriceSeries, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no csv datasets in %v", models.ErrData, dir)
	}

	datasets := make([]*models.PriceSeries, 0, len(paths))
	for _, path := range paths {
		series, err := LoadCSV(path)
		if err != nil {
			return nil, err
		}
		datasets = append(datasets, series)
	}
	return datasets, nil
}
