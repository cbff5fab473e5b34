// Package data loads price history into PriceSeries values. Database
// connections and file parsing live here, outside the engine.
package data

import (
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/tantralabs/arbiter/models"
	"github.com/tantralabs/arbiter/utils"
)

const (
	defaultHost   = "localhost"
	defaultPort   = 5432
	defaultUser   = "arbiteruser"
	defaultDBName = "arbiter"
)

type candleRow struct {
	Timestamp int64   `db:"timestamp"`
	Close     float64 `db:"close"`
}

// Credentials resolves database credentials: the `ARBITER_DB_SECRET` env
// variable names an AWS secret (or local json file when cloud is false),
// otherwise the local defaults apply.
func Credentials(cloud bool) models.Secret {
	secret := models.Secret{Host: defaultHost, Port: defaultPort, User: defaultUser, DBName: defaultDBName}
	if name := os.Getenv("ARBITER_DB_SECRET"); name != "" {
		loaded := utils.LoadSecret(name, cloud)
		if loaded.Host != "" {
			secret = loaded
		}
	}
	return secret
}

// GetPriceSeries fetches daily closes for each symbol from the candles
// database and pivots them into one dense PriceSeries. All symbols must
// cover exactly the same dates; a gap in any symbol is a data error.
func GetPriceSeries(name string, symbols []string, exchange string, start time.Time, end time.Time, secret models.Secret) (*models.PriceSeries, error) {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		secret.Host, secret.Port, secret.User, secret.Password, secret.DBName)
	db, err := sqlx.Open("postgres", psqlInfo)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	series := &models.PriceSeries{Name: name, Assets: symbols}
	for j, symbol := range symbols {
		rows := []candleRow{}
		cmd := `select timestamp, close from candles
			where symbol = $1 and exchange = $2 and interval = '1d'
			and timestamp >= $3 and timestamp <= $4 order by timestamp`
		err = db.Select(&rows, cmd, symbol, exchange, start.Unix()*1000, end.Unix()*1000)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("%w: no data for %v %v between %v and %v",
				models.ErrData, exchange, symbol, start.Format("2006-01-02"), end.Format("2006-01-02"))
		}
		if j == 0 {
			series.Dates = make([]time.Time, len(rows))
			series.Close = make([][]float64, len(rows))
			for i, row := range rows {
				series.Dates[i] = time.UnixMilli(row.Timestamp).UTC()
				series.Close[i] = make([]float64, len(symbols))
				series.Close[i][0] = row.Close
			}
			continue
		}
		if len(rows) != len(series.Dates) {
			return nil, fmt.Errorf("%w: %v has %d rows, %v has %d; datasets must be dense and aligned",
				models.ErrData, symbol, len(rows), symbols[0], len(series.Dates))
		}
		for i, row := range rows {
			if !time.UnixMilli(row.Timestamp).UTC().Equal(series.Dates[i]) {
				return nil, fmt.Errorf("%w: date mismatch for %v at row %d", models.ErrData, symbol, i)
			}
			series.Close[i][j] = row.Close
		}
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}
	return series, nil
}
