// Package pipeline loads and cleans raw flight data for training.
package pipeline

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
	"go.uber.org/zap"

	"flightdelay/ml"
)

// flightRow mirrors one line of the flights CSV.
type flightRow struct {
	ScheduledAt string `csv:"Fecha-I"`
	ActualAt    string `csv:"Fecha-O"`
	Opera       string `csv:"OPERA"`
	TipoVuelo   string `csv:"TIPOVUELO"`
	Mes         int    `csv:"MES"`
}

// IngestionStats reports what the cleaning pass did.
type IngestionStats struct {
	Rows    int `json:"rows"`
	Kept    int `json:"kept"`
	Dropped int `json:"dropped"`
}

// LoadFlights reads the training CSV and drops rows missing any field the
// encoder or the label deriver needs. Rows with present-but-malformed
// timestamps survive here; label derivation decides their fate.
func LoadFlights(path string) ([]ml.TrainingRecord, IngestionStats, error) {
	var stats IngestionStats

	file, err := os.Open(path)
	if err != nil {
		return nil, stats, err
	}
	defer file.Close()

	var rows []*flightRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, stats, fmt.Errorf("parse %s: %w", path, err)
	}
	stats.Rows = len(rows)

	records := make([]ml.TrainingRecord, 0, len(rows))
	for _, row := range rows {
		if row.Opera == "" || row.TipoVuelo == "" || row.Mes == 0 ||
			row.ScheduledAt == "" || row.ActualAt == "" {
			stats.Dropped++
			continue
		}
		records = append(records, ml.TrainingRecord{
			FlightRecord: ml.FlightRecord{Opera: row.Opera, Mes: row.Mes, TipoVuelo: row.TipoVuelo},
			ScheduledAt:  row.ScheduledAt,
			ActualAt:     row.ActualAt,
		})
	}
	stats.Kept = len(records)

	if stats.Dropped > 0 {
		zap.L().Warn("dropped incomplete flight rows",
			zap.String("path", path),
			zap.Int("dropped", stats.Dropped),
			zap.Int("kept", stats.Kept))
	}
	return records, stats, nil
}
