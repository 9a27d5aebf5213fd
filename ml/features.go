package ml

import "strconv"

// FlightRecord holds the categorical attributes used for prediction.
type FlightRecord struct {
	Opera     string
	Mes       int
	TipoVuelo string
}

// TrainingRecord adds the departure timestamps needed for label derivation.
// Both are fixed-format strings as they appear in the source data.
type TrainingRecord struct {
	FlightRecord
	ScheduledAt string // Fecha-I
	ActualAt    string // Fecha-O
}

// TargetColumns returns the fixed feature schema, in scoring order.
// Every encoded matrix has exactly these columns regardless of which
// categories appear in the batch.
func TargetColumns() []string {
	return []string{
		"OPERA_Latin American Wings",
		"MES_7",
		"MES_10",
		"OPERA_Grupo LATAM",
		"MES_12",
		"TIPOVUELO_I",
		"MES_4",
		"MES_11",
		"OPERA_Sky Airline",
		"OPERA_Copa Air",
	}
}

// EncodeFeatures turns raw records into a fixed-width one-hot matrix.
// Encoding happens in two explicit phases: a dynamic one-hot over the
// categories observed in the batch, then a projection onto the fixed
// target schema. The projection is what keeps training and serving
// matrices identically shaped; categories outside the schema simply
// contribute zeros.
func EncodeFeatures(records []FlightRecord) [][]float64 {
	columns, wide := oneHotBatch(records)
	return projectColumns(columns, wide, TargetColumns())
}

func recordColumns(rec FlightRecord) [3]string {
	return [3]string{
		"OPERA_" + rec.Opera,
		"TIPOVUELO_" + rec.TipoVuelo,
		"MES_" + strconv.Itoa(rec.Mes),
	}
}

// oneHotBatch encodes each category group relative to the values present
// in the batch, so its width varies with the input.
func oneHotBatch(records []FlightRecord) ([]string, [][]float64) {
	columns := make([]string, 0)
	index := make(map[string]int)
	for _, rec := range records {
		for _, name := range recordColumns(rec) {
			if _, seen := index[name]; !seen {
				index[name] = len(columns)
				columns = append(columns, name)
			}
		}
	}

	wide := make([][]float64, len(records))
	for i, rec := range records {
		row := make([]float64, len(columns))
		for _, name := range recordColumns(rec) {
			row[index[name]] = 1
		}
		wide[i] = row
	}
	return columns, wide
}

// projectColumns reindexes a dynamically encoded matrix onto the target
// schema, zero-filling missing columns and dropping extras.
func projectColumns(have []string, wide [][]float64, want []string) [][]float64 {
	index := make(map[string]int, len(have))
	for i, name := range have {
		index[name] = i
	}

	out := make([][]float64, len(wide))
	for i, row := range wide {
		projected := make([]float64, len(want))
		for j, name := range want {
			if k, ok := index[name]; ok {
				projected[j] = row[k]
			}
		}
		out[i] = projected
	}
	return out
}
