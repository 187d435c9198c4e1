package saver

import (
	"github.com/parquet-go/parquet-go"

	"github.com/guttosm/tickpulse/internal/domain/models"
)

// parquetBar is the on-disk row; interval bounds are Unix microseconds.
type parquetBar struct {
	Start  int64   `parquet:"start"`
	End    int64   `parquet:"end"`
	Open   float64 `parquet:"open"`
	High   float64 `parquet:"high"`
	Low    float64 `parquet:"low"`
	Close  float64 `parquet:"close"`
	Volume int64   `parquet:"volume"`
}

// ParquetSaver writes bars as a Parquet file.
type ParquetSaver struct{}

func (ParquetSaver) Extension() string { return "parquet" }

func (ParquetSaver) Save(bars []models.Bar, path string) error {
	rows := make([]parquetBar, len(bars))
	for i, b := range bars {
		rows[i] = parquetBar{
			Start:  b.Start.UnixMicro(),
			End:    b.End.UnixMicro(),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		}
	}
	return parquet.WriteFile(path, rows)
}
