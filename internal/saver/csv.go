package saver

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/guttosm/tickpulse/internal/domain/models"
)

var barHeader = []string{"Start", "End", "Open", "High", "Low", "Close", "Volume"}

// CSVSaver writes bars with header Start,End,Open,High,Low,Close,Volume.
type CSVSaver struct{}

func (CSVSaver) Extension() string { return "csv" }

func (CSVSaver) Save(bars []models.Bar, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(barHeader); err != nil {
		return err
	}
	for _, b := range bars {
		if err := w.Write([]string{
			b.Start.Format(models.TimestampLayout),
			b.End.Format(models.TimestampLayout),
			floatStr(b.Open),
			floatStr(b.High),
			floatStr(b.Low),
			floatStr(b.Close),
			strconv.FormatInt(b.Volume, 10),
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func floatStr(f float64) string { return models.FormatPrice(f) }
