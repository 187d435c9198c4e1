package cleaning

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/guttosm/tickpulse/internal/domain/models"
)

// WriteTicks writes ticks to path as a cleaned tick file, header first.
// An empty slice still produces a header-only file.
func WriteTicks(path string, ticks []models.Tick) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close: %w", cerr)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(tickHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, t := range ticks {
		if err := w.Write(formatTick(t)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}
