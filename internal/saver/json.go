package saver

import (
	"encoding/json"
	"os"

	"github.com/guttosm/tickpulse/internal/domain/models"
)

// JSONSaver writes bars as one indented JSON array.
type JSONSaver struct{}

func (JSONSaver) Extension() string { return "json" }

func (JSONSaver) Save(bars []models.Bar, path string) error {
	if bars == nil {
		bars = []models.Bar{}
	}
	data, err := json.MarshalIndent(bars, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
