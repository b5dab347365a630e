package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/quadsim/internal/dynamo"
)

type ExportData struct {
	Name    string             `json:"name"`
	Backend string             `json:"backend"`
	Dt      float64            `json:"dt"`
	Batch   int                `json:"batch"`
	Steps   int                `json:"steps"`
	Times   []float64          `json:"times"`
	States  [][]float64        `json:"states"`
	Actions [][]float64        `json:"actions"`
	Metrics map[string]float64 `json:"metrics"`
}

func ExportJSON(path string, name, backend string, dt float64, batch int, result *dynamo.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return exportJSON(file, name, backend, dt, batch, result)
}

func ExportJSONStdout(name, backend string, dt float64, batch int, result *dynamo.Result) error {
	return exportJSON(os.Stdout, name, backend, dt, batch, result)
}

func exportJSON(w io.Writer, name, backend string, dt float64, batch int, result *dynamo.Result) error {
	data := ExportData{
		Name:    name,
		Backend: backend,
		Dt:      dt,
		Batch:   batch,
		Steps:   len(result.Times),
		Times:   result.Times,
		States:  result.States,
		Actions: result.Actions,
		Metrics: result.Metrics,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
