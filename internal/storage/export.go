package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	Run     RunMetadata          `json:"run"`
	History map[string][]float64 `json:"history,omitempty"`
}

func ExportJSON(path string, meta RunMetadata, history map[string][]float64) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return writeJSON(file, meta, history)
}

func ExportJSONStdout(meta RunMetadata, history map[string][]float64) error {
	return writeJSON(os.Stdout, meta, history)
}

func writeJSON(w io.Writer, meta RunMetadata, history map[string][]float64) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ExportData{Run: meta, History: history})
}
