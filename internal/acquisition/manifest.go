package acquisition

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
)

type ManifestRow struct {
	Timestamp string `csv:"timestamp"`
	Product   string `csv:"product"`
	Band      int    `csv:"band"`
	Region    string `csv:"region"`
	Path      string `csv:"path"`
	Attempts  int    `csv:"attempts"`
	Skipped   bool   `csv:"skipped"`
	Succeeded bool   `csv:"succeeded"`
	Error     string `csv:"error"`
}

func (b BatchResult) Manifest() []*ManifestRow {
	rows := make([]*ManifestRow, 0, len(b.Results))
	for _, r := range b.Results {
		row := &ManifestRow{
			Timestamp: r.Task.Timestamp.UTC().Format("2006-01-02T15:04Z"),
			Product:   string(r.Task.Product),
			Band:      r.Task.Band,
			Region:    string(r.Task.Region),
			Path:      r.Path,
			Attempts:  r.Attempts,
			Skipped:   r.Skipped,
			Succeeded: r.Succeeded(),
		}
		if r.Err != nil {
			row.Error = r.Err.Error()
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteManifest stores one CSV line per task.
func WriteManifest(path string, b BatchResult) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create manifest: %w", err)
	}
	defer file.Close()

	rows := b.Manifest()
	if err := gocsv.MarshalFile(&rows, file); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) ([]*ManifestRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var rows []*ManifestRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return rows, nil
}
