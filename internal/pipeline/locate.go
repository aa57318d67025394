package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/atacama-sky/goes-abi-cli/internal/abi"
)

// Locate finds the acquired file for one band and scan start below dataDir. When more
// than one file matches, the last in name order wins.
func Locate(dataDir string, product abi.Product, region abi.Region, band int, t time.Time) (string, error) {
	dir := filepath.Join(dataDir, abi.BandDir(band))
	pattern := abi.LocalPattern(product, band, t, region)
	missing := &MissingFileError{Dir: dir, Pattern: pattern, Band: band, Time: t}

	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return "", missing
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ok, _ := abi.MatchLocal(pattern, e.Name()); ok {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", missing
	}
	sort.Strings(names)
	return filepath.Join(dir, names[len(names)-1]), nil
}
