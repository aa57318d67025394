package pipeline

import (
	"fmt"
	"io/fs"
	"time"
)

// MissingFileError is returned when no acquired file matches a requested band and time.
type MissingFileError struct {
	Dir     string
	Pattern string
	Band    int
	Time    time.Time
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("abi file not found: band %d at %s (pattern %s in %s)",
		e.Band, e.Time.UTC().Format("2006-01-02 15:04UTC"), e.Pattern, e.Dir)
}

func (e *MissingFileError) Unwrap() error { return fs.ErrNotExist }
