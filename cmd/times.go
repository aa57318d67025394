package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atacama-sky/goes-abi-cli/internal/abi"
	"github.com/atacama-sky/goes-abi-cli/internal/acquisition"
	"github.com/atacama-sky/goes-abi-cli/internal/utils"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
)

var timeLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"200601021504",
	time.RFC3339,
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, strings.TrimSpace(s), time.UTC); err == nil {
			return t.UTC().Truncate(time.Minute), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time %q, use YYYY-MM-DDTHH:MM", s)
}

// timeFlags selects the scan start times a command works on.
type timeFlags struct {
	times  []string
	start  string
	end    string
	step   time.Duration
	latest bool
}

func (f *timeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.times, "time", nil, "scan start time(s), YYYY-MM-DDTHH:MM UTC")
	cmd.Flags().StringVar(&f.start, "start", "", "first scan start of a range")
	cmd.Flags().StringVar(&f.end, "end", "", "last scan start of a range (inclusive)")
	cmd.Flags().DurationVar(&f.step, "step", 10*time.Minute, "interval between scans of a range")
	cmd.Flags().BoolVar(&f.latest, "latest", false, "use the newest scan that should be in the bucket")
	cmd.MarkFlagsMutuallyExclusive("time", "start", "latest")
	cmd.MarkFlagsRequiredTogether("start", "end")
}

// resolve returns the selected times in ascending order.
func (f *timeFlags) resolve(clock clockwork.Clock, product abi.Product) ([]time.Time, error) {
	switch {
	case f.latest:
		return []time.Time{acquisition.LatestAvailable(clock, product)}, nil
	case f.start != "":
		start, err := parseTime(f.start)
		if err != nil {
			return nil, err
		}
		end, err := parseTime(f.end)
		if err != nil {
			return nil, err
		}
		return timeRange(start, end, f.step)
	case len(f.times) > 0:
		out := make([]time.Time, 0, len(f.times))
		for _, s := range f.times {
			t, err := parseTime(s)
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		}
		return utils.Dedupe(out), nil
	}
	return nil, fmt.Errorf("no time selected, use --time, --start/--end or --latest")
}

func timeRange(start, end time.Time, step time.Duration) ([]time.Time, error) {
	if step < time.Minute {
		return nil, fmt.Errorf("step %s is shorter than a minute", step)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end %s is before start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return utils.TimeRange(start, end, step), nil
}

func validateBands(bands []int) error {
	if len(bands) == 0 {
		return fmt.Errorf("no band selected")
	}
	for _, b := range bands {
		if _, err := abi.Band(b); err != nil {
			return err
		}
	}
	return nil
}

// parsePair reads a band combination such as "13-7" or "13,07".
func parsePair(s string) ([2]int, error) {
	a, b, ok := strings.Cut(s, "-")
	if !ok {
		a, b, ok = strings.Cut(s, ",")
	}
	if !ok {
		return [2]int{}, fmt.Errorf("band pair %q, want A-B", s)
	}
	var pair [2]int
	for i, part := range []string{a, b} {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return [2]int{}, fmt.Errorf("band pair %q: %w", s, err)
		}
		if _, err := abi.Band(n); err != nil {
			return [2]int{}, err
		}
		pair[i] = n
	}
	return pair, nil
}
