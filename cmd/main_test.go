package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/atacama-sky/goes-abi-cli/internal/abi"
	"github.com/atacama-sky/goes-abi-cli/internal/pipeline"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime(t *testing.T) {
	want := time.Date(2021, 4, 25, 17, 0, 0, 0, time.UTC)
	for _, s := range []string{"2021-04-25T17:00", "2021-04-25 17:00", "202104251700", "2021-04-25T17:00:42Z", "2021-04-25T14:00:00-03:00"} {
		got, err := parseTime(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got, s)
	}

	_, err := parseTime("25.04.2021")
	assert.Error(t, err)
}

func TestTimeFlags_Range(t *testing.T) {
	f := timeFlags{start: "2021-04-25T17:00", end: "2021-04-25T17:30", step: 10 * time.Minute}
	got, err := f.resolve(clockwork.NewFakeClock(), abi.FullDisk)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, time.Date(2021, 4, 25, 17, 30, 0, 0, time.UTC), got[3])

	f.end = "2021-04-25T16:00"
	_, err = f.resolve(clockwork.NewFakeClock(), abi.FullDisk)
	assert.ErrorContains(t, err, "before start")

	f.end, f.step = "2021-04-25T17:30", 30*time.Second
	_, err = f.resolve(clockwork.NewFakeClock(), abi.FullDisk)
	assert.ErrorContains(t, err, "shorter than a minute")
}

func TestTimeFlags_ListIsSortedAndDeduped(t *testing.T) {
	f := timeFlags{times: []string{"2021-04-25T17:10", "2021-04-25T17:00", "2021-04-25T17:10"}}
	got, err := f.resolve(clockwork.NewFakeClock(), abi.FullDisk)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		time.Date(2021, 4, 25, 17, 0, 0, 0, time.UTC),
		time.Date(2021, 4, 25, 17, 10, 0, 0, time.UTC),
	}, got)
}

func TestTimeFlags_Latest(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2021, 4, 25, 17, 43, 30, 0, time.UTC))
	f := timeFlags{latest: true}

	got, err := f.resolve(clock, abi.FullDisk)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{time.Date(2021, 4, 25, 17, 20, 0, 0, time.UTC)}, got)

	got, err = f.resolve(clock, abi.MesoscaleSector1)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{time.Date(2021, 4, 25, 17, 41, 0, 0, time.UTC)}, got)
}

func TestTimeFlags_NothingSelected(t *testing.T) {
	_, err := (&timeFlags{}).resolve(clockwork.NewFakeClock(), abi.FullDisk)
	assert.Error(t, err)
}

func TestParsePair(t *testing.T) {
	pair, err := parsePair("13-7")
	require.NoError(t, err)
	assert.Equal(t, [2]int{13, 7}, pair)

	pair, err = parsePair("15,11")
	require.NoError(t, err)
	assert.Equal(t, [2]int{15, 11}, pair)

	_, err = parsePair("13")
	assert.Error(t, err)

	_, err = parsePair("13-17")
	var bandErr *abi.UnknownBandError
	assert.ErrorAs(t, err, &bandErr)
}

func TestBandCombinations(t *testing.T) {
	got, err := bandCombinations(pipeline.SingleBand, []int{7, 13}, nil)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{7}, {13}}, got)

	got, err = bandCombinations(pipeline.BandDifference, nil, []string{"13-7", "15-11"})
	require.NoError(t, err)
	assert.Equal(t, [][]int{{13, 7}, {15, 11}}, got)

	got, err = bandCombinations(pipeline.NDVI, []int{7}, []string{"13-7"})
	require.NoError(t, err)
	assert.Equal(t, [][]int{{2, 3}}, got)

	_, err = bandCombinations(pipeline.SingleBand, []int{0}, nil)
	assert.Error(t, err)
	_, err = bandCombinations(pipeline.BandDifference, nil, nil)
	assert.Error(t, err)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 1, exitCode(&configError{errors.New("bad flag")}))
	assert.Equal(t, 1, exitCode(fmt.Errorf("wrapped: %w", &configError{errors.New("bad flag")})))
	assert.Equal(t, 2, exitCode(errors.New("download failed")))
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "12.3s", formatElapsed(12300*time.Millisecond))
	assert.Equal(t, "2min5s", formatElapsed(125*time.Second))
	assert.Equal(t, "1h30min", formatElapsed(90*time.Minute+20*time.Second))
}

func TestCollectImages(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b_1710.png", "a_1700.png", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	extra := filepath.Join(t.TempDir(), "z.png")
	require.NoError(t, os.WriteFile(extra, nil, 0o644))

	got, err := collectImages([]string{dir, extra})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, filepath.Join(dir, "a_1700.png"), got[0])
	assert.Equal(t, filepath.Join(dir, "b_1710.png"), got[1])

	_, err = collectImages([]string{t.TempDir()})
	assert.Error(t, err)
}
