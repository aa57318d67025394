package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/atacama-sky/goes-abi-cli/internal/abi"
	"github.com/atacama-sky/goes-abi-cli/internal/acquisition"
	"github.com/atacama-sky/goes-abi-cli/internal/cache"
	bannercolor "github.com/fatih/color"
	"github.com/spf13/cobra"
)

// listingMaxAge bounds how long a cached bucket listing is trusted.
const listingMaxAge = 30 * 24 * time.Hour

var downloadFlags struct {
	product      string
	region       string
	bands        []int
	maxParallel  int
	retries      int
	skipExisting bool
	manifest     string
	times        timeFlags
}

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Fetch CMIP files from the NOAA bucket, cutting full disk scans to a region",
	Example: `  goes-abi download --product L2-CMIPF --region atacama --bands 7,13 --time 2021-04-25T17:00
  goes-abi download --product meso1 --bands 2,3 --start 2021-04-25T17:00 --end 2021-04-25T17:10 --step 1m`,
	Args: cobra.NoArgs,
	RunE: runDownload,
}

func init() {
	f := downloadCmd.Flags()
	f.StringVar(&downloadFlags.product, "product", string(abi.FullDisk), "L2-CMIPF, L2-CMIPM1 or L2-CMIPM2")
	f.StringVar(&downloadFlags.region, "region", string(abi.RegionAtacama), "region full disk files are cut to (fulldisk, ssa, atacama, atacama_squared)")
	f.IntSliceVar(&downloadFlags.bands, "bands", []int{7, 13}, "band numbers 1-16")
	f.IntVar(&downloadFlags.maxParallel, "max-parallel", 0, "parallel downloads, overrides MAX_PARALLEL")
	f.IntVar(&downloadFlags.retries, "retries", 0, "attempts per file, overrides DOWNLOAD_RETRIES")
	f.BoolVar(&downloadFlags.skipExisting, "skip-existing", false, "do not fetch files already present locally")
	f.StringVar(&downloadFlags.manifest, "manifest", "", "manifest CSV path (default under the product data directory)")
	downloadFlags.times.register(downloadCmd)
}

func runDownload(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	props := app.props

	product, err := abi.ParseProduct(downloadFlags.product)
	if err != nil {
		return &configError{err}
	}
	region, err := abi.ParseRegion(downloadFlags.region)
	if err != nil {
		return &configError{err}
	}
	if err := validateBands(downloadFlags.bands); err != nil {
		return &configError{err}
	}
	times, err := downloadFlags.times.resolve(app.clock, product)
	if err != nil {
		return &configError{err}
	}
	maxParallel := props.MaxParallel
	if downloadFlags.maxParallel > 0 {
		maxParallel = downloadFlags.maxParallel
	}
	retries := props.DownloadRetries
	if downloadFlags.retries > 0 {
		retries = downloadFlags.retries
	}

	bucket, err := acquisition.NewMinIOBucket(acquisition.BucketConfig{
		Endpoint: props.S3Endpoint,
		Bucket:   props.S3Bucket,
		Region:   props.S3Region,
		UseSSL:   props.S3UseSSL,
	})
	if err != nil {
		return &configError{err}
	}
	listings := cache.NewFileCache[[]string](props.CacheDir("listings"), listingMaxAge, app.clock)
	lister := acquisition.NewLister(bucket, listings, app.clock, app.metrics)
	fetcher := acquisition.NewFetcher(bucket, lister, acquisition.Config{
		DataDir:      props.DataDir,
		Retries:      retries,
		RetryDelay:   props.RetryDelay,
		SkipExisting: downloadFlags.skipExisting,
	},
		acquisition.WithClock(app.clock),
		acquisition.WithMetrics(app.metrics),
		acquisition.WithLogger(app.log),
	)

	tasks := acquisition.Tasks(product, region, downloadFlags.bands, times)
	app.log.Info("starting download", "product", product, "region", region,
		"bands", downloadFlags.bands, "times", len(times), "tasks", len(tasks), "max_parallel", maxParallel)

	result := fetcher.Batch(ctx, tasks, maxParallel)

	manifestPath := downloadFlags.manifest
	if manifestPath == "" {
		manifestPath = filepath.Join(props.DataDir(product.Family()), "manifests",
			fmt.Sprintf("download_%s.csv", app.clock.Now().UTC().Format("20060102T150405Z")))
	}
	if err := os.MkdirAll(filepath.Dir(manifestPath), os.ModePerm); err != nil {
		return err
	}
	if err := acquisition.WriteManifest(manifestPath, result); err != nil {
		app.log.Warn("manifest not written", "error", err)
	} else {
		app.log.Info("manifest written", "path", manifestPath)
	}

	failed := result.Failed()
	failures := make([]string, 0, len(failed))
	for _, r := range failed {
		if r.Err != nil {
			failures = append(failures, r.Err.Error())
		} else {
			failures = append(failures, fmt.Sprintf("%s: unexpected file %s", r.Task, r.Path))
		}
	}
	title := fmt.Sprintf("goes-abi download %s %s", product, region)
	if err := app.discord.SendBatchSummary(ctx, title, len(tasks), failures); err != nil {
		app.log.Warn("failed to send notification", "error", err)
	}

	if !result.AllSucceeded() {
		fmt.Println()
		bannercolor.Red("Download failed for %d of %d files:", len(failed), len(tasks))
		for _, line := range failures {
			bannercolor.Red("- %s", line)
		}
		return result.Err()
	}
	fmt.Println()
	bannercolor.Green("Download successful! %d files in %s", len(tasks), props.DataDir(product.Family()))
	return nil
}
