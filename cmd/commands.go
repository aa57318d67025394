package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/atacama-sky/goes-abi-cli/internal/abi"
	"github.com/atacama-sky/goes-abi-cli/internal/acquisition"
	"github.com/atacama-sky/goes-abi-cli/internal/domain"
	"github.com/atacama-sky/goes-abi-cli/output"
	bannercolor "github.com/fatih/color"
	"github.com/spf13/cobra"
)

var domainsGeoJSON bool

var domainsCmd = &cobra.Command{
	Use:   "domains",
	Short: "List the map domains",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if domainsGeoJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(domain.FeatureCollection())
		}
		for _, name := range domain.Names() {
			d, _ := domain.Lookup(name)
			fmt.Fprintf(cmd.OutOrStdout(), "- %-24s center %6.1f, %6.1f  radius %5.0f km\n",
				name, d.CenterLat, d.CenterLon, d.Radius)
		}
		return nil
	},
}

var animateFlags struct {
	output string
	fps    int32
}

var animateCmd = &cobra.Command{
	Use:     "animate <image directory or images...>",
	Short:   "Assemble rendered PNG images into an MJPEG video",
	Example: `  goes-abi animate images/GOES-16/single_band/b13 --output b13.avi --fps 4`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := collectImages(args)
		if err != nil {
			return &configError{err}
		}
		out := animateFlags.output
		if out == "" {
			out = filepath.Join(app.props.ImageDir("animations"), "animation.avi")
		}
		app.log.Info("creating video", "frames", len(paths), "output", out, "fps", animateFlags.fps)
		if err := output.CreateVideoFromImages(paths, out, animateFlags.fps); err != nil {
			return err
		}
		bannercolor.Green("Video created: %s", out)
		return nil
	},
}

func init() {
	domainsCmd.Flags().BoolVar(&domainsGeoJSON, "geojson", false, "print the domain extents as a GeoJSON feature collection")
	animateCmd.Flags().StringVarP(&animateFlags.output, "output", "o", "", "video path (.avi)")
	animateCmd.Flags().Int32Var(&animateFlags.fps, "fps", 2, "frames per second")
}

// collectImages expands directories to the PNG files they contain. Images are ordered by
// name, which for rendered images is chronological per plot and domain.
func collectImages(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(arg, "*.png"))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no PNG images in %v", args)
	}
	sort.Strings(paths)
	return paths, nil
}

var latestProduct string

var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Print the newest scan start expected in the bucket",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		product, err := abi.ParseProduct(latestProduct)
		if err != nil {
			return &configError{err}
		}
		now := app.clock.Now().UTC()
		latest := acquisition.LatestAvailable(app.clock, product)
		fmt.Fprintf(cmd.OutOrStdout(), "now:    %s\nlatest: %s\n", now.Format("2006-01-02 15:04:05"), latest.Format("2006-01-02T15:04"))
		return nil
	},
}

func init() {
	latestCmd.Flags().StringVar(&latestProduct, "product", string(abi.FullDisk), "L2-CMIPF, L2-CMIPM1 or L2-CMIPM2")
}
