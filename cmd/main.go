package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/airbusgeo/godal"
	"github.com/atacama-sky/goes-abi-cli/internal/notification"
	"github.com/atacama-sky/goes-abi-cli/internal/observability"
	"github.com/atacama-sky/goes-abi-cli/internal/properties"
	"github.com/common-nighthawk/go-figure"
	bannercolor "github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
)

// app is the state shared by all commands, set up before any of them runs.
var app struct {
	props   *properties.Properties
	log     *slog.Logger
	metrics *observability.Metrics
	discord *notification.Discord
	clock   clockwork.Clock
	started time.Time
}

var (
	quiet    bool
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "goes-abi",
	Short: "Download and plot GOES-16 ABI cloud and moisture imagery",
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		app.started = time.Now()
		if !quiet {
			printBanner()
		}
		// a missing .env is fine, the environment may already be set
		_ = godotenv.Load()

		props, err := properties.Load()
		if err != nil {
			return &configError{err}
		}
		if logLevel != "" {
			props.LogLevel = logLevel
		}
		app.props = props
		app.log = observability.NewLogger(os.Stderr, props.LogLevel, props.LogFormat)
		slog.SetDefault(app.log)
		app.metrics = observability.NewMetrics()
		app.discord = notification.NewDiscord(props.DiscordErrorNotificationUrl, props.DiscordSuccessNotificationUrl)
		app.clock = clockwork.NewRealClock()

		godal.RegisterAll()
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, _ []string) {
		if err := app.metrics.WriteTextfile(app.props.MetricsFile); err != nil {
			app.log.Warn("failed to write metrics", "path", app.props.MetricsFile, "error", err)
		}
		app.log.Debug("command finished", "command", cmd.Name(), "took", formatElapsed(time.Since(app.started)))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "do not print the banner")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &configError{err}
	})
	rootCmd.AddCommand(downloadCmd, plotCmd, domainsCmd, animateCmd, latestCmd)
}

func printBanner() {
	figure1 := figure.NewFigure("GOES", "isometric1", true)
	figure2 := figure.NewFigure("ABI", "isometric1", true)
	bannercolor.Cyan(figure1.String())
	bannercolor.Cyan(figure2.String())
	fmt.Println()
}

// configError marks errors in flags or settings. They exit with status 1, everything
// else with status 2.
type configError struct {
	err error
}

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ce *configError
	if errors.As(err, &ce) {
		return 1
	}
	return 2
}

// formatElapsed prints a run time as seconds, minutes or hours depending on its length.
func formatElapsed(d time.Duration) string {
	s := d.Seconds()
	switch {
	case s < 60:
		return fmt.Sprintf("%.1fs", s)
	case s <= 3600:
		return fmt.Sprintf("%dmin%ds", int(s)/60, int(s)%60)
	default:
		return fmt.Sprintf("%dh%dmin", int(s)/3600, int(s)%3600/60)
	}
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			bannercolor.Red("\nPANIC: %v", r)
			bannercolor.Red("Exiting...")

			msg := fmt.Sprintf("goes-abi panic:\n\n%v\n\nStack trace:\n%s", r, debug.Stack())
			if err := app.discord.SendError(context.Background(), msg); err != nil {
				bannercolor.Red("Failed to send notification: %s", err)
			}
			os.Exit(2)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		bannercolor.Red("\nError: %s", err)
		os.Exit(exitCode(err))
	}
}
