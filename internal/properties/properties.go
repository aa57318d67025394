package properties

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Properties holds the runtime settings read from the environment. A .env file in the
// working directory is loaded first by the CLI.
type Properties struct {
	RootPath string

	S3Endpoint string
	S3Bucket   string
	S3Region   string
	S3UseSSL   bool

	MaxParallel     int
	DownloadRetries int
	RetryDelay      time.Duration
	SensingOffset   time.Duration

	LogLevel  string
	LogFormat string

	DiscordErrorNotificationUrl   string
	DiscordSuccessNotificationUrl string

	MetricsFile string
}

// ErrInvalidSetting reports an environment variable that could not be parsed.
type ErrInvalidSetting struct {
	Name  string
	Value string
	Err   error
}

func (e *ErrInvalidSetting) Error() string {
	return fmt.Sprintf("invalid %s=%q: %v", e.Name, e.Value, e.Err)
}

func (e *ErrInvalidSetting) Unwrap() error { return e.Err }

func Load() (*Properties, error) {
	p := &Properties{
		RootPath:                      envOrDefault("ROOT_PATH", "."),
		S3Endpoint:                    envOrDefault("S3_ENDPOINT", "s3.amazonaws.com"),
		S3Bucket:                      envOrDefault("S3_BUCKET", "noaa-goes16"),
		S3Region:                      envOrDefault("S3_REGION", "us-east-1"),
		LogLevel:                      envOrDefault("LOG_LEVEL", "info"),
		LogFormat:                     envOrDefault("LOG_FORMAT", "text"),
		DiscordErrorNotificationUrl:   os.Getenv("DISCORD_ERROR_NOTIFICATION_URL"),
		DiscordSuccessNotificationUrl: os.Getenv("DISCORD_SUCCESS_NOTIFICATION_URL"),
		MetricsFile:                   os.Getenv("METRICS_FILE"),
	}

	var err error
	if p.S3UseSSL, err = boolEnv("S3_USE_SSL", true); err != nil {
		return nil, err
	}
	if p.MaxParallel, err = positiveIntEnv("MAX_PARALLEL", 4); err != nil {
		return nil, err
	}
	if p.DownloadRetries, err = positiveIntEnv("DOWNLOAD_RETRIES", 3); err != nil {
		return nil, err
	}
	if p.RetryDelay, err = durationEnv("RETRY_DELAY", 2*time.Second); err != nil {
		return nil, err
	}
	if p.SensingOffset, err = durationEnv("SENSING_OFFSET", 7*time.Minute); err != nil {
		return nil, err
	}
	switch p.LogFormat {
	case "text", "json":
	default:
		return nil, &ErrInvalidSetting{Name: "LOG_FORMAT", Value: p.LogFormat, Err: fmt.Errorf("want text or json")}
	}
	return p, nil
}

// DataDir is where acquired files of one product family are stored.
func (p *Properties) DataDir(family string) string {
	return filepath.Join(p.RootPath, "data", "ABI", "GOES-16", family)
}

// ImageDir is where rendered images of one kind are written.
func (p *Properties) ImageDir(kind string) string {
	return filepath.Join(p.RootPath, "images", "GOES-16", kind)
}

// CacheDir holds bucket listing caches and similar bookkeeping.
func (p *Properties) CacheDir(sub string) string {
	return filepath.Join(p.RootPath, "data", "cache", sub)
}

func envOrDefault(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func positiveIntEnv(name string, def int) (int, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &ErrInvalidSetting{Name: name, Value: v, Err: err}
	}
	if n < 1 {
		return 0, &ErrInvalidSetting{Name: name, Value: v, Err: fmt.Errorf("must be at least 1")}
	}
	return n, nil
}

func durationEnv(name string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, &ErrInvalidSetting{Name: name, Value: v, Err: err}
	}
	if d < 0 {
		return 0, &ErrInvalidSetting{Name: name, Value: v, Err: fmt.Errorf("must not be negative")}
	}
	return d, nil
}

func boolEnv(name string, def bool) (bool, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, &ErrInvalidSetting{Name: name, Value: v, Err: err}
	}
	return b, nil
}
