// Package config loads server configuration from a .env file (via
// joho/godotenv) layered under command-line flags, mirroring the teacher's
// flag-first CLI with an added file layer for deployment environments that
// prefer env files over long command lines.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Options holds every tunable the gameserver needs at startup.
type Options struct {
	ListenAddr string
	LogLevel   string

	// Session lifetime controls, consumed by internal/session.
	SessionDuration   time.Duration
	SessionLifetimeCap time.Duration
	SweepInterval     time.Duration

	// Command argument-schema codec behavior, consumed by internal/command.
	IgnoreUnknownKeys bool
	LenientValidation bool

	// Event hook wiring, consumed by internal/events.
	HookStdioFormat string
	HookConcurrency int

	// Metrics/health endpoint.
	MetricsAddr string

	EnvFile string
}

// Load parses args (os.Args[1:] in production) layered on top of any .env
// file named by -env-file (default ".env", missing file is not an error).
func Load(args []string) (*Options, error) {
	opts := &Options{}

	// A first pass finds -env-file and loads the file before the flag
	// defaults below read GAMESERVER_* through envOr, so file values act
	// as if set in the process env.
	for i, a := range args {
		if a == "-env-file" && i+1 < len(args) {
			_ = godotenv.Load(args[i+1])
		}
	}
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}

	fs := flag.NewFlagSet("gameserver", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	fs.StringVar(&opts.EnvFile, "env-file", envOr("GAMESERVER_ENV_FILE", ".env"), "optional .env file to load before flag defaults")
	fs.StringVar(&opts.ListenAddr, "listen", envOr("GAMESERVER_LISTEN_ADDR", ":9977"), "TCP listen address")
	fs.StringVar(&opts.LogLevel, "log-level", envOr("GAMESERVER_LOG_LEVEL", "info"), "log level: verbose|debug|info|warn|error")
	fs.DurationVar(&opts.SessionDuration, "session-duration", envDurationOr("GAMESERVER_SESSION_DURATION", 30*time.Minute), "per-session inactivity duration before expiry")
	fs.DurationVar(&opts.SessionLifetimeCap, "session-lifetime-cap", envDurationOr("GAMESERVER_SESSION_LIFETIME_CAP", 12*time.Hour), "absolute session lifetime regardless of refreshes")
	fs.DurationVar(&opts.SweepInterval, "sweep-interval", envDurationOr("GAMESERVER_SWEEP_INTERVAL", time.Minute), "interval between session-expiry sweeps")
	fs.BoolVar(&opts.IgnoreUnknownKeys, "ignore-unknown-keys", envBoolOr("GAMESERVER_IGNORE_UNKNOWN_KEYS", false), "tolerate unknown fields in command argument payloads")
	fs.BoolVar(&opts.LenientValidation, "lenient-validation", envBoolOr("GAMESERVER_LENIENT_VALIDATION", false), "accept undeclared fields when decoding command arguments into their struct")
	fs.StringVar(&opts.HookStdioFormat, "hook-stdio-format", envOr("GAMESERVER_HOOK_STDIO_FORMAT", ""), "structured stdio event output: json|env|\"\" (disabled)")
	fs.IntVar(&opts.HookConcurrency, "hook-concurrency", envIntOr("GAMESERVER_HOOK_CONCURRENCY", 10), "maximum concurrent hook executions")
	fs.StringVar(&opts.MetricsAddr, "metrics-addr", envOr("GAMESERVER_METRICS_ADDR", ":9978"), "listen address for the Prometheus /metrics endpoint")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := opts.validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

func (o *Options) validate() error {
	switch o.LogLevel {
	case "verbose", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log-level %q", o.LogLevel)
	}
	if o.SessionDuration <= 0 {
		return errors.New("session-duration must be positive")
	}
	if o.SessionLifetimeCap < o.SessionDuration {
		return errors.New("session-lifetime-cap must be >= session-duration")
	}
	if o.HookStdioFormat != "" && o.HookStdioFormat != "json" && o.HookStdioFormat != "env" {
		return fmt.Errorf("invalid hook-stdio-format %q", o.HookStdioFormat)
	}
	if o.HookConcurrency < 1 || o.HookConcurrency > 1000 {
		return errors.New("hook-concurrency must be between 1 and 1000")
	}
	return nil
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func envBoolOr(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envIntOr(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDurationOr(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
