// Package config resolves urldiff settings from defaults, an optional YAML
// file, URLDIFF_* environment variables and command-line flags, in that
// order of increasing priority.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	playground "github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"urldiff/internal/platform/errors"
	"urldiff/internal/platform/logx"
	"urldiff/internal/platform/ui"
	"urldiff/internal/platform/urlfilter"
	"urldiff/internal/platform/validator"
)

const envPrefix = "URLDIFF_"

type Config struct {
	// Engine
	Threshold      float64  `yaml:"threshold" validate:"gte=0"`
	Window         int      `yaml:"window" validate:"gte=1"`
	QueryMode      string   `yaml:"query_mode" validate:"oneof=keys values"`
	PathStrategy   string   `yaml:"path_strategy" validate:"oneof=positional ratio"`
	PathRatioScale float64  `yaml:"path_ratio_scale" validate:"gt=0"`
	IgnoreTracking bool     `yaml:"ignore_tracking"`
	IgnoredParams  []string `yaml:"ignore_params" validate:"dive,required"`

	// Input filtering
	Scope []string `yaml:"scope" validate:"dive,scope"`

	// Diagnostics
	Quiet          bool   `yaml:"quiet"`
	Raw            bool   `yaml:"raw"`
	RawFormat      string `yaml:"raw_format" validate:"oneof=text json"`
	ShowSuppressed bool   `yaml:"show_suppressed"`
	Log            Log    `yaml:"log"`

	// Invocation only
	Inputs       []string `yaml:"-"`
	ConfigPath   string   `yaml:"-"`
	PrintVersion bool     `yaml:"-"`
	PrintHelp    bool     `yaml:"-"`
}

type Log struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	File  string `yaml:"file"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Threshold:      urlfilter.DefaultThreshold,
		Window:         urlfilter.DefaultWindow,
		QueryMode:      urlfilter.QueryKeysOnly.String(),
		PathStrategy:   urlfilter.PathPositional.String(),
		PathRatioScale: urlfilter.DefaultPathRatioScale,
		RawFormat:      string(ui.LogFormatText),
		Log: Log{
			Level: logx.LevelInfo.String(),
		},
	}
}

// Load resolves the configuration: defaults -> YAML file -> ENV -> flags.
// args excludes the program name. Help and version requests are reported
// through PrintHelp and PrintVersion, not as errors.
func Load(args []string) (Config, error) {
	cfg := DefaultConfig()

	flags := DefaultConfig()
	fs := newFlagSet(&flags)
	if err := fs.Parse(args); err != nil {
		return cfg, errors.Mark(errors.Wrap(err, "parse flags"), errors.ErrInvalidConfig)
	}

	cfg.ConfigPath = getenv(envPrefix+"CONFIG", "")
	if fs.Changed("config") {
		cfg.ConfigPath = flags.ConfigPath
	}
	if cfg.ConfigPath != "" {
		if err := loadFromFile(cfg.ConfigPath, &cfg); err != nil {
			return cfg, err
		}
	}

	loadFromEnv(&cfg)
	applyFlags(fs, &flags, &cfg)
	cfg.Inputs = fs.Args()

	normalize(&cfg)

	if cfg.PrintHelp || cfg.PrintVersion {
		return cfg, nil
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// newFlagSet binds every flag to dst. Only flags the user actually set are
// copied into the final config, so defaults here never mask file or env
// values.
func newFlagSet(dst *Config) *pflag.FlagSet {
	fs := pflag.NewFlagSet("urldiff", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false

	fs.Float64VarP(&dst.Threshold, "threshold", "t", dst.Threshold, "Duplicate when distance < threshold")
	fs.IntVarP(&dst.Window, "window", "w", dst.Window, "Neighbours probed on each side of the insertion point")
	fs.StringVarP(&dst.QueryMode, "query-mode", "m", dst.QueryMode, "Query comparison: keys or values")
	fs.StringVarP(&dst.PathStrategy, "path-strategy", "p", dst.PathStrategy, "Path comparison: positional or ratio")
	fs.Float64Var(&dst.PathRatioScale, "path-ratio-scale", dst.PathRatioScale, "Maximum path penalty of the ratio strategy")
	fs.BoolVar(&dst.IgnoreTracking, "ignore-tracking", dst.IgnoreTracking, "Ignore analytics and session parameters")
	fs.StringArrayVar(&dst.IgnoredParams, "ignore-param", nil, "Ignore a query parameter (repeatable)")

	fs.StringArrayVarP(&dst.Scope, "scope", "s", nil, "Only process URLs of this domain (repeatable, *.domain for the whole registrable domain)")

	fs.BoolVarP(&dst.Quiet, "quiet", "q", dst.Quiet, "No diagnostics on stderr")
	fs.BoolVar(&dst.Raw, "raw", dst.Raw, "Plain log lines instead of styled output")
	fs.StringVar(&dst.RawFormat, "raw-format", dst.RawFormat, "Raw diagnostics format: text or json")
	fs.BoolVarP(&dst.ShowSuppressed, "show-suppressed", "S", dst.ShowSuppressed, "Also report suppressed URLs")
	fs.StringVar(&dst.Log.Level, "log-level", dst.Log.Level, "Log level: debug, info, warn, error")
	fs.StringVar(&dst.Log.File, "log-file", dst.Log.File, "Write JSON logs to a rotated file")

	fs.StringVarP(&dst.ConfigPath, "config", "c", "", "YAML config file")
	fs.BoolVarP(&dst.PrintVersion, "version", "v", false, "Print version and exit")
	fs.BoolVarP(&dst.PrintHelp, "help", "h", false, "Show help")

	return fs
}

// applyFlags copies explicitly set flags from src into cfg.
func applyFlags(fs *pflag.FlagSet, src, cfg *Config) {
	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}

	set("threshold", func() { cfg.Threshold = src.Threshold })
	set("window", func() { cfg.Window = src.Window })
	set("query-mode", func() { cfg.QueryMode = src.QueryMode })
	set("path-strategy", func() { cfg.PathStrategy = src.PathStrategy })
	set("path-ratio-scale", func() { cfg.PathRatioScale = src.PathRatioScale })
	set("ignore-tracking", func() { cfg.IgnoreTracking = src.IgnoreTracking })
	set("ignore-param", func() { cfg.IgnoredParams = src.IgnoredParams })
	set("scope", func() { cfg.Scope = src.Scope })
	set("quiet", func() { cfg.Quiet = src.Quiet })
	set("raw", func() { cfg.Raw = src.Raw })
	set("raw-format", func() { cfg.RawFormat = src.RawFormat })
	set("show-suppressed", func() { cfg.ShowSuppressed = src.ShowSuppressed })
	set("log-level", func() { cfg.Log.Level = src.Log.Level })
	set("log-file", func() { cfg.Log.File = src.Log.File })

	cfg.PrintVersion = src.PrintVersion
	cfg.PrintHelp = src.PrintHelp
}

// loadFromFile overlays a YAML file onto cfg. Unknown keys are rejected.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "read config %s", path), errors.ErrInvalidConfig)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return errors.Mark(errors.Wrapf(err, "parse config %s", path), errors.ErrInvalidConfig)
	}
	return nil
}

// loadFromEnv overlays URLDIFF_* variables. Unparseable numbers keep the
// current value.
func loadFromEnv(cfg *Config) {
	if v := getenv(envPrefix+"THRESHOLD", ""); v != "" {
		cfg.Threshold = parseFloat(v, cfg.Threshold)
	}
	if v := getenv(envPrefix+"WINDOW", ""); v != "" {
		cfg.Window = parseInt(v, cfg.Window)
	}
	if v := getenv(envPrefix+"QUERY_MODE", ""); v != "" {
		cfg.QueryMode = v
	}
	if v := getenv(envPrefix+"PATH_STRATEGY", ""); v != "" {
		cfg.PathStrategy = v
	}
	if v := getenv(envPrefix+"PATH_RATIO_SCALE", ""); v != "" {
		cfg.PathRatioScale = parseFloat(v, cfg.PathRatioScale)
	}
	if v := getenv(envPrefix+"IGNORE_TRACKING", ""); v != "" {
		cfg.IgnoreTracking = parseBool(v)
	}
	if v := getenv(envPrefix+"IGNORE_PARAMS", ""); v != "" {
		cfg.IgnoredParams = splitList(v)
	}
	if v := getenv(envPrefix+"SCOPE", ""); v != "" {
		cfg.Scope = splitList(v)
	}
	if v := getenv(envPrefix+"QUIET", ""); v != "" {
		cfg.Quiet = parseBool(v)
	}
	if v := getenv(envPrefix+"RAW", ""); v != "" {
		cfg.Raw = parseBool(v)
	}
	if v := getenv(envPrefix+"RAW_FORMAT", ""); v != "" {
		cfg.RawFormat = v
	}
	if v := getenv(envPrefix+"SHOW_SUPPRESSED", ""); v != "" {
		cfg.ShowSuppressed = parseBool(v)
	}
	if v := getenv(envPrefix+"LOG_LEVEL", ""); v != "" {
		cfg.Log.Level = v
	}
	if v := getenv(envPrefix+"LOG_FILE", ""); v != "" {
		cfg.Log.File = v
	}
}

func normalize(c *Config) {
	c.QueryMode = strings.ToLower(strings.TrimSpace(c.QueryMode))
	c.PathStrategy = strings.ToLower(strings.TrimSpace(c.PathStrategy))
	c.RawFormat = strings.ToLower(strings.TrimSpace(c.RawFormat))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.File = strings.TrimSpace(c.Log.File)

	c.IgnoredParams = dedupe(c.IgnoredParams, strings.ToLower)
	c.Scope = dedupe(c.Scope, func(s string) string {
		if rest, ok := strings.CutPrefix(s, "*."); ok {
			return "*." + validator.NormalizeDomain(rest)
		}
		return validator.NormalizeDomain(s)
	})
}

// Validate checks field rules and reports every violation at once.
func (c Config) Validate() error {
	validate, err := newValidator()
	if err != nil {
		return err
	}

	err = validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs playground.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Mark(errors.Wrap(err, "validate config"), errors.ErrInvalidConfig)
	}

	violations := make([]error, 0, len(verrs))
	for _, e := range verrs {
		msg := fmt.Sprintf("'%s' failed rule '%s'", strings.TrimPrefix(e.Namespace(), "Config."), e.Tag())
		if e.Param() != "" {
			msg += fmt.Sprintf(" (expected: %s)", e.Param())
		}
		if e.Value() != nil && e.Value() != "" {
			msg += fmt.Sprintf(", actual: '%v'", e.Value())
		}
		violations = append(violations, errors.New(msg))
	}
	return errors.Mark(errors.Wrap(errors.Join(violations...), "invalid configuration"), errors.ErrInvalidConfig)
}

// newValidator returns a struct validator with the custom "scope" rule.
func newValidator() (*playground.Validate, error) {
	validate := playground.New()
	err := validate.RegisterValidation("scope", func(fl playground.FieldLevel) bool {
		return validator.IsScopeEntry(fl.Field().String())
	})
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "register scope rule"), errors.ErrInvalidConfig)
	}
	return validate, nil
}

// ToOptions maps the configuration onto engine options.
func (c Config) ToOptions() (urlfilter.Options, error) {
	qm, err := urlfilter.ParseQueryMode(c.QueryMode)
	if err != nil {
		return urlfilter.Options{}, errors.Mark(err, errors.ErrInvalidConfig)
	}
	ps, err := urlfilter.ParsePathStrategy(c.PathStrategy)
	if err != nil {
		return urlfilter.Options{}, errors.Mark(err, errors.ErrInvalidConfig)
	}

	opts := urlfilter.Options{
		Threshold: c.Threshold,
		Window:    c.Window,
		Metric: urlfilter.MetricOptions{
			QueryMode:      qm,
			PathStrategy:   ps,
			PathRatioScale: c.PathRatioScale,
			IgnoreTracking: c.IgnoreTracking,
			IgnoredParams:  c.IgnoredParams,
		},
	}
	if err := opts.Validate(); err != nil {
		return urlfilter.Options{}, errors.Mark(err, errors.ErrInvalidConfig)
	}
	return opts, nil
}

// UIMode picks the presenter for the diagnostics flags.
func (c Config) UIMode() ui.UIMode {
	switch {
	case c.Quiet:
		return ui.UIModeQuiet
	case c.Raw:
		return ui.UIModeRaw
	default:
		return ui.UIModePretty
	}
}

// PresenterOptions returns the presenter tuning.
func (c Config) PresenterOptions() ui.Options {
	return ui.Options{
		ShowSuppressed: c.ShowSuppressed,
		Format:         ui.LogFormat(c.RawFormat),
	}
}

// LogLevel returns the parsed log level.
func (c Config) LogLevel() logx.Level {
	return logx.ParseLevel(c.Log.Level)
}

// ToYAML renders the effective configuration (useful for debugging).
func (c Config) ToYAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Helpers

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok {
		return v
	}
	return def
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "t", "true", "y", "yes", "on":
		return true
	default:
		return false
	}
}

func parseInt(v string, def int) int {
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return i
}

func parseFloat(v string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return def
	}
	return f
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// dedupe applies norm to every item and drops blanks and repeats, keeping
// first-seen order.
func dedupe(items []string, norm func(string) string) []string {
	if len(items) == 0 {
		return items
	}
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = norm(strings.TrimSpace(item))
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
