package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"NormPeakPlot/internal/calculator"
	"NormPeakPlot/internal/model"
	"NormPeakPlot/internal/recession"
)

// Config holds all application configuration.
type Config struct {
	Series    string `yaml:"series" validate:"required,oneof=usgdp usempl"`
	StartDate string `yaml:"start_date" validate:"isodate"`
	// EndDate is YYYY-MM-DD, "today", or empty for the latest observation.
	EndDate string `yaml:"end_date" validate:"isodate"`

	DataSource struct {
		Mode              string        `yaml:"mode" validate:"oneof=remote local"`
		FREDAPIKey        string        `yaml:"fred_api_key"`
		BaseURL           string        `yaml:"base_url" validate:"omitempty,url"`
		APIBaseURL        string        `yaml:"api_base_url" validate:"omitempty,url"`
		Timeout           time.Duration `yaml:"timeout" validate:"gte=0"`
		RequestsPerMinute int           `yaml:"requests_per_minute" validate:"gte=0,lte=120"`
		CacheTTL          time.Duration `yaml:"cache_ttl" validate:"gte=0"`
	} `yaml:"data_source"`

	Align struct {
		Before       int                     `yaml:"before" validate:"gt=0"`
		After        int                     `yaml:"after" validate:"gt=0"`
		MainBefore   int                     `yaml:"main_before" validate:"gt=0"`
		MainAfter    int                     `yaml:"main_after" validate:"gt=0"`
		Tolerance    int                     `yaml:"tolerance" validate:"gte=0"`
		Overrides    map[string]model.Window `yaml:"overrides" validate:"dive"`
		TableVersion string                  `yaml:"table_version"`
	} `yaml:"align"`

	Output struct {
		Dir     string `yaml:"dir" validate:"required"`
		DataDir string `yaml:"data_dir" validate:"required"`
		XLSX    bool   `yaml:"xlsx"`
	} `yaml:"output"`

	Schedule struct {
		Cron      string `yaml:"cron"`
		StateFile string `yaml:"state_file"`
	} `yaml:"schedule"`

	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`

	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// Read is Load without defaults, for callers that layer further overrides
// before calling ApplyDefaults.
func Read(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("FRED_API_KEY"); v != "" {
		cfg.DataSource.FREDAPIKey = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	return cfg, nil
}

// ApplyDefaults fills unset fields. Window defaults depend on the series.
func (c *Config) ApplyDefaults() {
	if c.Series == "" {
		c.Series = "usgdp"
	}
	if c.DataSource.Mode == "" {
		c.DataSource.Mode = "remote"
	}
	if c.DataSource.Timeout == 0 {
		c.DataSource.Timeout = 30 * time.Second
	}
	if c.DataSource.RequestsPerMinute == 0 {
		c.DataSource.RequestsPerMinute = 120
	}
	if c.DataSource.CacheTTL == 0 {
		c.DataSource.CacheTTL = time.Hour
	}
	if c.Align.TableVersion == "" {
		c.Align.TableVersion = recession.DefaultVersion
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "images"
	}
	if c.Output.DataDir == "" {
		c.Output.DataDir = "data"
	}
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = "0 0 9 * * *"
	}
	if c.Schedule.StateFile == "" {
		c.Schedule.StateFile = "data/refresh_state.json"
	}

	spec, err := model.LookupSeries(c.Series)
	if err != nil {
		// Reported by Validate.
		return
	}
	if c.Align.Before == 0 {
		c.Align.Before = spec.MaxWindow.Before
	}
	if c.Align.After == 0 {
		c.Align.After = spec.MaxWindow.After
	}
	if c.Align.MainBefore == 0 {
		c.Align.MainBefore = spec.MainWindow.Before
	}
	if c.Align.MainAfter == 0 {
		c.Align.MainAfter = spec.MainWindow.After
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("isodate", isISODate)
	// Use YAML tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func isISODate(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" || s == "today" {
		return true
	}
	_, err := time.Parse(model.DateFormat, s)
	return err == nil
}

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	table, err := c.RecessionTable()
	if err != nil {
		return err
	}
	for label := range c.Align.Overrides {
		if _, ok := table.Lookup(label); !ok {
			return fmt.Errorf("align.overrides: unknown recession %q", label)
		}
	}
	if c.Align.MainBefore > c.Align.Before || c.Align.MainAfter > c.Align.After {
		return fmt.Errorf("align: main window %d/%d exceeds max window %d/%d",
			c.Align.MainBefore, c.Align.MainAfter, c.Align.Before, c.Align.After)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}

	start, err := c.Start()
	if err != nil {
		return err
	}
	end, err := c.End(time.Now())
	if err != nil {
		return err
	}
	if !end.IsZero() && !start.Before(end) {
		return fmt.Errorf("start_date %s is not before end_date %s", c.StartDate, c.EndDate)
	}
	return nil
}

// SeriesSpec returns the configured series.
func (c *Config) SeriesSpec() (model.SeriesSpec, error) {
	return model.LookupSeries(c.Series)
}

// RecessionTable returns the configured recession calendar.
func (c *Config) RecessionTable() (model.RecessionTable, error) {
	return recession.Table(c.Align.TableVersion)
}

// AlignOptions builds the aligner options for freq.
func (c *Config) AlignOptions(freq model.Frequency) calculator.AlignOptions {
	return calculator.AlignOptions{
		Frequency: freq,
		Before:    c.Align.Before,
		After:     c.Align.After,
		Tolerance: c.Align.Tolerance,
		Overrides: c.Align.Overrides,
	}
}

// MainWindow is the initially visible chart range.
func (c *Config) MainWindow() model.Window {
	return model.Window{Before: c.Align.MainBefore, After: c.Align.MainAfter}
}

// MaxWindow is the aligned data extent.
func (c *Config) MaxWindow() model.Window {
	return model.Window{Before: c.Align.Before, After: c.Align.After}
}

// Start parses start_date; empty means the beginning of the series.
func (c *Config) Start() (time.Time, error) {
	return parseDate("start_date", c.StartDate, time.Time{})
}

// End parses end_date relative to now; empty means the latest observation.
func (c *Config) End(now time.Time) (time.Time, error) {
	return parseDate("end_date", c.EndDate, now)
}

// Local reports whether data is read from snapshots instead of FRED.
func (c *Config) Local() bool { return c.DataSource.Mode == "local" }

// TelegramEnabled reports whether refresh summaries should be sent.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

func parseDate(field, s string, now time.Time) (time.Time, error) {
	switch s {
	case "":
		return time.Time{}, nil
	case "today":
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(model.DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", field, err)
	}
	return t, nil
}
