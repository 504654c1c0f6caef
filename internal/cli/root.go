package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"NormPeakPlot/internal/config"
	"NormPeakPlot/internal/pipeline"
)

const version = "npp v0.3.0"

var cfgFile string

// rootCmd renders one series.
var rootCmd = &cobra.Command{
	Use:   "npp",
	Short: "Normalized peak plots of US recessions",
	Long: `npp aligns a FRED macro series on the business cycle peak before each
NBER recession, rescales every window so the peak equals 1.0 and writes an
interactive HTML chart plus a CSV table of peaks, troughs and recoveries.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (NPP_*)
3. Config file (configs/config.yaml or $CONFIG_PATH)
4. Defaults

Example:
  npp --series usgdp
  npp --series usempl --before 12 --after 96 --override 2020=12:48
  npp --series usgdp --end 2021-06-30 --local --xlsx`,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runRender,
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $CONFIG_PATH or configs/config.yaml)")

	f := rootCmd.PersistentFlags()
	f.String("series", "", "series to plot (usgdp, usempl)")
	f.String("start", "", "first observation date, YYYY-MM-DD")
	f.String("end", "", "last observation date, YYYY-MM-DD or today (default: latest)")
	f.Int("before", 0, "periods kept before each peak")
	f.Int("after", 0, "periods kept after each peak")
	f.Int("main-before", 0, "periods before the peak shown initially")
	f.Int("main-after", 0, "periods after the peak shown initially")
	f.Int("tolerance", 0, "peak search half-width in periods (default: one quarter)")
	f.StringArray("override", nil, "per-recession window, LABEL=BEFORE:AFTER (repeatable)")
	f.String("table", "", "recession table version (nber-2020, nber-2021)")
	f.Bool("local", false, "read data from local snapshots instead of FRED")
	f.String("out", "", "chart output directory")
	f.String("data-dir", "", "snapshot and peak table directory")
	f.Bool("xlsx", false, "also write an Excel workbook")

	for _, name := range flagKeys {
		_ = viper.BindPFlag(name, f.Lookup(name))
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(scheduleCmd)
}

// initConfig reads ENV variables that match NPP_*.
func initConfig() {
	viper.SetEnvPrefix("NPP")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "configs/config.yaml"
}

// loadConfig reads the config file and layers flags and NPP_* env on top.
func loadConfig(v *viper.Viper) (*config.Config, error) {
	path := configPath()
	cfg, err := config.Read(path)
	if err != nil {
		return nil, err
	}
	if err := applyFlags(cfg, v); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	start, err := cfg.Start()
	if err != nil {
		return err
	}
	end, err := cfg.End(time.Now())
	if err != nil {
		return err
	}

	p, err := pipeline.New(cfg)
	if err != nil {
		return err
	}
	log.Printf("[INFO] Rendering %s (%s mode, table %s)", p.Spec.Name, cfg.DataSource.Mode, p.Table.Version())
	res, err := p.Run(cmd.Context(), start, end)
	if err != nil {
		return err
	}
	for _, path := range res.Outputs {
		fmt.Println(path)
	}
	if len(res.Skipped) > 0 {
		log.Printf("[WARN] %d of %d recessions skipped", len(res.Skipped), p.Table.Len())
	}
	return nil
}

// ExecuteContext runs the root command with ctx.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
