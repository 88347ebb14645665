package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/TobiSchelling/LibLoans/internal/config"
	"github.com/TobiSchelling/LibLoans/internal/page"
	"github.com/TobiSchelling/LibLoans/internal/pipeline"
	"github.com/TobiSchelling/LibLoans/internal/snapshot"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "libloans",
	Short:   "Library loan report with due-date highlighting",
	Long:    "LibLoans renders library loan snapshots into an HTML report and keeps its due dates colored by how soon they are.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if strings.EqualFold(cfg.Logging.Level, "DEBUG") {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(annotateCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(dedupCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("libloans", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/libloans/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to set the snapshot directory and report output.")
		return nil
	},
}

// --- annotate command ---

var annotateOutput string

var annotateCmd = &cobra.Command{
	Use:   "annotate [page]",
	Short: "Color and count down the date elements of a page once",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, output, err := resolvePage(args, annotateOutput)
		if err != nil {
			return err
		}

		pipe, err := pipeline.New(cfg)
		if err != nil {
			return err
		}
		sum, err := pipe.AnnotatePage(input, output, time.Now())
		if err != nil {
			return err
		}

		fmt.Printf("Annotated %d date elements: %s\n", sum.Elements, pipeline.FormatSummary(sum))
		fmt.Printf("Written to %s\n", output)
		return nil
	},
}

func init() {
	annotateCmd.Flags().StringVarP(&annotateOutput, "output", "o", "", "Write the annotated page here instead")
}

// --- watch command ---

var (
	watchOutput   string
	watchInterval time.Duration
	watchRender   bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [page]",
	Short: "Keep a page annotated: now, on every interval, and when it changes",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pipe, err := pipeline.New(cfg)
		if err != nil {
			return err
		}

		opts := pipeline.WatchOptions{Interval: watchInterval}
		if watchRender {
			opts.Render = true
			opts.DataDir = cfg.GetDataDir()
			opts.Output = cfg.Report.Output
			if watchOutput != "" {
				opts.Output = watchOutput
			}
		} else {
			opts.Input, opts.Output, err = resolvePage(args, watchOutput)
			if err != nil {
				return err
			}
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Keeping %s annotated\n", opts.Output)
		fmt.Println("Press Ctrl+C to stop")
		return pipe.Watch(ctx, opts)
	},
}

func init() {
	watchCmd.Flags().StringVarP(&watchOutput, "output", "o", "", "Write the annotated page here instead")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "Override the annotation interval")
	watchCmd.Flags().BoolVar(&watchRender, "render", false, "Re-render the loan report from snapshots on every cycle")
}

// --- render command ---

var (
	renderDataDir string
	renderOutput  string
	renderDedup   bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the loan report from snapshots and annotate its due dates",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir := cfg.GetDataDir()
		if renderDataDir != "" {
			dataDir = renderDataDir
		}
		if info, err := os.Stat(dataDir); err != nil || !info.IsDir() {
			return fmt.Errorf("%s is not a directory", dataDir)
		}

		output := cfg.Report.Output
		if renderOutput != "" {
			output = renderOutput
		}
		if info, err := os.Stat(output); err == nil && info.IsDir() {
			return fmt.Errorf("%s is a directory, can't render there", output)
		}

		if renderDedup {
			removed, err := snapshot.Dedup(dataDir)
			if err != nil {
				return err
			}
			fmt.Printf("Removed %d duplicate snapshots\n", len(removed))
		}

		pipe, err := pipeline.New(cfg)
		if err != nil {
			return err
		}
		result := pipe.RenderReport(dataDir, output, time.Now())

		for i, step := range result.Steps {
			fmt.Printf("\nStep %d/3: %s\n", i+1, step.Name)
			if step.Err != nil {
				fmt.Printf("  Error: %v\n", step.Err)
			} else {
				fmt.Printf("  %s\n", step.Summary)
			}
		}
		if err := result.Err(); err != nil {
			return err
		}

		fmt.Printf("\nDone rendering to %s\n", output)
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVarP(&renderDataDir, "data-dir", "d", "", "Base directory of snapshot data")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "Render to file with name")
	renderCmd.Flags().BoolVar(&renderDedup, "dedup", false, "Remove duplicate snapshots before rendering")
}

// --- dedup command ---

var dedupDataDir string

var dedupCmd = &cobra.Command{
	Use:   "dedup",
	Short: "Remove snapshots identical to both their neighbours",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir := cfg.GetDataDir()
		if dedupDataDir != "" {
			dataDir = dedupDataDir
		}

		fmt.Printf("Deduplicating snapshots in %s\n", dataDir)
		removed, err := snapshot.Dedup(dataDir)
		for _, name := range removed {
			fmt.Printf("  Removed %s\n", name)
		}
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d duplicate snapshots\n", len(removed))
		return nil
	},
}

func init() {
	dedupCmd.Flags().StringVarP(&dedupDataDir, "data-dir", "d", "", "Base directory of snapshot data")
}

// --- status command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show snapshot status",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir := cfg.GetDataDir()
		snaps, err := snapshot.List(dataDir)
		if err != nil {
			return err
		}

		fmt.Printf("Data directory: %s\n", dataDir)
		fmt.Printf("  Snapshots: %d\n", len(snaps))
		if len(snaps) == 0 {
			return nil
		}

		age, err := snapshot.TimeSinceLastUpdate(dataDir, time.Now())
		if err != nil {
			return err
		}
		latest := snaps[len(snaps)-1]
		fmt.Printf("  Oldest: %s\n", snapshot.FormatTimestamp(snaps[0].Time))
		fmt.Printf("  Newest: %s (%s ago)\n", snapshot.FormatTimestamp(latest.Time), age.Truncate(time.Minute))

		accounts, err := latest.Accounts()
		if err != nil {
			return err
		}
		fmt.Printf("  Accounts: %d\n", len(accounts))
		return nil
	},
}

// resolvePage picks the page from the argument or config and derives where
// the annotated copy goes.
func resolvePage(args []string, output string) (string, string, error) {
	input := cfg.Page.Input
	if len(args) > 0 {
		input = args[0]
	}
	if input == "" {
		input = cfg.Report.Output
	}
	if _, err := os.Stat(input); err != nil {
		return "", "", fmt.Errorf("page not found: %s", input)
	}

	if output == "" {
		output = cfg.Page.Output
	}
	return input, page.OutputPath(input, output), nil
}
