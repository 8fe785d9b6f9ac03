package main

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bkodra/rebuild-tui/internal/config"
	"github.com/bkodra/rebuild-tui/internal/execx"
	"github.com/bkodra/rebuild-tui/internal/logging"
	"github.com/bkodra/rebuild-tui/internal/tui"
)

var version = "dev"

func init() {
	if version != "dev" {
		return
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string
	var logLevel string

	cmd := &cobra.Command{
		Use:     "rebuild-tui [dir]",
		Short:   "Interactive dashboard for rebuilding container images",
		Long:    "rebuild-tui scans a directory for Dockerfiles, compose services and\nMakefile image targets, and rebuilds checked targets one at a time while\nstreaming their build output.",
		Args:    cobra.MaximumNArgs(1),
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				v.Set("scan_root", args[0])
			}

			cfg, err := config.Load(v, cfgFile)
			if err != nil {
				return err
			}

			closer, err := logging.Init(cfg.LogFile, logLevel)
			if err != nil {
				return err
			}
			defer closer.Close()

			logging.Logger.Info().
				Str("version", version).
				Str("scan_root", cfg.ScanRoot).
				Msg("starting")

			app := tui.NewApp(cfg, execx.New())
			p := tea.NewProgram(app, tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("run ui: %w", err)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&cfgFile, "config", "c", "", "Config file path")
	flags.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flags.Int("output-limit", 2000, "Max output lines retained per job")
	flags.Bool("no-cache", false, "Pass --no-cache to build commands")
	flags.String("docker-bin", "docker", "Docker binary to invoke")
	flags.String("export-dir", "", "Directory exported logs are written under")
	flags.String("log-file", "", "Debug log file")
	flags.Int("max-depth", 6, "Max directory depth scanned for targets")

	must(v.BindPFlag("output_limit", flags.Lookup("output-limit")))
	must(v.BindPFlag("no_cache", flags.Lookup("no-cache")))
	must(v.BindPFlag("docker_bin", flags.Lookup("docker-bin")))
	must(v.BindPFlag("export_dir", flags.Lookup("export-dir")))
	must(v.BindPFlag("log_file", flags.Lookup("log-file")))
	must(v.BindPFlag("max_depth", flags.Lookup("max-depth")))

	return cmd
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
