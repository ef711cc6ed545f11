package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

const appName = "snapcal"

var (
	logLevel  string
	directory string
)

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Periodic screenshots with food and calorie estimates",
	Long: `snapcal captures the screen at a fixed interval and saves each shot with
a timestamp. Screenshots can be sent to a simulated detector, Gemini or
OpenAI to estimate the food they show and its calories.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogging(logLevel)
		if err := readConfig(); err != nil {
			slog.Warn("error reading config", "err", err)
		}
		if !cmd.Flags().Changed("directory") && config.Directory != "" {
			directory = config.Directory
		}
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPathOverride, "config", "", "config file (default is snapcal-config.json in the user config dir)")
	flags.StringVarP(&logLevel, "log-level", "l", "info", "log level: debug, info, warn, error")
	flags.StringVarP(&directory, "directory", "d", defaultDirectory, "directory for screenshots")

	rootCmd.AddCommand(
		newCaptureCmd(),
		newAnalyzeCmd(),
		newMonitorCmd(),
		newWatchCmd(),
		newReportCmd(),
		newServeCmd(),
		newTrayCmd(),
	)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
