package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	gpuwatch "github.com/jondoveston/gpuwatch/internal"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gpuwatch [endpoint]",
	Short: "Terminal dashboard for live GPU telemetry",
	Long: `gpuwatch connects to a GPU telemetry websocket and draws live
utilization and memory charts for every host and GPU it reports.

Examples:
  gpuwatch
  gpuwatch ws://gpu-server.lan:8000/gpu_status
  gpuwatch --endpoint gpu-server.lan --window 120
  gpuwatch --metrics-addr :9400
  GPUWATCH_ENDPOINT=wss://gpu-server.lan/gpu_status gpuwatch`,
	Args:          cobra.MaximumNArgs(1),
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Define flags
	rootCmd.Flags().String("endpoint", "", "telemetry websocket endpoint")
	rootCmd.Flags().Int("window", 0, "samples kept per series (0 = as delivered by the initial snapshot)")
	rootCmd.Flags().String("metrics-addr", "", "serve /metrics, /health and /api/series on this address")
	rootCmd.Flags().String("log-file", "", "log file path")
	rootCmd.Flags().String("config", "", "YAML config file")
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")

	// Bind flags to Viper keys (note: dashes in flags become underscores in viper)
	viper.BindPFlag("endpoint", rootCmd.Flags().Lookup("endpoint"))
	viper.BindPFlag("window", rootCmd.Flags().Lookup("window"))
	viper.BindPFlag("metrics_addr", rootCmd.Flags().Lookup("metrics-addr"))
	viper.BindPFlag("log_file", rootCmd.Flags().Lookup("log-file"))

	// Configure Viper for environment variables
	viper.SetEnvPrefix("gpuwatch")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	gpuwatch.SetDefaults(viper.GetViper())
}

func run(cmd *cobra.Command, args []string) error {
	// Handle --version flag first
	versionFlag, _ := cmd.Flags().GetBool("version")
	if versionFlag {
		fmt.Printf("gpuwatch version %s\n", version)
		return nil
	}

	if configFile, _ := cmd.Flags().GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", configFile, err)
		}
	}

	// Positional argument only when the endpoint was not set by flag or env var
	if len(args) == 1 && !cmd.Flags().Changed("endpoint") && os.Getenv("GPUWATCH_ENDPOINT") == "" {
		viper.Set("endpoint", args[0])
	}

	cfg, err := gpuwatch.LoadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	// The terminal belongs to the dashboard, so logs go to a rotated file
	log.SetOutput(&lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    10,
		MaxBackups: 3,
	})
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting gpuwatch %s", version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	stats := gpuwatch.NewCollectors(registry)
	monitor := gpuwatch.NewMonitor(gpuwatch.NewStore(cfg.Window), gpuwatch.NewTermChart, stats)

	if cfg.MetricsAddr != "" {
		go func() {
			if err := gpuwatch.Serve(ctx, cfg.MetricsAddr, gpuwatch.NewRouter(monitor, registry)); err != nil {
				log.Printf("Metrics server failed: %v", err)
			}
		}()
	}

	stream := gpuwatch.NewStream(cfg.Endpoints, gpuwatch.StreamOptions{
		HandshakeTimeout: cfg.HandshakeTimeout,
		ReadLimit:        cfg.ReadLimit,
	})
	log.Printf("Using telemetry endpoint: %s", stream.Endpoint())

	err = gpuwatch.Dashboard(ctx, monitor, stream)
	log.Println("Stopped")
	return err
}
