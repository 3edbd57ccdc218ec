package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"syscall"

	"nexterror/logger"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// configEnv carries plugin settings as JSON
const configEnv = "NEXTERROR_CONFIG"

type Config struct {
	LogLevel               string   `json:"log_level" toml:"log_level"`                   // trace, debug, info, warn, error
	SettleDelay            int      `json:"settle_delay" toml:"settle_delay"`             // in milliseconds
	SmoothScroll           bool     `json:"smooth_scroll" toml:"smooth_scroll"`           // always wait SettleDelay after a reveal
	NavigationTimeout      int      `json:"navigation_timeout" toml:"navigation_timeout"` // in milliseconds
	DebugImmediateShutdown bool     `json:"debug_immediate_shutdown" toml:"debug_immediate_shutdown"`
	Snapshots              []string `json:"snapshots" toml:"snapshots"` // diagnostic files merged with the editor's
}

func defaultConfig() Config {
	return Config{
		LogLevel:          "info",
		SettleDelay:       150,
		NavigationTimeout: 2000,
	}
}

// loadConfig layers the TOML file at path (if any) and then envJSON over the defaults.
// Relative snapshot paths in the file are resolved against the file's directory.
func loadConfig(path, envJSON string) (Config, error) {
	config := defaultConfig()

	if path != "" {
		// keys missing from the file keep their default
		meta, err := toml.DecodeFile(path, &config)
		if err != nil {
			return config, fmt.Errorf("read config %s: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			log.Printf("config %s: unknown keys %v", path, undecoded)
		}
		for i, s := range config.Snapshots {
			if !filepath.IsAbs(s) {
				config.Snapshots[i] = filepath.Join(filepath.Dir(path), s)
			}
		}
	}

	if envJSON != "" {
		if err := json.Unmarshal([]byte(envJSON), &config); err != nil {
			return config, fmt.Errorf("invalid %s: %w", configEnv, err)
		}
	}

	if config.SettleDelay < 0 {
		return config, fmt.Errorf("settle_delay must not be negative, got %d", config.SettleDelay)
	}
	return config, nil
}

// Setup logger to log to a file in the same directory as the executable
// Caller must defer logger.Close()
func setupLogger(logLevel string) *logger.LimitedLogger {
	f, err := os.OpenFile(runtimePath("nexterror.log"), os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening file: %v", err)
	}

	level := logger.ParseLogLevel(logLevel)
	limitedLogger := logger.NewLimitedLogger(f, level)
	log.SetOutput(limitedLogger)
	return limitedLogger
}

// runtimePath places daemon files next to the executable
func runtimePath(name string) string {
	execPath, err := os.Executable()
	if err != nil {
		log.Fatalf("error getting executable path: %v", err)
	}
	return filepath.Join(filepath.Dir(execPath), name)
}

func getSocketPath() string {
	return runtimePath("nexterror.sock")
}

func getPidPath() string {
	return runtimePath("nexterror.pid")
}

func isDaemonRunning() (bool, int) {
	data, err := os.ReadFile(getPidPath())
	if err != nil {
		return false, 0
	}

	pid, err := strconv.Atoi(string(data))
	if err != nil {
		return false, 0
	}

	// Check if process is still running
	process, err := os.FindProcess(pid)
	if err != nil {
		return false, 0
	}

	// On Unix, Signal(0) checks if process exists
	err = process.Signal(syscall.Signal(0))
	return err == nil, pid
}

func configFromFlags(cmd *cobra.Command) (Config, error) {
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	return loadConfig(path, os.Getenv(configEnv))
}

func useColor(cmd *cobra.Command) bool {
	colorFlag, _ := cmd.Root().PersistentFlags().GetString("color")
	return colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout))
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

var rootCmd = &cobra.Command{
	Use:   "nexterror",
	Short: "Jump between error and warning markers",
	Long: `nexterror moves the cursor to the next or previous diagnostic marker,
within the current file or across every file with diagnostics.

Run without a subcommand it relays Neovim's RPC channel to the daemon,
starting the daemon if needed.`,
	SilenceUsage: true,
	RunE:         runClient,
}

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Serve Neovim connections on a unix socket",
	Args:  cobra.NoArgs,
	RunE:  runDaemon,
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	config, err := configFromFlags(cmd)
	if err != nil {
		return err
	}

	logger := setupLogger(config.LogLevel)
	defer logger.Close()
	log.Printf("config: %+v", config)

	daemon, err := NewDaemon(config)
	if err != nil {
		return fmt.Errorf("error creating daemon: %w", err)
	}

	if err := daemon.Start(); err != nil {
		return fmt.Errorf("error starting daemon: %w", err)
	}
	return nil
}

func runClient(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Root().PersistentFlags().GetString("config")
	client := NewClient(configPath)

	if err := client.EnsureDaemonRunning(); err != nil {
		return fmt.Errorf("error ensuring daemon is running: %w", err)
	}

	if err := client.Connect(); err != nil {
		return fmt.Errorf("error connecting to daemon: %w", err)
	}
	return nil
}

func main() {
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(locateCmd)
	rootCmd.AddCommand(commandsCmd)

	rootCmd.PersistentFlags().String("config", "", "TOML config file")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
