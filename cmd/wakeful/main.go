package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dooshek/wakeful/internal/config"
	wakefuldbus "github.com/dooshek/wakeful/internal/dbus"
	"github.com/dooshek/wakeful/internal/fileops"
	"github.com/dooshek/wakeful/internal/logger"
	"github.com/dooshek/wakeful/internal/notification"
	"github.com/dooshek/wakeful/internal/state"
	"github.com/dooshek/wakeful/internal/types"
	"github.com/dooshek/wakeful/pkg/keepawake"
	"github.com/fatih/color"
	"github.com/godbus/dbus/v5"
)

func init() {
	// Set custom usage message to show -- prefix
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "Usage of %s:\n", os.Args[0])
		flag.VisitAll(func(f *flag.Flag) {
			fmt.Fprintf(out, "  --%s", f.Name)
			name, usage := flag.UnquoteUsage(f)
			if len(name) > 0 {
				fmt.Fprintf(out, " %s", name)
			}
			fmt.Fprintf(out, "\n    \t%s", usage)
			if f.DefValue != "" && f.DefValue != "false" {
				fmt.Fprintf(out, " (default %q)", f.DefValue)
			}
			fmt.Fprintf(out, "\n")
		})
	}
}

func main() {
	runWizard := flag.Bool("wizard", false, "Run the configuration wizard")
	logLevel := flag.String("log-level", "info", "Set log level (debug|info|warn|error)")
	logFilename := flag.String("log-filename", "", "Log to file instead of stdout")
	strategyFlag := flag.String("strategy", "", "Override strategy (auto|native|legacy|media)")
	daemon := flag.Bool("daemon", false, "Run as a D-Bus service instead of inhibiting immediately")
	status := flag.Bool("status", false, "Query a running wakeful daemon and exit")

	flag.Parse()

	// Set up logging level and output
	logger.SetLevel(*logLevel)
	if *logFilename != "" {
		if err := logger.SetOutputFile(*logFilename); err != nil {
			fmt.Printf("Error setting log file: %v\n", err)
			os.Exit(1)
		}
		defer logger.CloseLogFile()
	}

	if *runWizard {
		if err := config.RunWizard(); err != nil {
			logger.Error("Error running wizard", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if *status {
		if err := queryStatus(); err != nil {
			logger.Error("Failed to query daemon status", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Error loading config", err)
		os.Exit(1)
	}
	if cfg == nil {
		logger.Info("No configuration found, using defaults. Run `wakeful --wizard` to create one.")
		cfg = config.DefaultConfig()
	}

	// Flags win over the config file
	if *strategyFlag != "" {
		s := types.Strategy(*strategyFlag)
		if !s.IsValid() {
			logger.Error("Invalid strategy flag", fmt.Errorf("unknown strategy: %q", *strategyFlag))
			os.Exit(1)
		}
		cfg.Inhibit.Strategy = s
	}
	if cfg.Log.Level != "" && *logLevel == "info" {
		logger.SetLevel(cfg.Log.Level)
	}
	if *logFilename == "" && cfg.Log.Filename != "" {
		if err := logger.SetOutputFile(cfg.Log.Filename); err != nil {
			logger.Error("Error setting log file from config", err)
			os.Exit(1)
		}
		defer logger.CloseLogFile()
	}

	// Initialize global state with the entire config
	state.Init(cfg)

	// Initialize fileops
	fileOps, err := fileops.NewDefaultFileOps()
	if err != nil {
		logger.Error("Failed to initialize file operations", err)
		os.Exit(1)
	}

	// Ensure directories exist
	if err := fileOps.EnsureDirectories(); err != nil {
		logger.Error("Failed to create necessary directories", err)
		os.Exit(1)
	}

	// Check if another instance is running
	if err := fileOps.CheckPID(); err != nil {
		if errors.Is(err, fileops.ErrProcessAlreadyRunning) {
			logger.Error("Another instance of Wakeful is already running", err)
			os.Exit(1)
		}
	}

	// Save current PID
	if err := fileOps.SavePID(); err != nil {
		logger.Error("Failed to save PID file", err)
		os.Exit(1)
	}

	if *daemon {
		runDaemon(fileOps)
		return
	}

	runForeground(fileOps)
}

// runForeground inhibits sleep immediately and holds the lock until a signal
func runForeground(fileOps fileops.FileOps) {
	st := state.Get()

	var notifier keepawake.Notifier
	if st.NotificationsEnabled() {
		notifier = notification.New()
	}

	inhibitor, err := keepawake.NewFromConfig(
		st.GetStrategy(),
		st.GetReason(),
		st.GetResetInterval(),
		notifier,
	)
	if err != nil {
		logger.Error("Failed to initialize inhibitor", err)
		fileOps.HandleExit()
		os.Exit(1)
	}

	ctx := context.Background()
	if err := inhibitor.Enable(ctx); err != nil {
		logger.Error("Failed to enable sleep inhibition", err)
		fileOps.HandleExit()
		os.Exit(1)
	}

	bold := color.New(color.Bold)
	bold.Printf("\n☕ Wakeful is keeping your machine awake (%s strategy)\n", inhibitor.Strategy())
	logger.Info("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	logger.Infof("Received signal %v, shutting down...", sig)
	inhibitor.Disable()
	fileOps.HandleExit()
}

// runDaemon publishes the inhibitor as a D-Bus service until a signal
func runDaemon(fileOps fileops.FileOps) {
	server, err := wakefuldbus.NewServer()
	if err != nil {
		logger.Error("Failed to create D-Bus server", err)
		fileOps.HandleExit()
		os.Exit(1)
	}

	if err := server.Start(); err != nil {
		logger.Error("Failed to start D-Bus server", err)
		fileOps.HandleExit()
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Infof("Received signal %v, shutting down...", sig)
		server.Stop()
	}()

	server.Wait()
	fileOps.HandleExit()
}

// queryStatus asks a running daemon for its state over D-Bus
func queryStatus() error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	defer conn.Close()

	var enabled bool
	var strategy string
	obj := conn.Object("com.dooshek.wakeful", "/com/dooshek/wakeful/Inhibitor")
	if err := obj.Call("com.dooshek.wakeful.Inhibitor.GetStatus", 0).Store(&enabled, &strategy); err != nil {
		return fmt.Errorf("is the wakeful daemon running? %w", err)
	}

	stateWord := "disabled"
	if enabled {
		stateWord = "enabled"
	}
	fmt.Printf("Sleep inhibition is %s (%s strategy)\n", stateWord, strategy)
	return nil
}
