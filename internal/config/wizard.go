package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dooshek/wakeful/internal/logger"
	"github.com/dooshek/wakeful/internal/types"
	"github.com/fatih/color"
)

func RunWizard() error {
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	bold.Println("\n☕ Welcome to Wakeful Configuration Wizard!")
	fmt.Println("\nThis wizard will help you choose how wakeful keeps your machine awake.")

	reader := bufio.NewReader(os.Stdin)
	config := DefaultConfig()

	cyan.Println("\nSelect a strategy:")
	fmt.Println("  1. auto   - probe the platform and pick the best mechanism (recommended)")
	fmt.Println("  2. native - request a wake lock from the desktop portal")
	fmt.Println("  3. legacy - periodically reset user activity (old X11 sessions)")
	fmt.Println("  4. media  - keep a silent audio loop playing")
	fmt.Print("\nChoice [1]: ")

	choice, err := readLine(reader)
	if err != nil {
		logger.Error("Failed to read input", err)
		return err
	}

	switch choice {
	case "", "1":
		config.Inhibit.Strategy = types.StrategyAuto
	case "2":
		config.Inhibit.Strategy = types.StrategyNative
	case "3":
		config.Inhibit.Strategy = types.StrategyLegacy
	case "4":
		config.Inhibit.Strategy = types.StrategyMedia
	default:
		err := fmt.Errorf("invalid choice: %q", choice)
		logger.Error("Invalid strategy choice", err)
		return err
	}

	if config.Inhibit.Strategy == types.StrategyAuto || config.Inhibit.Strategy == types.StrategyLegacy {
		fmt.Printf("\nLegacy reset interval in seconds [%d]: ", DefaultResetIntervalSec)
		answer, err := readLine(reader)
		if err != nil {
			logger.Error("Failed to read input", err)
			return err
		}
		if answer != "" {
			interval, err := strconv.Atoi(answer)
			if err != nil || interval < MinResetIntervalSec {
				err := fmt.Errorf("invalid interval: %q", answer)
				logger.Error("Invalid reset interval", err)
				return err
			}
			config.Inhibit.ResetIntervalSec = interval
		}
	}

	fmt.Print("\nShow a desktop notification when the wake lock is lost? [Y/n]: ")
	answer, err := readLine(reader)
	if err != nil {
		logger.Error("Failed to read input", err)
		return err
	}
	config.Inhibit.Notifications = answer == "" || answer == "y" || answer == "yes"

	yellow.Printf("\nSelected strategy: %s\n", config.Inhibit.Strategy)

	if err := SaveConfig(config); err != nil {
		logger.Error("Failed to save config", err)
		return err
	}

	green.Println("\n✅ Configuration saved successfully!")
	fmt.Println("You can now run wakeful to keep your machine awake.")

	return nil
}

func readLine(reader *bufio.Reader) (string, error) {
	response, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}

	response = strings.TrimSpace(response)
	response = strings.ToLower(response)
	response = strings.TrimRight(response, "\r\n")
	// Remove any control characters
	response = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 { // ASCII control characters
			return -1
		}
		return r
	}, response)

	return response, nil
}
