package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// SaveConfig writes the configuration back to the package's config.yaml.
func SaveConfig(cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	path := filepath.Join("Internal", "utils", "config", "config.yaml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ConfigureInteractive allows users to interactively configure the system
func ConfigureInteractive(cfg *Config) error {
	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Println("\n⚙️  Configuration Menu:")
		fmt.Println("1. View Current Configuration")
		fmt.Println("2. Configure Backtest Defaults")
		fmt.Println("3. Configure Server & Providers")
		fmt.Println("4. Configure History")
		fmt.Println("5. Save & Exit")
		fmt.Print("Select option: ")

		choice, _ := reader.ReadString('\n')
		choice = strings.TrimSpace(choice)

		switch choice {
		case "1":
			DisplayConfiguration(cfg)
		case "2":
			configureDefaults(cfg, reader)
		case "3":
			configureServer(cfg, reader)
		case "4":
			configureHistory(cfg, reader)
		case "5":
			err := SaveConfig(cfg)
			if err != nil {
				fmt.Printf("❌ Error saving config: %v\n", err)
				continue
			}
			fmt.Println("✅ Configuration saved successfully!")
			return nil
		default:
			fmt.Println("❌ Invalid option")
		}
	}
}

// DisplayConfiguration shows current configuration
func DisplayConfiguration(cfg *Config) {
	fmt.Println("\n📋 Current Configuration:")
	fmt.Println("\n=== Backtest Defaults ===")
	fmt.Printf("Market: %s\n", cfg.Defaults.Market)
	fmt.Printf("Timeframe: %s\n", cfg.Defaults.Timeframe)
	fmt.Printf("Period: %d days\n", cfg.Defaults.PeriodDays)

	fmt.Println("\n=== Server ===")
	fmt.Printf("Listen Address: %s\n", cfg.Server.Addr)
	fmt.Printf("Snapshot Provider: %s\n", cfg.Providers.PolymarketURL)

	fmt.Println("\n=== History ===")
	fmt.Printf("Enabled: %v\n", enabledStr(cfg.History.Enabled))
	fmt.Printf("List Limit: %d\n", cfg.History.Limit)
}

func configureDefaults(cfg *Config, reader *bufio.Reader) {
	fmt.Println("\n📊 Configure Backtest Defaults:")

	fmt.Printf("Current market: %s\n", cfg.Defaults.Market)
	fmt.Print("New market (e.g. BTC/USD): ")
	if input := readLine(reader); input != "" {
		cfg.Defaults.Market = input
	}

	fmt.Printf("Current timeframe: %s\n", cfg.Defaults.Timeframe)
	fmt.Print("New timeframe (5m/15m/1h/4h/1d): ")
	if input := readLine(reader); input != "" {
		cfg.Defaults.Timeframe = input
	}

	fmt.Printf("Current period: %d days\n", cfg.Defaults.PeriodDays)
	fmt.Print("New period (days): ")
	if val, err := strconv.Atoi(readLine(reader)); err == nil && val > 0 {
		cfg.Defaults.PeriodDays = val
	}

	fmt.Println("✅ Defaults updated")
}

func configureServer(cfg *Config, reader *bufio.Reader) {
	fmt.Println("\n🌐 Configure Server & Providers:")

	fmt.Printf("Current listen address: %s\n", cfg.Server.Addr)
	fmt.Print("New listen address (e.g. :8080): ")
	if input := readLine(reader); input != "" {
		cfg.Server.Addr = input
	}

	fmt.Printf("Current snapshot provider: %s\n", cfg.Providers.PolymarketURL)
	fmt.Print("New snapshot provider URL: ")
	if input := readLine(reader); input != "" {
		cfg.Providers.PolymarketURL = input
	}

	fmt.Println("✅ Server settings updated")
}

func configureHistory(cfg *Config, reader *bufio.Reader) {
	fmt.Println("\n🗄  Configure History:")
	fmt.Printf("1. Persistence: %s\n", enabledStr(cfg.History.Enabled))
	fmt.Printf("2. List Limit: %d\n", cfg.History.Limit)
	fmt.Print("Select setting (1-2) or press Enter to skip: ")

	switch readLine(reader) {
	case "1":
		cfg.History.Enabled = !cfg.History.Enabled
		fmt.Printf("✅ Persistence: %s\n", enabledStr(cfg.History.Enabled))
	case "2":
		fmt.Print("New list limit: ")
		if val, err := strconv.Atoi(readLine(reader)); err == nil && val > 0 {
			cfg.History.Limit = val
			fmt.Printf("✅ List limit: %d\n", val)
		}
	default:
		fmt.Println("No changes made")
	}
}

func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func enabledStr(enabled bool) string {
	if enabled {
		return "✅ Enabled"
	}
	return "❌ Disabled"
}
