package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/soligraph/soligraph/internal/config"
	"github.com/spf13/cobra"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize soligraph configuration interactively",
	Long: `Guides you through setting up soligraph configuration step by step.
Creates a config file with output mode, caching and output settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit()
	},
}

func runInit() error {
	// === SECTION 1: Output Mode ===
	outputMode := "standard"
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Output Mode - Controls graph filtering aggressiveness").
				Description("Compact keeps only critical nodes; verbose keeps nearly everything").
				Options(
					huh.NewOption("Compact (critical nodes only)", "compact"),
					huh.NewOption("Standard (recommended)", "standard"),
					huh.NewOption("Verbose (full detail with node text)", "verbose"),
				).
				Value(&outputMode),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	// === SECTION 2: Analysis Defaults ===
	defaultVersion := "0.4.x"
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Default Solidity version").
				Description("Assumed when a source file has no pragma directive").
				Options(
					huh.NewOption("0.4.x (legacy)", "0.4.x"),
					huh.NewOption("0.5.x", "0.5.x"),
					huh.NewOption("0.6.x", "0.6.x"),
					huh.NewOption("0.7.x", "0.7.x"),
					huh.NewOption("0.8.x", "0.8.x"),
				).
				Value(&defaultVersion),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	outputDir := "output"
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Output directory").
				Placeholder("output").
				Value(&outputDir),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}
	if outputDir == "" {
		outputDir = "output"
	}

	cacheEnabled := true
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Result Cache").
				Description("Cache analysis results keyed by source content?").
				Affirmative("Enable").
				Negative("Disable").
				Value(&cacheEnabled),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	// === SECTION 3: Config Location ===
	var saveLocationChoice string
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Save Configuration").
				Description("Where to save the configuration file?").
				Options(
					huh.NewOption("Global (~/.soligraph/config.yaml)", "global"),
					huh.NewOption("Project (./.soligraph/config.yaml)", "project"),
				).
				Value(&saveLocationChoice),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	var configPath string
	if saveLocationChoice == "global" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("getting home directory: %w", err)
		}
		configPath = filepath.Join(home, ".soligraph", "config.yaml")
	} else {
		configPath = ".soligraph/config.yaml"
	}

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		var overwrite bool
		form = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Config file exists").
					Description(fmt.Sprintf("Overwrite existing config at %s?", configPath)).
					Affirmative("Overwrite").
					Negative("Cancel").
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	// === Build config struct ===
	cfg := config.DefaultConfig()
	cfg.OutputMode = outputMode
	cfg.DefaultSolidityVersion = defaultVersion
	cfg.OutputDir = outputDir
	cfg.CacheEnabled = cacheEnabled
	if outputMode == "verbose" {
		cfg.IncludeNodeText = true
		cfg.IncludeASTMetadata = true
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// Show config preview
	fmt.Println("\n=== Configuration Preview ===")
	fmt.Printf("Config path: %s\n", configPath)
	fmt.Printf("Output mode: %s\n", cfg.OutputMode)
	fmt.Printf("Default Solidity version: %s\n", cfg.DefaultSolidityVersion)
	fmt.Printf("Output directory: %s\n", cfg.OutputDir)
	fmt.Printf("Cache enabled: %v\n", cfg.CacheEnabled)
	if cfg.CacheEnabled {
		fmt.Printf("Cache directory: %s\n", cfg.CacheDir)
	}
	fmt.Println("================================")

	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("Configuration saved to: %s\n", configPath)

	// Reload to verify the file round-trips
	if _, err := config.LoadFromFile(configPath); err != nil {
		return fmt.Errorf("verifying saved config: %w", err)
	}

	fmt.Println("\n=== Initialization Complete ===")
	return nil
}

func init() {
	RootCmd.AddCommand(initCmd)
}
