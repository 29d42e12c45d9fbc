package cmd

import (
	"fmt"
	"os"

	"clipwatch/pkg/config"
	"clipwatch/pkg/errors"

	"github.com/spf13/cobra"
)

var (
	configProfileName string
	configBaseURL     string
	configModel       string
	configAPIKey      string
	configForce       bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage clipwatch configuration and profiles",
	Long:  `Manage clipwatch configuration, including chat model profiles.`,
}

// configView is what 'config show' prints; the API key is never shown.
type configView struct {
	Path          string               `json:"path" yaml:"path"`
	ActiveProfile string               `json:"active_profile" yaml:"active_profile"`
	Watch         config.WatchConfig   `json:"watch" yaml:"watch"`
	LLM           llmView              `json:"llm" yaml:"llm"`
	History       config.HistoryConfig `json:"history" yaml:"history"`
	Profiles      []string             `json:"profiles" yaml:"profiles"`
}

type llmView struct {
	BaseURL    string `json:"base_url" yaml:"base_url"`
	Model      string `json:"model" yaml:"model"`
	APIKeySet  bool   `json:"api_key_set" yaml:"api_key_set"`
	TimeoutSec int    `json:"timeout_sec" yaml:"timeout_sec"`
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func orNotSet(set bool) string {
	if set {
		return "(set)"
	}
	return "(not set)"
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration including active profile settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path, _ := config.GetConfigPath()

		view := configView{
			Path:          path,
			ActiveProfile: cfg.ActiveProfile,
			Watch:         cfg.Watch,
			LLM: llmView{
				BaseURL:    cfg.LLM.BaseURL,
				Model:      cfg.LLM.Model,
				APIKeySet:  cfg.LLM.APIKey != "",
				TimeoutSec: cfg.LLM.TimeoutSec,
			},
			History:  cfg.History,
			Profiles: cfg.ListProfiles(),
		}

		out := newCommandOutput(cmd)
		if out.IsStructured() {
			return out.Write(view)
		}

		out.Printf("Current Configuration:\n")
		out.Printf("======================\n")
		out.Printf("Config file: %s\n", view.Path)
		out.Printf("Active Profile: %s\n", orNone(view.ActiveProfile))
		out.Printf("\n")
		out.Printf("Poll interval: %dms\n", cfg.Watch.IntervalMS)
		out.Printf("Watch selection: %t (every %dms, settle %dms)\n", cfg.Watch.Selection, cfg.Watch.SelectionIntervalMS, cfg.Watch.SettleMS)
		out.Printf("Skip empty: %t\n", cfg.Watch.SkipEmpty)
		if len(cfg.Watch.Ignore) > 0 {
			out.Printf("Ignore (%s): %v\n", orNone(cfg.Watch.IgnoreMode), cfg.Watch.Ignore)
		}
		out.Printf("\n")
		out.Printf("LLM base URL: %s\n", view.LLM.BaseURL)
		out.Printf("LLM model: %s\n", orNone(view.LLM.Model))
		out.Printf("LLM API key: %s\n", orNotSet(view.LLM.APIKeySet))
		out.Printf("\n")
		out.Printf("History: %t (keep %d)\n", cfg.History.Enabled, cfg.History.Keep)

		if len(cfg.Profiles) > 0 {
			out.Printf("\nAvailable Profiles:\n")
			for _, p := range cfg.Profiles {
				active := ""
				if cfg.IsProfileActive(p.Name) {
					active = " (active)"
				}
				out.Printf("  - %s%s\n", p.Name, active)
				out.Printf("      Model: %s, Base URL: %s\n", orNone(p.LLM.Model), orNone(p.LLM.BaseURL))
			}
		}

		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil && !configForce {
			return errors.NewWithSuggestion(errors.ExitCodeConfig,
				fmt.Sprintf("config file already exists: %s", path),
				"Use --force to overwrite it.")
		}

		if IsDryRun() {
			PrintDryRunAction("write the default config", map[string]string{"Path": path})
			return nil
		}
		if err := config.Save(config.Default()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

var configProfilesCmd = &cobra.Command{
	Use:     "profiles",
	Aliases: []string{"profile"},
	Short:   "Manage configuration profiles",
	Long:    `List, add, remove, and switch between chat model profiles.`,
}

var configProfilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFile()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		profiles := cfg.ListProfiles()
		if len(profiles) == 0 {
			fmt.Fprintln(out, "No profiles configured.")
			fmt.Fprintln(out, "Use 'clipwatch config profiles add --name <name>' to create one.")
			return nil
		}

		fmt.Fprintln(out, "Profiles:")
		for _, name := range profiles {
			profile, _ := cfg.GetProfile(name)
			active := ""
			if cfg.IsProfileActive(name) {
				active = " *active*"
			}
			fmt.Fprintf(out, "  %s%s\n", name, active)
			fmt.Fprintf(out, "    Base URL: %s\n", orNone(profile.LLM.BaseURL))
			fmt.Fprintf(out, "    Model: %s\n", orNone(profile.LLM.Model))
			fmt.Fprintf(out, "    API key: %s\n", orNotSet(profile.LLM.APIKey != ""))
		}

		return nil
	},
}

var configProfilesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new profile",
	Long:  `Add a new chat model profile.`,
	Example: `  # A local OpenAI-compatible server
  clipwatch config profiles add --name local --base-url http://localhost:11434/v1 --model qwen2.5

  # Add a profile with a key (prefer CLIPWATCH_LLM_API_KEY instead)
  clipwatch config profiles add --name ds --model deepseek-chat --api-key $DEEPSEEK_API_KEY`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if configProfileName == "" {
			return errors.ConfigError("profile name is required (--name)")
		}

		cfg, err := config.LoadFile()
		if err != nil {
			return err
		}

		profile := config.Profile{
			Name: configProfileName,
			LLM: config.LLMConfig{
				BaseURL: configBaseURL,
				Model:   configModel,
				APIKey:  configAPIKey,
			},
		}

		if err := cfg.AddProfile(profile); err != nil {
			return err
		}

		if err := config.Save(cfg); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Profile '%s' added successfully.\n", configProfileName)
		fmt.Fprintf(out, "Use 'clipwatch config profiles use --name %s' to activate it.\n", configProfileName)

		return nil
	},
}

var configProfilesRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove a profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		if configProfileName == "" {
			return errors.ConfigError("profile name is required (--name)")
		}

		cfg, err := config.LoadFile()
		if err != nil {
			return err
		}

		if err := cfg.RemoveProfile(configProfileName); err != nil {
			return err
		}

		if err := config.Save(cfg); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Profile '%s' removed successfully.\n", configProfileName)
		return nil
	},
}

var configProfilesUseCmd = &cobra.Command{
	Use:   "use",
	Short: "Switch to a profile",
	Long:  `Set the active profile for subsequent commands. An empty name clears it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFile()
		if err != nil {
			return err
		}

		if err := cfg.SetProfile(configProfileName); err != nil {
			return err
		}

		if err := config.Save(cfg); err != nil {
			return err
		}

		if configProfileName == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "Cleared the active profile.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Switched to profile '%s'.\n", configProfileName)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")

	// Profile management flags
	configProfilesAddCmd.Flags().StringVar(&configProfileName, "name", "", "Profile name (required)")
	configProfilesAddCmd.Flags().StringVar(&configBaseURL, "base-url", "", "OpenAI-compatible API base URL")
	configProfilesAddCmd.Flags().StringVar(&configModel, "model", "", "Chat model name")
	configProfilesAddCmd.Flags().StringVar(&configAPIKey, "api-key", "", "API key (optional, prefer env var)")
	if err := configProfilesAddCmd.MarkFlagRequired("name"); err != nil {
		panic(err)
	}

	configProfilesRemoveCmd.Flags().StringVar(&configProfileName, "name", "", "Profile name (required)")
	if err := configProfilesRemoveCmd.MarkFlagRequired("name"); err != nil {
		panic(err)
	}

	configProfilesUseCmd.Flags().StringVar(&configProfileName, "name", "", "Profile name (empty clears the active profile)")

	configProfilesCmd.AddCommand(configProfilesListCmd)
	configProfilesCmd.AddCommand(configProfilesAddCmd)
	configProfilesCmd.AddCommand(configProfilesRemoveCmd)
	configProfilesCmd.AddCommand(configProfilesUseCmd)

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configProfilesCmd)
	configCmd.AddCommand(configPathCmd)
}
