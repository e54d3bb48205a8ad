package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ylexus/google-issue-193814298/application/schedule"
	"github.com/ylexus/google-issue-193814298/infrastructure/config"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
	Select(message string, options []string, defaultValue string) (string, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

func (p *SurveyPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Select{
		Message: message,
		Options: options,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

Every value has a working default, so pressing enter throughout writes
the same settings the program uses without a config file.`,
	Args: cobra.NoArgs,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = DefaultConfigPath
	}
	return RunSetupWithPrompter(DefaultPrompter, path, cmd.OutOrStdout())
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string, out io.Writer) error {
	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm("config.yaml already exists. Overwrite?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !overwrite {
			fmt.Fprintln(out, "Setup cancelled.")
			return nil
		}
	}

	fmt.Fprintln(out, "Welcome to google-issue-193814298 setup!")
	fmt.Fprintln(out)

	cfg := config.Default()

	if err := promptGoogle(prompter, cfg); err != nil {
		return err
	}

	if err := promptProbe(prompter, cfg); err != nil {
		return err
	}

	if err := promptUpload(prompter, cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Configuration saved to %s\n", configPath)
	return nil
}

func promptGoogle(prompter Prompter, cfg *config.Config) error {
	dir, err := prompter.Input("Where should the OAuth token be cached?", cfg.Google.TokenDirectory)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if dir != "" {
		cfg.Google.TokenDirectory = dir
	}

	portValue, err := prompter.Input("Local port for the OAuth callback?", strconv.Itoa(cfg.Google.CallbackPort))
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if portValue != "" {
		p, err := strconv.Atoi(portValue)
		if err != nil {
			return fmt.Errorf("invalid port %q", portValue)
		}
		cfg.Google.CallbackPort = p
	}

	return nil
}

func promptProbe(prompter Prompter, cfg *config.Config) error {
	value, err := prompter.Input("How often should Drive be probed?", cfg.Probe.Interval.String())
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if value != "" {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid interval %q: %w", value, err)
		}
		cfg.Probe.Interval = d
	}

	policy, err := prompter.Select("When a probe overruns its interval, missed probes should",
		[]string{schedule.PolicySkip, schedule.PolicyBackToBack}, cfg.Probe.MissedTicks)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Probe.MissedTicks = policy

	return nil
}

func promptUpload(prompter Prompter, cfg *config.Config) error {
	mimeType, err := prompter.Input("Content type sent with uploaded media?", cfg.Upload.MimeType)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if mimeType != "" {
		cfg.Upload.MimeType = mimeType
	}
	return nil
}
