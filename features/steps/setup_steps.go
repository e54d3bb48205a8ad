//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ylexus/google-issue-193814298/cmd"
	"github.com/ylexus/google-issue-193814298/infrastructure/config"

	"github.com/cucumber/godog"
)

type setupContext struct {
	tempDir         string
	configPath      string
	originalContent string
	output          *bytes.Buffer
	err             error
}

// MockPrompter implements cmd.Prompter for testing, answering by prompt text
type MockPrompter struct {
	answers  map[string]string
	confirms []bool
}

func (m *MockPrompter) Input(message string, defaultValue string) (string, error) {
	if answer, ok := m.answers[message]; ok {
		return answer, nil
	}
	return defaultValue, nil
}

func (m *MockPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	if len(m.confirms) == 0 {
		return defaultValue, nil
	}
	answer := m.confirms[0]
	m.confirms = m.confirms[1:]
	return answer, nil
}

func (m *MockPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	answer, ok := m.answers[message]
	if !ok {
		return defaultValue, nil
	}
	for _, option := range options {
		if option == answer {
			return answer, nil
		}
	}
	return "", fmt.Errorf("%q is not one of %v", answer, options)
}

func InitializeSetupScenario(ctx *godog.ScenarioContext) {
	s := &setupContext{}

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "setup-test-*")
		if err != nil {
			return c, err
		}
		*s = setupContext{
			tempDir:    tempDir,
			configPath: filepath.Join(tempDir, "config", "config.yaml"),
			output:     &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if s.tempDir != "" {
			os.RemoveAll(s.tempDir)
		}
		return c, nil
	})

	ctx.Step(`^no config file exists for setup$`, s.noConfigFileExistsForSetup)
	ctx.Step(`^a config file already exists for setup$`, s.aConfigFileAlreadyExistsForSetup)
	ctx.Step(`^I run the setup command with inputs:$`, s.iRunTheSetupCommandWithInputs)
	ctx.Step(`^I run the setup command with confirmation "([^"]*)"$`, s.iRunTheSetupCommandWithConfirmation)
	ctx.Step(`^a config file should exist$`, s.aConfigFileShouldExist)
	ctx.Step(`^the config should have probe interval "([^"]*)"$`, s.theConfigShouldHaveProbeInterval)
	ctx.Step(`^the config should have callback port (\d+)$`, s.theConfigShouldHaveCallbackPort)
	ctx.Step(`^the config should have missed ticks "([^"]*)"$`, s.theConfigShouldHaveMissedTicks)
	ctx.Step(`^the setup should be cancelled$`, s.theSetupShouldBeCancelled)
	ctx.Step(`^the existing config should be unchanged$`, s.theExistingConfigShouldBeUnchanged)
}

func (s *setupContext) noConfigFileExistsForSetup() error {
	return nil
}

func (s *setupContext) aConfigFileAlreadyExistsForSetup() error {
	if err := os.MkdirAll(filepath.Dir(s.configPath), 0755); err != nil {
		return err
	}
	s.originalContent = "probe:\n  interval: 5m0s\n"
	return os.WriteFile(s.configPath, []byte(s.originalContent), 0644)
}

func (s *setupContext) iRunTheSetupCommandWithInputs(table *godog.Table) error {
	prompter := &MockPrompter{answers: make(map[string]string)}
	for _, row := range table.Rows[1:] {
		prompter.answers[row.Cells[0].Value] = row.Cells[1].Value
	}
	s.err = cmd.RunSetupWithPrompter(prompter, s.configPath, s.output)
	return s.err
}

func (s *setupContext) iRunTheSetupCommandWithConfirmation(answer string) error {
	prompter := &MockPrompter{confirms: []bool{strings.EqualFold(answer, "yes")}}
	s.err = cmd.RunSetupWithPrompter(prompter, s.configPath, s.output)
	return s.err
}

func (s *setupContext) load() (*config.Config, error) {
	return config.Load(s.configPath)
}

func (s *setupContext) aConfigFileShouldExist() error {
	if _, err := os.Stat(s.configPath); err != nil {
		return fmt.Errorf("config file not found: %w", err)
	}
	return nil
}

func (s *setupContext) theConfigShouldHaveProbeInterval(expected string) error {
	cfg, err := s.load()
	if err != nil {
		return err
	}
	if cfg.Probe.Interval.String() != expected {
		return fmt.Errorf("expected probe interval %s, got %s", expected, cfg.Probe.Interval)
	}
	return nil
}

func (s *setupContext) theConfigShouldHaveCallbackPort(expected int) error {
	cfg, err := s.load()
	if err != nil {
		return err
	}
	if cfg.Google.CallbackPort != expected {
		return fmt.Errorf("expected callback port %d, got %d", expected, cfg.Google.CallbackPort)
	}
	return nil
}

func (s *setupContext) theConfigShouldHaveMissedTicks(expected string) error {
	cfg, err := s.load()
	if err != nil {
		return err
	}
	if cfg.Probe.MissedTicks != expected {
		return fmt.Errorf("expected missed ticks %q, got %q", expected, cfg.Probe.MissedTicks)
	}
	return nil
}

func (s *setupContext) theSetupShouldBeCancelled() error {
	if !strings.Contains(s.output.String(), "Setup cancelled.") {
		return fmt.Errorf("expected setup to be cancelled, output was:\n%s", s.output.String())
	}
	return nil
}

func (s *setupContext) theExistingConfigShouldBeUnchanged() error {
	data, err := os.ReadFile(s.configPath)
	if err != nil {
		return err
	}
	if string(data) != s.originalContent {
		return fmt.Errorf("config was modified:\n%s", data)
	}
	return nil
}
