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

	"github.com/cucumber/godog"
)

type startupContext struct {
	tempDir    string
	configPath string
	secretPath string
	tokenDir   string
	stderr     *bytes.Buffer
	err        error
}

func InitializeStartupScenario(ctx *godog.ScenarioContext) {
	s := &startupContext{}

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "startup-test-*")
		if err != nil {
			return c, err
		}
		*s = startupContext{
			tempDir:    tempDir,
			configPath: filepath.Join(tempDir, "config.yaml"),
			secretPath: filepath.Join(tempDir, "client_secret.json"),
			tokenDir:   filepath.Join(tempDir, "google-auth"),
			stderr:     &bytes.Buffer{},
		}
		// An empty config keeps every default
		return c, os.WriteFile(s.configPath, nil, 0644)
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if s.tempDir != "" {
			os.RemoveAll(s.tempDir)
		}
		return c, nil
	})

	ctx.Step(`^a client secret file that does not exist$`, s.aClientSecretFileThatDoesNotExist)
	ctx.Step(`^a client secret file containing "([^"]*)"$`, s.aClientSecretFileContaining)
	ctx.Step(`^a config file containing:$`, s.aConfigFileContaining)
	ctx.Step(`^I start the program with (\d+) arguments$`, s.iStartTheProgramWithArguments)
	ctx.Step(`^I start the program with the client secret and "([^"]*)"$`, s.iStartTheProgramWithTheClientSecretAnd)
	ctx.Step(`^startup should fail with "([^"]*)"$`, s.startupShouldFailWith)
	ctx.Step(`^no token should have been cached$`, s.noTokenShouldHaveBeenCached)
}

func (s *startupContext) aClientSecretFileThatDoesNotExist() error {
	s.secretPath = filepath.Join(s.tempDir, "missing.json")
	return nil
}

func (s *startupContext) aClientSecretFileContaining(content string) error {
	return os.WriteFile(s.secretPath, []byte(content), 0600)
}

func (s *startupContext) aConfigFileContaining(doc *godog.DocString) error {
	return os.WriteFile(s.configPath, []byte(doc.Content), 0644)
}

func (s *startupContext) execute(positional ...string) error {
	args := append([]string{
		"--config", s.configPath,
		"--token-dir", s.tokenDir,
	}, positional...)

	root := cmd.RootCommand()
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(s.stderr)
	defer root.SetArgs(nil)

	s.err = root.Execute()
	return nil
}

func (s *startupContext) iStartTheProgramWithArguments(count int) error {
	positional := make([]string, count)
	for i := range positional {
		positional[i] = fmt.Sprintf("arg-%d", i)
	}
	return s.execute(positional...)
}

func (s *startupContext) iStartTheProgramWithTheClientSecretAnd(mediaPath string) error {
	return s.execute(s.secretPath, mediaPath)
}

func (s *startupContext) startupShouldFailWith(text string) error {
	if s.err == nil {
		return fmt.Errorf("expected startup to fail")
	}
	if !strings.Contains(s.err.Error(), text) {
		return fmt.Errorf("expected error containing %q, got %q", text, s.err.Error())
	}
	return nil
}

func (s *startupContext) noTokenShouldHaveBeenCached() error {
	if _, err := os.Stat(s.tokenDir); !os.IsNotExist(err) {
		return fmt.Errorf("expected no token directory at %s", s.tokenDir)
	}
	return nil
}
