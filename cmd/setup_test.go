package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ylexus/google-issue-193814298/infrastructure/config"
)

// scriptedPrompter answers prompts by message, falling back to the default
type scriptedPrompter struct {
	inputs   map[string]string
	confirms map[string]bool
	selects  map[string]string
	failOn   string
	asked    []string
}

func (p *scriptedPrompter) Input(message string, defaultValue string) (string, error) {
	p.asked = append(p.asked, message)
	if message == p.failOn {
		return "", errors.New("interrupt")
	}
	if v, ok := p.inputs[message]; ok {
		return v, nil
	}
	return defaultValue, nil
}

func (p *scriptedPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	p.asked = append(p.asked, message)
	if v, ok := p.confirms[message]; ok {
		return v, nil
	}
	return defaultValue, nil
}

func (p *scriptedPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	p.asked = append(p.asked, message)
	if v, ok := p.selects[message]; ok {
		return v, nil
	}
	return defaultValue, nil
}

func TestRunSetup_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "config.yaml")
	var out bytes.Buffer

	err := RunSetupWithPrompter(&scriptedPrompter{}, path, &out)

	require.NoError(t, err)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.Contains(t, out.String(), "Configuration saved to "+path)
}

func TestRunSetup_CustomValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	prompter := &scriptedPrompter{
		inputs: map[string]string{
			"Where should the OAuth token be cached?": "/var/cache/google-auth",
			"Local port for the OAuth callback?":      "9999",
			"How often should Drive be probed?":       "30s",
			"Content type sent with uploaded media?":  "image/jpeg",
		},
		selects: map[string]string{
			"When a probe overruns its interval, missed probes should": "back-to-back",
		},
	}

	require.NoError(t, RunSetupWithPrompter(prompter, path, &bytes.Buffer{}))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/cache/google-auth", cfg.Google.TokenDirectory)
	assert.Equal(t, 9999, cfg.Google.CallbackPort)
	assert.Equal(t, 30*time.Second, cfg.Probe.Interval)
	assert.Equal(t, "back-to-back", cfg.Probe.MissedTicks)
	assert.Equal(t, "image/jpeg", cfg.Upload.MimeType)
}

func TestRunSetup_InvalidAnswers(t *testing.T) {
	tests := []struct {
		name   string
		inputs map[string]string
		errMsg string
	}{
		{
			name:   "port is not a number",
			inputs: map[string]string{"Local port for the OAuth callback?": "eighty"},
			errMsg: "invalid port",
		},
		{
			name:   "port out of range",
			inputs: map[string]string{"Local port for the OAuth callback?": "70000"},
			errMsg: "callback_port",
		},
		{
			name:   "interval is not a duration",
			inputs: map[string]string{"How often should Drive be probed?": "every minute"},
			errMsg: "invalid interval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")

			err := RunSetupWithPrompter(&scriptedPrompter{inputs: tt.inputs}, path, &bytes.Buffer{})

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			_, statErr := os.Stat(path)
			assert.True(t, os.IsNotExist(statErr), "config must not be written")
		})
	}
}

func TestRunSetup_ExistingConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("probe:\n  interval: 5s\n"), 0644))
	var out bytes.Buffer

	err := RunSetupWithPrompter(&scriptedPrompter{}, path, &out)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "Setup cancelled.")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "probe:\n  interval: 5s\n", string(data))
}

func TestRunSetup_OverwriteConfirmed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("probe:\n  interval: 5s\n"), 0644))
	prompter := &scriptedPrompter{confirms: map[string]bool{"config.yaml already exists. Overwrite?": true}}

	require.NoError(t, RunSetupWithPrompter(prompter, path, &bytes.Buffer{}))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultInterval, cfg.Probe.Interval)
}

func TestRunSetup_PromptCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	prompter := &scriptedPrompter{failOn: "How often should Drive be probed?"}

	err := RunSetupWithPrompter(prompter, path, &bytes.Buffer{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "prompt cancelled")
}
