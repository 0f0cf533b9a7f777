package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kg-project/sparqlq/internal/cli/config"
)

func TestNewInitCommand(t *testing.T) {
	tests := []struct {
		name      string
		setupDir  func(t *testing.T, dir string)
		args      []string
		wantErr   bool
		wantFiles []string
	}{
		{
			name:      "init empty directory",
			args:      []string{},
			wantFiles: []string{"sparqlq.yaml"},
		},
		{
			name: "init with example",
			args: []string{"--example"},
			wantFiles: []string{
				"sparqlq.yaml",
				"examples.yaml",
				"queries/types.rq",
			},
		},
		{
			name: "init existing config without force",
			setupDir: func(_ *testing.T, dir string) {
				_ = os.WriteFile(filepath.Join(dir, "sparqlq.yaml"), []byte("existing"), 0600)
			},
			args:    []string{},
			wantErr: true,
		},
		{
			name: "init existing config with force",
			setupDir: func(_ *testing.T, dir string) {
				_ = os.WriteFile(filepath.Join(dir, "sparqlq.yaml"), []byte("existing"), 0600)
			},
			args:      []string{"--force"},
			wantFiles: []string{"sparqlq.yaml"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			t.Chdir(tmpDir)

			if tt.setupDir != nil {
				tt.setupDir(t, tmpDir)
			}

			cmd := NewInitCommand()
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			for _, f := range tt.wantFiles {
				_, err := os.Stat(filepath.Join(tmpDir, f))
				assert.False(t, os.IsNotExist(err), "expected file %q to exist", f)
				assert.Contains(t, buf.String(), f)
			}
		})
	}
}

func TestInitCommandMetadata(t *testing.T) {
	cmd := NewInitCommand()

	assert.Equal(t, "init [directory]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("force"), "--force flag should exist")
	assert.NotNil(t, cmd.Flags().Lookup("example"), "--example flag should exist")
}

func TestInitCreatesLoadableConfig(t *testing.T) {
	for _, args := range [][]string{{"target-dir"}, {"target-dir", "--example"}} {
		t.Run(args[len(args)-1], func(t *testing.T) {
			tmpDir := t.TempDir()
			t.Chdir(tmpDir)

			cmd := NewInitCommand()
			cmd.SetOut(new(bytes.Buffer))
			cmd.SetErr(new(bytes.Buffer))
			cmd.SetArgs(args)
			require.NoError(t, cmd.Execute())

			cfg, err := config.LoadConfig(filepath.Join(tmpDir, "target-dir", "sparqlq.yaml"), "", nil)
			require.NoError(t, err)
			assert.Equal(t, "http://localhost:7200", cfg.Endpoint.BaseURL)
			assert.Equal(t, "kg-01", cfg.Endpoint.Repository)

			lib, err := cfg.ExampleLibrary()
			require.NoError(t, err)
			if cfg.ExamplesFile != "" {
				_, ok := lib.Lookup("People")
				assert.True(t, ok, "examples.yaml should be loaded relative to the config")
			}
		})
	}
}

func TestGroupTemplateFiles(t *testing.T) {
	groups := groupTemplateFiles([]string{"sparqlq.yaml", "examples.yaml", "queries/types.rq"})

	assert.Equal(t, []string{"sparqlq.yaml"}, groups["config"])
	assert.Equal(t, []string{"examples.yaml"}, groups["examples"])
	assert.Equal(t, []string{"queries/types.rq"}, groups["queries"])
}
