package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default("Alex", "household")
	cfg.Import.DefaultAccountID = 101
	cfg.Import.Mappings = map[string]string{
		"mybank": "date=0,description=2,amount=3",
	}

	path := filepath.Join(t.TempDir(), FileName)
	err := Save(path, cfg)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Profile.Name, got.Profile.Name)
	assert.Equal(t, cfg.Profile.DefaultBudgetType, got.Profile.DefaultBudgetType)
	assert.Equal(t, cfg.Reminders.Enabled, got.Reminders.Enabled)
	assert.Equal(t, cfg.Reminders.Schedule, got.Reminders.Schedule)
	assert.Equal(t, cfg.Reminders.WindowDays, got.Reminders.WindowDays)
	assert.Equal(t, cfg.Git.AutoCommit, got.Git.AutoCommit)
	assert.Equal(t, cfg.Git.AuthorName, got.Git.AuthorName)
	assert.Equal(t, 101, got.Import.DefaultAccountID)
	assert.Equal(t, cfg.Import.Mappings["mybank"], got.Import.Mappings["mybank"])
}

func TestDefaults(t *testing.T) {
	cfg := Default("Alex", "household")

	assert.Equal(t, "Alex", cfg.Profile.Name)
	assert.Equal(t, "household", cfg.Profile.DefaultBudgetType)
	assert.True(t, cfg.Reminders.Enabled)
	assert.Equal(t, "0 8 * * *", cfg.Reminders.Schedule)
	assert.Equal(t, 7, cfg.Reminders.WindowDays)
	assert.True(t, cfg.Git.AutoCommit)
	assert.Equal(t, "Billfold", cfg.Git.AuthorName)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestYAMLFormat(t *testing.T) {
	cfg := Default("Alex", "household")
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "name: Alex")
	assert.Contains(t, contents, "default_budget_type: household")
	assert.Contains(t, contents, "auto_commit: true")
	assert.Contains(t, contents, "window_days: 7")
}
