package main

import (
	"errors"
	"testing"

	"github.com/manifoldco/promptui"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptError(t *testing.T) {
	other := errors.New("terminal gone")

	assert.NoError(t, promptError(nil))
	assert.ErrorIs(t, promptError(promptui.ErrInterrupt), errExit)
	assert.ErrorIs(t, promptError(promptui.ErrEOF), errExit)
	assert.ErrorIs(t, promptError(other), other)
}

func TestGetConfigReadsBoundValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	viper.Set("resume", "./resume.pdf")
	viper.Set("role", "Backend Developer")
	viper.Set("questions", 3)
	viper.Set("offline", true)

	cfg, err := getConfig()
	require.NoError(t, err)
	assert.Equal(t, "./resume.pdf", cfg.Resume)
	assert.Equal(t, "Backend Developer", cfg.Role)
	assert.Equal(t, 3, cfg.Questions)
	assert.True(t, cfg.Offline)
}
