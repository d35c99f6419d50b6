package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsFrom_Defaults(t *testing.T) {
	t.Parallel()
	s, err := LoadSettingsFrom(map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, 60*time.Minute, s.StackWaitTimeout)
	assert.Equal(t, "kumactl", s.Kumactl)
	assert.Empty(t, s.AWSEndpoint)
}

func TestLoadSettingsFrom_Overrides(t *testing.T) {
	t.Parallel()
	s, err := LoadSettingsFrom(map[string]string{
		"KMECS_STACK_WAIT_TIMEOUT": "5m",
		"KMECS_AWS_ENDPOINT":       "http://localhost:4566",
		"KMECS_KUMACTL":            "/opt/kong-mesh/bin/kumactl",
	})
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, s.StackWaitTimeout)
	assert.Equal(t, "http://localhost:4566", s.AWSEndpoint)
	assert.Equal(t, "/opt/kong-mesh/bin/kumactl", s.Kumactl)
}

func TestLoadSettingsFrom_Invalid(t *testing.T) {
	t.Parallel()
	_, err := LoadSettingsFrom(map[string]string{"KMECS_STACK_WAIT_TIMEOUT": "soon"})
	assert.Error(t, err)

	_, err = LoadSettingsFrom(map[string]string{"KMECS_STACK_WAIT_TIMEOUT": "0s"})
	assert.Error(t, err)
}
