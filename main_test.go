package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"spacegate/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestGateSufficientSpace(t *testing.T) {
	t.Setenv(services.EnvRequiredSpace, "0")

	code, stdout, _ := run(t, "--path", t.TempDir())
	assert.Equal(t, 0, code)
	assert.Equal(t, "Checking disk space, required: 0GB\n", stdout)
}

func TestGateInsufficientSpace(t *testing.T) {
	t.Setenv(services.EnvRequiredSpace, "9999999")

	code, stdout, _ := run(t, "--path", t.TempDir())
	assert.Equal(t, exitInsufficient, code)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Checking disk space, required: 9999999GB", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Not enough free disk space ("), lines[1])
	assert.True(t, strings.HasSuffix(lines[1], "/9999999GB.)"), lines[1])
}

func TestGateRequiredFlagOverridesEnv(t *testing.T) {
	t.Setenv(services.EnvRequiredSpace, "9999999")

	code, stdout, _ := run(t, "--path", t.TempDir(), "--required", "0")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "required: 0GB")
}

func TestGateInvalidRequiredSpace(t *testing.T) {
	t.Setenv(services.EnvRequiredSpace, "lots")

	code, stdout, stderr := run(t, "--path", t.TempDir())
	assert.Equal(t, exitFailure, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "invalid required space")
}

func TestGateMissingPath(t *testing.T) {
	t.Setenv(services.EnvRequiredSpace, "1")
	missing := filepath.Join(t.TempDir(), "gone")

	code, stdout, stderr := run(t, "--path", missing)
	assert.Equal(t, exitFailure, code)
	assert.Equal(t, "Checking disk space, required: 1GB\n", stdout)
	assert.Contains(t, stderr, missing)
}

func TestGateRejectsArguments(t *testing.T) {
	code, _, _ := run(t, "extra")
	assert.Equal(t, exitFailure, code)
}

func TestTokenCommand(t *testing.T) {
	secret := "0123456789abcdef0123456789abcdef"
	t.Setenv(services.EnvProbeJWTSecret, secret)

	code, stdout, _ := run(t, "token", "--name", "deployer", "--token-expiry", "1h")
	require.Equal(t, 0, code)

	auth, err := services.NewAuthService(secret, time.Hour)
	require.NoError(t, err)
	claims, err := auth.ValidateToken(strings.TrimSpace(stdout))
	require.NoError(t, err)
	assert.Equal(t, "deployer", claims.ClientName)
}

func TestTokenCommandWithoutSecret(t *testing.T) {
	t.Setenv(services.EnvProbeJWTSecret, "")
	require.NoError(t, os.Unsetenv(services.EnvProbeJWTSecret))

	code, stdout, _ := run(t, "token")
	assert.Equal(t, exitFailure, code)
	assert.Empty(t, stdout)
}
