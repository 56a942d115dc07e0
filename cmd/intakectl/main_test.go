package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aussiebroadwan/leadflow/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testEnv(stdin string) (*env, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &env{stdin: strings.NewReader(stdin), stdout: out, stderr: &bytes.Buffer{}}, out
}

// configure points the CLI at a throwaway sqlite database.
func configure(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("env: test\n"), 0o600))
	t.Setenv("CONFIG_FILE", cfgFile)
	t.Setenv("AUTH_HS256_SECRET", testSecret)
	t.Setenv("DATABASE_FILE", filepath.Join(dir, "intake.db"))
	t.Setenv("PEPPER_FILE", filepath.Join(dir, "pepper"))
	t.Setenv("BLOB_DIR", filepath.Join(dir, "blobs"))

	stubTerminal(t, false)
}

func stubTerminal(t *testing.T, interactive bool) {
	t.Helper()
	orig := isTerminal
	isTerminal = func() bool { return interactive }
	t.Cleanup(func() { isTerminal = orig })
}

func TestRunUsage(t *testing.T) {
	e, _ := testEnv("")
	require.ErrorIs(t, run(context.Background(), e, nil), errUsage)
	require.ErrorIs(t, run(context.Background(), e, []string{"nope"}), errUsage)
	require.Contains(t, e.stderr.(*bytes.Buffer).String(), "create-admin")
}

func TestMintToken(t *testing.T) {
	configure(t)

	e, out := testEnv("")
	require.NoError(t, run(context.Background(), e, []string{"mint-token", "-sub", "user-1", "-role", "admin"}))

	v := jwtx.NewVerifierHS256([]byte(testSecret), "bartab-auth", []string{"leadflow-intake"})
	claims, err := v.Verify(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "admin", claims.Role)
}

func TestMintTokenRejectsBadRole(t *testing.T) {
	e, _ := testEnv("")
	require.ErrorContains(t, run(context.Background(), e, []string{"mint-token", "-sub", "u", "-role", "root"}), "invalid role")
	require.ErrorIs(t, run(context.Background(), e, []string{"mint-token"}), errUsage)
}

func TestCreateAdminAndOrphans(t *testing.T) {
	configure(t)

	e, out := testEnv("Str0ng!pass\n")
	require.NoError(t, run(context.Background(), e, []string{
		"create-admin", "-email", "ops@example.com", "-username", "ops", "-name", "Ops",
	}))
	require.Contains(t, out.String(), "created admin ops")

	e, _ = testEnv("Str0ng!pass\n")
	err := run(context.Background(), e, []string{"create-admin", "-email", "ops@example.com", "-username", "ops2"})
	require.Error(t, err, "email already in use")

	e, _ = testEnv("weak\n")
	err = run(context.Background(), e, []string{"create-admin", "-email", "new@example.com", "-username", "new"})
	require.ErrorContains(t, err, "password")

	e, out = testEnv("")
	require.NoError(t, run(context.Background(), e, []string{"orphans"}))
	require.Contains(t, out.String(), "0 orphaned documents")
}

func TestPromptPasswordTerminal(t *testing.T) {
	stubTerminal(t, true)
	answers := []string{"Str0ng!pass", "Str0ng!pass"}
	origRead := readPassword
	readPassword = func(int) ([]byte, error) {
		pw := answers[0]
		answers = answers[1:]
		return []byte(pw), nil
	}
	t.Cleanup(func() { readPassword = origRead })

	e, _ := testEnv("")
	pw, err := promptPassword(e)
	require.NoError(t, err)
	require.Equal(t, "Str0ng!pass", pw)

	answers = []string{"one", "two"}
	_, err = promptPassword(e)
	require.ErrorContains(t, err, "do not match")
}
