package cli

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storekeep/config"
)

func defaults() config.Config {
	return config.Config{DBPath: "app.db", ReferenceCheck: "validate", LogLevel: "warn"}
}

func execute(t *testing.T, cfg config.Config, input string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(&cfg)
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(input))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootRunsMenuUntilExit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.db")

	out, err := execute(t, defaults(), "10\n1\n0\n", "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Inserted 2 example rows.")
	assert.Contains(t, out, "Name=Ana Silva")
	assert.Contains(t, out, "Bye.")
	assert.FileExists(t, path)

	// a second run sees the same file
	out, err = execute(t, defaults(), "10\n0\n", "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "nothing seeded")
}

func TestRootFlagsOverrideConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.db")
	cfg := defaults()
	cfg.DBPath = filepath.Join(t.TempDir(), "from-env.db")

	out, err := execute(t, cfg, "6\n3\nPen\n1\n2024-01-01\n0\n",
		"--db", path, "--reference-check", "trust", "--foreign-keys=false")
	require.NoError(t, err)
	assert.Contains(t, out, "Order created with id 1.")
	assert.FileExists(t, path)
	assert.NoFileExists(t, cfg.DBPath)
}

func TestRootRejectsBadSettings(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "reference check", args: []string{"--reference-check", "sometimes"}},
		{name: "log level", args: []string{"--log-level", "loud"}},
		{name: "unopenable file", args: []string{"--db", filepath.Join(t.TempDir(), "missing", "app.db")}},
		{name: "positional argument", args: []string{"extra"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := tt.args
			if tt.name != "unopenable file" {
				args = append(args, "--db", filepath.Join(t.TempDir(), "app.db"))
			}
			_, err := execute(t, defaults(), "0\n", args...)
			assert.Error(t, err)
		})
	}
}

func TestReferenceCheckHelpNamesTrust(t *testing.T) {
	cfg := defaults()
	cmd := newRootCmd(&cfg)

	flag := cmd.Flags().Lookup("reference-check")
	require.NotNil(t, flag)
	assert.Equal(t, "validate", flag.DefValue)
	assert.Contains(t, flag.Usage, "trust stores customer ids unchecked")
	assert.Contains(t, cmd.Long, "With trust the id is stored\nunchecked")
}

func TestRootInterruptStopsMenu(t *testing.T) {
	cfg := defaults()
	cmd := newRootCmd(&cfg)
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })
	var out bytes.Buffer
	cmd.SetIn(pr)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--db", filepath.Join(t.TempDir(), "app.db")})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	// the menu reads this only after the store is open
	_, err := pw.Write([]byte("1\n"))
	require.NoError(t, err)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("command did not return after cancel")
	}
	assert.Contains(t, out.String(), "Interrupted. Bye!")
}
