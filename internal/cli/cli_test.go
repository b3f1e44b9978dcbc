package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCount(t *testing.T) {
	n, err := ParseCount("1e5")
	require.NoError(t, err)
	assert.Equal(t, 100000, n)

	n, err = ParseCount("250")
	require.NoError(t, err)
	assert.Equal(t, 250, n)

	_, err = ParseCount("1.5")
	assert.Error(t, err)
	_, err = ParseCount("-3")
	assert.Error(t, err)
	_, err = ParseCount("many")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "1e5", FormatScientific(100000))
	assert.Equal(t, "2.5e3", FormatScientific(2500))
	assert.Equal(t, "7e0", FormatScientific(7))
	assert.Equal(t, "0", FormatScientific(0))

	assert.Equal(t, "1", FormatDecimal(1.0))
	assert.Equal(t, "1_07", FormatDecimal(1.07))
	assert.Equal(t, "0_5", FormatDecimal(0.5))
}

func newTestCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().Int("runs", 5, "")
	cmd.Flags().String("impl", "all", "")
	return cmd
}

func TestLoadConfigPrecedence(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "bench.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("runs: 9\nimpl: sskip\n"), 0o644))

	cmd := newTestCommand()
	v, err := LoadConfig(cmd, cfgFile)
	require.NoError(t, err)
	assert.Equal(t, 9, v.GetInt("runs"))
	assert.Equal(t, "sskip", v.GetString("impl"))

	// 環境變數優先於設定檔
	t.Setenv("TYPESAFE_RUNS", "3")
	v, err = LoadConfig(cmd, cfgFile)
	require.NoError(t, err)
	assert.Equal(t, 3, v.GetInt("runs"))

	// 命令列旗標優先於環境變數
	require.NoError(t, cmd.Flags().Set("runs", "1"))
	v, err = LoadConfig(cmd, cfgFile)
	require.NoError(t, err)
	assert.Equal(t, 1, v.GetInt("runs"))
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(newTestCommand(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug")
	require.NoError(t, err)
	require.NotNil(t, logger)
	_, err = NewLogger("loud")
	require.Error(t, err)
}
