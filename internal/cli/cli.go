// Package cli 收集 cmd/* 共用的設定、logger 與參數解析。
package cli

import (
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix 環境變數前綴，例如 TYPESAFE_RUNS=3
const EnvPrefix = "TYPESAFE"

// NewLogger 建立輸出到 stderr 的 console logger
func NewLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", level)
	}
	return zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewProductionEncoderConfig()),
		zapcore.Lock(os.Stderr),
		lvl,
	)), nil
}

// LoadConfig 依優先順序合併：命令列旗標、環境變數、設定檔、旗標預設值
func LoadConfig(cmd *cobra.Command, configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config %s", configFile)
		}
	}
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, errors.Wrap(err, "binding flags")
	}
	return v, nil
}

// AddCommonFlags 加入每個指令都有的 --config 與 --log-level
func AddCommonFlags(cmd *cobra.Command, configFile *string) {
	cmd.PersistentFlags().StringVar(configFile, "config", "", "config file (yaml, toml or json)")
	cmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
}

// ParseCount 解析科學記號字串（如 "1e5"）為整數
func ParseCount(s string) (int, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing count %q", s)
	}
	if f < 0 || f != float64(int(f)) {
		return 0, errors.Newf("count %q is not a non-negative integer", s)
	}
	return int(f), nil
}

// FormatScientific 將數字格式化為科學記號（用於檔名）
func FormatScientific(n int) string {
	if n == 0 {
		return "0"
	}
	exp := 0
	divisor := 1
	for temp := n; temp >= 10; temp /= 10 {
		exp++
		divisor *= 10
	}
	coefficient := float64(n) / float64(divisor)
	// 係數是整數時不顯示小數
	if coefficient == float64(int(coefficient)) {
		return strconv.Itoa(int(coefficient)) + "e" + strconv.Itoa(exp)
	}
	return strconv.FormatFloat(coefficient, 'f', 1, 64) + "e" + strconv.Itoa(exp)
}

// FormatDecimal 將浮點數格式化為不含小數點的字串（用於檔名），1.25 -> 1_25
func FormatDecimal(f float64) string {
	val := int(f*100 + 0.5)
	switch {
	case val%100 == 0:
		return strconv.Itoa(val / 100)
	case val%10 == 0:
		return strconv.Itoa(val/100) + "_" + strconv.Itoa((val%100)/10)
	default:
		s := strconv.Itoa(val % 100)
		if len(s) == 1 {
			s = "0" + s
		}
		return strconv.Itoa(val/100) + "_" + s
	}
}
