package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/evilaliv3/tracing-framework/internal/buildinfo/cobrabuildinfo"
)

var (
	rootCmd = &cobra.Command{
		Use:           "wtftool",
		Short:         "Record and inspect wtf trace files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	logLevel string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "log level (`debug`, `info`, `warn`, `error`)")

	cobrabuildinfo.Init(rootCmd)

	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(convertCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		os.Exit(1)
	}
}

func newLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}

	encoderconf := zap.NewProductionEncoderConfig()
	encoderconf.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderconf),
		zapcore.Lock(os.Stderr),
		level,
	)
	return zap.New(core), nil
}
