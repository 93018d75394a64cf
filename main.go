package main

import (
	"context"
	"errors"
	"os"

	"github.com/BrobridgeOrg/qprofile-combiner/pkg/combiner"
	"github.com/BrobridgeOrg/qprofile-combiner/pkg/configs"
	"github.com/BrobridgeOrg/qprofile-combiner/pkg/connector"
	"github.com/BrobridgeOrg/qprofile-combiner/pkg/dump"
	"github.com/BrobridgeOrg/qprofile-combiner/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var config *configs.Config

var errIncomplete = errors.New("combining finished with failures")

var rootCmd = &cobra.Command{
	Use:   "qprofile-combiner",
	Short: "Combine two quality profiles into a target profile",
	Long: `qprofile-combiner reads the activated rules of two quality profiles and
activates them on a target profile. Rules of the second profile overwrite
rules of the first profile with the same key.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {

		if err := run(cmd); err != nil {
			return err
		}
		return nil
	},
}

func init() {
	config = configs.GetConfig()

	flags := rootCmd.Flags()
	flags.String("url", "", "Base URL of the management API")
	flags.String("token", "", "Bearer token")
	flags.Duration("timeout", configs.DefaultTimeout, "Timeout of a single API request")
	flags.String("first", "", "Key of the first source profile")
	flags.String("second", "", "Key of the second source profile, wins on duplicate rules")
	flags.String("target", "", "Key of the target profile")
	flags.Int("page-size", configs.DefaultPageSize, "Rules requested per page")
	flags.Bool("dry-run", false, "Fetch and report without activating rules")
	flags.Bool("strict", false, "Abort before activation when a source profile cannot be read")
	flags.String("dump-dir", "", "Directory receiving every raw search page")
	flags.Bool("dump-compress", true, "Gzip dumped pages")
	flags.String("report", "", "Write a YAML summary to this path")
	flags.String("log-level", configs.DefaultLogLevel, "Log level")
	flags.String("log-format", configs.DefaultLogFormat, "Log format (json or console)")

	bindings := map[string]string{
		"sonar.url":       "url",
		"sonar.token":     "token",
		"sonar.timeout":   "timeout",
		"profiles.first":  "first",
		"profiles.second": "second",
		"profiles.target": "target",
		"fetch.page_size": "page-size",
		"run.dry_run":     "dry-run",
		"run.strict":      "strict",
		"dump.dir":        "dump-dir",
		"dump.compress":   "dump-compress",
		"report.path":     "report",
		"log.level":       "log-level",
		"log.format":      "log-format",
	}

	for key, flag := range bindings {
		viper.BindPFlag(key, flags.Lookup(flag))
	}
}

func main() {

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command) error {

	err := config.Load()
	if err != nil {
		return err
	}

	var cb *combiner.Combiner
	var l *zap.Logger

	app := fx.New(
		fx.Supply(config),
		fx.Provide(
			logger.GetLogger,
			connector.New,
			dump.New,
			combiner.New,
		),
		fx.Populate(&cb, &l),
		fx.NopLogger,
	)

	if err := app.Err(); err != nil {
		return err
	}

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer app.Stop(ctx)

	summary, runErr := cb.Run(ctx)
	summary.Print(cmd.OutOrStdout())

	if len(config.ReportPath) > 0 {
		if err := summary.WriteReport(config.ReportPath); err != nil {
			l.Error("Failed to write report",
				zap.String("path", config.ReportPath),
				zap.Error(err),
			)
		}
	}

	if runErr != nil {
		return runErr
	}

	if summary.Failed() {
		return errIncomplete
	}

	return nil
}
