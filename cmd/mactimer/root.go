package main

import (
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/cdtdelta/mactimer/internal/adapter"
	"github.com/cdtdelta/mactimer/internal/bodyfile"
	"github.com/cdtdelta/mactimer/internal/config"
	"github.com/cdtdelta/mactimer/internal/database"
	"github.com/cdtdelta/mactimer/internal/logging"
	"github.com/cdtdelta/mactimer/internal/pipeline"
	"github.com/cdtdelta/mactimer/internal/timestamp"
	"github.com/cdtdelta/mactimer/internal/timezone"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// app holds the process surfaces a run touches.
type app struct {
	fs     afero.Fs
	stdin  io.Reader
	stdout io.Writer
	now    func() time.Time
}

func newApp() *app {
	return &app{fs: afero.NewOsFs(), stdin: os.Stdin, stdout: os.Stdout, now: time.Now}
}

func newRootCmd(a *app) *cobra.Command {
	v := viper.New()
	config.SetDefaults(v, a.now())

	var cfgFile string
	cmd := &cobra.Command{
		Use:   "mactimer -t TYPE [flags] [file ...]",
		Short: "Convert forensic exports into bodyfile timeline lines",
		Long: `mactimer reads exports from forensic tools and writes one bodyfile line
per timestamped event to stdout:

  HASH|DETAIL|TYPE|LOG-SOURCE|FROM|TO|SIZE|ATIME|MTIME|CTIME|BTIME

Input types: ` + strings.Join(adapter.Types(), ", ") + `.
With no files, input is read from stdin.`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, cfgFile)
			if err != nil {
				return err
			}
			if err := requireType(cfg.Type); err != nil {
				return err
			}
			return a.run(cmd, cfg, args)
		},
	}

	cmd.AddCommand(newExportCmd(a), newRunsCmd(a), newArtifactsCmd(a))

	addFlags(cmd.Flags(), a.now())
	cmd.Flags().StringVar(&cfgFile, "config", "", "YAML file with default settings")
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		panic(err)
	}
	return cmd
}

func addFlags(fs *pflag.FlagSet, now time.Time) {
	fs.StringP(config.KeyType, "t", "", "input type ("+strings.Join(adapter.Types(), "|")+")")
	fs.IntP(config.KeyYear, "y", now.Year(), "year for dates written without one")
	fs.StringP(config.KeyTimezone, "z", timezone.DefaultRule, `time zone of the input, e.g. "EST-5EDT" or "America/New_York"`)
	fs.Int32P(config.KeySkew, "s", 0, "clock skew in seconds added to every time")
	fs.BoolP(config.KeyNormalize, "n", false, "collapse whitespace in text fields")
	fs.StringP(config.KeyLog, "l", "", "write diagnostics to this file instead of stderr")
	fs.String(config.KeyLogLevel, "info", "diagnostic level (debug|info|warn|error)")
	fs.String(config.KeyCustom1, "", "free value passed to the adapter (notes: default Source)")
	fs.String(config.KeyCustom2, "", "free value passed to the adapter (notes: default Artifact)")
	fs.String(config.KeyStoreDriver, "sqlite", "record store driver ("+strings.Join(database.Drivers, "|")+")")
	fs.String(config.KeyStore, "", "also store records in this database (path or DSN)")
}

func requireType(name string) error {
	if !slices.Contains(adapter.Types(), name) {
		return errors.Errorf("unknown input type %q (supported: %s)", name, strings.Join(adapter.Types(), ", "))
	}
	return nil
}

func (a *app) run(cmd *cobra.Command, cfg config.Config, args []string) error {
	logger, closeLog, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.Log, Fs: a.fs})
	if err != nil {
		return errors.Wrap(err, "setting up diagnostics")
	}
	defer closeLog()

	if err := a.convert(cmd, cfg, args, logger); err != nil {
		logger.Error("run failed", zap.Error(err))
		return err
	}
	return nil
}

func (a *app) convert(cmd *cobra.Command, cfg config.Config, args []string, logger *zap.Logger) error {
	ctx := cmd.Context()

	tz, err := timezone.New(cfg.Timezone)
	if err != nil {
		return errors.Wrap(err, "timezone")
	}

	norm := timestamp.NewNormalizer(tz, cfg.Skew, logger)
	conv, err := adapter.New(cfg.Type, adapter.Options{
		Normalizer: norm,
		Year:       cfg.Year,
		Custom1:    cfg.Custom1,
		Custom2:    cfg.Custom2,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	opts := pipeline.Options{
		Fs:        a.fs,
		Stdin:     a.stdin,
		Normalize: cfg.Normalize,
		Logger:    logger,
	}

	if cfg.Store != "" {
		store, err := database.CreateStore(cfg.StoreDriver, cfg.Store)
		if err != nil {
			return errors.Wrap(err, "opening record store")
		}
		defer store.Close()

		run := database.Run{
			ID:      uuid.New(),
			Started: a.now(),
			Type:    cfg.Type,
			Zone:    norm.Zone().Rule(),
			Skew:    norm.Skew(),
		}
		if err := store.BeginRun(ctx, run); err != nil {
			return err
		}
		logger.Info("storing records", zap.String("driver", cfg.StoreDriver), zap.String("run", run.ID.String()))
		opts.Store = store
		opts.RunID = run.ID
	}

	_, err = pipeline.New(conv, bodyfile.NewWriter(a.stdout), opts).Run(ctx, args)
	return err
}
