package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"fortio.org/safecast"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	"golang.org/x/term"

	"github.com/getsentry/ftracer/internal/config"
	"github.com/getsentry/ftracer/internal/inspect"
	"github.com/getsentry/ftracer/internal/logutil"
	"github.com/getsentry/ftracer/internal/report"
	"github.com/getsentry/ftracer/internal/symbol"
)

func runReport(cmd *cobra.Command, args []string) error {
	limit, err := parseLimit(args)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	configPath, _ := flags.GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("can't load the configuration: %w", err)
	}
	if err := logutil.ConfigureLogger(cfg.LogFormat, cfg.LogLevel); err != nil {
		return fmt.Errorf("can't configure the logger: %w", err)
	}

	err = sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.SentryDSN,
		Environment: cfg.Environment,
		Release:     release,
	})
	if err != nil {
		return fmt.Errorf("can't initialize sentry: %w", err)
	}
	defer sentry.Flush(2 * time.Second)

	logger := log.With().Str("report_id", uuid.New().String()).Logger()
	ctx := logger.WithContext(cmd.Context())

	err = generate(ctx, cmd, cfg, limit)
	if err != nil {
		sentry.CaptureException(err)
		logger.Error().Err(err).Msg("can't generate the report")
	}
	return err
}

func generate(ctx context.Context, cmd *cobra.Command, cfg config.Config, limit int) error {
	flags := cmd.Flags()
	location, _ := flags.GetString("bucket")
	snapshotKey, _ := flags.GetString("snapshot")
	dumpsPrefix, _ := flags.GetString("dumps")
	symbolsPath, _ := flags.GetString("symbols")
	colorMode, _ := flags.GetString("color")

	useColor, err := colorEnabled(colorMode, cmd)
	if err != nil {
		return err
	}

	bucket, err := openBucket(ctx, location)
	if err != nil {
		return fmt.Errorf("can't open the bucket: %w", err)
	}
	defer bucket.Close()

	var (
		in       inspect.Inspector
		resolver symbol.Chain
	)
	if snapshotKey != "" {
		s, err := inspect.LoadSnapshot(ctx, bucket, snapshotKey)
		if err != nil {
			return err
		}
		in = s
		resolver = append(resolver, s.Annotations())
	} else {
		in = inspect.Dumps{Bucket: bucket, Prefix: dumpsPrefix}
	}
	if symbolsPath != "" {
		table, err := symbol.LoadELF(symbolsPath)
		if err != nil {
			return fmt.Errorf("can't load symbols: %w", err)
		}
		zerolog.Ctx(ctx).Debug().
			Str("path", symbolsPath).
			Int("symbols", table.Len()).
			Msg("loaded symbol table")
		resolver = append(resolver, table)
	}

	return report.Generate(ctx, cmd.OutOrStdout(), in, resolver, report.Options{
		Limit:  limit,
		Layout: cfg.Layout(),
		Color:  useColor,
	})
}

func parseLimit(args []string) (int, error) {
	if len(args) == 0 {
		return 0, nil
	}
	v, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("limit must be a non-negative integer, got %q", args[0])
	}
	limit, err := safecast.Conv[int](v)
	if err != nil {
		return 0, fmt.Errorf("limit %d is too large: %w", v, err)
	}
	return limit, nil
}

func openBucket(ctx context.Context, location string) (*blob.Bucket, error) {
	if strings.Contains(location, "://") {
		return blob.OpenBucket(ctx, location)
	}
	if location == "" {
		location = "."
	}
	dir, err := filepath.Abs(location)
	if err != nil {
		return nil, err
	}
	return fileblob.OpenBucket(dir, nil)
}

func colorEnabled(mode string, cmd *cobra.Command) (bool, error) {
	switch mode {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto":
		f, ok := cmd.OutOrStdout().(*os.File)
		return ok && term.IsTerminal(int(f.Fd())), nil
	}
	return false, fmt.Errorf("unknown color mode %q", mode)
}
