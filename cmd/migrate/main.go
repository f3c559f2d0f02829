package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/fooddash-backend/pkg/config"
	"github.com/angelmondragon/fooddash-backend/pkg/db"
	"github.com/angelmondragon/fooddash-backend/pkg/logger"
	"github.com/angelmondragon/fooddash-backend/pkg/migrate"
)

type options struct {
	cmd     string
	dir     string
	name    string
	version string
}

func main() {
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.cmd, "cmd", "up", "up | down | status | version | create | validate")
	flag.StringVar(&opts.dir, "dir", "", "migrations directory; empty uses the set compiled into the binary ("+migrate.DefaultDir+")")
	flag.StringVar(&opts.name, "name", "", "migration name for -cmd=create")
	flag.StringVar(&opts.version, "version", "", "target YYYYMMDDHHMMSS for -cmd=version")
	flag.Parse()

	if err := run(context.Background(), opts, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	// Offline commands only touch files.
	switch opts.cmd {
	case "create":
		if opts.name == "" {
			return errors.New("-name is required for create")
		}
		dir := opts.dir
		if dir == "" {
			dir = migrate.DefaultDir
		}
		path, err := migrate.CreateSQLMigration(dir, opts.name)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "created", path)
		return nil
	case "validate":
		fsys, err := migrate.Source(opts.dir)
		if err != nil {
			return err
		}
		if err := migrate.ValidateFS(fsys); err != nil {
			return err
		}
		fmt.Fprintln(out, "migrations valid")
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "cmd": opts.cmd})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		return fmt.Errorf("database handle: %w", err)
	}
	fsys, err := migrate.Source(opts.dir)
	if err != nil {
		return err
	}
	runner, err := migrate.NewRunner(sqlDB, fsys)
	if err != nil {
		return err
	}

	switch opts.cmd {
	case "up":
		applied, err := runner.Up(ctx)
		if err != nil {
			return err
		}
		logg.Info(logg.WithField(ctx, "applied", applied), "migrate.up.complete")
	case "down":
		if err := runner.Down(ctx); err != nil {
			return err
		}
		logg.Info(ctx, "migrate.down.complete")
	case "status":
		rows, err := runner.Status(ctx)
		if err != nil {
			return err
		}
		printStatus(out, rows)
	case "version":
		if opts.version == "" {
			return errors.New("-version is required for version")
		}
		if err := runner.To(ctx, opts.version); err != nil {
			return err
		}
		logg.Info(logg.WithField(ctx, "version", opts.version), "migrate.version.complete")
	default:
		return fmt.Errorf("unknown -cmd %q", opts.cmd)
	}
	return nil
}

func printStatus(out io.Writer, rows []migrate.Status) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tAPPLIED AT\tNAME")
	for _, row := range rows {
		applied := "pending"
		if row.Applied {
			applied = row.AppliedAt.UTC().Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", row.Version, applied, row.Name)
	}
	_ = tw.Flush()
}
