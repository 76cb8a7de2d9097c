package main

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"github.com/felixbhw/n17-dash/internal/platform/logging"
)

const preparedBinaryParam = "disable_prepared_binary_result"

// migrator is the part of *migrate.Migrate the commands drive.
type migrator interface {
	Up() error
	Steps(n int) error
	Version() (uint, bool, error)
	Force(version int) error
	Close() (error, error)
}

type openFunc func(sourceURL, dbURL string) (migrator, error)

func openMigrator(sourceURL, dbURL string) (migrator, error) {
	m, err := migrate.New(sourceURL, dbURL)
	if err != nil {
		return nil, errors.Wrap(err, "create migrator")
	}
	return m, nil
}

type migrationCLI struct {
	open   openFunc
	logger *logging.Logger
	out    io.Writer

	dbURL string
	dir   string
	m     migrator
}

func newRootCmd(open openFunc, logger *logging.Logger, out io.Writer) *cobra.Command {
	cli := &migrationCLI{open: open, logger: logger, out: out}

	root := &cobra.Command{
		Use:           "migration",
		Short:         "Apply or inspect the player-link schema migrations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return cli.connect()
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			cli.close()
			return nil
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&cli.dbURL, "db-url", os.Getenv("DB_URL"), "postgres URL (defaults to $DB_URL)")
	root.PersistentFlags().StringVar(&cli.dir, "dir", os.Getenv("MIGRATIONS_DIR"), "migrations directory (defaults to $MIGRATIONS_DIR, ./db/migrations, /app/db/migrations)")

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			Args:  cobra.NoArgs,
			RunE:  func(*cobra.Command, []string) error { return cli.up() },
		},
		&cobra.Command{
			Use:   "down [steps]",
			Short: "Roll back migrations, one by default",
			Args:  cobra.MaximumNArgs(1),
			RunE:  func(_ *cobra.Command, args []string) error { return cli.down(args) },
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied version and dirty flag",
			Args:  cobra.NoArgs,
			RunE:  func(*cobra.Command, []string) error { return cli.version() },
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Set the version without running migrations",
			Args:  cobra.ExactArgs(1),
			RunE:  func(_ *cobra.Command, args []string) error { return cli.force(args[0]) },
		},
	)
	return root
}

func (c *migrationCLI) connect() error {
	dbURL := strings.TrimSpace(c.dbURL)
	if dbURL == "" {
		return errors.New("DB_URL is required")
	}
	dbURL = withPreparedBinaryDisabled(dbURL, os.Getenv("DB_DISABLE_PREPARED_BINARY_RESULT"))

	dir, err := resolveMigrationsDir(c.dir)
	if err != nil {
		return err
	}
	m, err := c.open("file://"+filepath.ToSlash(dir), dbURL)
	if err != nil {
		return err
	}
	c.m = m
	c.logger.Info("migrator ready", "dir", dir)
	return nil
}

func (c *migrationCLI) close() {
	if c.m == nil {
		return
	}
	srcErr, dbErr := c.m.Close()
	if srcErr != nil {
		c.logger.Warn("close migration source", "error", srcErr)
	}
	if dbErr != nil {
		c.logger.Warn("close migration db", "error", dbErr)
	}
	c.m = nil
}

func (c *migrationCLI) up() error {
	if err := c.ignoreNoChange(c.m.Up()); err != nil {
		return errors.Wrap(err, "apply migrations")
	}
	c.logger.Info("migrations applied")
	return nil
}

func (c *migrationCLI) down(args []string) error {
	steps, err := parseSteps(args)
	if err != nil {
		return err
	}
	if err := c.ignoreNoChange(c.m.Steps(-steps)); err != nil {
		return errors.Wrapf(err, "roll back %d migration(s)", steps)
	}
	c.logger.Info("migrations rolled back", "steps", steps)
	return nil
}

func (c *migrationCLI) version() error {
	version, dirty, err := c.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Fprintln(c.out, "version: none")
		fmt.Fprintln(c.out, "dirty: false")
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "read version")
	}
	fmt.Fprintf(c.out, "version: %d\n", version)
	fmt.Fprintf(c.out, "dirty: %t\n", dirty)
	return nil
}

func (c *migrationCLI) force(raw string) error {
	version, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || version < -1 {
		return errors.Newf("invalid version %q", raw)
	}
	if err := c.m.Force(version); err != nil {
		return errors.Wrapf(err, "force version %d", version)
	}
	c.logger.Info("migration version forced", "version", version)
	return nil
}

func (c *migrationCLI) ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		c.logger.Info("no migration changes")
		return nil
	}
	return err
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	steps, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return 0, errors.Wrapf(err, "invalid down steps %q", args[0])
	}
	if steps <= 0 {
		return 0, errors.New("down steps must be > 0")
	}
	return steps, nil
}

func resolveMigrationsDir(explicit string) (string, error) {
	candidates := []string{"./db/migrations", "/app/db/migrations"}
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		candidates = []string{explicit}
	}
	for _, candidate := range candidates {
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			return abs, nil
		}
	}
	return "", errors.Newf("migration directory not found (checked %s)", strings.Join(candidates, ", "))
}

// withPreparedBinaryDisabled is on unless the flag is explicitly false, the
// same default the service uses.
func withPreparedBinaryDisabled(raw, flag string) string {
	if enabled, err := strconv.ParseBool(strings.TrimSpace(flag)); err == nil && !enabled {
		return raw
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" {
		return raw
	}
	query := parsed.Query()
	if query.Get(preparedBinaryParam) != "" {
		return raw
	}
	query.Set(preparedBinaryParam, "yes")
	parsed.RawQuery = query.Encode()
	return parsed.String()
}
