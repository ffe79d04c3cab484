package backup

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

const DumpFileName = "db_backup.sql"

type Dumper struct {
	PgDumpBin string
	PsqlBin   string
	DSN       string
	Dir       string
	Timeout   time.Duration
}

func New(pgDump, psql, dsn, dir string) *Dumper {
	return &Dumper{
		PgDumpBin: pgDump,
		PsqlBin:   psql,
		DSN:       dsn,
		Dir:       dir,
		Timeout:   5 * time.Minute,
	}
}

// Dump writes a plain SQL dump into Dir and returns its path. The caller
// removes the file once it has been served.
func (d *Dumper) Dump(ctx context.Context) (string, error) {
	f, err := os.CreateTemp(d.Dir, "dump-*.sql")
	if err != nil {
		return "", fmt.Errorf("backup: create file: %w", err)
	}
	path := f.Name()
	f.Close()

	args := []string{"--dbname=" + d.DSN, "--clean", "--if-exists", "--no-owner", "-f", path}
	if err := d.run(ctx, d.PgDumpBin, args); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

// Restore feeds an SQL script to psql, stopping at the first error.
func (d *Dumper) Restore(ctx context.Context, script io.Reader) error {
	f, err := os.CreateTemp(d.Dir, "restore-*.sql")
	if err != nil {
		return fmt.Errorf("backup: create file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := io.Copy(f, script); err != nil {
		f.Close()
		return fmt.Errorf("backup: write script: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("backup: write script: %w", err)
	}

	args := []string{"--dbname=" + d.DSN, "-v", "ON_ERROR_STOP=1", "-q", "-f", path}
	return d.run(ctx, d.PsqlBin, args)
}

func (d *Dumper) run(ctx context.Context, bin string, args []string) error {
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("backup: %s failed: %w: %s", filepath.Base(bin), err, bytes.TrimSpace(stderr.Bytes()))
	}
	return nil
}
