package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

type Benchmark struct {
	ClearCaches bool
	// CacheCommands overrides the platform commands that flush the page cache.
	CacheCommands [][]string
}

var cacheCommands = map[string][][]string{
	"linux":  {{"sync"}, {"sh", "-c", "echo 3 | sudo tee /proc/sys/vm/drop_caches"}},
	"darwin": {{"sync"}, {"purge"}},
}

func (b *Benchmark) clearCaches(ctx context.Context) error {
	commands := b.CacheCommands
	if commands == nil {
		var ok bool
		if commands, ok = cacheCommands[runtime.GOOS]; !ok {
			return fmt.Errorf("unable to clear caches for platform '%v'", runtime.GOOS)
		}
	}
	for _, command := range commands {
		if _, err := b.runCmd(ctx, command); err != nil {
			return fmt.Errorf("%v: %w", strings.Join(command, " "), err)
		}
	}
	return nil
}

func (b *Benchmark) clearCachesIfNeeded(ctx context.Context) error {
	if !b.ClearCaches {
		return nil
	}
	Logger.Info("clear caches")
	return b.clearCaches(ctx)
}

// measure issues the query and reads every row so the timing covers full
// materialization of the result.
func measure(ctx context.Context, db *sql.DB, query string) (time.Duration, int, error) {
	start := time.Now()
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return 0, 0, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return 0, 0, err
	}
	values := make([]sql.RawBytes, len(columns))
	targets := make([]any, len(columns))
	for i := range values {
		targets[i] = &values[i]
	}
	count := 0
	for rows.Next() {
		if err := rows.Scan(targets...); err != nil {
			return 0, count, err
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return 0, count, err
	}
	return time.Since(start), count, nil
}

func (b *Benchmark) RunQuery(ctx context.Context, db *sql.DB, query Query) Timing {
	elapsed, count, err := measure(ctx, db, query.SQL)
	if err != nil {
		Logger.Errorf("query %v failed: %v", query.Name, err)
		return Failed(err)
	}
	timing := Elapsed(elapsed.Seconds())
	Logger.Infof("query %v: %v (%v rows)", query.Name, timing, count)
	return timing
}

// RunQueries executes every query once, in order. A failing query is recorded
// and the batch moves on. After cancellation the remaining queries are marked
// as canceled without being issued.
func (b *Benchmark) RunQueries(ctx context.Context, db *sql.DB, queries []Query) Measurements {
	// a warm page cache only adds noise, so the run goes on
	if err := b.clearCachesIfNeeded(ctx); err != nil {
		Logger.Warnf("failed to clear caches: %v", err)
	}
	measurements := make(Measurements, len(queries))
	for _, query := range queries {
		if err := ctx.Err(); err != nil {
			measurements[query.Name] = Timing{Err: fmt.Sprintf("canceled: %v", err)}
			continue
		}
		measurements[query.Name] = b.RunQuery(ctx, db, query)
	}
	return measurements
}

func (b *Benchmark) runCmd(ctx context.Context, args []string) ([]string, error) {
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("err=%w, out=%v", err, string(output))
	}
	lines := strings.Split(strings.TrimRight(string(output), "\n"), "\n")
	return lines, nil
}

// streamCmd runs args with its output attached to stdout and stderr as it is
// produced.
func (b *Benchmark) streamCmd(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%v: %w", strings.Join(args, " "), err)
	}
	return nil
}
