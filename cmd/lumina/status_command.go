package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"lumina/internal/config"
	"lumina/internal/store"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and store status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)

				running, err := daemonRunning(cfg)
				if err != nil {
					return err
				}
				if running {
					fmt.Fprintln(out, statusLine("Daemon", "running", ansiGreen, colorize))
				} else {
					fmt.Fprintln(out, statusLine("Daemon", "not running", ansiYellow, colorize))
				}
				fmt.Fprintf(out, "Database: %s\n", cfg.DatabasePath())
				fmt.Fprintf(out, "Log file: %s\n\n", filepath.Join(cfg.Paths.LogDir, "lumina.log"))

				stats, err := st.CollectStats(cmd.Context())
				if err != nil {
					return err
				}
				printer := message.NewPrinter(language.English)
				rows := [][]string{
					{"Users", printer.Sprintf("%d", stats.Users)},
					{"Projects", printer.Sprintf("%d", stats.Projects)},
					{"Enabled watches", printer.Sprintf("%d", stats.EnabledWatches)},
					{"Ledger entries", printer.Sprintf("%d", stats.LedgerEntries)},
				}
				fmt.Fprintln(out, renderTable([]string{"Metric", "Count"}, rows,
					[]columnAlignment{alignLeft, alignRight}))
				return nil
			})
		},
	}
}

// daemonRunning probes the daemon lock file without stealing it.
func daemonRunning(cfg *config.Config) (bool, error) {
	lockPath := filepath.Join(cfg.Paths.LogDir, "luminad.lock")
	if _, err := os.Stat(lockPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return false, fmt.Errorf("probe daemon lock: %w", err)
	}
	if ok {
		_ = lock.Unlock()
		return false, nil
	}
	return true, nil
}

func statusLine(label, value, color string, colorize bool) string {
	line := fmt.Sprintf("%s: %s", label, value)
	if colorize && color != "" {
		return color + line + ansiReset
	}
	return line
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
