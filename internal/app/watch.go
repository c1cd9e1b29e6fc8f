package app

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"go.trai.ch/meshcache/internal/adapters/config"
	"go.trai.ch/meshcache/internal/core/domain"
	"go.trai.ch/meshcache/internal/engine/manager"
	"go.trai.ch/zerr"
	"golang.org/x/term"
)

// WatchOptions configuration for the Watch method.
type WatchOptions struct {
	// ConfigPath is the settings file. It is reloaded whenever it changes.
	ConfigPath string
	// OutDir receives the STL files. Empty writes next to each shape file.
	OutDir string
	// Jobs overrides the configured worker count when positive.
	Jobs int
}

// Watch serves mesh requests read from stdin until EOF or ctx is done.
//
// Each line names a shape file to mesh, optionally followed by more shape
// files that are warmed in the background. The pipeline preferences are
// reloaded whenever the settings file changes.
func (a *App) Watch(ctx context.Context, opts WatchOptions) (domain.Stats, error) {
	if opts.ConfigPath == "" {
		opts.ConfigPath = config.DefaultFilename
	}
	settings, err := a.loadSettings(opts.ConfigPath, opts.Jobs)
	if err != nil {
		return domain.Stats{}, err
	}

	prefs := config.NewPreferences(settings.Pipeline)
	mgr, err := a.startManager(ctx, settings, prefs)
	if err != nil {
		return domain.Stats{}, err
	}
	defer a.stopManager(mgr)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.watcher.Start(ctx, opts.ConfigPath); err != nil {
		return domain.Stats{}, zerr.Wrap(err, "failed to watch settings file")
	}
	defer func() { _ = a.watcher.Stop() }()

	reloaded := make(chan struct{})
	go func() {
		defer close(reloaded)
		for range a.watcher.Events() {
			a.reload(opts, prefs)
		}
	}()

	lines := a.readLines(ctx)
	interactive := isTerminal(a.stdin)
	for {
		a.prompt(interactive)
		select {
		case <-ctx.Done():
			cancel()
			<-reloaded
			return mgr.Stats(), nil
		case line, ok := <-lines:
			if !ok {
				cancel()
				<-reloaded
				return mgr.Stats(), nil
			}
			a.serve(ctx, mgr, line, opts.OutDir)
		}
	}
}

// reload re-reads the settings file and publishes the new pipeline preferences.
// An invalid file is reported and the previous preferences stay in effect.
func (a *App) reload(opts WatchOptions, prefs *config.Preferences) {
	settings, err := a.loadSettings(opts.ConfigPath, opts.Jobs)
	if err != nil {
		a.logger.Error(zerr.Wrap(err, "keeping previous preferences"))
		return
	}
	changed, err := prefs.Update(settings.Pipeline)
	if err != nil {
		a.logger.Error(zerr.Wrap(err, "keeping previous preferences"))
		return
	}
	if changed {
		a.logger.Info("preferences reloaded", "path", opts.ConfigPath)
	}
}

// serve handles one request line. Failures are reported and do not end the session.
func (a *App) serve(ctx context.Context, mgr *manager.Manager, line, outDir string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}

	for _, neighbour := range fields[1:] {
		shape, err := a.reader.Read(neighbour)
		if err == nil {
			err = mgr.Warm(shape)
		}
		if err != nil {
			a.logger.Warn("could not warm shape", "path", neighbour, "error", err.Error())
		}
	}

	path := fields[0]
	if err := a.buildOne(ctx, mgr, path, outDir); err != nil {
		a.logger.Warn("shape failed", "path", path, "error", err.Error())
		_, _ = fmt.Fprintf(a.stdout, "error %s\n", path)
		return
	}
	_, _ = fmt.Fprintf(a.stdout, "ok %s %s\n", path, OutputPath(path, outDir))
}

// readLines scans stdin in the background. The channel closes at EOF.
func (a *App) readLines(ctx context.Context) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(a.stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			a.logger.Error(zerr.Wrap(err, "failed to read requests"))
		}
	}()
	return lines
}

func (a *App) prompt(interactive bool) {
	if interactive {
		_, _ = fmt.Fprint(a.stdout, "> ")
	}
}

func isTerminal(r any) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // file descriptors fit in int
}
