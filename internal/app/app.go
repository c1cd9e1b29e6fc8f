// Package app implements the application layer for meshcache.
package app

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.trai.ch/meshcache/internal/adapters/config"
	"go.trai.ch/meshcache/internal/core/domain"
	"go.trai.ch/meshcache/internal/core/ports"
	"go.trai.ch/meshcache/internal/engine/manager"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// shutdownTimeout bounds how long in-flight reconstructions may delay exit.
const shutdownTimeout = 30 * time.Second

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	factory      ports.PipelineFactory
	reader       ports.ShapeReader
	writer       ports.MeshWriter
	logger       ports.Logger
	tracer       ports.Tracer
	watcher      ports.Watcher
	stdin        io.Reader
	stdout       io.Writer
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	factory ports.PipelineFactory,
	reader ports.ShapeReader,
	writer ports.MeshWriter,
	log ports.Logger,
	tracer ports.Tracer,
	watcher ports.Watcher,
) *App {
	return &App{
		configLoader: loader,
		factory:      factory,
		reader:       reader,
		writer:       writer,
		logger:       log,
		tracer:       tracer,
		watcher:      watcher,
		stdin:        os.Stdin,
		stdout:       os.Stdout,
	}
}

// WithIO replaces the streams used by Watch.
// This is primarily used for testing.
func (a *App) WithIO(stdin io.Reader, stdout io.Writer) *App {
	a.stdin = stdin
	a.stdout = stdout
	return a
}

// BuildOptions configuration for the Build method.
type BuildOptions struct {
	// ConfigPath is the settings file. Defaults are used when it does not exist.
	ConfigPath string
	// OutDir receives one STL file per shape.
	OutDir string
	// Jobs overrides the configured worker count when positive.
	Jobs int
}

// Build reconstructs a mesh for every shape file and writes it to OutDir.
// Shapes that fail are reported individually; the remaining shapes still build.
func (a *App) Build(ctx context.Context, shapePaths []string, opts BuildOptions) (domain.Stats, error) {
	if len(shapePaths) == 0 {
		return domain.Stats{}, domain.ErrNoShapesSpecified
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

	var (
		mu   sync.Mutex
		errs []error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(settings.WorkerCount() * 2)

	for _, path := range shapePaths {
		g.Go(func() error {
			if err := a.buildOne(gctx, mgr, path, opts.OutDir); err != nil {
				if ctx.Err() != nil {
					return err
				}
				a.logger.Warn("shape failed", "path", path, "error", err.Error())
				mu.Lock()
				errs = append(errs, zerr.With(zerr.Wrap(err, "shape failed"), "shape", path))
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return mgr.Stats(), err
	}

	stats := mgr.Stats()
	if len(errs) > 0 {
		return stats, zerr.With(errors.Join(append([]error{domain.ErrBuildFailed}, errs...)...), "failed", len(errs))
	}
	return stats, nil
}

func (a *App) buildOne(ctx context.Context, mgr *manager.Manager, path, outDir string) error {
	shape, err := a.reader.Read(path)
	if err != nil {
		return err
	}

	mesh, err := mgr.GetMesh(ctx, shape)
	if err != nil {
		return err
	}

	out := OutputPath(path, outDir)
	if err := a.writer.Write(out, mesh); err != nil {
		return err
	}
	a.logger.Info("wrote mesh", "shape", path, "out", out, "triangles", mesh.TriangleCount())
	return nil
}

// OutputPath returns the STL path for a shape file inside outDir.
// An empty outDir places the mesh next to the shape file.
func OutputPath(shapePath, outDir string) string {
	base := filepath.Base(shapePath)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + ".stl"
	if outDir == "" {
		return filepath.Join(filepath.Dir(shapePath), name)
	}
	return filepath.Join(outDir, name)
}

// settingsApplier is implemented by loggers that can be reconfigured from settings.
type settingsApplier interface {
	Apply(domain.Settings)
}

func (a *App) loadSettings(path string, jobs int) (domain.Settings, error) {
	if path == "" {
		path = config.DefaultFilename
	}
	settings, err := a.configLoader.Load(path)
	if err != nil {
		return domain.Settings{}, zerr.Wrap(err, "failed to load configuration")
	}
	if jobs > 0 {
		settings.Workers = jobs
	}
	if l, ok := a.logger.(settingsApplier); ok {
		l.Apply(settings)
	}
	return settings, nil
}

func (a *App) startManager(ctx context.Context, settings domain.Settings, prefs *config.Preferences) (*manager.Manager, error) {
	mgr, err := manager.New(manager.OptionsFromSettings(settings), a.factory, prefs, a.logger, a.tracer)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create mesh manager")
	}
	prefs.Subscribe(func(domain.PipelineConfig) { mgr.OnConfigChanged() })

	if err := mgr.Start(ctx); err != nil {
		return nil, zerr.Wrap(err, "failed to start mesh manager")
	}
	return mgr, nil
}

func (a *App) stopManager(mgr *manager.Manager) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := mgr.Shutdown(ctx); err != nil {
		a.logger.Error(zerr.Wrap(err, "mesh manager did not stop cleanly"))
	}
}
