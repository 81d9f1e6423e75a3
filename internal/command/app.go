package command

import (
	"sync"

	"github.com/reverie-dev/reverie/internal/config"
	"github.com/reverie-dev/reverie/internal/util"
)

// App carries the state shared by all subcommands. The configuration is
// loaded lazily so the --config-dir flag is already parsed by the time it
// is resolved.
type App struct {
	configDir string
	version   string

	once sync.Once
	cfg  *config.AppConfig
	err  error
}

// NewApp creates an App with the given build version.
func NewApp(version string) *App {
	return &App{version: version}
}

// SetConfigDir overrides the configuration directory before first use.
func (a *App) SetConfigDir(dir string) {
	a.configDir = dir
}

// Version returns the build version.
func (a *App) Version() string {
	return a.version
}

// Config resolves and caches the application configuration.
func (a *App) Config() (*config.AppConfig, error) {
	a.once.Do(func() {
		if a.configDir != "" {
			expanded, err := util.ExpandConfigDir(a.configDir)
			if err != nil {
				a.err = err
				return
			}
			a.cfg, a.err = config.NewAppConfig(config.WithConfigDir(expanded))
		} else {
			a.cfg, a.err = config.NewAppConfig()
		}
		if a.cfg != nil {
			a.cfg.SetVersion(a.version)
		}
	})
	return a.cfg, a.err
}
