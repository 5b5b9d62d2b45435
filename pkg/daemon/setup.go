package daemon

import (
	"fmt"

	"github.com/lla-project/llad/pkg/config"
	"github.com/lla-project/llad/pkg/persistence"
	"github.com/lla-project/llad/pkg/plugin"
	"github.com/lla-project/llad/pkg/plugin/dummy"
	"github.com/lla-project/llad/pkg/plugin/loopback"
	"github.com/lla-project/llad/pkg/pluginid"
)

// OpenStore opens the configured binding store. It returns nil when no
// path is configured.
func OpenStore(cfg config.StateConfig) (persistence.Store, error) {
	if cfg.Path == "" {
		return nil, nil
	}

	switch cfg.Backend {
	case config.BackendFile, "":
		return persistence.NewFileStore(cfg.Path), nil
	case config.BackendBadger:
		return persistence.OpenBadgerStore(cfg.Path)
	default:
		return nil, fmt.Errorf("%w: unknown state backend %q", config.ErrInvalidConfig, cfg.Backend)
	}
}

// DefaultLoader returns a loader with the built-in plugins configured
// from cfg.
func DefaultLoader(cfg *config.Config) *plugin.Loader {
	l := plugin.NewLoader()
	_ = l.Register(pluginid.Dummy, dummy.Factory(dummy.Options{
		Pattern:  cfg.Dummy.Pattern,
		Interval: cfg.Dummy.Interval,
	}))
	_ = l.Register(pluginid.Loopback, loopback.Factory(loopback.Options{
		Pairs: cfg.Loopback.Pairs,
	}))
	return l
}
