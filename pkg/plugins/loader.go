package plugins

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/switchyard/pkg/observability"
)

// Factory constructs one plugin. Construction must not contact the upstream;
// that belongs in Plugin.Initialize.
type Factory struct {
	// Name identifies the factory in diagnostics
	Name string
	New  func() (Plugin, error)
}

// Discover builds and registers a plugin from each factory. A factory that
// fails, panics, or returns nil is logged and skipped; it never prevents the
// remaining plugins from loading. It returns the number of plugins registered.
func (r *Registry) Discover(ctx context.Context, factories ...Factory) int {
	loaded := 0
	for _, factory := range factories {
		if err := ctx.Err(); err != nil {
			r.logger.WithError(err).Warn("Plugin discovery interrupted")
			break
		}

		plugin, err := build(factory)
		if err != nil {
			r.logger.WithFields(logrus.Fields{
				"factory": factory.Name,
				"error":   err.Error(),
			}).Warn("Failed to load plugin")
			continue
		}

		before := r.Count()
		r.Register(plugin)
		if r.Count() > before {
			loaded++
		}
	}

	r.logger.WithFields(logrus.Fields{
		"loaded":    loaded,
		"factories": len(factories),
	}).Info("Plugin discovery complete")
	return loaded
}

func build(factory Factory) (plugin Plugin, err error) {
	defer func() {
		if perr := observability.MustRecover(recover()); perr != nil {
			plugin, err = nil, perr
		}
	}()

	if factory.New == nil {
		return nil, fmt.Errorf("factory has no constructor")
	}
	plugin, err = factory.New()
	if err != nil {
		return nil, err
	}
	if plugin == nil {
		return nil, fmt.Errorf("factory returned nil plugin")
	}
	return plugin, nil
}
