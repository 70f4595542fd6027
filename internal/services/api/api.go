// Package api composes the HTTP API for the application
package api

import (
	"callog/internal/platform/config"
	"callog/internal/platform/logger"
	phttp "callog/internal/platform/net/http"
	"callog/internal/platform/store"

	"callog/internal/modkit"
	"callog/internal/modkit/httpkit"
	"callog/internal/modkit/module"
	"callog/internal/modkit/swaggerkit"

	metamod "callog/internal/services/api/meta/module"
	cdrmod "callog/internal/services/cdr/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	// shared deps for modules
	deps := modkit.Deps{
		Cfg: opt.Config,
		PG:  opt.Store.PG,
	}

	mods := []module.Module{
		metamod.New(deps),
		cdrmod.New(deps),
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		// Swagger + profiler
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})
}
