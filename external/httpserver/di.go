package httpserver

import (
	"github.com/samber/do/v2"
	"github.com/warlocks1507/checkin/internal/access"
	"github.com/warlocks1507/checkin/internal/config"
	"github.com/warlocks1507/checkin/internal/correction"
	"github.com/warlocks1507/checkin/internal/report"
	"github.com/warlocks1507/checkin/internal/roster"
	"github.com/warlocks1507/checkin/internal/session"
	"github.com/warlocks1507/checkin/internal/taskboard"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		authorizer := do.MustInvoke[*access.Authorizer](i)
		return New(cfg, authorizer, Services{
			Tracker:     do.MustInvoke[*session.Tracker](i),
			Roster:      do.MustInvoke[*roster.Service](i),
			Tasks:       do.MustInvoke[*taskboard.Service](i),
			Reports:     do.MustInvoke[*report.Service](i),
			Corrections: do.MustInvoke[*correction.Service](i),
		}), nil
	})
}
