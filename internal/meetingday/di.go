package meetingday

import (
	"github.com/samber/do/v2"
	"github.com/warlocks1507/checkin/internal/config"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Calendar, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return New(cfg.TeamTimezone)
	})
}
