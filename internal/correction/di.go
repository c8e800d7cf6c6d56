package correction

import (
	"github.com/samber/do/v2"
	"github.com/warlocks1507/checkin/internal/config"
	"github.com/warlocks1507/checkin/internal/meetingday"
	"github.com/warlocks1507/checkin/internal/repository"
	"github.com/warlocks1507/checkin/internal/webhook"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo := do.MustInvoke[repository.Repository](i)
		cal := do.MustInvoke[*meetingday.Calendar](i)
		notifier := do.MustInvoke[webhook.Notifier](i)
		return NewService(repo, cal, notifier, cfg.CorrectionAutoApply), nil
	})
}
