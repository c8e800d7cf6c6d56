package report

import (
	"github.com/samber/do/v2"
	"github.com/warlocks1507/checkin/internal/repository"
	"github.com/warlocks1507/checkin/internal/session"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Service, error) {
		repo := do.MustInvoke[repository.Repository](i)
		tracker := do.MustInvoke[*session.Tracker](i)
		return NewService(repo, tracker), nil
	})
}
