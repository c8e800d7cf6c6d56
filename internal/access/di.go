package access

import (
	"github.com/samber/do/v2"
	"github.com/warlocks1507/checkin/internal/config"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Authorizer, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewAuthorizer(map[Role]string{
			RoleMentor:  cfg.MentorKey,
			RoleManager: cfg.ManagerKey,
		}), nil
	})
}
