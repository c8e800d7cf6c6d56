package webhook

import (
	"github.com/samber/do/v2"
	"github.com/warlocks1507/checkin/internal/config"
	"github.com/warlocks1507/checkin/internal/webhook"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (webhook.Notifier, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewHTTPNotifier(c.NotifyWebhookURL), nil
	})
}
