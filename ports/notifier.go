package ports

import (
	"context"

	"github.com/cloudcopper/buildwatch/domain/models"
)

// Notifier performs exactly one outbound call for the target.
type Notifier interface {
	Send(ctx context.Context, appID models.AppID, target models.Target) error
}
