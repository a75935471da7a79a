package out

import (
	"context"

	"github.com/suchimauz/dental-clinic-scheduler/internal/core/domain"
)

// EventPublisherPort — диспетчеризация доменных событий наружу.
type EventPublisherPort interface {
	Publish(ctx context.Context, event domain.Event) error
}
