package outbox

import (
	"context"
	"errors"

	domoutbox "github.com/Zhima-Mochi/garmentshop/internal/domain/outbox"
)

// Multi publishes each event to every non-nil publisher in order and joins
// their errors. One failing sink does not keep the event from the others.
func Multi(publishers ...domoutbox.Publisher) domoutbox.Publisher {
	sinks := make([]domoutbox.Publisher, 0, len(publishers))
	for _, p := range publishers {
		if p != nil {
			sinks = append(sinks, p)
		}
	}
	if len(sinks) == 1 {
		return sinks[0]
	}
	return domoutbox.PublisherFunc(func(ctx context.Context, e domoutbox.Event) error {
		var errs []error
		for _, p := range sinks {
			if err := p.Publish(ctx, e); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}
