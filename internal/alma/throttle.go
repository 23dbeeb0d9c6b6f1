package alma

import (
	"context"

	"github.com/wrlc/alma-item-checks/internal/domain"
	"github.com/wrlc/alma-item-checks/internal/ratelimiter"
)

// Throttled wraps a Client so every outbound call first takes a token from
// the shared Alma rate limiter. Ex Libris enforces a hard per-second cap
// per institution; blowing it returns 429s for every consumer of the key,
// not just this service.
type Throttled struct {
	client  *Client
	limiter *ratelimiter.Limiters
}

func NewThrottled(client *Client, limiter *ratelimiter.Limiters) *Throttled {
	return &Throttled{client: client, limiter: limiter}
}

func (t *Throttled) GetItemByBarcode(ctx context.Context, apiKey, barcode string) (*domain.Item, error) {
	if err := t.limiter.Wait(ctx, ratelimiter.ResourceAlma); err != nil {
		return nil, err
	}
	return t.client.GetItemByBarcode(ctx, apiKey, barcode)
}

func (t *Throttled) UpdateItem(ctx context.Context, apiKey string, item *domain.Item) error {
	if err := t.limiter.Wait(ctx, ratelimiter.ResourceAlma); err != nil {
		return err
	}
	return t.client.UpdateItem(ctx, apiKey, item)
}

func (t *Throttled) RunReport(ctx context.Context, apiKey, path string) (*Report, error) {
	if err := t.limiter.Wait(ctx, ratelimiter.ResourceAlma); err != nil {
		return nil, err
	}
	return t.client.RunReport(ctx, apiKey, path)
}
