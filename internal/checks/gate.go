package checks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/wrlc/alma-item-checks/internal/alma"
	"github.com/wrlc/alma-item-checks/internal/domain"
)

// SharedGate decides whether an item belongs to the off-site facility flow
// at all. Items in discard locations, items without a partner provenance,
// and items no longer active in Alma are dropped before any rule runs.
//
// When the item passes, the gate returns a fresh copy fetched from Alma by
// barcode. Webhook payloads can be stale; the rules must judge the record
// as it exists now.
type SharedGate struct {
	alma   AlmaAPI
	logger *zap.Logger
}

func NewSharedGate(api AlmaAPI, logger *zap.Logger) *SharedGate {
	return &SharedGate{alma: api, logger: logger}
}

// Filter returns (nil, nil) when the item should be skipped.
func (g *SharedGate) Filter(ctx context.Context, check *domain.Check, item *domain.Item) (*domain.Item, error) {
	barcode := item.ItemData.Barcode

	if temp := item.HoldingData.TempLocation.Value; temp != "" && strings.Contains(strings.ToLower(temp), "discard") {
		g.logger.Debug("item in discard temp location, skipping", zap.String("barcode", barcode))
		return nil, nil
	}
	if strings.Contains(strings.ToLower(item.ItemData.Location.Value), "discard") {
		g.logger.Debug("item in discard location, skipping", zap.String("barcode", barcode))
		return nil, nil
	}
	if !checkedProvenance[item.ItemData.Provenance.Desc] {
		g.logger.Debug("item has no checked provenance, skipping", zap.String("barcode", barcode))
		return nil, nil
	}

	if check.APIKey == nil || *check.APIKey == "" {
		return nil, fmt.Errorf("check %q has no API key", check.Name)
	}

	fresh, err := g.alma.GetItemByBarcode(ctx, *check.APIKey, barcode)
	if errors.Is(err, alma.ErrItemNotFound) {
		g.logger.Debug("item not active in Alma, skipping", zap.String("barcode", barcode))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("refresh item %s: %w", barcode, err)
	}
	return fresh, nil
}
