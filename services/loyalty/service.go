package loyalty

import (
	"scaleplus-loyalty/pkg/clock"
	"scaleplus-loyalty/pkg/gen"
	"scaleplus-loyalty/services/tier"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
)

type ServiceParams struct {
	fx.In
	Store          *Store
	Tiers          *tier.Table
	IDs            gen.IDGenerator
	Clock          *clock.Clock
	TracerProvider trace.TracerProvider `optional:"true"`
	MeterProvider  metric.MeterProvider `optional:"true"`
}

// deps is shared by every engine built from the same params.
type deps struct {
	store *Store
	tiers *tier.Table
	ids   gen.IDGenerator
	clock *clock.Clock
	tel   *telemetry
}

func newDeps(p ServiceParams) (*deps, error) {
	tel, err := newTelemetry(p.TracerProvider, p.MeterProvider)
	if err != nil {
		return nil, err
	}
	return &deps{
		store: p.Store,
		tiers: p.Tiers,
		ids:   p.IDs,
		clock: p.Clock,
		tel:   tel,
	}, nil
}

// Service bundles every engine over one store.
type Service struct {
	Grants      *GrantEngine
	Redemptions *RedemptionEngine
	Ledger      *LedgerStore
	Catalog     *CatalogStore
	Members     *Members

	d *deps
}

func NewService(p ServiceParams) (*Service, error) {
	d, err := newDeps(p)
	if err != nil {
		return nil, err
	}
	return &Service{
		Grants:      &GrantEngine{d},
		Redemptions: &RedemptionEngine{d},
		Ledger:      &LedgerStore{d},
		Catalog:     &CatalogStore{d},
		Members:     &Members{d},
		d:           d,
	}, nil
}
