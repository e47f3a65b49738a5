package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/kobopay/fx_wallet_app/internal/apperrors"
	"github.com/shopspring/decimal"
)

// RateQuery describes a single rate resolution request. ClientID and
// ClientGroupID are optional; Amount is optional and only consulted for
// tiered General rates.
type RateQuery struct {
	ClientID           string
	ClientGroupID      string
	BaseCurrencyCode   string
	TargetCurrencyCode string
	AsOf               time.Time
	Amount             *decimal.Decimal
}

// RateResolution is the read-only outcome of a resolution: the chosen rate,
// the tier when one applied, and the effective rate/margin to use for this
// specific quote. Stored entities are never mutated by resolution.
type RateResolution struct {
	Rate            ExchangeRate
	Tier            *RateTier
	EffectiveRate   decimal.Decimal
	EffectiveMargin decimal.Decimal
}

// ResolveRate selects the single applicable rate from the candidates for the
// query's pair. Precedence is Individual > Group > General; within one
// precedence tier the latest effectiveFrom wins, with the rate id breaking
// any remaining tie so the ordering is total. Candidates that are not
// effective at the query instant or belong to other clients/groups are
// ignored.
func ResolveRate(candidates []ExchangeRate, q RateQuery) (*RateResolution, error) {
	var individual, group, general []ExchangeRate
	for _, rate := range candidates {
		if rate.BaseCurrencyCode != q.BaseCurrencyCode || rate.TargetCurrencyCode != q.TargetCurrencyCode {
			continue
		}
		if !rate.IsEffectiveAt(q.AsOf) {
			continue
		}
		switch rate.Type {
		case RateTypeIndividual:
			if q.ClientID != "" && rate.ClientID == q.ClientID {
				individual = append(individual, rate)
			}
		case RateTypeGroup:
			if q.ClientGroupID != "" && rate.ClientGroupID == q.ClientGroupID {
				group = append(group, rate)
			}
		case RateTypeGeneral:
			general = append(general, rate)
		}
	}

	selected := pickLatest(individual)
	if selected == nil {
		selected = pickLatest(group)
	}
	if selected == nil {
		selected = pickLatest(general)
	}
	if selected == nil {
		return nil, fmt.Errorf("%w: pair %s/%s at %s",
			apperrors.ErrNoApplicableRate, q.BaseCurrencyCode, q.TargetCurrencyCode, q.AsOf.Format(time.RFC3339))
	}

	resolution := &RateResolution{
		Rate:            *selected,
		EffectiveRate:   selected.EffectiveRate(),
		EffectiveMargin: selected.Margin,
	}

	if selected.Type == RateTypeGeneral && len(selected.Tiers) > 0 && q.Amount != nil {
		tier, err := selectTier(selected.Tiers, *q.Amount)
		if err != nil {
			return nil, err
		}
		resolution.Tier = &tier
		resolution.EffectiveRate = tier.EffectiveRate()
		resolution.EffectiveMargin = tier.Margin
	}

	return resolution, nil
}

// pickLatest returns the candidate with the latest effectiveFrom. Rate ids
// break exact timestamp ties; overlapping operator data must still resolve
// deterministically.
func pickLatest(rates []ExchangeRate) *ExchangeRate {
	if len(rates) == 0 {
		return nil
	}
	best := rates[0]
	for _, rate := range rates[1:] {
		if rate.EffectiveFrom.After(best.EffectiveFrom) {
			best = rate
			continue
		}
		if rate.EffectiveFrom.Equal(best.EffectiveFrom) && rate.ExchangeRateID > best.ExchangeRateID {
			best = rate
		}
	}
	return &best
}

// selectTier finds the bracket containing the amount. Brackets are scanned in
// ascending order, so an amount on a shared boundary resolves to the lower
// tier.
func selectTier(tiers []RateTier, amount decimal.Decimal) (RateTier, error) {
	sorted := make([]RateTier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MinAmount.LessThan(sorted[j].MinAmount)
	})
	for _, tier := range sorted {
		if tier.Contains(amount) {
			return tier, nil
		}
	}
	return RateTier{}, fmt.Errorf("%w: amount %s outside all tier brackets", apperrors.ErrNoApplicableTier, amount.String())
}
