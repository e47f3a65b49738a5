package mapping

import (
	"github.com/kobopay/fx_wallet_app/internal/core/domain"
	"github.com/kobopay/fx_wallet_app/internal/models"
)

// ToModelExchangeRate converts a domain ExchangeRate to a model ExchangeRate.
// Tiers are mapped separately since they live in their own table.
func ToModelExchangeRate(d domain.ExchangeRate) models.ExchangeRate {
	var clientID, clientGroupID *string
	if d.ClientID != "" {
		clientID = &d.ClientID
	}
	if d.ClientGroupID != "" {
		clientGroupID = &d.ClientGroupID
	}
	return models.ExchangeRate{
		ExchangeRateID:      d.ExchangeRateID,
		BaseCurrencyCode:    d.BaseCurrencyCode,
		TargetCurrencyCode:  d.TargetCurrencyCode,
		BaseCurrencyValue:   d.BaseCurrencyValue,
		TargetCurrencyValue: d.TargetCurrencyValue,
		Margin:              d.Margin,
		RateType:            string(d.Type),
		ClientID:            clientID,
		ClientGroupID:       clientGroupID,
		EffectiveFrom:       d.EffectiveFrom,
		EffectiveTo:         d.EffectiveTo,
		IsActive:            d.IsActive,
		Source:              d.Source,
		AuditFields:         ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainExchangeRate converts a model ExchangeRate to a domain ExchangeRate
func ToDomainExchangeRate(m models.ExchangeRate) domain.ExchangeRate {
	var clientID, clientGroupID string
	if m.ClientID != nil {
		clientID = *m.ClientID
	}
	if m.ClientGroupID != nil {
		clientGroupID = *m.ClientGroupID
	}
	return domain.ExchangeRate{
		ExchangeRateID:      m.ExchangeRateID,
		BaseCurrencyCode:    m.BaseCurrencyCode,
		TargetCurrencyCode:  m.TargetCurrencyCode,
		BaseCurrencyValue:   m.BaseCurrencyValue,
		TargetCurrencyValue: m.TargetCurrencyValue,
		Margin:              m.Margin,
		Type:                domain.RateType(m.RateType),
		ClientID:            clientID,
		ClientGroupID:       clientGroupID,
		EffectiveFrom:       m.EffectiveFrom,
		EffectiveTo:         m.EffectiveTo,
		IsActive:            m.IsActive,
		Source:              m.Source,
		AuditFields:         ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelRateTier converts a domain RateTier to a model RateTier
func ToModelRateTier(rateID string, d domain.RateTier) models.RateTier {
	return models.RateTier{
		RateTierID:     d.RateTierID,
		ExchangeRateID: rateID,
		MinAmount:      d.MinAmount,
		MaxAmount:      d.MaxAmount,
		Rate:           d.Rate,
		Margin:         d.Margin,
		CreatedAt:      d.CreatedAt,
		CreatedBy:      d.CreatedBy,
	}
}

// ToDomainRateTier converts a model RateTier to a domain RateTier
func ToDomainRateTier(m models.RateTier) domain.RateTier {
	return domain.RateTier{
		RateTierID: m.RateTierID,
		MinAmount:  m.MinAmount,
		MaxAmount:  m.MaxAmount,
		Rate:       m.Rate,
		Margin:     m.Margin,
		CreatedAt:  m.CreatedAt,
		CreatedBy:  m.CreatedBy,
	}
}

// ToDomainRateTierSlice converts a slice of model RateTiers to domain RateTiers
func ToDomainRateTierSlice(ms []models.RateTier) []domain.RateTier {
	ds := make([]domain.RateTier, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainRateTier(m)
	}
	return ds
}
