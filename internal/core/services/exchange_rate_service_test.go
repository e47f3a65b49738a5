package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/kobopay/fx_wallet_app/internal/apperrors"
	"github.com/kobopay/fx_wallet_app/internal/core/domain"
	"github.com/kobopay/fx_wallet_app/internal/core/ports"
	portsrepo "github.com/kobopay/fx_wallet_app/internal/core/ports/repositories"
	"github.com/kobopay/fx_wallet_app/internal/core/services"
	"github.com/kobopay/fx_wallet_app/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mocks ---

type MockExchangeRateRepository struct {
	mock.Mock
}

func (m *MockExchangeRateRepository) FindExchangeRateByID(ctx context.Context, rateID string) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, rateID)
	if rate, ok := args.Get(0).(*domain.ExchangeRate); ok {
		return rate, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockExchangeRateRepository) FindApplicableRates(ctx context.Context, baseCurrencyCode, targetCurrencyCode string, asOf time.Time) ([]domain.ExchangeRate, error) {
	args := m.Called(ctx, baseCurrencyCode, targetCurrencyCode, asOf)
	if rates, ok := args.Get(0).([]domain.ExchangeRate); ok {
		return rates, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockExchangeRateRepository) ListExchangeRates(ctx context.Context, filter portsrepo.ExchangeRateFilter, page, pageSize int) ([]domain.ExchangeRate, int, error) {
	args := m.Called(ctx, filter, page, pageSize)
	if rates, ok := args.Get(0).([]domain.ExchangeRate); ok {
		return rates, args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}

func (m *MockExchangeRateRepository) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockExchangeRateRepository) UpdateExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockExchangeRateRepository) ReplaceTiers(ctx context.Context, rateID string, tiers []domain.RateTier) error {
	args := m.Called(ctx, rateID, tiers)
	return args.Error(0)
}

type MockClientDirectory struct {
	mock.Mock
}

func (m *MockClientDirectory) ClientExists(ctx context.Context, clientID string) (bool, error) {
	args := m.Called(ctx, clientID)
	return args.Bool(0), args.Error(1)
}

func (m *MockClientDirectory) ClientIsActive(ctx context.Context, clientID string) (bool, error) {
	args := m.Called(ctx, clientID)
	return args.Bool(0), args.Error(1)
}

func (m *MockClientDirectory) ClientGroupExists(ctx context.Context, clientGroupID string) (bool, error) {
	args := m.Called(ctx, clientGroupID)
	return args.Bool(0), args.Error(1)
}

func (m *MockClientDirectory) ClientGroupIsActive(ctx context.Context, clientGroupID string) (bool, error) {
	args := m.Called(ctx, clientGroupID)
	return args.Bool(0), args.Error(1)
}

type MockMinimumAmountConfig struct {
	mock.Mock
}

func (m *MockMinimumAmountConfig) GetApplicableMinimum(ctx context.Context, baseCurrencyCode, targetCurrencyCode string, asOf time.Time) (*decimal.Decimal, error) {
	args := m.Called(ctx, baseCurrencyCode, targetCurrencyCode, asOf)
	if minimum, ok := args.Get(0).(*decimal.Decimal); ok {
		return minimum, args.Error(1)
	}
	return nil, args.Error(1)
}

// fixedClock pins the service clock so assertions on timestamps are exact.
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

var _ ports.Clock = fixedClock{}

// --- Suite ---

type ExchangeRateServiceTestSuite struct {
	suite.Suite
	mockRepo     *MockExchangeRateRepository
	mockClients  *MockClientDirectory
	mockMinimums *MockMinimumAmountConfig
	service      *services.ExchangeRateService
	ctx          context.Context
	now          time.Time
}

func (s *ExchangeRateServiceTestSuite) SetupTest() {
	s.mockRepo = new(MockExchangeRateRepository)
	s.mockClients = new(MockClientDirectory)
	s.mockMinimums = new(MockMinimumAmountConfig)
	s.now = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	s.service = services.NewExchangeRateService(s.mockRepo, s.mockClients, s.mockMinimums, fixedClock{now: s.now})
	s.ctx = context.Background()
}

func (s *ExchangeRateServiceTestSuite) createRequest(rateType domain.RateType) dto.CreateExchangeRateRequest {
	return dto.CreateExchangeRateRequest{
		BaseCurrencyCode:    "USD",
		TargetCurrencyCode:  "NGN",
		BaseCurrencyValue:   decimal.NewFromInt(1),
		TargetCurrencyValue: decimal.NewFromInt(1500),
		Margin:              decimal.NewFromFloat(0.05),
		Type:                rateType,
		EffectiveFrom:       s.now,
		Source:              "treasury-desk",
	}
}

func (s *ExchangeRateServiceTestSuite) TestCreateExchangeRate_General() {
	req := s.createRequest(domain.RateTypeGeneral)
	s.mockRepo.On("SaveExchangeRate", s.ctx, mock.Anything).Return(nil).Once()

	rate, err := s.service.CreateExchangeRate(s.ctx, req, "admin-1")

	s.Require().NoError(err)
	s.NotEmpty(rate.ExchangeRateID)
	s.Equal(domain.RateTypeGeneral, rate.Type)
	s.Equal("admin-1", rate.CreatedBy)
	s.Equal(s.now, rate.CreatedAt)
	s.mockRepo.AssertExpectations(s.T())
}

func (s *ExchangeRateServiceTestSuite) TestCreateExchangeRate_GeneralMustNotTargetClient() {
	req := s.createRequest(domain.RateTypeGeneral)
	req.ClientID = "client-1"

	_, err := s.service.CreateExchangeRate(s.ctx, req, "admin-1")

	s.ErrorIs(err, apperrors.ErrValidation)
	s.mockRepo.AssertNotCalled(s.T(), "SaveExchangeRate", mock.Anything, mock.Anything)
}

func (s *ExchangeRateServiceTestSuite) TestCreateExchangeRate_Individual() {
	req := s.createRequest(domain.RateTypeIndividual)
	req.ClientID = "client-1"
	s.mockClients.On("ClientExists", s.ctx, "client-1").Return(true, nil).Once()
	s.mockClients.On("ClientIsActive", s.ctx, "client-1").Return(true, nil).Once()
	s.mockRepo.On("SaveExchangeRate", s.ctx, mock.Anything).Return(nil).Once()

	rate, err := s.service.CreateExchangeRate(s.ctx, req, "admin-1")

	s.Require().NoError(err)
	s.Equal(domain.RateTypeIndividual, rate.Type)
	s.Equal("client-1", rate.ClientID)
	s.mockClients.AssertExpectations(s.T())
}

func (s *ExchangeRateServiceTestSuite) TestCreateExchangeRate_IndividualUnknownClient() {
	req := s.createRequest(domain.RateTypeIndividual)
	req.ClientID = "client-9"
	s.mockClients.On("ClientExists", s.ctx, "client-9").Return(false, nil).Once()

	_, err := s.service.CreateExchangeRate(s.ctx, req, "admin-1")

	s.ErrorIs(err, apperrors.ErrValidation)
	s.mockRepo.AssertNotCalled(s.T(), "SaveExchangeRate", mock.Anything, mock.Anything)
}

func (s *ExchangeRateServiceTestSuite) TestCreateExchangeRate_IndividualInactiveClient() {
	req := s.createRequest(domain.RateTypeIndividual)
	req.ClientID = "client-1"
	s.mockClients.On("ClientExists", s.ctx, "client-1").Return(true, nil).Once()
	s.mockClients.On("ClientIsActive", s.ctx, "client-1").Return(false, nil).Once()

	_, err := s.service.CreateExchangeRate(s.ctx, req, "admin-1")

	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *ExchangeRateServiceTestSuite) TestCreateExchangeRate_Group() {
	req := s.createRequest(domain.RateTypeGroup)
	req.ClientGroupID = "group-1"
	s.mockClients.On("ClientGroupExists", s.ctx, "group-1").Return(true, nil).Once()
	s.mockClients.On("ClientGroupIsActive", s.ctx, "group-1").Return(true, nil).Once()
	s.mockRepo.On("SaveExchangeRate", s.ctx, mock.Anything).Return(nil).Once()

	rate, err := s.service.CreateExchangeRate(s.ctx, req, "admin-1")

	s.Require().NoError(err)
	s.Equal("group-1", rate.ClientGroupID)
}

func (s *ExchangeRateServiceTestSuite) TestCreateExchangeRate_UnknownCurrency() {
	req := s.createRequest(domain.RateTypeGeneral)
	req.TargetCurrencyCode = "ZZZ"

	_, err := s.service.CreateExchangeRate(s.ctx, req, "admin-1")

	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *ExchangeRateServiceTestSuite) TestCreateExchangeRate_UnknownType() {
	req := s.createRequest(domain.RateType("SPECIAL"))

	_, err := s.service.CreateExchangeRate(s.ctx, req, "admin-1")

	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *ExchangeRateServiceTestSuite) existingGeneralRate() *domain.ExchangeRate {
	base, _ := domain.GetCurrency("USD")
	target, _ := domain.GetCurrency("NGN")
	rate, err := domain.NewGeneralExchangeRate(base, target,
		decimal.NewFromInt(1), decimal.NewFromInt(1500), decimal.NewFromFloat(0.05),
		s.now.Add(-24*time.Hour), nil, "treasury-desk", "admin-1", s.now.Add(-24*time.Hour))
	s.Require().NoError(err)
	rate.ExchangeRateID = "rate-1"
	return rate
}

func (s *ExchangeRateServiceTestSuite) TestUpdateCurrencyValues() {
	rate := s.existingGeneralRate()
	s.mockRepo.On("FindExchangeRateByID", s.ctx, "rate-1").Return(rate, nil).Once()
	s.mockRepo.On("UpdateExchangeRate", s.ctx, mock.Anything).Return(nil).Once()

	updated, err := s.service.UpdateCurrencyValues(s.ctx, "rate-1", dto.UpdateRateValuesRequest{
		BaseCurrencyValue:   decimal.NewFromInt(1),
		TargetCurrencyValue: decimal.NewFromInt(1520),
		Margin:              decimal.NewFromFloat(0.04),
	}, "admin-2")

	s.Require().NoError(err)
	s.True(updated.TargetCurrencyValue.Equal(decimal.NewFromInt(1520)))
	s.Equal("admin-2", updated.LastUpdatedBy)
	s.Equal(s.now, updated.LastUpdatedAt)
}

func (s *ExchangeRateServiceTestSuite) TestUpdateCurrencyValues_InvalidMargin() {
	rate := s.existingGeneralRate()
	s.mockRepo.On("FindExchangeRateByID", s.ctx, "rate-1").Return(rate, nil).Once()

	_, err := s.service.UpdateCurrencyValues(s.ctx, "rate-1", dto.UpdateRateValuesRequest{
		BaseCurrencyValue:   decimal.NewFromInt(1),
		TargetCurrencyValue: decimal.NewFromInt(1520),
		Margin:              decimal.NewFromInt(2),
	}, "admin-2")

	s.ErrorIs(err, apperrors.ErrDomainInvariant)
	s.mockRepo.AssertNotCalled(s.T(), "UpdateExchangeRate", mock.Anything, mock.Anything)
}

func (s *ExchangeRateServiceTestSuite) TestDeactivateExchangeRate() {
	rate := s.existingGeneralRate()
	s.mockRepo.On("FindExchangeRateByID", s.ctx, "rate-1").Return(rate, nil).Once()
	s.mockRepo.On("UpdateExchangeRate", s.ctx, mock.Anything).Return(nil).Once()

	updated, err := s.service.DeactivateExchangeRate(s.ctx, "rate-1", "admin-1")

	s.Require().NoError(err)
	s.False(updated.IsActive)
	s.Require().NotNil(updated.EffectiveTo)
	s.Equal(s.now, *updated.EffectiveTo)
}

func (s *ExchangeRateServiceTestSuite) TestExpireExchangeRate() {
	rate := s.existingGeneralRate()
	successorStart := s.now.Add(time.Hour)
	s.mockRepo.On("FindExchangeRateByID", s.ctx, "rate-1").Return(rate, nil).Once()
	s.mockRepo.On("UpdateExchangeRate", s.ctx, mock.Anything).Return(nil).Once()

	updated, err := s.service.ExpireExchangeRate(s.ctx, "rate-1", dto.ExpireRateRequest{NewRateEffectiveFrom: successorStart}, "admin-1")

	s.Require().NoError(err)
	s.Require().NotNil(updated.EffectiveTo)
	s.Equal(successorStart.Add(-time.Millisecond), *updated.EffectiveTo)
}

func (s *ExchangeRateServiceTestSuite) tierRequest(brackets ...[2]int64) dto.ManageTiersRequest {
	req := dto.ManageTiersRequest{}
	for _, b := range brackets {
		req.Tiers = append(req.Tiers, dto.TierRequest{
			MinAmount: decimal.NewFromInt(b[0]),
			MaxAmount: decimal.NewFromInt(b[1]),
			Rate:      decimal.NewFromInt(1490),
			Margin:    decimal.NewFromFloat(0.03),
		})
	}
	return req
}

func (s *ExchangeRateServiceTestSuite) TestManageTiers() {
	rate := s.existingGeneralRate()
	minimum := decimal.NewFromInt(5000)
	s.mockRepo.On("FindExchangeRateByID", s.ctx, "rate-1").Return(rate, nil).Once()
	s.mockMinimums.On("GetApplicableMinimum", s.ctx, "USD", "NGN", s.now).Return(&minimum, nil).Once()
	s.mockRepo.On("ReplaceTiers", s.ctx, "rate-1", mock.Anything).Return(nil).Once()

	updated, err := s.service.ManageTiers(s.ctx, "rate-1", s.tierRequest([2]int64{0, 1000}, [2]int64{1000, 5000}), "admin-1")

	s.Require().NoError(err)
	s.Require().Len(updated.Tiers, 2)
	s.True(updated.Tiers[0].MinAmount.LessThan(updated.Tiers[1].MinAmount), "tiers are sorted")
	s.NotEmpty(updated.Tiers[0].RateTierID)
	s.mockRepo.AssertExpectations(s.T())
}

func (s *ExchangeRateServiceTestSuite) TestManageTiers_EmptyCollectionClearsToFlatPricing() {
	rate := s.existingGeneralRate()
	existing, err := domain.NewRateTier(decimal.Zero, decimal.NewFromInt(5000), decimal.NewFromInt(1490), decimal.NewFromFloat(0.03), "admin-1", s.now.Add(-time.Hour))
	s.Require().NoError(err)
	s.Require().NoError(rate.SetTiers([]domain.RateTier{existing}))
	s.mockRepo.On("FindExchangeRateByID", s.ctx, "rate-1").Return(rate, nil).Once()
	s.mockRepo.On("ReplaceTiers", s.ctx, "rate-1", mock.MatchedBy(func(tiers []domain.RateTier) bool {
		return len(tiers) == 0
	})).Return(nil).Once()

	updated, err := s.service.ManageTiers(s.ctx, "rate-1", dto.ManageTiersRequest{}, "admin-1")

	s.Require().NoError(err)
	s.Empty(updated.Tiers)
	s.mockMinimums.AssertNotCalled(s.T(), "GetApplicableMinimum", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	s.mockRepo.AssertExpectations(s.T())
}

func (s *ExchangeRateServiceTestSuite) TestManageTiers_GapBetweenBrackets() {
	rate := s.existingGeneralRate()
	s.mockRepo.On("FindExchangeRateByID", s.ctx, "rate-1").Return(rate, nil).Once()

	_, err := s.service.ManageTiers(s.ctx, "rate-1", s.tierRequest([2]int64{0, 1000}, [2]int64{2000, 5000}), "admin-1")

	s.ErrorIs(err, apperrors.ErrTierOverlap)
	s.mockRepo.AssertNotCalled(s.T(), "ReplaceTiers", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ExchangeRateServiceTestSuite) TestManageTiers_BoundaryMismatch() {
	rate := s.existingGeneralRate()
	minimum := decimal.NewFromInt(5000)
	s.mockRepo.On("FindExchangeRateByID", s.ctx, "rate-1").Return(rate, nil).Once()
	s.mockMinimums.On("GetApplicableMinimum", s.ctx, "USD", "NGN", s.now).Return(&minimum, nil).Once()

	_, err := s.service.ManageTiers(s.ctx, "rate-1", s.tierRequest([2]int64{0, 1000}, [2]int64{1000, 4000}), "admin-1")

	s.ErrorIs(err, apperrors.ErrTierBoundaryMismatch)
}

func (s *ExchangeRateServiceTestSuite) TestManageTiers_NoMinimumConfigured() {
	rate := s.existingGeneralRate()
	s.mockRepo.On("FindExchangeRateByID", s.ctx, "rate-1").Return(rate, nil).Once()
	s.mockMinimums.On("GetApplicableMinimum", s.ctx, "USD", "NGN", s.now).Return(nil, nil).Once()

	_, err := s.service.ManageTiers(s.ctx, "rate-1", s.tierRequest([2]int64{0, 5000}), "admin-1")

	s.ErrorIs(err, apperrors.ErrTierBoundaryMismatch)
}

func (s *ExchangeRateServiceTestSuite) TestManageTiers_NonGeneralRate() {
	base, _ := domain.GetCurrency("USD")
	target, _ := domain.GetCurrency("NGN")
	rate, err := domain.NewGroupExchangeRate("group-1", base, target,
		decimal.NewFromInt(1), decimal.NewFromInt(1500), decimal.Zero,
		s.now.Add(-time.Hour), nil, "treasury-desk", "admin-1", s.now.Add(-time.Hour))
	s.Require().NoError(err)
	rate.ExchangeRateID = "rate-2"
	s.mockRepo.On("FindExchangeRateByID", s.ctx, "rate-2").Return(rate, nil).Once()

	_, err = s.service.ManageTiers(s.ctx, "rate-2", s.tierRequest([2]int64{0, 5000}), "admin-1")

	s.ErrorIs(err, apperrors.ErrInvalidRateType)
}

func TestExchangeRateServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ExchangeRateServiceTestSuite))
}
