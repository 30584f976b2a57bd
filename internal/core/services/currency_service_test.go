package services_test

import (
	"context"
	"testing"

	"github.com/rhodetech/fx_ledger_app/internal/apperrors"
	"github.com/rhodetech/fx_ledger_app/internal/core/domain"
	"github.com/rhodetech/fx_ledger_app/internal/core/services"
	"github.com/rhodetech/fx_ledger_app/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateCurrency(t *testing.T) {
	repo := new(MockCurrencyRepository)
	service := services.NewCurrencyService(repo)

	repo.On("SaveCurrency", mock.Anything, mock.MatchedBy(func(c domain.Currency) bool {
		return c.CurrencyCode == "EUR" && c.Precision == 2 && c.CreatedBy == "user-1"
	})).Return(nil).Once()

	currency, err := service.CreateCurrency(context.Background(), dto.CreateCurrencyRequest{
		CurrencyCode: "EUR",
		Symbol:       "€",
		Name:         "Euro",
		Precision:    2,
	}, "user-1")

	require.NoError(t, err)
	assert.Equal(t, "EUR", currency.CurrencyCode)
	repo.AssertExpectations(t)
}

func TestCreateCurrency_Duplicate(t *testing.T) {
	repo := new(MockCurrencyRepository)
	service := services.NewCurrencyService(repo)

	repo.On("SaveCurrency", mock.Anything, mock.Anything).Return(apperrors.ErrDuplicate).Once()

	currency, err := service.CreateCurrency(context.Background(), dto.CreateCurrencyRequest{
		CurrencyCode: "EUR", Symbol: "€", Name: "Euro", Precision: 2,
	}, "user-1")

	require.Error(t, err)
	assert.Nil(t, currency)
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
}

func TestGetCurrencyByCode_NormalizesCase(t *testing.T) {
	repo := new(MockCurrencyRepository)
	service := services.NewCurrencyService(repo)

	repo.On("FindCurrencyByCode", mock.Anything, "EUR").
		Return(&domain.Currency{CurrencyCode: "EUR", Precision: 2}, nil).Once()

	currency, err := service.GetCurrencyByCode(context.Background(), "eur")

	require.NoError(t, err)
	assert.Equal(t, "EUR", currency.CurrencyCode)
	repo.AssertExpectations(t)
}

func TestGetCurrencyByCode_BadLength(t *testing.T) {
	repo := new(MockCurrencyRepository)
	service := services.NewCurrencyService(repo)

	currency, err := service.GetCurrencyByCode(context.Background(), "EURO")

	require.Error(t, err)
	assert.Nil(t, currency)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	repo.AssertNotCalled(t, "FindCurrencyByCode")
}

func TestListCurrencies_NeverNil(t *testing.T) {
	repo := new(MockCurrencyRepository)
	service := services.NewCurrencyService(repo)

	repo.On("ListCurrencies", mock.Anything).Return(nil, nil).Once()

	currencies, err := service.ListCurrencies(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, currencies)
	assert.Empty(t, currencies)
}
