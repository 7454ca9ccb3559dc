package ordering

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/models"
)

func activeOptions(texts ...string) []models.PickupTimeOption {
	options := make([]models.PickupTimeOption, 0, len(texts))
	for _, text := range texts {
		options = append(options, models.PickupTimeOption{ID: text, OptionText: text, IsActive: true})
	}
	return options
}

func TestBuildOrderScenario(t *testing.T) {
	lines := []models.CartLine{
		{MenuItemID: "a", Name: "紅茶", Price: models.MoneyFromInt(50), Quantity: 2},
		{MenuItemID: "b", Name: "綠茶", Price: models.MoneyFromInt(30), Quantity: 1},
	}

	order, err := BuildOrder(lines, "30分鐘後", "現金", activeOptions("30分鐘後", "1小時後"))
	require.NoError(t, err)

	assert.True(t, order.Total.Equal(models.MoneyFromInt(130)), "total = %s", order.Total)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, "30分鐘後", order.PickupTime)
	assert.Equal(t, "現金", order.PaymentMethod)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "a", order.Items[0].MenuItemID)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.True(t, order.Items[0].Price.Equal(models.MoneyFromInt(50)))
	assert.Equal(t, "b", order.Items[1].MenuItemID)
}

func TestBuildOrderTotalIsExact(t *testing.T) {
	lines := []models.CartLine{
		{MenuItemID: "a", Price: models.MustMoney("0.10"), Quantity: 3},
		{MenuItemID: "b", Price: models.MustMoney("0.20"), Quantity: 1},
		{MenuItemID: "c", Price: models.MustMoney("19.99"), Quantity: 7},
	}

	order, err := BuildOrder(lines, "1小時後", "信用卡", activeOptions("1小時後"))
	require.NoError(t, err)

	sum := models.ZeroMoney
	for _, item := range order.Items {
		sum = sum.Add(item.Price.Times(item.Quantity))
	}
	assert.True(t, order.Total.Equal(sum))
	assert.Equal(t, "140.43", order.Total.StringFixed(2))
	assert.Len(t, order.Items, len(lines))
}

func TestBuildOrderEmptyCartWinsOverEverything(t *testing.T) {
	cases := []struct {
		name    string
		pickup  string
		payment string
		options []models.PickupTimeOption
	}{
		{"all valid", "30分鐘後", "現金", activeOptions("30分鐘後")},
		{"nothing selected", "", "", nil},
		{"unknown pickup", "明天", "現金", activeOptions("30分鐘後")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildOrder(nil, tc.pickup, tc.payment, tc.options)
			assert.ErrorIs(t, err, ErrEmptyCart)
		})
	}
}

func TestBuildOrderValidation(t *testing.T) {
	line := models.CartLine{MenuItemID: "a", Price: models.MoneyFromInt(50), Quantity: 1}
	options := activeOptions("30分鐘後")
	inactive := []models.PickupTimeOption{{ID: "x", OptionText: "2小時後", IsActive: false}}

	cases := []struct {
		name    string
		lines   []models.CartLine
		pickup  string
		payment string
		options []models.PickupTimeOption
		want    error
	}{
		{"missing pickup", []models.CartLine{line}, "", "現金", options, ErrMissingSelection},
		{"missing payment", []models.CartLine{line}, "30分鐘後", "  ", options, ErrMissingSelection},
		{"pickup not offered", []models.CartLine{line}, "1小時後", "現金", options, ErrInvalidPickupTime},
		{"pickup inactive", []models.CartLine{line}, "2小時後", "現金", inactive, ErrInvalidPickupTime},
		{"zero quantity", []models.CartLine{line, {MenuItemID: "b", Price: models.MoneyFromInt(1), Quantity: 0}}, "30分鐘後", "現金", options, ErrInvalidQuantity},
		{"negative quantity", []models.CartLine{{MenuItemID: "b", Price: models.MoneyFromInt(1), Quantity: -2}}, "30分鐘後", "現金", options, ErrInvalidQuantity},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildOrder(tc.lines, tc.pickup, tc.payment, tc.options)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestBuildOrderQuantityErrorNamesLine(t *testing.T) {
	lines := []models.CartLine{{MenuItemID: "b", Price: models.MoneyFromInt(1), Quantity: -1}}

	_, err := BuildOrder(lines, "30分鐘後", "現金", activeOptions("30分鐘後"))

	var quantityErr *QuantityError
	require.True(t, errors.As(err, &quantityErr))
	assert.Equal(t, "b", quantityErr.MenuItemID)
	assert.Equal(t, -1, quantityErr.Quantity)
}

func TestBuildOrderUsesCartPriceNotMenuPrice(t *testing.T) {
	item := models.MenuItem{ID: "a", Name: "紅茶", Price: models.MoneyFromInt(50), Available: true}
	cart, err := AddToCart(models.Cart{}, item)
	require.NoError(t, err)

	// a manager raises the price after the item went into the cart
	item.Price = models.MoneyFromInt(80)

	order, err := BuildOrder(cart.Lines, "30分鐘後", "現金", activeOptions("30分鐘後"))
	require.NoError(t, err)
	assert.True(t, order.Total.Equal(models.MoneyFromInt(50)))
}
