package mapper

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/northwind-orders/internal/domains/orders/adapters/persistence/entities"
	"github.com/Apurer/northwind-orders/internal/domains/orders/domain"
)

func ptr[T any](v T) *T { return &v }

func loadedRecord() *entities.Order {
	orderDate := time.Date(1996, 7, 4, 0, 0, 0, 0, time.UTC)
	return &entities.Order{
		OrderID:        10248,
		CustomerID:     ptr("VINET"),
		EmployeeID:     ptr(int32(5)),
		OrderDate:      &orderDate,
		RequiredDate:   ptr(orderDate.AddDate(0, 0, 28)),
		ShipVia:        ptr(int32(3)),
		Freight:        decimal.NewNullDecimal(decimal.RequireFromString("32.38")),
		ShipName:       ptr("Vins et alcools Chevalier"),
		ShipAddress:    ptr("59 rue de l'Abbaye"),
		ShipCity:       ptr("Reims"),
		ShipPostalCode: ptr("51100"),
		ShipCountry:    ptr("France"),
		Customer:       &entities.Customer{ID: "VINET", CompanyName: "Vins et alcools Chevalier"},
		Employee:       &entities.Employee{ID: 5, FirstName: "Steven", LastName: "Buchanan", Country: ptr("UK")},
		Shipper:        &entities.Shipper{ID: 3, CompanyName: "Federal Shipping"},
		OrderDetails: []entities.OrderDetail{
			{
				OrderID:   10248,
				ProductID: 11,
				UnitPrice: decimal.RequireFromString("14.00"),
				Quantity:  12,
				Product: &entities.Product{
					ID:          11,
					ProductName: "Queso Cabrales",
					CategoryID:  ptr(int32(4)),
					SupplierID:  ptr(int32(5)),
					Category:    &entities.Category{ID: 4, CategoryName: "Dairy Products"},
					Supplier:    &entities.Supplier{ID: 5, CompanyName: "Cooperativa de Quesos 'Las Cabras'"},
				},
			},
			{OrderID: 10248, ProductID: 42, UnitPrice: decimal.RequireFromString("9.80"), Quantity: 10, Discount: 0.25},
		},
	}
}

func TestToDomainOrder_FullyLoaded(t *testing.T) {
	order := ToDomainOrder(loadedRecord())

	assert.Equal(t, int64(10248), order.ID)
	assert.Equal(t, "VINET", order.Customer.Code.Code)
	assert.Equal(t, "Vins et alcools Chevalier", order.Customer.CompanyName)
	assert.Equal(t, domain.Employee{ID: 5, FirstName: "Steven", LastName: "Buchanan", Country: "UK"}, order.Employee)
	assert.Equal(t, domain.Shipper{ID: 3, CompanyName: "Federal Shipping"}, order.Shipper)
	assert.InDelta(t, 32.38, order.Freight, 1e-9)
	assert.Nil(t, order.ShippedDate)
	assert.Nil(t, order.ShippingAddress.Region)
	assert.Equal(t, "Reims", order.ShippingAddress.City)

	require.Len(t, order.Details, 2)
	first := order.Details[0]
	assert.Equal(t, int64(10248), first.OrderID)
	assert.Equal(t, domain.Product{
		ID: 11, Name: "Queso Cabrales",
		CategoryID: 4, Category: "Dairy Products",
		SupplierID: 5, Supplier: "Cooperativa de Quesos 'Las Cabras'",
	}, first.Product)
	assert.InDelta(t, 14.0, first.UnitPrice, 1e-9)
	assert.Equal(t, int64(12), first.Quantity)

	second := order.Details[1]
	assert.Equal(t, domain.Product{ID: 42}, second.Product)
	assert.InDelta(t, 0.25, second.Discount, 1e-9)
}

func TestToDomainOrder_NullsDegradeToDefaults(t *testing.T) {
	order := ToDomainOrder(&entities.Order{OrderID: 7})

	assert.Equal(t, int64(7), order.ID)
	assert.Equal(t, "", order.Customer.Code.Code)
	assert.Equal(t, "", order.Customer.CompanyName)
	assert.Equal(t, int64(0), order.Employee.ID)
	assert.Equal(t, int64(0), order.Shipper.ID)
	assert.True(t, order.OrderDate.Equal(domain.MinDate))
	assert.True(t, order.RequiredDate.Equal(domain.MinDate))
	assert.Nil(t, order.ShippedDate)
	assert.Zero(t, order.Freight)
	assert.Equal(t, domain.ShippingAddress{}, order.ShippingAddress)
	assert.NotNil(t, order.Details)
	assert.Empty(t, order.Details)
}

func TestToEntityOrder_StraightAssignment(t *testing.T) {
	shipped := time.Date(1996, 7, 16, 0, 0, 0, 0, time.UTC)
	in := ToDomainOrder(loadedRecord())
	in.ShippedDate = &shipped
	in.ShippingAddress.Region = ptr("Champagne")

	rec, err := ToEntityOrder(&in)
	require.NoError(t, err)

	assert.Zero(t, rec.OrderID)
	assert.Equal(t, "VINET", *rec.CustomerID)
	assert.Equal(t, int32(5), *rec.EmployeeID)
	assert.Equal(t, int32(3), *rec.ShipVia)
	assert.True(t, rec.Freight.Valid)
	assert.Equal(t, "32.38", rec.Freight.Decimal.String())
	assert.True(t, shipped.Equal(*rec.ShippedDate))
	assert.Equal(t, "Champagne", *rec.ShipRegion)
	assert.Equal(t, "France", *rec.ShipCountry)
	assert.Nil(t, rec.Customer)

	require.Len(t, rec.OrderDetails, 2)
	assert.Equal(t, int32(11), rec.OrderDetails[0].ProductID)
	assert.Equal(t, int16(12), rec.OrderDetails[0].Quantity)
	assert.Equal(t, "14", rec.OrderDetails[0].UnitPrice.String())
	assert.Equal(t, float32(0.25), rec.OrderDetails[1].Discount)
	assert.Nil(t, rec.OrderDetails[0].Product)
}

func TestToEntityOrder_ZeroReferencesBecomeNull(t *testing.T) {
	rec, err := ToEntityOrder(&domain.Order{})
	require.NoError(t, err)
	assert.Nil(t, rec.CustomerID)
	assert.Nil(t, rec.EmployeeID)
	assert.Nil(t, rec.ShipVia)
	assert.Nil(t, rec.OrderDate)
	assert.Nil(t, rec.RequiredDate)

	back := ToDomainOrder(&rec)
	assert.Equal(t, "", back.Customer.Code.Code)
	assert.True(t, back.OrderDate.Equal(domain.MinDate))
}

func TestToEntityOrder_RejectsNonPositiveQuantity(t *testing.T) {
	for _, qty := range []int64{0, -1} {
		_, err := ToEntityOrder(&domain.Order{Details: []domain.OrderDetail{
			{Product: domain.Product{ID: 1}, Quantity: 3},
			{Product: domain.Product{ID: 2}, Quantity: qty},
		}})
		require.ErrorIs(t, err, domain.ErrInvalidQuantity)
		require.ErrorIs(t, err, domain.ErrValidation)
	}
}

func TestToEntityOrder_CheckedConversions(t *testing.T) {
	cases := map[string]domain.Order{
		"employee id overflow": {Employee: domain.Employee{ID: math.MaxInt32 + 1}},
		"negative shipper id":  {Shipper: domain.Shipper{ID: -4}},
		"nan freight":          {Freight: math.NaN()},
		"infinite freight":     {Freight: math.Inf(1)},
		"freight too large":    {Freight: 1e16},
		"product id overflow": {Details: []domain.OrderDetail{
			{Product: domain.Product{ID: math.MaxInt32 + 1}, Quantity: 1},
		}},
		"quantity overflow": {Details: []domain.OrderDetail{
			{Product: domain.Product{ID: 1}, Quantity: math.MaxInt16 + 1},
		}},
		"discount nan": {Details: []domain.OrderDetail{
			{Product: domain.Product{ID: 1}, Quantity: 1, Discount: math.NaN()},
		}},
	}
	for name, order := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ToEntityOrder(&order)
			require.ErrorIs(t, err, domain.ErrOutOfRange)
			require.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestToEntityOrder_DetailWithoutProduct(t *testing.T) {
	for _, id := range []int64{0, -7} {
		_, err := ToEntityOrder(&domain.Order{Details: []domain.OrderDetail{
			{Product: domain.Product{ID: id}, Quantity: 1},
		}})
		require.ErrorIs(t, err, domain.ErrMissingProduct)
		require.ErrorIs(t, err, domain.ErrValidation)
		assert.NotErrorIs(t, err, domain.ErrOutOfRange)
		assert.Contains(t, err.Error(), "detail must reference a product")
	}
}

func TestToEntityDetails_UsesOrderKey(t *testing.T) {
	recs, err := ToEntityDetails(77, []domain.OrderDetail{
		{Product: domain.Product{ID: 1}, UnitPrice: 18.123456, Quantity: 2},
	})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, int32(77), recs[0].OrderID)
	assert.Equal(t, "18.1235", recs[0].UnitPrice.String())
}

func TestOrderKey(t *testing.T) {
	key, ok := OrderKey(10248)
	assert.True(t, ok)
	assert.Equal(t, int32(10248), key)

	for _, id := range []int64{0, -1, math.MaxInt32 + 1} {
		_, ok := OrderKey(id)
		assert.False(t, ok, id)
	}
}

func TestToDomainEmployeeHierarchy(t *testing.T) {
	h := ToDomainEmployeeHierarchy([]entities.Employee{
		{ID: 2},
		{ID: 1, ReportsTo: ptr(int32(2))},
		{ID: 5, ReportsTo: ptr(int32(2))},
		{ID: 6, ReportsTo: ptr(int32(5))},
	})
	assert.Equal(t, []int64{2}, h.Roots())
	assert.Equal(t, []int64{1, 5}, h.DirectReports(2))
	mgr, ok := h.Manager(6)
	assert.True(t, ok)
	assert.Equal(t, int64(5), mgr)
}
