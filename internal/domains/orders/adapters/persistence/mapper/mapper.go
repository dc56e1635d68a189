// Package mapper translates between the relational records and the order domain model.
// Every function is pure: no store access, and the only failures are invariant or range violations.
package mapper

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/northwind-orders/internal/domains/orders/adapters/persistence/entities"
	"github.com/Apurer/northwind-orders/internal/domains/orders/domain"
)

// moneyScale matches the numeric(19,4) money columns.
const moneyScale = 4

// maxMoney is the first value numeric(19,4) cannot hold.
var maxMoney = decimal.New(1, 15)

// ToDomainOrders maps a page of order records.
func ToDomainOrders(records []entities.Order) []domain.Order {
	orders := make([]domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, ToDomainOrder(&records[i]))
	}
	return orders
}

// ToDomainOrder maps an order record and whatever navigations were loaded with it.
// Absent values read back as empty strings, MinDate and zero ids.
func ToDomainOrder(r *entities.Order) domain.Order {
	order := domain.Order{
		ID: int64(r.OrderID),
		Customer: domain.Customer{
			Code: domain.CustomerCode{Code: stringOrEmpty(r.CustomerID)},
		},
		Employee:     domain.Employee{ID: int64OrZero(r.EmployeeID)},
		Shipper:      domain.Shipper{ID: int64OrZero(r.ShipVia)},
		OrderDate:    timeOrMin(r.OrderDate),
		RequiredDate: timeOrMin(r.RequiredDate),
		ShippedDate:  cloneTime(r.ShippedDate),
		ShipName:     stringOrEmpty(r.ShipName),
		ShippingAddress: domain.ShippingAddress{
			Address:    stringOrEmpty(r.ShipAddress),
			City:       stringOrEmpty(r.ShipCity),
			Region:     cloneString(r.ShipRegion),
			PostalCode: stringOrEmpty(r.ShipPostalCode),
			Country:    stringOrEmpty(r.ShipCountry),
		},
	}
	if r.Freight.Valid {
		order.Freight = r.Freight.Decimal.InexactFloat64()
	}
	if r.Customer != nil {
		order.Customer.CompanyName = r.Customer.CompanyName
	}
	if r.Employee != nil {
		order.Employee.FirstName = r.Employee.FirstName
		order.Employee.LastName = r.Employee.LastName
		order.Employee.Country = stringOrEmpty(r.Employee.Country)
	}
	if r.Shipper != nil {
		order.Shipper.CompanyName = r.Shipper.CompanyName
	}
	order.Details = make([]domain.OrderDetail, 0, len(r.OrderDetails))
	for i := range r.OrderDetails {
		order.Details = append(order.Details, ToDomainDetail(&r.OrderDetails[i]))
	}
	return order
}

// ToDomainDetail maps one detail line.
func ToDomainDetail(r *entities.OrderDetail) domain.OrderDetail {
	detail := domain.OrderDetail{
		OrderID:   int64(r.OrderID),
		Product:   domain.Product{ID: int64(r.ProductID)},
		UnitPrice: r.UnitPrice.InexactFloat64(),
		Quantity:  int64(r.Quantity),
		Discount:  float64(r.Discount),
	}
	if r.Product != nil {
		detail.Product = ToDomainProduct(r.Product)
	}
	return detail
}

// ToDomainProduct maps a product with its category and supplier names when loaded.
func ToDomainProduct(r *entities.Product) domain.Product {
	product := domain.Product{
		ID:         int64(r.ID),
		Name:       r.ProductName,
		CategoryID: int64OrZero(r.CategoryID),
		SupplierID: int64OrZero(r.SupplierID),
	}
	if r.Category != nil {
		product.Category = r.Category.CategoryName
	}
	if r.Supplier != nil {
		product.Supplier = r.Supplier.CompanyName
	}
	return product
}

// ToDomainEmployeeHierarchy builds the reporting structure from flat employee rows.
func ToDomainEmployeeHierarchy(records []entities.Employee) *domain.EmployeeHierarchy {
	links := make([]domain.EmployeeLink, 0, len(records))
	for _, r := range records {
		links = append(links, domain.EmployeeLink{ID: int64(r.ID), ReportsTo: int64OrZero(r.ReportsTo)})
	}
	return domain.NewEmployeeHierarchy(links)
}

// OrderKey narrows a domain identity to the store key. ok is false when no row can have that id.
func OrderKey(id int64) (int32, bool) {
	if id <= 0 || id > math.MaxInt32 {
		return 0, false
	}
	return int32(id), true
}

// ToEntityOrder maps the scalar fields and detail lines of an order. OrderID is left for the
// caller to set: the store assigns it on insert and the repository resolves it on update.
// Zero foreign keys are written as NULL, the inverse of the read defaults.
func ToEntityOrder(o *domain.Order) (entities.Order, error) {
	employeeID, err := nullableKey("employee id", o.Employee.ID)
	if err != nil {
		return entities.Order{}, err
	}
	shipVia, err := nullableKey("shipper id", o.Shipper.ID)
	if err != nil {
		return entities.Order{}, err
	}
	freight, err := toMoney("freight", o.Freight)
	if err != nil {
		return entities.Order{}, err
	}
	details, err := ToEntityDetails(0, o.Details)
	if err != nil {
		return entities.Order{}, err
	}
	record := entities.Order{
		EmployeeID:     employeeID,
		OrderDate:      timePtr(o.OrderDate),
		RequiredDate:   timePtr(o.RequiredDate),
		ShippedDate:    cloneTime(o.ShippedDate),
		ShipVia:        shipVia,
		Freight:        decimal.NewNullDecimal(freight),
		ShipName:       stringPtr(o.ShipName),
		ShipAddress:    stringPtr(o.ShippingAddress.Address),
		ShipCity:       stringPtr(o.ShippingAddress.City),
		ShipRegion:     cloneString(o.ShippingAddress.Region),
		ShipPostalCode: stringPtr(o.ShippingAddress.PostalCode),
		ShipCountry:    stringPtr(o.ShippingAddress.Country),
		OrderDetails:   details,
	}
	if code := o.Customer.Code.Code; code != "" {
		record.CustomerID = &code
	}
	return record, nil
}

// ToEntityDetails maps detail lines for the given order key, enforcing quantity > 0 on each.
func ToEntityDetails(orderID int32, details []domain.OrderDetail) ([]entities.OrderDetail, error) {
	records := make([]entities.OrderDetail, 0, len(details))
	for _, d := range details {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if d.Product.ID <= 0 {
			return nil, fmt.Errorf("%w: product id %d", domain.ErrMissingProduct, d.Product.ID)
		}
		productID, ok := narrowInt32(d.Product.ID)
		if !ok {
			return nil, fmt.Errorf("%w: product id %d", domain.ErrOutOfRange, d.Product.ID)
		}
		if d.Quantity > math.MaxInt16 {
			return nil, fmt.Errorf("%w: quantity %d of product %d", domain.ErrOutOfRange, d.Quantity, d.Product.ID)
		}
		price, err := toMoney("unit price", d.UnitPrice)
		if err != nil {
			return nil, err
		}
		discount, err := toFloat32("discount", d.Discount)
		if err != nil {
			return nil, err
		}
		records = append(records, entities.OrderDetail{
			OrderID:   orderID,
			ProductID: productID,
			UnitPrice: price,
			Quantity:  int16(d.Quantity),
			Discount:  discount,
		})
	}
	return records, nil
}

func nullableKey(field string, id int64) (*int32, error) {
	if id == 0 {
		return nil, nil
	}
	key, ok := narrowInt32(id)
	if !ok || key < 0 {
		return nil, fmt.Errorf("%w: %s %d", domain.ErrOutOfRange, field, id)
	}
	return &key, nil
}

func narrowInt32(v int64) (int32, bool) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, false
	}
	return int32(v), true
}

func toMoney(field string, v float64) (decimal.Decimal, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Decimal{}, fmt.Errorf("%w: %s is not a finite number", domain.ErrOutOfRange, field)
	}
	d := decimal.NewFromFloat(v).Round(moneyScale)
	if d.Abs().GreaterThanOrEqual(maxMoney) {
		return decimal.Decimal{}, fmt.Errorf("%w: %s %s", domain.ErrOutOfRange, field, d.String())
	}
	return d, nil
}

func toFloat32(field string, v float64) (float32, error) {
	if math.IsNaN(v) || math.Abs(v) > math.MaxFloat32 {
		return 0, fmt.Errorf("%w: %s %v", domain.ErrOutOfRange, field, v)
	}
	return float32(v), nil
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func int64OrZero(v *int32) int64 {
	if v == nil {
		return 0
	}
	return int64(*v)
}

func timeOrMin(t *time.Time) time.Time {
	if t == nil {
		return domain.MinDate
	}
	return *t
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func stringPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time {
	if t.Equal(domain.MinDate) {
		return nil
	}
	return &t
}
