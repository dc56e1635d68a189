package mapper

import (
	"time"

	"github.com/Apurer/northwind-orders/internal/domains/orders/domain"
)

// OrderDetail is the JSON shape of one order line.
type OrderDetail struct {
	ProductID   int64   `json:"productId" binding:"required,gt=0"`
	ProductName string  `json:"productName,omitempty"`
	Category    string  `json:"category,omitempty"`
	Supplier    string  `json:"supplier,omitempty"`
	UnitPrice   float64 `json:"unitPrice"`
	Quantity    int64   `json:"quantity"`
	Discount    float64 `json:"discount"`
}

// Order is the JSON shape of an order. Read-only fields are ignored on input.
type Order struct {
	ID             int64         `json:"id"`
	CustomerID     string        `json:"customerId"`
	CustomerName   string        `json:"customerName,omitempty"`
	EmployeeID     int64         `json:"employeeId"`
	EmployeeName   string        `json:"employeeName,omitempty"`
	ShipVia        int64         `json:"shipVia"`
	ShipperName    string        `json:"shipperName,omitempty"`
	OrderDate      *time.Time    `json:"orderDate,omitempty"`
	RequiredDate   *time.Time    `json:"requiredDate,omitempty"`
	ShippedDate    *time.Time    `json:"shippedDate,omitempty"`
	Freight        float64       `json:"freight"`
	ShipName       string        `json:"shipName"`
	ShipAddress    string        `json:"shipAddress"`
	ShipCity       string        `json:"shipCity"`
	ShipRegion     *string       `json:"shipRegion,omitempty"`
	ShipPostalCode string        `json:"shipPostalCode"`
	ShipCountry    string        `json:"shipCountry"`
	Total          float64       `json:"total"`
	Details        []OrderDetail `json:"details" binding:"dive"`
}

// Product is the JSON shape of a catalogue product.
type Product struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	CategoryID int64  `json:"categoryId"`
	Category   string `json:"category,omitempty"`
	SupplierID int64  `json:"supplierId"`
	Supplier   string `json:"supplier,omitempty"`
}

// ToDomainOrder converts a transport order into the domain model. An empty customer id stays unset.
func ToDomainOrder(o Order) (*domain.Order, error) {
	var code domain.CustomerCode
	if o.CustomerID != "" {
		parsed, err := domain.NewCustomerCode(o.CustomerID)
		if err != nil {
			return nil, err
		}
		code = parsed
	}
	order := &domain.Order{
		ID:           o.ID,
		Customer:     domain.Customer{Code: code},
		Employee:     domain.Employee{ID: o.EmployeeID},
		Shipper:      domain.Shipper{ID: o.ShipVia},
		OrderDate:    dateOrMin(o.OrderDate),
		RequiredDate: dateOrMin(o.RequiredDate),
		ShippedDate:  o.ShippedDate,
		Freight:      o.Freight,
		ShipName:     o.ShipName,
		ShippingAddress: domain.ShippingAddress{
			Address:    o.ShipAddress,
			City:       o.ShipCity,
			Region:     o.ShipRegion,
			PostalCode: o.ShipPostalCode,
			Country:    o.ShipCountry,
		},
	}
	details := make([]domain.OrderDetail, 0, len(o.Details))
	for _, d := range o.Details {
		details = append(details, domain.OrderDetail{
			Product:   domain.Product{ID: d.ProductID},
			UnitPrice: d.UnitPrice,
			Quantity:  d.Quantity,
			Discount:  d.Discount,
		})
	}
	order.ReplaceDetails(details)
	return order, nil
}

// FromDomainOrder converts a domain order to the transport representation.
func FromDomainOrder(o *domain.Order) Order {
	if o == nil {
		return Order{}
	}
	out := Order{
		ID:             o.ID,
		CustomerID:     o.Customer.Code.Code,
		CustomerName:   o.Customer.CompanyName,
		EmployeeID:     o.Employee.ID,
		EmployeeName:   fullName(o.Employee),
		ShipVia:        o.Shipper.ID,
		ShipperName:    o.Shipper.CompanyName,
		OrderDate:      dateOrNil(o.OrderDate),
		RequiredDate:   dateOrNil(o.RequiredDate),
		ShippedDate:    o.ShippedDate,
		Freight:        o.Freight,
		ShipName:       o.ShipName,
		ShipAddress:    o.ShippingAddress.Address,
		ShipCity:       o.ShippingAddress.City,
		ShipRegion:     o.ShippingAddress.Region,
		ShipPostalCode: o.ShippingAddress.PostalCode,
		ShipCountry:    o.ShippingAddress.Country,
		Total:          o.Total(),
		Details:        make([]OrderDetail, 0, len(o.Details)),
	}
	for _, d := range o.Details {
		out.Details = append(out.Details, OrderDetail{
			ProductID:   d.Product.ID,
			ProductName: d.Product.Name,
			Category:    d.Product.Category,
			Supplier:    d.Product.Supplier,
			UnitPrice:   d.UnitPrice,
			Quantity:    d.Quantity,
			Discount:    d.Discount,
		})
	}
	return out
}

func FromDomainOrders(orders []domain.Order) []Order {
	out := make([]Order, 0, len(orders))
	for i := range orders {
		out = append(out, FromDomainOrder(&orders[i]))
	}
	return out
}

func FromDomainProducts(products []domain.Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		out = append(out, Product{
			ID:         p.ID,
			Name:       p.Name,
			CategoryID: p.CategoryID,
			Category:   p.Category,
			SupplierID: p.SupplierID,
			Supplier:   p.Supplier,
		})
	}
	return out
}

func fullName(e domain.Employee) string {
	switch {
	case e.FirstName == "":
		return e.LastName
	case e.LastName == "":
		return e.FirstName
	default:
		return e.FirstName + " " + e.LastName
	}
}

func dateOrMin(t *time.Time) time.Time {
	if t == nil {
		return domain.MinDate
	}
	return *t
}

func dateOrNil(t time.Time) *time.Time {
	if t.Equal(domain.MinDate) {
		return nil
	}
	return &t
}
