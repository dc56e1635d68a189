package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	// ErrValidation is the kind shared by every invariant violation of the order aggregate.
	ErrValidation = errors.New("order validation failed")

	ErrInvalidQuantity     = fmt.Errorf("%w: quantity must be greater than zero", ErrValidation)
	ErrInvalidUnitPrice    = fmt.Errorf("%w: unit price must be non-negative", ErrValidation)
	ErrInvalidDiscount     = fmt.Errorf("%w: discount must be within [0, 1]", ErrValidation)
	ErrInvalidFreight      = fmt.Errorf("%w: freight must be non-negative", ErrValidation)
	ErrInvalidCustomerCode = fmt.Errorf("%w: customer code must be 1-5 alphanumeric characters", ErrValidation)
	ErrMissingProduct      = fmt.Errorf("%w: detail must reference a product", ErrValidation)
	// ErrOutOfRange reports a value that cannot be represented by the store without truncation.
	ErrOutOfRange = fmt.Errorf("%w: value out of range", ErrValidation)
)

// MinDate is what absent dates read back as.
var MinDate = time.Time{}

// CustomerCode is the natural key of a customer.
type CustomerCode struct {
	Code string
}

// NewCustomerCode normalizes and validates a customer code.
func NewCustomerCode(code string) (CustomerCode, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || len(code) > 5 {
		return CustomerCode{}, ErrInvalidCustomerCode
	}
	for _, r := range code {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return CustomerCode{}, ErrInvalidCustomerCode
		}
	}
	return CustomerCode{Code: code}, nil
}

func (c CustomerCode) String() string { return c.Code }

// Customer is the part of a customer an order view needs.
type Customer struct {
	Code        CustomerCode
	CompanyName string
}

// Employee is the part of an employee an order view needs.
type Employee struct {
	ID        int64
	FirstName string
	LastName  string
	Country   string
}

// Shipper is the carrier an order ships via.
type Shipper struct {
	ID          int64
	CompanyName string
}

// Product carries denormalized category and supplier names for display.
type Product struct {
	ID         int64
	Name       string
	CategoryID int64
	Category   string
	SupplierID int64
	Supplier   string
}

// ShippingAddress is where an order is delivered. Region is optional.
type ShippingAddress struct {
	Address    string
	City       string
	Region     *string
	PostalCode string
	Country    string
}

// OrderDetail is a single line of an order. OrderID points back at the owning order.
type OrderDetail struct {
	OrderID   int64
	Product   Product
	UnitPrice float64
	Quantity  int64
	Discount  float64
}

// Order models the order aggregate together with its detail lines.
type Order struct {
	ID              int64
	Customer        Customer
	Employee        Employee
	Shipper         Shipper
	OrderDate       time.Time
	RequiredDate    time.Time
	ShippedDate     *time.Time
	Freight         float64
	ShipName        string
	ShippingAddress ShippingAddress
	Details         []OrderDetail
}

// Validate checks the line-level quantity invariant. It is the only check every write path runs.
func (d OrderDetail) Validate() error {
	if d.Quantity <= 0 {
		return fmt.Errorf("%w: product %d has quantity %d", ErrInvalidQuantity, d.Product.ID, d.Quantity)
	}
	return nil
}

// ValidateQuantities runs OrderDetail.Validate on every line and stops at the first failure.
func (o *Order) ValidateQuantities() error {
	for _, d := range o.Details {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate enforces the full set of aggregate invariants used by the application layer.
func (o *Order) Validate() error {
	if o.Freight < 0 || math.IsNaN(o.Freight) {
		return ErrInvalidFreight
	}
	for _, d := range o.Details {
		if err := d.Validate(); err != nil {
			return err
		}
		if d.UnitPrice < 0 || math.IsNaN(d.UnitPrice) {
			return fmt.Errorf("%w: product %d", ErrInvalidUnitPrice, d.Product.ID)
		}
		if d.Discount < 0 || d.Discount > 1 || math.IsNaN(d.Discount) {
			return fmt.Errorf("%w: product %d", ErrInvalidDiscount, d.Product.ID)
		}
	}
	return nil
}

// ReplaceDetails swaps the whole detail collection and re-points every line at this order.
func (o *Order) ReplaceDetails(details []OrderDetail) {
	o.Details = make([]OrderDetail, len(details))
	for i, d := range details {
		d.OrderID = o.ID
		o.Details[i] = d
	}
}

// Total is the discounted sum of all lines plus freight.
func (o *Order) Total() float64 {
	total := o.Freight
	for _, d := range o.Details {
		total += d.UnitPrice * float64(d.Quantity) * (1 - d.Discount)
	}
	return total
}
