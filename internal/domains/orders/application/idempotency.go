package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"slices"
	"time"

	"github.com/Apurer/northwind-orders/internal/domains/orders/domain"
)

type normalizedOrder struct {
	CustomerID     string             `json:"customerId"`
	EmployeeID     int64              `json:"employeeId"`
	ShipVia        int64              `json:"shipVia"`
	OrderDate      time.Time          `json:"orderDate"`
	RequiredDate   time.Time          `json:"requiredDate"`
	ShippedDate    *time.Time         `json:"shippedDate"`
	Freight        float64            `json:"freight"`
	ShipName       string             `json:"shipName"`
	ShipAddress    string             `json:"shipAddress"`
	ShipCity       string             `json:"shipCity"`
	ShipRegion     *string            `json:"shipRegion"`
	ShipPostalCode string             `json:"shipPostalCode"`
	ShipCountry    string             `json:"shipCountry"`
	Details        []normalizedDetail `json:"details"`
}

type normalizedDetail struct {
	ProductID int64   `json:"productId"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int64   `json:"quantity"`
	Discount  float64 `json:"discount"`
}

// FingerprintOrder hashes the caller-controlled fields of an order placement.
// Identity, navigation names, and detail order do not contribute.
func FingerprintOrder(order domain.Order) (string, error) {
	payload, err := json.Marshal(normalizeOrder(order))
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

func normalizeOrder(o domain.Order) normalizedOrder {
	details := make([]normalizedDetail, 0, len(o.Details))
	for _, d := range o.Details {
		details = append(details, normalizedDetail{
			ProductID: d.Product.ID,
			UnitPrice: d.UnitPrice,
			Quantity:  d.Quantity,
			Discount:  d.Discount,
		})
	}
	slices.SortFunc(details, func(a, b normalizedDetail) int {
		switch {
		case a.ProductID < b.ProductID:
			return -1
		case a.ProductID > b.ProductID:
			return 1
		default:
			return 0
		}
	})
	return normalizedOrder{
		CustomerID:     o.Customer.Code.Code,
		EmployeeID:     o.Employee.ID,
		ShipVia:        o.Shipper.ID,
		OrderDate:      o.OrderDate.UTC(),
		RequiredDate:   o.RequiredDate.UTC(),
		ShippedDate:    utcPtr(o.ShippedDate),
		Freight:        o.Freight,
		ShipName:       o.ShipName,
		ShipAddress:    o.ShippingAddress.Address,
		ShipCity:       o.ShippingAddress.City,
		ShipRegion:     o.ShippingAddress.Region,
		ShipPostalCode: o.ShippingAddress.PostalCode,
		ShipCountry:    o.ShippingAddress.Country,
		Details:        details,
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
