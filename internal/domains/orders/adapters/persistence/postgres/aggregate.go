package postgres

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/northwind-orders/internal/domains/orders/adapters/persistence/entities"
	"github.com/Apurer/northwind-orders/internal/domains/orders/ports"
)

var errNilOrder = fmt.Errorf("%w: order is nil", ports.ErrInvalidArgument)

// withAggregate eager-loads everything the order view reads: customer, employee, shipper and
// each detail's product with category and supplier. Details come back ordered by product.
func withAggregate(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Customer").
		Preload("Employee").
		Preload("Shipper").
		Preload("OrderDetails", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("product_id")
		}).
		Preload("OrderDetails.Product.Category").
		Preload("OrderDetails.Product.Supplier")
}

// findOrderKey checks the order row exists inside the unit of work.
func findOrderKey(tx *gorm.DB, key int32) error {
	var rec entities.Order
	return tx.Select("order_id").Take(&rec, "order_id = ?", key).Error
}

// insertDetails writes detail rows for key. Duplicate products surface as a key violation from the store.
func insertDetails(tx *gorm.DB, key int32, details []entities.OrderDetail) error {
	if len(details) == 0 {
		return nil
	}
	for i := range details {
		details[i].OrderID = key
	}
	return tx.Omit(clause.Associations).Create(&details).Error
}

// scalarAssignments lists every order-level column an update overwrites. Nil values write NULL.
func scalarAssignments(rec *entities.Order) map[string]any {
	return map[string]any{
		"customer_id":      rec.CustomerID,
		"employee_id":      rec.EmployeeID,
		"order_date":       rec.OrderDate,
		"required_date":    rec.RequiredDate,
		"shipped_date":     rec.ShippedDate,
		"ship_via":         rec.ShipVia,
		"freight":          rec.Freight,
		"ship_name":        rec.ShipName,
		"ship_address":     rec.ShipAddress,
		"ship_city":        rec.ShipCity,
		"ship_region":      rec.ShipRegion,
		"ship_postal_code": rec.ShipPostalCode,
		"ship_country":     rec.ShipCountry,
	}
}
