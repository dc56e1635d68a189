package migrations

import (
	"gorm.io/gorm"

	"github.com/Apurer/northwind-orders/internal/domains/orders/adapters/persistence/entities"
)

// Run applies the Northwind schema used by the orders bounded context.
// Tables are created parents first so foreign keys resolve on engines that check them eagerly.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(entities.Models()...)
}
