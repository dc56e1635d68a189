package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/northwind-orders/internal/domains/orders/adapters/persistence/entities"
	"github.com/Apurer/northwind-orders/internal/domains/orders/adapters/persistence/mapper"
	"github.com/Apurer/northwind-orders/internal/domains/orders/domain"
	"github.com/Apurer/northwind-orders/internal/domains/orders/ports"
)

var (
	_ ports.Repository = (*Repository)(nil)
	_ ports.Catalog    = (*Repository)(nil)
)

// Repository persists order aggregates through GORM. Caller manages DB lifecycle.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a GORM-backed order repository. Schema is owned by platform/migrations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetOrders returns a page of orders ascending by id with every navigation loaded.
func (r *Repository) GetOrders(ctx context.Context, skip, count int) ([]domain.Order, error) {
	if err := ports.ValidatePage(skip, count); err != nil {
		return nil, err
	}
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []entities.Order
	if err := withAggregate(r.db.WithContext(ctx)).
		Order("order_id").
		Offset(skip).
		Limit(count).
		Find(&records).Error; err != nil {
		return nil, ports.Failure("get orders", err)
	}
	return mapper.ToDomainOrders(records), nil
}

// GetOrder loads one order aggregate.
func (r *Repository) GetOrder(ctx context.Context, id int64) (domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return domain.Order{}, err
	}
	key, ok := mapper.OrderKey(id)
	if !ok {
		return domain.Order{}, ports.NewNotFound(id)
	}
	var record entities.Order
	if err := withAggregate(r.db.WithContext(ctx)).
		First(&record, "order_id = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Order{}, ports.NewNotFound(id)
		}
		return domain.Order{}, ports.Failure("get order", err)
	}
	return mapper.ToDomainOrder(&record), nil
}

// AddOrder inserts the order and its details in one transaction and returns the new id.
func (r *Repository) AddOrder(ctx context.Context, order *domain.Order) (int64, error) {
	if order == nil {
		return 0, errNilOrder
	}
	if err := r.ensureDB(); err != nil {
		return 0, err
	}
	record, err := mapper.ToEntityOrder(order)
	if err != nil {
		return 0, err
	}
	details := record.OrderDetails
	record.OrderDetails = nil

	uow, err := beginUnitOfWork(ctx, r.db)
	if err != nil {
		return 0, ports.Failure("add order", err)
	}
	defer uow.Rollback()

	if err := uow.DB().Omit(clause.Associations).Create(&record).Error; err != nil {
		return 0, ports.Failure("add order", err)
	}
	if err := insertDetails(uow.DB(), record.OrderID, details); err != nil {
		return 0, ports.Failure("add order details", err)
	}
	if err := uow.Commit(); err != nil {
		return 0, ports.Failure("add order", err)
	}
	return int64(record.OrderID), nil
}

// RemoveOrder deletes the order and its detail lines in one transaction.
func (r *Repository) RemoveOrder(ctx context.Context, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	key, ok := mapper.OrderKey(id)
	if !ok {
		return ports.NewNotFound(id)
	}

	uow, err := beginUnitOfWork(ctx, r.db)
	if err != nil {
		return ports.Failure("remove order", err)
	}
	defer uow.Rollback()

	if err := findOrderKey(uow.DB(), key); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.NewNotFound(id)
		}
		return ports.Failure("remove order", err)
	}
	if err := uow.DB().Where("order_id = ?", key).Delete(&entities.OrderDetail{}).Error; err != nil {
		return ports.Failure("remove order details", err)
	}
	result := uow.DB().Where("order_id = ?", key).Delete(&entities.Order{})
	if result.Error != nil {
		return ports.Failure("remove order", result.Error)
	}
	if result.RowsAffected == 0 {
		return ports.NewNotFound(id)
	}
	if err := uow.Commit(); err != nil {
		return ports.Failure("remove order", err)
	}
	return nil
}

// UpdateOrder overwrites the scalar fields and replaces every detail line of an existing order.
// Mapping and validation finish before the transaction starts, so a bad line touches nothing.
func (r *Repository) UpdateOrder(ctx context.Context, order *domain.Order) error {
	if order == nil {
		return errNilOrder
	}
	if err := r.ensureDB(); err != nil {
		return err
	}
	key, ok := mapper.OrderKey(order.ID)
	if !ok {
		return ports.NewNotFound(order.ID)
	}
	record, err := mapper.ToEntityOrder(order)
	if err != nil {
		return err
	}
	details := record.OrderDetails

	uow, err := beginUnitOfWork(ctx, r.db)
	if err != nil {
		return ports.Failure("update order", err)
	}
	defer uow.Rollback()

	if err := findOrderKey(uow.DB(), key); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.NewNotFound(order.ID)
		}
		return ports.Failure("update order", err)
	}
	if err := uow.DB().Model(&entities.Order{}).
		Where("order_id = ?", key).
		Updates(scalarAssignments(&record)).Error; err != nil {
		return ports.Failure("update order", err)
	}
	if err := uow.DB().Where("order_id = ?", key).Delete(&entities.OrderDetail{}).Error; err != nil {
		return ports.Failure("update order details", err)
	}
	if err := insertDetails(uow.DB(), key, details); err != nil {
		return ports.Failure("update order details", err)
	}
	if err := uow.Commit(); err != nil {
		return ports.Failure("update order", err)
	}
	return nil
}

// EmployeeHierarchy loads the flat employee list and returns the reporting structure.
func (r *Repository) EmployeeHierarchy(ctx context.Context) (*domain.EmployeeHierarchy, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []entities.Employee
	if err := r.db.WithContext(ctx).
		Select("employee_id", "reports_to").
		Order("employee_id").
		Find(&records).Error; err != nil {
		return nil, ports.Failure("load employees", err)
	}
	return mapper.ToDomainEmployeeHierarchy(records), nil
}

// ProductsByCategory resolves the category to products direction by foreign key lookup.
func (r *Repository) ProductsByCategory(ctx context.Context, categoryID int64) ([]domain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []entities.Product
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Supplier").
		Where("category_id = ?", categoryID).
		Order("product_id").
		Find(&records).Error; err != nil {
		return nil, ports.Failure("load products", err)
	}
	products := make([]domain.Product, 0, len(records))
	for i := range records {
		products = append(products, mapper.ToDomainProduct(&records[i]))
	}
	return products, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return ports.Failure("order repository", errors.New("postgres order repository not configured"))
	}
	return nil
}
