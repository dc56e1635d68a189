package memory

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/Apurer/northwind-orders/internal/domains/orders/adapters/persistence/entities"
	"github.com/Apurer/northwind-orders/internal/domains/orders/adapters/persistence/mapper"
	"github.com/Apurer/northwind-orders/internal/domains/orders/domain"
	"github.com/Apurer/northwind-orders/internal/domains/orders/ports"
)

var (
	_ ports.Repository = (*Repository)(nil)
	_ ports.Catalog    = (*Repository)(nil)
)

var (
	errNilOrder         = fmt.Errorf("%w: order is nil", ports.ErrInvalidArgument)
	errUnknownReference = errors.New("foreign key violation")
	errDuplicateProduct = errors.New("duplicate order detail product")
)

// ReferenceData is the read-only catalogue orders point at.
type ReferenceData struct {
	Customers  []entities.Customer
	Employees  []entities.Employee
	Shippers   []entities.Shipper
	Products   []entities.Product
	Categories []entities.Category
	Suppliers  []entities.Supplier
}

// Repository is an in-memory order persistence adapter. It stores the same records the
// relational store does and enforces the same keys, so it behaves like the GORM adapter.
type Repository struct {
	mu      sync.RWMutex
	orders  map[int32]entities.Order
	details map[int32][]entities.OrderDetail
	nextID  int32

	customers  map[string]entities.Customer
	employees  map[int32]entities.Employee
	shippers   map[int32]entities.Shipper
	products   map[int32]entities.Product
	categories map[int32]entities.Category
	suppliers  map[int32]entities.Supplier
}

func NewRepository(ref ReferenceData) *Repository {
	r := &Repository{
		orders:     map[int32]entities.Order{},
		details:    map[int32][]entities.OrderDetail{},
		customers:  map[string]entities.Customer{},
		employees:  map[int32]entities.Employee{},
		shippers:   map[int32]entities.Shipper{},
		products:   map[int32]entities.Product{},
		categories: map[int32]entities.Category{},
		suppliers:  map[int32]entities.Supplier{},
	}
	for _, c := range ref.Customers {
		r.customers[c.ID] = c
	}
	for _, e := range ref.Employees {
		r.employees[e.ID] = e
	}
	for _, s := range ref.Shippers {
		r.shippers[s.ID] = s
	}
	for _, p := range ref.Products {
		p.Category, p.Supplier = nil, nil
		r.products[p.ID] = p
	}
	for _, c := range ref.Categories {
		r.categories[c.ID] = c
	}
	for _, s := range ref.Suppliers {
		r.suppliers[s.ID] = s
	}
	return r
}

func (r *Repository) GetOrders(_ context.Context, skip, count int) ([]domain.Order, error) {
	if err := ports.ValidatePage(skip, count); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := slices.Sorted(maps.Keys(r.orders))
	if skip >= len(keys) {
		return []domain.Order{}, nil
	}
	keys = keys[skip:min(len(keys), skip+count)]

	records := make([]entities.Order, 0, len(keys))
	for _, key := range keys {
		records = append(records, r.loadLocked(key))
	}
	return mapper.ToDomainOrders(records), nil
}

func (r *Repository) GetOrder(_ context.Context, id int64) (domain.Order, error) {
	key, ok := mapper.OrderKey(id)
	if !ok {
		return domain.Order{}, ports.NewNotFound(id)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.orders[key]; !ok {
		return domain.Order{}, ports.NewNotFound(id)
	}
	rec := r.loadLocked(key)
	return mapper.ToDomainOrder(&rec), nil
}

func (r *Repository) AddOrder(ctx context.Context, order *domain.Order) (int64, error) {
	if order == nil {
		return 0, errNilOrder
	}
	record, err := mapper.ToEntityOrder(order)
	if err != nil {
		return 0, err
	}
	details := record.OrderDetails
	record.OrderDetails = nil

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return 0, ports.Failure("add order", err)
	}
	if err := r.checkLocked(&record, details); err != nil {
		return 0, ports.Failure("add order", err)
	}
	r.nextID++
	record.OrderID = r.nextID
	r.orders[record.OrderID] = record
	r.details[record.OrderID] = withOrderKey(record.OrderID, details)
	return int64(record.OrderID), nil
}

func (r *Repository) RemoveOrder(ctx context.Context, id int64) error {
	key, ok := mapper.OrderKey(id)
	if !ok {
		return ports.NewNotFound(id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return ports.Failure("remove order", err)
	}
	if _, ok := r.orders[key]; !ok {
		return ports.NewNotFound(id)
	}
	delete(r.details, key)
	delete(r.orders, key)
	return nil
}

func (r *Repository) UpdateOrder(ctx context.Context, order *domain.Order) error {
	if order == nil {
		return errNilOrder
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
	record.OrderDetails = nil
	record.OrderID = key

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return ports.Failure("update order", err)
	}
	if _, ok := r.orders[key]; !ok {
		return ports.NewNotFound(order.ID)
	}
	if err := r.checkLocked(&record, details); err != nil {
		return ports.Failure("update order", err)
	}
	r.orders[key] = record
	r.details[key] = withOrderKey(key, details)
	return nil
}

// EmployeeHierarchy mirrors the GORM adapter's reverse lookup over the seeded employees.
func (r *Repository) EmployeeHierarchy(context.Context) (*domain.EmployeeHierarchy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	records := make([]entities.Employee, 0, len(r.employees))
	for _, key := range slices.Sorted(maps.Keys(r.employees)) {
		records = append(records, r.employees[key])
	}
	return mapper.ToDomainEmployeeHierarchy(records), nil
}

// ProductsByCategory lists the products whose category id matches.
func (r *Repository) ProductsByCategory(_ context.Context, categoryID int64) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	products := []domain.Product{}
	for _, key := range slices.Sorted(maps.Keys(r.products)) {
		p := r.products[key]
		if p.CategoryID == nil || int64(*p.CategoryID) != categoryID {
			continue
		}
		rec := r.productLocked(key)
		products = append(products, mapper.ToDomainProduct(rec))
	}
	return products, nil
}

// checkLocked enforces the constraints the relational schema would: every foreign key resolves
// and no product appears twice on one order. Nothing is written when it fails.
func (r *Repository) checkLocked(rec *entities.Order, details []entities.OrderDetail) error {
	if rec.CustomerID != nil {
		if _, ok := r.customers[*rec.CustomerID]; !ok {
			return fmt.Errorf("%w: customer %q", errUnknownReference, *rec.CustomerID)
		}
	}
	if rec.EmployeeID != nil {
		if _, ok := r.employees[*rec.EmployeeID]; !ok {
			return fmt.Errorf("%w: employee %d", errUnknownReference, *rec.EmployeeID)
		}
	}
	if rec.ShipVia != nil {
		if _, ok := r.shippers[*rec.ShipVia]; !ok {
			return fmt.Errorf("%w: shipper %d", errUnknownReference, *rec.ShipVia)
		}
	}
	seen := make(map[int32]struct{}, len(details))
	for _, d := range details {
		if _, ok := r.products[d.ProductID]; !ok {
			return fmt.Errorf("%w: product %d", errUnknownReference, d.ProductID)
		}
		if _, dup := seen[d.ProductID]; dup {
			return fmt.Errorf("%w: product %d", errDuplicateProduct, d.ProductID)
		}
		seen[d.ProductID] = struct{}{}
	}
	return nil
}

// loadLocked assembles the eager-loaded record for key. Callers hold at least the read lock.
func (r *Repository) loadLocked(key int32) entities.Order {
	rec := r.orders[key]
	if rec.CustomerID != nil {
		if c, ok := r.customers[*rec.CustomerID]; ok {
			rec.Customer = &c
		}
	}
	if rec.EmployeeID != nil {
		if e, ok := r.employees[*rec.EmployeeID]; ok {
			rec.Employee = &e
		}
	}
	if rec.ShipVia != nil {
		if s, ok := r.shippers[*rec.ShipVia]; ok {
			rec.Shipper = &s
		}
	}
	stored := r.details[key]
	rec.OrderDetails = make([]entities.OrderDetail, len(stored))
	copy(rec.OrderDetails, stored)
	slices.SortFunc(rec.OrderDetails, func(a, b entities.OrderDetail) int {
		return int(a.ProductID) - int(b.ProductID)
	})
	for i := range rec.OrderDetails {
		rec.OrderDetails[i].Product = r.productLocked(rec.OrderDetails[i].ProductID)
	}
	return rec
}

func (r *Repository) productLocked(id int32) *entities.Product {
	p, ok := r.products[id]
	if !ok {
		return nil
	}
	if p.CategoryID != nil {
		if c, ok := r.categories[*p.CategoryID]; ok {
			p.Category = &c
		}
	}
	if p.SupplierID != nil {
		if s, ok := r.suppliers[*p.SupplierID]; ok {
			p.Supplier = &s
		}
	}
	return &p
}

func withOrderKey(key int32, details []entities.OrderDetail) []entities.OrderDetail {
	out := make([]entities.OrderDetail, len(details))
	for i, d := range details {
		d.OrderID = key
		d.Product = nil
		out[i] = d
	}
	return out
}
