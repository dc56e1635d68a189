// Package entities holds the GORM records that mirror the Northwind relational schema.
// Nullable columns are pointers or Null* types; navigations only point from the many side
// to the one side, reverse lookups are done by foreign key queries.
package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order maps the orders table.
type Order struct {
	OrderID        int32               `gorm:"primaryKey;autoIncrement;column:order_id"`
	CustomerID     *string             `gorm:"column:customer_id;type:varchar(5);index"`
	EmployeeID     *int32              `gorm:"column:employee_id;index"`
	OrderDate      *time.Time          `gorm:"column:order_date"`
	RequiredDate   *time.Time          `gorm:"column:required_date"`
	ShippedDate    *time.Time          `gorm:"column:shipped_date"`
	ShipVia        *int32              `gorm:"column:ship_via;index"`
	Freight        decimal.NullDecimal `gorm:"column:freight;type:numeric(19,4)"`
	ShipName       *string             `gorm:"column:ship_name;type:varchar(40)"`
	ShipAddress    *string             `gorm:"column:ship_address;type:varchar(60)"`
	ShipCity       *string             `gorm:"column:ship_city;type:varchar(15)"`
	ShipRegion     *string             `gorm:"column:ship_region;type:varchar(15)"`
	ShipPostalCode *string             `gorm:"column:ship_postal_code;type:varchar(10)"`
	ShipCountry    *string             `gorm:"column:ship_country;type:varchar(15)"`

	Customer     *Customer     `gorm:"foreignKey:CustomerID;references:ID"`
	Employee     *Employee     `gorm:"foreignKey:EmployeeID;references:ID"`
	Shipper      *Shipper      `gorm:"foreignKey:ShipVia;references:ID"`
	OrderDetails []OrderDetail `gorm:"foreignKey:OrderID;references:OrderID;constraint:OnDelete:CASCADE"`
}

func (Order) TableName() string { return "orders" }

// OrderDetail maps order_details. The (order_id, product_id) pair is the key,
// so an order cannot list the same product twice.
type OrderDetail struct {
	OrderID   int32           `gorm:"primaryKey;autoIncrement:false;column:order_id"`
	ProductID int32           `gorm:"primaryKey;autoIncrement:false;column:product_id;index"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(19,4);not null"`
	Quantity  int16           `gorm:"column:quantity;not null"`
	Discount  float32         `gorm:"column:discount;not null"`

	Product *Product `gorm:"foreignKey:ProductID;references:ID"`
}

func (OrderDetail) TableName() string { return "order_details" }

// Customer maps customers. ID is the five letter Northwind code.
type Customer struct {
	ID           string  `gorm:"primaryKey;column:customer_id;type:varchar(5)"`
	CompanyName  string  `gorm:"column:company_name;type:varchar(40);not null"`
	ContactName  *string `gorm:"column:contact_name;type:varchar(30)"`
	ContactTitle *string `gorm:"column:contact_title;type:varchar(30)"`
	City         *string `gorm:"column:city;type:varchar(15)"`
	Country      *string `gorm:"column:country;type:varchar(15)"`
	Phone        *string `gorm:"column:phone;type:varchar(24)"`
}

func (Customer) TableName() string { return "customers" }

// Employee maps employees. ReportsTo is the manager's id, nil at the top of the hierarchy.
type Employee struct {
	ID         int32      `gorm:"primaryKey;autoIncrement;column:employee_id"`
	LastName   string     `gorm:"column:last_name;type:varchar(20);not null"`
	FirstName  string     `gorm:"column:first_name;type:varchar(10);not null"`
	Title      *string    `gorm:"column:title;type:varchar(30)"`
	BirthDate  *time.Time `gorm:"column:birth_date"`
	HireDate   *time.Time `gorm:"column:hire_date"`
	City       *string    `gorm:"column:city;type:varchar(15)"`
	Country    *string    `gorm:"column:country;type:varchar(15)"`
	ReportsTo  *int32     `gorm:"column:reports_to;index"`
}

func (Employee) TableName() string { return "employees" }

// Shipper maps shippers.
type Shipper struct {
	ID          int32   `gorm:"primaryKey;autoIncrement;column:shipper_id"`
	CompanyName string  `gorm:"column:company_name;type:varchar(40);not null"`
	Phone       *string `gorm:"column:phone;type:varchar(24)"`
}

func (Shipper) TableName() string { return "shippers" }

// Product maps products.
type Product struct {
	ID              int32               `gorm:"primaryKey;autoIncrement;column:product_id"`
	ProductName     string              `gorm:"column:product_name;type:varchar(40);not null"`
	SupplierID      *int32              `gorm:"column:supplier_id;index"`
	CategoryID      *int32              `gorm:"column:category_id;index"`
	QuantityPerUnit *string             `gorm:"column:quantity_per_unit;type:varchar(20)"`
	UnitPrice       decimal.NullDecimal `gorm:"column:unit_price;type:numeric(19,4)"`
	Discontinued    bool                `gorm:"column:discontinued;not null;default:false"`

	Category *Category `gorm:"foreignKey:CategoryID;references:ID"`
	Supplier *Supplier `gorm:"foreignKey:SupplierID;references:ID"`
}

func (Product) TableName() string { return "products" }

// Category maps categories.
type Category struct {
	ID           int32   `gorm:"primaryKey;autoIncrement;column:category_id"`
	CategoryName string  `gorm:"column:category_name;type:varchar(15);not null"`
	Description  *string `gorm:"column:description"`
}

func (Category) TableName() string { return "categories" }

// Supplier maps suppliers.
type Supplier struct {
	ID          int32   `gorm:"primaryKey;autoIncrement;column:supplier_id"`
	CompanyName string  `gorm:"column:company_name;type:varchar(40);not null"`
	ContactName *string `gorm:"column:contact_name;type:varchar(30)"`
	City        *string `gorm:"column:city;type:varchar(15)"`
	Country     *string `gorm:"column:country;type:varchar(15)"`
}

func (Supplier) TableName() string { return "suppliers" }

// Models lists every record in dependency order, ready for AutoMigrate.
func Models() []any {
	return []any{
		&Category{},
		&Supplier{},
		&Shipper{},
		&Customer{},
		&Employee{},
		&Product{},
		&Order{},
		&OrderDetail{},
		&IdempotencyKey{},
	}
}

// IdempotencyKey maps order_idempotency_keys. OrderID is zero while the placement
// holding the key runs. It is not a foreign key so a removed order keeps its key reserved.
type IdempotencyKey struct {
	Key         string    `gorm:"primaryKey;column:idempotency_key;type:varchar(255)"`
	RequestHash string    `gorm:"column:request_hash;type:varchar(64);not null"`
	OrderID     int32     `gorm:"column:order_id;not null"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (IdempotencyKey) TableName() string { return "order_idempotency_keys" }
