package memory

import (
	"github.com/shopspring/decimal"

	"github.com/Apurer/northwind-orders/internal/domains/orders/adapters/persistence/entities"
)

// SampleReferenceData is a small slice of the Northwind catalogue, enough to place orders
// against the in-memory adapter when no database is configured.
func SampleReferenceData() ReferenceData {
	return ReferenceData{
		Categories: []entities.Category{
			{ID: 1, CategoryName: "Beverages"},
			{ID: 2, CategoryName: "Condiments"},
			{ID: 4, CategoryName: "Dairy Products"},
			{ID: 8, CategoryName: "Seafood"},
		},
		Suppliers: []entities.Supplier{
			{ID: 1, CompanyName: "Exotic Liquids"},
			{ID: 2, CompanyName: "New Orleans Cajun Delights"},
			{ID: 5, CompanyName: "Cooperativa de Quesos 'Las Cabras'"},
			{ID: 17, CompanyName: "Svensk Sjöföda AB"},
		},
		Products: []entities.Product{
			product(1, "Chai", 1, 1, "18.00"),
			product(2, "Chang", 1, 1, "19.00"),
			product(4, "Chef Anton's Cajun Seasoning", 2, 2, "22.00"),
			product(11, "Queso Cabrales", 4, 5, "21.00"),
			product(12, "Queso Manchego La Pastora", 4, 5, "38.00"),
			product(65, "Louisiana Fiery Hot Pepper Sauce", 2, 2, "21.05"),
			product(72, "Mozzarella di Giovanni", 4, 5, "34.80"),
			product(73, "Röd Kaviar", 8, 17, "15.00"),
		},
		Customers: []entities.Customer{
			{ID: "ALFKI", CompanyName: "Alfreds Futterkiste"},
			{ID: "HANAR", CompanyName: "Hanari Carnes"},
			{ID: "TOMSP", CompanyName: "Toms Spezialitäten"},
			{ID: "VINET", CompanyName: "Vins et alcools Chevalier"},
		},
		Employees: []entities.Employee{
			employee(1, "Nancy", "Davolio", "USA", 2),
			employee(2, "Andrew", "Fuller", "USA", 0),
			employee(3, "Janet", "Leverling", "USA", 2),
			employee(4, "Margaret", "Peacock", "USA", 2),
			employee(5, "Steven", "Buchanan", "UK", 2),
			employee(6, "Michael", "Suyama", "UK", 5),
		},
		Shippers: []entities.Shipper{
			{ID: 1, CompanyName: "Speedy Express"},
			{ID: 2, CompanyName: "United Package"},
			{ID: 3, CompanyName: "Federal Shipping"},
		},
	}
}

func product(id int32, name string, category, supplier int32, price string) entities.Product {
	return entities.Product{
		ID:          id,
		ProductName: name,
		CategoryID:  &category,
		SupplierID:  &supplier,
		UnitPrice:   decimal.NewNullDecimal(decimal.RequireFromString(price)),
	}
}

func employee(id int32, first, last, country string, reportsTo int32) entities.Employee {
	e := entities.Employee{ID: id, FirstName: first, LastName: last, Country: &country}
	if reportsTo != 0 {
		e.ReportsTo = &reportsTo
	}
	return e
}
