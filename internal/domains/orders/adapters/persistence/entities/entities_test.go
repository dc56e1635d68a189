package entities_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"

	"github.com/Apurer/northwind-orders/internal/domains/orders/adapters/persistence/entities"
)

func TestRelationsPointFromManySideToOneSide(t *testing.T) {
	cache := &sync.Map{}
	naming := schema.NamingStrategy{}

	cases := []struct {
		model    any
		relation string
		fkColumn string
		refTable string
		refCol   string
	}{
		{&entities.Order{}, "Customer", "customer_id", "customers", "customer_id"},
		{&entities.Order{}, "Employee", "employee_id", "employees", "employee_id"},
		{&entities.Order{}, "Shipper", "ship_via", "shippers", "shipper_id"},
		{&entities.OrderDetail{}, "Product", "product_id", "products", "product_id"},
		{&entities.Product{}, "Category", "category_id", "categories", "category_id"},
		{&entities.Product{}, "Supplier", "supplier_id", "suppliers", "supplier_id"},
	}
	for _, tc := range cases {
		s, err := schema.Parse(tc.model, cache, naming)
		require.NoError(t, err)

		rel, ok := s.Relationships.Relations[tc.relation]
		require.True(t, ok, "%s.%s", s.Name, tc.relation)
		assert.Equal(t, schema.BelongsTo, rel.Type, "%s.%s", s.Name, tc.relation)
		require.Len(t, rel.References, 1)

		ref := rel.References[0]
		assert.Equal(t, tc.fkColumn, ref.ForeignKey.DBName)
		assert.Equal(t, s.Table, ref.ForeignKey.Schema.Table)
		assert.Equal(t, tc.refTable, ref.PrimaryKey.Schema.Table)
		assert.Equal(t, tc.refCol, ref.PrimaryKey.DBName)
	}
}

func TestOrderDetailsCascadeFromOrder(t *testing.T) {
	s, err := schema.Parse(&entities.Order{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	rel := s.Relationships.Relations["OrderDetails"]
	require.NotNil(t, rel)
	assert.Equal(t, schema.HasMany, rel.Type)
	assert.Equal(t, "order_details", rel.FieldSchema.Table)

	constraint := rel.ParseConstraint()
	require.NotNil(t, constraint)
	assert.Equal(t, "CASCADE", constraint.OnDelete)
}
