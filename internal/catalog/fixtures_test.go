package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDatabaseServiceFixture(t *testing.T) {
	fx := NewDatabaseServiceFixture("catalogcheck", "42", "Mysql")

	assert.Equal(t, "catalogcheck-database-service-42", fx.Service.Name)
	assert.Equal(t, "catalogcheck-database-42", fx.Database.Name)
	assert.Equal(t, fx.Service.Name, fx.Database.Service)
	assert.Equal(t, "catalogcheck-database-service-42.catalogcheck-database-42", fx.Schema.Database)
	require.Len(t, fx.Tables, 1)
	assert.Equal(t, "catalogcheck-table-42", fx.Tables[0].Name)

	assert.Equal(t, "catalogcheck-database-service-42.catalogcheck-database-42.catalogcheck-database-schema-42", fx.SchemaFQN())
	assert.Equal(t, fx.SchemaFQN()+".catalogcheck-table-42", fx.TableFQN())

	cfg := fx.Service.Connection.Config
	assert.Equal(t, "Mysql", cfg["type"])
	assert.Equal(t, "mysql+pymysql", cfg["scheme"])
	assert.Equal(t, "mysql:3306", cfg["hostPort"])
}

func TestFixture_Descriptor(t *testing.T) {
	d := NewDatabaseServiceFixture("p", "7", "Mysql").Descriptor()
	assert.Equal(t, EntityDescriptor{
		Term:        "p-table-7",
		DisplayName: "p-table-7",
		Entity:      "tables",
		ServiceName: "p-database-service-7",
		SchemaName:  "p-database-schema-7",
		EntityType:  "Table",
	}, d)
}

func TestNewFixtureID(t *testing.T) {
	a, b := NewFixtureID(), NewFixtureID()
	assert.Len(t, a, 8)
	assert.NotEqual(t, a, b)
}

func TestTableFQN_NoTables(t *testing.T) {
	assert.Empty(t, DatabaseServiceFixture{}.TableFQN())
	assert.Empty(t, DatabaseServiceFixture{}.Descriptor().Term)
}
