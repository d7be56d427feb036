package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ExploreTables is the explore-page tab key for tables.
const ExploreTables = "tables"

// EntityDescriptor identifies the table under test as the UI shows it.
type EntityDescriptor struct {
	Term        string
	DisplayName string
	Entity      string
	ServiceName string
	SchemaName  string
	EntityType  string
}

// DatabaseServiceFixture is the service, database, schema and table a suite
// creates before its scenarios and hard-deletes afterwards.
type DatabaseServiceFixture struct {
	Service  CreateDatabaseService
	Database CreateDatabase
	Schema   CreateDatabaseSchema
	Tables   []CreateTable
}

// NewFixtureID returns a short random id for fixture names.
func NewFixtureID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// NewDatabaseServiceFixture builds the fixture names from prefix and id:
// <prefix>-database-service-<id>, <prefix>-database-<id>,
// <prefix>-database-schema-<id> and <prefix>-table-<id>.
func NewDatabaseServiceFixture(prefix, id, serviceType string) DatabaseServiceFixture {
	service := fmt.Sprintf("%s-database-service-%s", prefix, id)
	database := fmt.Sprintf("%s-database-%s", prefix, id)
	schema := fmt.Sprintf("%s-database-schema-%s", prefix, id)
	table := fmt.Sprintf("%s-table-%s", prefix, id)

	return DatabaseServiceFixture{
		Service: CreateDatabaseService{
			Name:        service,
			ServiceType: serviceType,
			Connection:  ServiceConnection{Config: connectionConfig(serviceType)},
		},
		Database: CreateDatabase{
			Name:    database,
			Service: service,
		},
		Schema: CreateDatabaseSchema{
			Name:     schema,
			Database: service + "." + database,
		},
		Tables: []CreateTable{{
			Name:           table,
			DatabaseSchema: service + "." + database + "." + schema,
			Columns:        defaultColumns(),
		}},
	}
}

func connectionConfig(serviceType string) map[string]any {
	cfg := map[string]any{
		"type":                       serviceType,
		"username":                   "username",
		"authType":                   map[string]any{"password": "password"},
		"hostPort":                   "mysql:3306",
		"supportsMetadataExtraction": true,
		"supportsDBTExtraction":      true,
		"supportsProfiler":           true,
		"supportsQueryComment":       true,
	}
	if serviceType == "Mysql" {
		cfg["scheme"] = "mysql+pymysql"
	}
	return cfg
}

func defaultColumns() []Column {
	return []Column{
		{Name: "cust_id", DataType: "INT", Description: "Customer identifier"},
		{Name: "name", DataType: "VARCHAR", DataLength: 100, Description: "Customer name"},
		{Name: "email", DataType: "VARCHAR", DataLength: 255},
		{Name: "created_at", DataType: "TIMESTAMP"},
	}
}

// ServiceFQN is the service name.
func (f DatabaseServiceFixture) ServiceFQN() string { return f.Service.Name }

// SchemaFQN is service.database.schema.
func (f DatabaseServiceFixture) SchemaFQN() string { return f.Schema.Database + "." + f.Schema.Name }

// TableFQN is the FQN of the first table.
func (f DatabaseServiceFixture) TableFQN() string {
	if len(f.Tables) == 0 {
		return ""
	}
	return f.Tables[0].DatabaseSchema + "." + f.Tables[0].Name
}

// Descriptor describes the first table for UI lookups.
func (f DatabaseServiceFixture) Descriptor() EntityDescriptor {
	var name string
	if len(f.Tables) > 0 {
		name = f.Tables[0].Name
	}
	return EntityDescriptor{
		Term:        name,
		DisplayName: name,
		Entity:      ExploreTables,
		ServiceName: f.Service.Name,
		SchemaName:  f.Schema.Name,
		EntityType:  "Table",
	}
}

// CreatedFixture holds what the server returned for each created entity.
type CreatedFixture struct {
	Service  DatabaseService
	Database Database
	Schema   DatabaseSchema
	Tables   []Table
}

// CreateEntityTable creates the service, database, schema and tables in
// order. It stops at the first failure; the caller is expected to
// hard-delete the service regardless, which removes anything created.
func (c *Client) CreateEntityTable(ctx context.Context, f DatabaseServiceFixture) (CreatedFixture, error) {
	var out CreatedFixture
	var err error

	if out.Service, err = c.CreateDatabaseService(ctx, f.Service); err != nil {
		return out, err
	}
	if out.Database, err = c.CreateDatabase(ctx, f.Database); err != nil {
		return out, err
	}
	if out.Schema, err = c.CreateDatabaseSchema(ctx, f.Schema); err != nil {
		return out, err
	}
	for _, t := range f.Tables {
		table, err := c.CreateTable(ctx, t)
		if err != nil {
			return out, err
		}
		out.Tables = append(out.Tables, table)
	}
	c.logger.Info("created fixture", "service", f.Service.Name, "tables", len(out.Tables))
	return out, nil
}
