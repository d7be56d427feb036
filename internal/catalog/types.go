package catalog

// Include selects soft-deleted entities in reads.
type Include string

const (
	IncludeNonDeleted Include = "non-deleted"
	IncludeDeleted    Include = "deleted"
	IncludeAll        Include = "all"
)

// Service categories as they appear in /api/v1/services/{category}.
const (
	DatabaseServices  = "databaseServices"
	DashboardServices = "dashboardServices"
	MessagingServices = "messagingServices"
	PipelineServices  = "pipelineServices"
)

// EntityReference points at another entity.
type EntityReference struct {
	ID                 string `json:"id"`
	Type               string `json:"type"`
	Name               string `json:"name,omitempty"`
	FullyQualifiedName string `json:"fullyQualifiedName,omitempty"`
	Deleted            bool   `json:"deleted,omitempty"`
}

// Entity holds the fields every catalog entity shares.
type Entity struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	DisplayName        string  `json:"displayName,omitempty"`
	FullyQualifiedName string  `json:"fullyQualifiedName"`
	Deleted            bool    `json:"deleted"`
	Version            float64 `json:"version,omitempty"`
}

type DatabaseService struct {
	Entity
	ServiceType string `json:"serviceType"`
}

type Database struct {
	Entity
	Service EntityReference `json:"service"`
}

type DatabaseSchema struct {
	Entity
	Database EntityReference `json:"database"`
	Service  EntityReference `json:"service"`
}

type Table struct {
	Entity
	TableType      string          `json:"tableType,omitempty"`
	Columns        []Column        `json:"columns"`
	DatabaseSchema EntityReference `json:"databaseSchema"`
	Database       EntityReference `json:"database"`
	Service        EntityReference `json:"service"`
}

// Column is a table column definition.
type Column struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	DataType    string `json:"dataType"`
	DataLength  int    `json:"dataLength,omitempty"`
	Description string `json:"description,omitempty"`
}

// ServiceConnection wraps the connector-specific config.
type ServiceConnection struct {
	Config map[string]any `json:"config"`
}

type CreateDatabaseService struct {
	Name        string            `json:"name"`
	ServiceType string            `json:"serviceType"`
	Connection  ServiceConnection `json:"connection"`
}

type CreateDatabase struct {
	Name    string `json:"name"`
	Service string `json:"service"`
}

type CreateDatabaseSchema struct {
	Name     string `json:"name"`
	Database string `json:"database"`
}

type CreateTable struct {
	Name           string   `json:"name"`
	DisplayName    string   `json:"displayName,omitempty"`
	DatabaseSchema string   `json:"databaseSchema"`
	Columns        []Column `json:"columns"`
}

// Paging is the cursor block of list responses.
type Paging struct {
	Total  int    `json:"total"`
	After  string `json:"after,omitempty"`
	Before string `json:"before,omitempty"`
}

// TableList is the response of GET /api/v1/tables.
type TableList struct {
	Data   []Table `json:"data"`
	Paging Paging  `json:"paging"`
}

// Contains reports whether the list holds a table with the given FQN.
func (l TableList) Contains(fqn string) bool {
	for _, t := range l.Data {
		if t.FullyQualifiedName == fqn {
			return true
		}
	}
	return false
}

// Version is the response of GET /api/v1/system/version.
type Version struct {
	Version   string `json:"version"`
	Revision  string `json:"revision"`
	Timestamp int64  `json:"timestamp"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by POST /api/v1/users/login.
type LoginResponse struct {
	TokenType      string `json:"tokenType"`
	AccessToken    string `json:"accessToken"`
	RefreshToken   string `json:"refreshToken,omitempty"`
	ExpiryDuration int64  `json:"expiryDuration,omitempty"`
}
