package restore

// DeleteTerm is the phrase that enables the delete confirm button.
const DeleteTerm = "DELETE"

// Messages the UI shows.
const (
	ToastTableDeleted = "Table deleted successfully!"
	RestoreModalTitle = "Restore table"
	RestoreButtonText = "Restore"
)

// data-testid values of the catalog UI.
const (
	idManageButton       = "manage-button"
	idDeleteButtonTitle  = "delete-button-title"
	idSoftDeleteOption   = "soft-delete-option"
	idConfirmationInput  = "confirmation-text-input"
	idConfirmButton      = "confirm-button"
	idRestoreButton      = "restore-button"
	idRestoreModalBody   = "restore-modal-body"
	idDeletedBadge       = "deleted-badge"
	idShowDeleted        = "show-deleted"
	idEntityHeaderName   = "entity-header-display-name"
	idBreadcrumb         = "breadcrumb"
	idTablesTab          = "tables-tab"
	idExplore            = "app-bar-item-explore"
	idSearchBox          = "searchBox"
	idGlobalSearchSelect = "global-search-selector"
)

// Plain CSS selectors.
const (
	modalHeader      = ".ant-modal-header"
	primaryButton    = ".ant-btn-primary"
	tableCountBadge  = `[data-testid="table"] [data-testid="count"]`
	firstCellOfTable = ".ant-table-row > :nth-child(1)"
)

// Request aliases.
const (
	aliasShowDeleted     = "showDeletedTables"
	aliasNonDeleted      = "nonDeletedTables"
	aliasSoftDelete      = "softDeleteTable"
	aliasQueryDeleted    = "queryDeletedTables"
	aliasEntityDetails   = "getEntityDetails"
	aliasSuggest         = "searchQuery"
	aliasExploreSearch   = "explorePageSearch"
	aliasExploreTabQuery = "explorePageTabSearch"
)

// URL globs the aliases match.
const (
	patternShowDeleted   = "api/v1/search/query?q=*&index=*&from=0&size=10&deleted=true&query_filter=*&sort_field=updatedAt&sort_order=desc"
	patternNonDeleted    = "api/v1/search/query?q=*&index=*&from=0&size=10&deleted=false&query_filter=*&sort_field=updatedAt&sort_order=desc"
	patternSoftDelete    = "api/v1/tables/*?hardDelete=false&recursive=false"
	patternQueryDeleted  = "/api/v1/tables?databaseSchema=*&include=deleted"
	patternSuggest       = "/api/v1/search/suggest?q=*&index=*"
	patternExploreSearch = "/api/v1/search/*"
)

// Scenario names, in execution order.
const (
	ScenarioSoftDelete      = "Soft Delete entity table"
	ScenarioCheckSoftDelete = "Check Soft Deleted entity table"
	ScenarioCheckInSchema   = "Check Soft Deleted table in it's Schema"
	ScenarioRestore         = "Restore Soft Deleted table"
)

// searchIndex maps an explore tab to the search index it queries.
var searchIndex = map[string]string{
	"tables":     "table_search_index",
	"topics":     "topic_search_index",
	"dashboards": "dashboard_search_index",
	"pipelines":  "pipeline_search_index",
}
