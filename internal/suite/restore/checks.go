package restore

import (
	"context"

	"github.com/stretchr/testify/require"

	"github.com/praxisllmlab/catalogcheck/internal/catalog"
	"github.com/praxisllmlab/catalogcheck/internal/runner"
)

// checkState verifies through the REST API that the table is soft deleted
// (or restored) and listed accordingly in its schema.
func (s *suite) checkState(t *runner.T, deleted bool) {
	t.Helper()
	verifyTableState(t.Context(), t, s.api, s.deps.Fixture, deleted)
}

func verifyTableState(ctx context.Context, t require.TestingT, api *catalog.Client, f catalog.DatabaseServiceFixture, deleted bool) {
	fqn := f.TableFQN()

	table, err := api.GetTableByName(ctx, fqn, catalog.IncludeAll)
	require.NoError(t, err, "get table %s", fqn)
	require.Equal(t, deleted, table.Deleted, "table %s deleted flag", fqn)

	live, err := api.ListTables(ctx, f.SchemaFQN(), catalog.IncludeNonDeleted)
	require.NoError(t, err, "list non-deleted tables")
	require.Equal(t, !deleted, live.Contains(fqn), "table %s in non-deleted listing", fqn)

	if deleted {
		gone, err := api.ListTables(ctx, f.SchemaFQN(), catalog.IncludeDeleted)
		require.NoError(t, err, "list deleted tables")
		require.True(t, gone.Contains(fqn), "table %s in deleted listing", fqn)
	}
}
