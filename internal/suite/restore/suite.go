// Package restore is the soft delete and restore suite for catalog tables.
//
// Before all scenarios it logs in through the UI, takes the session token
// and creates a database service, database, schema and table through the
// REST API. After the last scenario it hard-deletes the service, whatever
// the scenarios did. Each scenario gets a fresh browser context.
package restore

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/praxisllmlab/catalogcheck/internal/artifact"
	"github.com/praxisllmlab/catalogcheck/internal/browser"
	"github.com/praxisllmlab/catalogcheck/internal/catalog"
	"github.com/praxisllmlab/catalogcheck/internal/config"
	"github.com/praxisllmlab/catalogcheck/internal/logging"
	"github.com/praxisllmlab/catalogcheck/internal/runner"
)

// Name is the suite name used in reports and metrics.
const Name = "restore"

// PageOpener opens an isolated page bound to tb. *browser.Driver
// implements it.
type PageOpener interface {
	NewPage(tb browser.TB) *browser.Page
}

// Deps are what the suite needs from the outside.
type Deps struct {
	Config  *config.Config
	Pages   PageOpener
	Catalog *catalog.Client
	Fixture catalog.DatabaseServiceFixture

	// Artifacts receives failure screenshots. Nil disables them.
	Artifacts artifact.Store
	// RunKey groups the artifacts of one run.
	RunKey string
	Logger *log.Logger
}

type suite struct {
	deps   Deps
	entity catalog.EntityDescriptor
	logger *log.Logger

	// api is the catalog client authorized with the before-all session.
	api  *catalog.Client
	page *browser.Page
}

// New builds the runner.Suite.
func New(deps Deps) runner.Suite {
	if deps.Logger == nil {
		deps.Logger = logging.Component("restore")
	}
	s := &suite{
		deps:   deps,
		entity: deps.Fixture.Descriptor(),
		logger: deps.Logger,
	}
	return runner.Suite{
		Name:       Name,
		BeforeAll:  s.beforeAll,
		AfterAll:   s.afterAll,
		BeforeEach: s.beforeEach,
		AfterEach:  s.afterEach,
		Scenarios: []runner.Scenario{
			{Name: ScenarioSoftDelete, Run: s.softDelete},
			{Name: ScenarioCheckSoftDelete, Run: s.checkSoftDeleted},
			{Name: ScenarioCheckInSchema, Run: s.checkSoftDeletedInSchema},
			{Name: ScenarioRestore, Run: s.restore},
		},
	}
}

// login opens a page, signs in and returns an API client carrying the
// session token.
func (s *suite) login(t *runner.T) (*browser.Page, *catalog.Client) {
	t.Helper()
	page := s.deps.Pages.NewPage(t)
	page.Login(s.deps.Config.Auth.Username, s.deps.Config.Auth.Password)
	tok := page.SessionToken()
	return page, s.deps.Catalog.Authorized(tok.Raw)
}

func (s *suite) beforeAll(t *runner.T) {
	_, api := s.login(t)
	s.api = api

	created, err := api.CreateEntityTable(t.Context(), s.deps.Fixture)
	if err != nil {
		t.Fatalf("create entity table: %v", err)
	}
	t.Logf("created %s with %d table(s)", created.Service.FullyQualifiedName, len(created.Tables))
}

func (s *suite) afterAll(t *runner.T) {
	_, api := s.login(t)
	err := api.HardDeleteService(t.Context(), catalog.DatabaseServices, s.deps.Fixture.ServiceFQN())
	if err != nil {
		t.Fatalf("hard delete service: %v", err)
	}
	t.Logf("hard deleted %s", s.deps.Fixture.ServiceFQN())
}

func (s *suite) beforeEach(t *runner.T) {
	page, api := s.login(t)
	s.page = page
	s.api = api
	page.Intercept("GET", patternShowDeleted, aliasShowDeleted)
	page.Intercept("GET", patternNonDeleted, aliasNonDeleted)
}

// afterEach stores a screenshot of failed scenarios. It runs before the
// page's browser context is closed.
func (s *suite) afterEach(t *runner.T) {
	page := s.page
	s.page = nil
	if !t.Failed() || page == nil || s.deps.Artifacts == nil || !s.deps.Config.Artifacts.Screenshots() {
		return
	}

	png, err := page.Screenshot()
	if err != nil {
		s.logger.Warn("screenshot failed", "scenario", t.Name(), "err", err)
		return
	}
	key := artifact.Key(s.deps.RunKey, t.Name(), fmt.Sprintf("failure-%d.png", time.Now().Unix()))
	ctx, cancel := context.WithTimeout(context.WithoutCancel(t.Context()), 30*time.Second)
	defer cancel()
	loc, err := s.deps.Artifacts.Put(ctx, key, png, "image/png")
	if err != nil {
		s.logger.Warn("store screenshot", "scenario", t.Name(), "backend", s.deps.Artifacts.Name(), "err", err)
		return
	}
	t.Attach("screenshot", loc)
	s.logger.Info("saved screenshot", "scenario", t.Name(), "location", loc)
}

func (s *suite) softDelete(t *runner.T) {
	p := s.page
	s.visitEntityDetailsPage(p)

	p.ClickTestID(idManageButton)
	p.ClickTestID(idDeleteButtonTitle)
	p.ExpectContains(modalHeader, "Delete "+s.entity.DisplayName)
	p.ClickTestID(idSoftDeleteOption)

	confirm := browser.TestID(idConfirmButton)
	p.ExpectDisabled(confirm)
	p.Fill(browser.TestID(idConfirmationInput), "delete")
	p.ExpectDisabled(confirm)
	p.Fill(browser.TestID(idConfirmationInput), DeleteTerm)

	p.Intercept("DELETE", patternSoftDelete, aliasSoftDelete)
	p.ExpectEnabled(confirm)
	p.Click(confirm)
	p.WaitStatus(aliasSoftDelete, 200)

	p.ExpectToast(ToastTableDeleted, false)

	if s.deps.Config.Checks.APIState {
		s.checkState(t, true)
	}
}

func (s *suite) checkSoftDeleted(t *runner.T) {
	p := s.page
	s.openDeletedTable(p)

	p.ExpectContains(browser.TestID(idEntityHeaderName), s.entity.DisplayName)
	p.ScrollIntoView(browser.TestID(idDeletedBadge))
	p.ExpectVisible(browser.TestID(idDeletedBadge))
}

func (s *suite) checkSoftDeletedInSchema(t *runner.T) {
	p := s.page
	s.openDeletedTable(p)
	p.ClickText(browser.TestID(idEntityHeaderName), s.entity.DisplayName)

	p.ExpectExists(browser.TestID(idDeletedBadge))

	p.ScrollIntoView(browser.TestID(idBreadcrumb))
	p.Click(browser.TestID(idBreadcrumb) + " >> text=" + s.entity.SchemaName)

	p.Intercept("GET", patternQueryDeleted, aliasQueryDeleted)
	p.ClickTestID(idShowDeleted)
	p.WaitStatus(aliasQueryDeleted, 200)

	p.ExpectContains(tableCountBadge, "1")
	p.ExpectCount(firstCellOfTable, 1)
	p.ExpectContains(firstCellOfTable, s.entity.DisplayName)
}

func (s *suite) restore(t *runner.T) {
	p := s.page
	s.openDeletedTable(p)

	p.ExpectContains(browser.TestID(idEntityHeaderName), s.entity.DisplayName)
	p.ScrollIntoView(browser.TestID(idDeletedBadge))
	p.ExpectVisible(browser.TestID(idDeletedBadge))

	p.ClickTestID(idManageButton)
	p.ClickTestID(idRestoreButton)
	p.ExpectContains(modalHeader, RestoreModalTitle)
	p.ExpectContains(browser.TestID(idRestoreModalBody),
		fmt.Sprintf("Are you sure you want to restore %s?", s.entity.DisplayName))
	p.ClickText(primaryButton, RestoreButtonText)

	p.Pause(s.deps.Config.Timeouts.RestoreSettle)
	p.ExpectAbsent(browser.TestID(idDeletedBadge))

	if s.deps.Config.Checks.APIState {
		s.checkState(t, false)
	}
}
