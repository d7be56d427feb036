package restore

import (
	"fmt"
	"time"

	"github.com/praxisllmlab/catalogcheck/internal/browser"
)

// suggestionWait is how long the search dropdown gets to render a match
// before falling back to the explore page.
const suggestionWait = 2 * time.Second

// visitEntityDetailsPage opens the entity's detail page through the global
// search box. When the suggestion dropdown does not list the entity, it
// submits the search and picks the entity from the explore tab instead.
func (s *suite) visitEntityDetailsPage(p *browser.Page) {
	e := s.entity
	suggestion := browser.TestID(fmt.Sprintf("%s-%s", e.ServiceName, e.Term))

	p.Intercept("GET", fmt.Sprintf("/api/v1/%s/name/*", e.Entity), aliasEntityDetails)
	p.Intercept("GET", patternSuggest, aliasSuggest)
	p.Intercept("GET", patternExploreSearch, aliasExploreSearch)
	p.Intercept("GET", fmt.Sprintf("/api/v1/search/query?q=*&index=%s&from=*&size=**", searchIndex[e.Entity]), aliasExploreTabQuery)

	search := browser.TestID(idSearchBox)
	p.Fill(search, e.Term)
	p.WaitStatus(aliasSuggest, 200)

	if p.Appears(suggestion, suggestionWait) {
		p.ScrollIntoView(suggestion)
		p.Click(suggestion)
	} else {
		s.logger.Debug("no search suggestion, using explore", "term", e.Term)
		p.Press(search, "Enter")
		p.WaitStatus(aliasExploreSearch, 200)
		tab := browser.TestID(e.Entity + "-tab")
		p.Click(tab)
		p.ExpectVisible(tab)
		p.WaitStatus(aliasExploreTabQuery, 200)
		p.ScrollIntoView(suggestion)
		p.Click(suggestion)
	}
	p.WaitStatus(aliasEntityDetails, 200)

	p.ClickBlank()
	p.Fill(search, "")
}

// openDeletedTable goes to the explore tables tab, turns on deleted
// entities and opens the table under test.
func (s *suite) openDeletedTable(p *browser.Page) {
	p.ClickTestID(idExplore)
	p.ClickTestID(idTablesTab)
	p.WaitStatus(aliasNonDeleted, 200)

	p.ExpectExists(browser.TestID(idShowDeleted))
	p.ClickTestID(idShowDeleted)
	p.WaitStatus(aliasShowDeleted, 200)

	p.ClickText(browser.TestID(idEntityHeaderName), s.entity.DisplayName)
}
