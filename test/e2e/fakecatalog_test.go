//go:build e2e

package e2e

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/praxisllmlab/catalogcheck/internal/auth"
	"github.com/praxisllmlab/catalogcheck/internal/catalog"
)

// fakeCatalog serves a minimal catalog UI and the REST endpoints the restore
// suite touches, so the browser flow runs without an OpenMetadata install.
type fakeCatalog struct {
	username string
	password string
	page     []byte

	mu          sync.Mutex
	token       string
	services    map[string]catalog.DatabaseService
	schemas     map[string]bool
	tables      map[string]catalog.Table
	noSuggest   bool
	failRestore bool
}

func newFakeCatalog(username, password, tokenKey string) (*fakeCatalog, error) {
	page, err := os.ReadFile("testdata/catalog.html")
	if err != nil {
		return nil, err
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		Email: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strings.Split(username, "@")[0],
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}).SignedString([]byte("fake-catalog"))
	if err != nil {
		return nil, err
	}
	return &fakeCatalog{
		username: username,
		password: password,
		page:     []byte(strings.ReplaceAll(string(page), "__TOKEN_KEY__", tokenKey)),
		token:    token,
		services: map[string]catalog.DatabaseService{},
		schemas:  map[string]bool{},
		tables:   map[string]catalog.Table{},
	}, nil
}

func (f *fakeCatalog) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/api/v1/system/version", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, catalog.Version{Version: "1.3.0-fake"})
	})
	r.Post("/api/v1/users/login", f.login)
	r.Group(func(r chi.Router) {
		r.Use(f.requireToken)
		r.Post("/api/v1/services/databaseServices", f.createService)
		r.Delete("/api/v1/services/databaseServices/name/{fqn}", f.deleteService)
		r.Post("/api/v1/databases", f.createDatabase)
		r.Post("/api/v1/databaseSchemas", f.createSchema)
		r.Post("/api/v1/tables", f.createTable)
		r.Get("/api/v1/tables", f.listTables)
		r.Get("/api/v1/tables/name/{fqn}", f.getTable)
		r.Put("/api/v1/tables/restore", f.restoreTable)
		r.Delete("/api/v1/tables/{id}", f.deleteTable)
		r.Get("/api/v1/search/suggest", f.suggest)
		r.Get("/api/v1/search/query", f.query)
	})
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		if strings.HasPrefix(req.URL.Path, "/api/") {
			writeError(w, http.StatusNotFound, "no route "+req.URL.Path)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(f.page)
	})
	return r
}

// setSuggest turns the search box suggestions on or off.
func (f *fakeCatalog) setSuggest(on bool) {
	f.mu.Lock()
	f.noSuggest = !on
	f.mu.Unlock()
}

// setFailRestore makes table restores answer 500.
func (f *fakeCatalog) setFailRestore(fail bool) {
	f.mu.Lock()
	f.failRestore = fail
	f.mu.Unlock()
}

// hasService reports whether the service still exists.
func (f *fakeCatalog) hasService(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.services[name]
	return ok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"code": status, "message": msg})
}

func (f *fakeCatalog) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+f.token {
			writeError(w, http.StatusUnauthorized, "Not authorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *fakeCatalog) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	pw, _ := base64.StdEncoding.DecodeString(req.Password)
	if req.Email != f.username || string(pw) != f.password {
		writeError(w, http.StatusUnauthorized, "You have entered an invalid username or password.")
		return
	}
	writeJSON(w, http.StatusOK, catalog.LoginResponse{TokenType: "Bearer", AccessToken: f.token})
}

func (f *fakeCatalog) createService(w http.ResponseWriter, r *http.Request) {
	var req catalog.CreateDatabaseService
	_ = json.NewDecoder(r.Body).Decode(&req)
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.services[req.Name]; ok {
		writeError(w, http.StatusConflict, "Entity already exists")
		return
	}
	svc := catalog.DatabaseService{
		Entity:      catalog.Entity{ID: uuid.NewString(), Name: req.Name, FullyQualifiedName: req.Name},
		ServiceType: req.ServiceType,
	}
	f.services[req.Name] = svc
	writeJSON(w, http.StatusCreated, svc)
}

func (f *fakeCatalog) deleteService(w http.ResponseWriter, r *http.Request) {
	fqn := chi.URLParam(r, "fqn")
	q := r.URL.Query()
	if q.Get("hardDelete") != "true" || q.Get("recursive") != "true" {
		writeError(w, http.StatusBadRequest, "expected recursive hard delete")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	svc, ok := f.services[fqn]
	if !ok {
		writeError(w, http.StatusNotFound, "databaseService instance for "+fqn+" not found")
		return
	}
	delete(f.services, fqn)
	for k := range f.schemas {
		if strings.HasPrefix(k, fqn+".") {
			delete(f.schemas, k)
		}
	}
	for k := range f.tables {
		if strings.HasPrefix(k, fqn+".") {
			delete(f.tables, k)
		}
	}
	writeJSON(w, http.StatusOK, svc)
}

func (f *fakeCatalog) createDatabase(w http.ResponseWriter, r *http.Request) {
	var req catalog.CreateDatabase
	_ = json.NewDecoder(r.Body).Decode(&req)
	f.mu.Lock()
	_, ok := f.services[req.Service]
	f.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "databaseService instance for "+req.Service+" not found")
		return
	}
	writeJSON(w, http.StatusCreated, catalog.Database{
		Entity:  catalog.Entity{ID: uuid.NewString(), Name: req.Name, FullyQualifiedName: req.Service + "." + req.Name},
		Service: catalog.EntityReference{Type: "databaseService", Name: req.Service},
	})
}

func (f *fakeCatalog) createSchema(w http.ResponseWriter, r *http.Request) {
	var req catalog.CreateDatabaseSchema
	_ = json.NewDecoder(r.Body).Decode(&req)
	fqn := req.Database + "." + req.Name
	f.mu.Lock()
	f.schemas[fqn] = true
	f.mu.Unlock()
	writeJSON(w, http.StatusCreated, catalog.DatabaseSchema{
		Entity: catalog.Entity{ID: uuid.NewString(), Name: req.Name, FullyQualifiedName: fqn},
	})
}

func (f *fakeCatalog) createTable(w http.ResponseWriter, r *http.Request) {
	var req catalog.CreateTable
	_ = json.NewDecoder(r.Body).Decode(&req)
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.schemas[req.DatabaseSchema] {
		writeError(w, http.StatusNotFound, "databaseSchema instance for "+req.DatabaseSchema+" not found")
		return
	}
	parts := strings.SplitN(req.DatabaseSchema, ".", 3)
	table := catalog.Table{
		Entity: catalog.Entity{
			ID:                 uuid.NewString(),
			Name:               req.Name,
			DisplayName:        req.DisplayName,
			FullyQualifiedName: req.DatabaseSchema + "." + req.Name,
			Version:            0.1,
		},
		TableType:      "Regular",
		Columns:        req.Columns,
		DatabaseSchema: catalog.EntityReference{Type: "databaseSchema", Name: parts[2], FullyQualifiedName: req.DatabaseSchema},
		Database:       catalog.EntityReference{Type: "database", Name: parts[1], FullyQualifiedName: parts[0] + "." + parts[1]},
		Service:        catalog.EntityReference{Type: "databaseService", Name: parts[0], FullyQualifiedName: parts[0]},
	}
	f.tables[table.FullyQualifiedName] = table
	writeJSON(w, http.StatusCreated, table)
}

func visible(t catalog.Table, include string) bool {
	switch catalog.Include(include) {
	case catalog.IncludeAll:
		return true
	case catalog.IncludeDeleted:
		return t.Deleted
	default:
		return !t.Deleted
	}
}

func (f *fakeCatalog) listTables(w http.ResponseWriter, r *http.Request) {
	schema := r.URL.Query().Get("databaseSchema")
	include := r.URL.Query().Get("include")
	f.mu.Lock()
	defer f.mu.Unlock()
	list := catalog.TableList{Data: []catalog.Table{}}
	for _, t := range f.tables {
		if t.DatabaseSchema.FullyQualifiedName == schema && visible(t, include) {
			list.Data = append(list.Data, t)
		}
	}
	list.Paging.Total = len(list.Data)
	writeJSON(w, http.StatusOK, list)
}

func (f *fakeCatalog) getTable(w http.ResponseWriter, r *http.Request) {
	fqn := chi.URLParam(r, "fqn")
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tables[fqn]
	if !ok || !visible(t, r.URL.Query().Get("include")) {
		writeError(w, http.StatusNotFound, "table instance for "+fqn+" not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// tableByID must be called with f.mu held.
func (f *fakeCatalog) tableByID(id string) (catalog.Table, bool) {
	for _, t := range f.tables {
		if t.ID == id {
			return t, true
		}
	}
	return catalog.Table{}, false
}

func (f *fakeCatalog) deleteTable(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tableByID(id)
	if !ok {
		writeError(w, http.StatusNotFound, "table instance for "+id+" not found")
		return
	}
	if r.URL.Query().Get("hardDelete") == "true" {
		delete(f.tables, t.FullyQualifiedName)
	} else {
		t.Deleted = true
		t.Version += 0.1
		f.tables[t.FullyQualifiedName] = t
	}
	writeJSON(w, http.StatusOK, t)
}

func (f *fakeCatalog) restoreTable(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRestore {
		writeError(w, http.StatusInternalServerError, "restore is unavailable")
		return
	}
	t, ok := f.tableByID(req.ID)
	if !ok || !t.Deleted {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("table %s is not deleted", req.ID))
		return
	}
	t.Deleted = false
	t.Version += 0.1
	f.tables[t.FullyQualifiedName] = t
	writeJSON(w, http.StatusOK, t)
}

// matching must be called with f.mu held.
func (f *fakeCatalog) matching(q string, deleted bool) []map[string]any {
	hits := []map[string]any{}
	q = strings.Trim(q, "*")
	for _, t := range f.tables {
		if t.Deleted != deleted || !strings.Contains(t.Name, q) {
			continue
		}
		hits = append(hits, map[string]any{"_index": "table_search_index", "_source": t})
	}
	return hits
}

func (f *fakeCatalog) suggest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f.mu.Lock()
	options := []map[string]any{}
	if !f.noSuggest && q.Get("index") == "table_search_index" {
		options = f.matching(q.Get("q"), false)
	}
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"suggest": map[string]any{
			"metadata-suggest": []map[string]any{{"text": q.Get("q"), "options": options}},
		},
	})
}

func (f *fakeCatalog) query(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f.mu.Lock()
	hits := f.matching(q.Get("q"), q.Get("deleted") == "true")
	f.mu.Unlock()
	if idx := q.Get("index"); idx != "table_search_index" && idx != "dataAsset" {
		hits = []map[string]any{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"hits": map[string]any{
			"total": map[string]any{"value": len(hits)},
			"hits":  hits,
		},
	})
}
