package catalog

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const testToken = "test-token"

// fakeCatalog is an in-memory stand-in for the catalog REST API.
type fakeCatalog struct {
	mu       sync.Mutex
	services map[string]DatabaseService
	tables   map[string]Table
	schemas  map[string]bool
	requests []string
}

func newFakeCatalog(t *testing.T) (*fakeCatalog, *httptest.Server) {
	t.Helper()
	f := &fakeCatalog{
		services: map[string]DatabaseService{},
		tables:   map[string]Table{},
		schemas:  map[string]bool{},
	}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			f.mu.Lock()
			f.requests = append(f.requests, req.Method+" "+req.URL.RequestURI())
			f.mu.Unlock()
			next.ServeHTTP(w, req)
		})
	})
	r.Get("/api/v1/system/version", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, Version{Version: "1.2.0", Revision: "abc"})
	})
	r.Post("/api/v1/users/login", f.login)
	r.Group(func(r chi.Router) {
		r.Use(requireToken)
		r.Post("/api/v1/services/databaseServices", f.createService)
		r.Post("/api/v1/databases", f.created)
		r.Post("/api/v1/databaseSchemas", f.createSchema)
		r.Post("/api/v1/tables", f.createTable)
		r.Get("/api/v1/tables", f.listTables)
		r.Get("/api/v1/tables/name/{fqn}", f.getTable)
		r.Delete("/api/v1/services/databaseServices/name/{fqn}", f.deleteService)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return f, srv
}

func requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"code": 401, "message": "Not authorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeCatalog) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	pw, _ := base64.StdEncoding.DecodeString(req.Password)
	if req.Email != "admin@open-metadata.org" || string(pw) != "admin" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "You have entered an invalid username or password."})
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{TokenType: "Bearer", AccessToken: testToken})
}

func (f *fakeCatalog) createService(w http.ResponseWriter, r *http.Request) {
	var req CreateDatabaseService
	_ = json.NewDecoder(r.Body).Decode(&req)
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.services[req.Name]; ok {
		writeJSON(w, http.StatusConflict, map[string]any{"message": "Entity already exists"})
		return
	}
	svc := DatabaseService{
		Entity:      Entity{ID: uuid.NewString(), Name: req.Name, FullyQualifiedName: req.Name},
		ServiceType: req.ServiceType,
	}
	f.services[req.Name] = svc
	writeJSON(w, http.StatusCreated, svc)
}

func (f *fakeCatalog) created(w http.ResponseWriter, r *http.Request) {
	var req CreateDatabase
	_ = json.NewDecoder(r.Body).Decode(&req)
	writeJSON(w, http.StatusCreated, Database{
		Entity:  Entity{ID: uuid.NewString(), Name: req.Name, FullyQualifiedName: req.Service + "." + req.Name},
		Service: EntityReference{Type: "databaseService", Name: req.Service},
	})
}

func (f *fakeCatalog) createSchema(w http.ResponseWriter, r *http.Request) {
	var req CreateDatabaseSchema
	_ = json.NewDecoder(r.Body).Decode(&req)
	fqn := req.Database + "." + req.Name
	f.mu.Lock()
	f.schemas[fqn] = true
	f.mu.Unlock()
	writeJSON(w, http.StatusCreated, DatabaseSchema{
		Entity: Entity{ID: uuid.NewString(), Name: req.Name, FullyQualifiedName: fqn},
	})
}

func (f *fakeCatalog) createTable(w http.ResponseWriter, r *http.Request) {
	var req CreateTable
	_ = json.NewDecoder(r.Body).Decode(&req)
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.schemas[req.DatabaseSchema] {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "databaseSchema instance for " + req.DatabaseSchema + " not found"})
		return
	}
	table := Table{
		Entity:         Entity{ID: uuid.NewString(), Name: req.Name, FullyQualifiedName: req.DatabaseSchema + "." + req.Name},
		Columns:        req.Columns,
		DatabaseSchema: EntityReference{Type: "databaseSchema", FullyQualifiedName: req.DatabaseSchema},
	}
	f.tables[table.FullyQualifiedName] = table
	writeJSON(w, http.StatusCreated, table)
}

func visible(t Table, include string) bool {
	switch Include(include) {
	case IncludeAll:
		return true
	case IncludeDeleted:
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
	list := TableList{Data: []Table{}}
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
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "table instance for " + fqn + " not found"})
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (f *fakeCatalog) deleteService(w http.ResponseWriter, r *http.Request) {
	fqn := chi.URLParam(r, "fqn")
	q := r.URL.Query()
	if q.Get("hardDelete") != "true" || q.Get("recursive") != "true" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "expected recursive hard delete"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	svc, ok := f.services[fqn]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "databaseService instance for " + fqn + " not found"})
		return
	}
	delete(f.services, fqn)
	for k := range f.tables {
		if strings.HasPrefix(k, fqn+".") {
			delete(f.tables, k)
		}
	}
	writeJSON(w, http.StatusOK, svc)
}

// softDelete marks a table deleted the way the UI's delete action does.
func (f *fakeCatalog) softDelete(fqn string, deleted bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.tables[fqn]
	t.Deleted = deleted
	f.tables[fqn] = t
}
