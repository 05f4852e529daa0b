package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"vitrina/internal/catalog"
	"vitrina/internal/reference"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) (*Registry, http.Handler) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	reg := NewRegistry(nil)
	catalogs := map[string]reference.OptionDirectory{
		"status": {Name: "status", Options: []string{"Active", "Inactive"}},
	}
	return reg, NewRouter(reg, catalogs)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func viewPayload() gin.H {
	return gin.H{
		"name":        "Test View",
		"description": "view for tests",
		"is_default":  false,
		"sections": []gin.H{
			{"title": "Basic", "order": 0, "attributes": []gin.H{
				{"name": "SKU", "type": "String", "required": false},
				{"name": "Status", "type": "Picklist", "required": true, "options": []string{"Active", "Inactive"}},
			}},
		},
	}
}

func createView(t *testing.T, h http.Handler) catalog.Template {
	t.Helper()
	w := doJSON(t, h, http.MethodPost, "/api/views", viewPayload())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var tpl catalog.Template
	decode(t, w, &tpl)
	require.NotEmpty(t, tpl.ID)
	return tpl
}

func TestHealth(t *testing.T) {
	_, h := setupRouter(t)
	w := doJSON(t, h, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	decode(t, w, &resp)
	require.Equal(t, "healthy", resp["status"])
	require.NotEmpty(t, resp["timestamp"])
}

func TestCreateView_LintRejects(t *testing.T) {
	_, h := setupRouter(t)
	w := doJSON(t, h, http.MethodPost, "/api/views", gin.H{"name": ""})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Issues []catalog.TemplateIssue `json:"issues"`
	}
	decode(t, w, &resp)
	require.NotEmpty(t, resp.Issues)
}

func TestViewCRUD(t *testing.T) {
	_, h := setupRouter(t)
	tpl := createView(t, h)

	w := doJSON(t, h, http.MethodGet, "/api/views/"+tpl.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	payload := viewPayload()
	payload["name"] = "Renamed"
	w = doJSON(t, h, http.MethodPut, "/api/views/"+tpl.ID, payload)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated catalog.Template
	decode(t, w, &updated)
	require.Equal(t, "Renamed", updated.Name)

	w = doJSON(t, h, http.MethodDelete, "/api/views/"+tpl.ID, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, h, http.MethodGet, "/api/views/"+tpl.ID, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteView_DefaultConflict(t *testing.T) {
	_, h := setupRouter(t)
	payload := viewPayload()
	payload["is_default"] = true
	w := doJSON(t, h, http.MethodPost, "/api/views", payload)
	require.Equal(t, http.StatusCreated, w.Code)
	var tpl catalog.Template
	decode(t, w, &tpl)

	w = doJSON(t, h, http.MethodDelete, "/api/views/"+tpl.ID, nil)
	require.Equal(t, http.StatusConflict, w.Code)

	var resp struct {
		Errors []FieldError `json:"errors"`
	}
	decode(t, w, &resp)
	require.Len(t, resp.Errors, 1)
	require.Equal(t, ErrDefaultProtected, resp.Errors[0].Code)
}

func TestCopyView(t *testing.T) {
	_, h := setupRouter(t)
	tpl := createView(t, h)

	w := doJSON(t, h, http.MethodPost, "/api/views/"+tpl.ID+"/copy",
		gin.H{"name": "Clone", "description": "copied"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var clone catalog.Template
	decode(t, w, &clone)
	require.NotEqual(t, tpl.ID, clone.ID)
	require.False(t, clone.IsDefault)

	w = doJSON(t, h, http.MethodPost, "/api/views/"+tpl.ID+"/copy", gin.H{"name": ""})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSectionLifecycle(t *testing.T) {
	_, h := setupRouter(t)
	tpl := createView(t, h)

	w := doJSON(t, h, http.MethodPost, "/api/views/"+tpl.ID+"/sections",
		gin.H{"title": "Extra", "order": 1})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var after catalog.Template
	decode(t, w, &after)
	require.Len(t, after.Sections, 2)

	first, second := after.Sections[0].ID, after.Sections[1].ID
	w = doJSON(t, h, http.MethodPut, "/api/views/"+tpl.ID+"/sections/_reorder",
		gin.H{"order": []string{second, first}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &after)
	require.Equal(t, second, after.Sections[0].ID)
	require.Equal(t, 0, after.Sections[0].Order)

	// неполная перестановка — отказ без изменений
	w = doJSON(t, h, http.MethodPut, "/api/views/"+tpl.ID+"/sections/_reorder",
		gin.H{"order": []string{first}})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, h, http.MethodDelete, fmt.Sprintf("/api/views/%s/sections/%s", tpl.ID, second), nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &after)
	require.Len(t, after.Sections, 1)
	require.Equal(t, 0, after.Sections[0].Order, "remaining section renumbers to zero")

	w = doJSON(t, h, http.MethodDelete, fmt.Sprintf("/api/views/%s/sections/%s", tpl.ID, "nope"), nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAttributeLifecycle(t *testing.T) {
	_, h := setupRouter(t)
	tpl := createView(t, h)
	secID := tpl.Sections[0].ID
	base := fmt.Sprintf("/api/views/%s/sections/%s/attributes", tpl.ID, secID)

	w := doJSON(t, h, http.MethodPost, base,
		gin.H{"name": "Weight", "type": "Number", "required": false})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var after catalog.Template
	decode(t, w, &after)
	sec, ok := after.Section(secID)
	require.True(t, ok)
	require.Len(t, sec.Attributes, 3)

	w = doJSON(t, h, http.MethodPost, base, gin.H{"name": "Bad", "type": "Blob"})
	require.Equal(t, http.StatusBadRequest, w.Code, "unknown attribute type is rejected")

	ids := []string{sec.Attributes[2].ID, sec.Attributes[0].ID, sec.Attributes[1].ID}
	w = doJSON(t, h, http.MethodPut, base+"/_reorder", gin.H{"order": ids})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &after)
	sec, _ = after.Section(secID)
	require.Equal(t, ids[0], sec.Attributes[0].ID)

	w = doJSON(t, h, http.MethodDelete, base+"/"+ids[0], nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &after)
	sec, _ = after.Section(secID)
	require.Len(t, sec.Attributes, 2)
}

func TestOptionLifecycle(t *testing.T) {
	_, h := setupRouter(t)
	tpl := createView(t, h)
	secID := tpl.Sections[0].ID
	var statusID string
	for _, a := range tpl.Sections[0].Attributes {
		if a.Name == "Status" {
			statusID = a.ID
		}
	}
	require.NotEmpty(t, statusID)
	base := fmt.Sprintf("/api/views/%s/sections/%s/attributes/%s/options", tpl.ID, secID, statusID)

	w := doJSON(t, h, http.MethodPost, base, gin.H{"option": "Archived"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var after catalog.Template
	decode(t, w, &after)
	sec, _ := after.Section(secID)
	a, _ := sec.Attribute(statusID)
	require.Equal(t, []string{"Active", "Inactive", "Archived"}, a.Options)

	w = doJSON(t, h, http.MethodPut, base+"/_reorder",
		gin.H{"order": []string{"Archived", "Active", "Inactive"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &after)
	sec, _ = after.Section(secID)
	a, _ = sec.Attribute(statusID)
	require.Equal(t, []string{"Archived", "Active", "Inactive"}, a.Options)

	w = doJSON(t, h, http.MethodDelete, base+"/Archived", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &after)
	sec, _ = after.Section(secID)
	a, _ = sec.Attribute(statusID)
	require.Equal(t, []string{"Active", "Inactive"}, a.Options)
}

func TestProductCRUD(t *testing.T) {
	_, h := setupRouter(t)
	tpl := createView(t, h)

	structure := []gin.H{
		{"title": "Basic", "attributes": []gin.H{
			{"name": "SKU", "value": "X-1"},
			{"name": "Status", "value": "Active"},
		}},
	}
	w := doJSON(t, h, http.MethodPost, "/api/products",
		gin.H{"structure": structure, "view_template_id": tpl.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var p catalog.Product
	decode(t, w, &p)
	require.Equal(t, "X-1", p.SKU)

	w = doJSON(t, h, http.MethodGet, "/api/products/X-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// невалидное значение picklist — 400 с типизированной ошибкой
	bad := []gin.H{
		{"title": "Basic", "attributes": []gin.H{
			{"name": "SKU", "value": "X-1"},
			{"name": "Status", "value": "Pending"},
		}},
	}
	w = doJSON(t, h, http.MethodPut, "/api/products/X-1",
		gin.H{"structure": bad, "view_template_id": tpl.ID})
	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp struct {
		Errors []FieldError `json:"errors"`
	}
	decode(t, w, &resp)
	require.Len(t, resp.Errors, 1)
	require.Equal(t, ErrTypeMismatch, resp.Errors[0].Code)
	require.Equal(t, "Status", resp.Errors[0].Field)

	w = doJSON(t, h, http.MethodDelete, "/api/products/X-1", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, h, http.MethodGet, "/api/products/X-1", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateProduct_EmptyStructure(t *testing.T) {
	_, h := setupRouter(t)
	w := doJSON(t, h, http.MethodPost, "/api/products", gin.H{"structure": []gin.H{}})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Errors []FieldError `json:"errors"`
	}
	decode(t, w, &resp)
	require.Len(t, resp.Errors, 1)
	require.Equal(t, ErrInvalidPayload, resp.Errors[0].Code)
}

func TestCreateProduct_RequiredMissing(t *testing.T) {
	_, h := setupRouter(t)
	tpl := createView(t, h)

	w := doJSON(t, h, http.MethodPost, "/api/products", gin.H{
		"structure": []gin.H{
			{"title": "Basic", "attributes": []gin.H{{"name": "Status", "value": nil}}},
		},
		"view_template_id": tpl.ID,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Errors []FieldError `json:"errors"`
	}
	decode(t, w, &resp)
	require.Equal(t, ErrRequired, resp.Errors[0].Code)
}

func TestCatalogEndpoint(t *testing.T) {
	_, h := setupRouter(t)

	w := doJSON(t, h, http.MethodGet, "/api/catalogs/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Name    string   `json:"name"`
		Options []string `json:"options"`
	}
	decode(t, w, &resp)
	require.Equal(t, "status", resp.Name)
	require.Equal(t, []string{"Active", "Inactive"}, resp.Options)

	w = doJSON(t, h, http.MethodGet, "/api/catalogs/nope", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSeed(t *testing.T) {
	reg := NewRegistry(nil)
	require.NoError(t, Seed(context.Background(), reg, nil))

	tpls := reg.Templates()
	require.Len(t, tpls, 1)
	require.True(t, tpls[0].IsDefault)
	require.Equal(t, "Complete Product View", tpls[0].Name)
	require.Len(t, tpls[0].Sections, 6)

	total := 0
	for _, s := range tpls[0].Sections {
		total += len(s.Attributes)
	}
	require.Equal(t, 39, total)

	p, ok := reg.Product("AOF-PRO-2024-001")
	require.True(t, ok, "sample product validates against the seeded template")
	require.NotEmpty(t, p.Structure)

	// повторный прогон ничего не добавляет
	require.NoError(t, Seed(context.Background(), reg, nil))
	require.Len(t, reg.Templates(), 1)
}
