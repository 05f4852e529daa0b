package api

import (
	"net/http"
	"time"

	"vitrina/internal/catalog"

	"github.com/gin-gonic/gin"
)

// respondErr раскладывает ошибку ядра в FieldError-ответ.
// Всё, что не из ядра, — ошибка хранилища, отдаём 500 как есть.
func respondErr(c *gin.Context, err error) {
	if errs := fieldErrorsFor(err); errs != nil {
		c.JSON(statusForErrors(errs), gin.H{"errors": errs})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "storage error", "details": err.Error()})
}

// ===== products =====

type productReq struct {
	Structure      []catalog.RecordSection `json:"structure"`
	ViewTemplateID string                  `json:"view_template_id"`
}

// GET /api/products
func ListProductsHandler(reg *Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, reg.Products())
	}
}

// POST /api/products
func CreateProductHandler(reg *Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req productReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
			return
		}
		if len(req.Structure) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"errors": []FieldError{ferr(ErrInvalidPayload, "structure", "structure must not be empty")},
			})
			return
		}
		p, err := reg.AddProduct(c.Request.Context(), req.Structure, req.ViewTemplateID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

// GET /api/products/:sku
func GetProductHandler(reg *Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := reg.Product(c.Param("sku"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// PUT /api/products/:sku
func UpdateProductHandler(reg *Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req productReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
			return
		}
		p, err := reg.UpdateProduct(c.Request.Context(), c.Param("sku"), req.Structure, req.ViewTemplateID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// DELETE /api/products/:sku
func DeleteProductHandler(reg *Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := reg.RemoveProduct(c.Request.Context(), c.Param("sku")); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// ===== view templates =====

// GET /api/views
func ListViewsHandler(reg *Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, reg.Templates())
	}
}

// POST /api/views
func CreateViewHandler(reg *Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var t catalog.Template
		if err := c.ShouldBindJSON(&t); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
			return
		}
		if issues := catalog.LintTemplate(&t); len(issues) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  "template has blocking issues",
				"issues": issues,
			})
			return
		}
		now := time.Now().UTC()
		t.CreatedAt = now
		t.UpdatedAt = now
		created, err := reg.AddTemplate(c.Request.Context(), &t)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

// GET /api/views/:id
func GetViewHandler(reg *Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, ok := reg.Template(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
			return
		}
		c.JSON(http.StatusOK, t)
	}
}

// PUT /api/views/:id
func UpdateViewHandler(reg *Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var t catalog.Template
		if err := c.ShouldBindJSON(&t); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
			return
		}
		t.ID = c.Param("id")
		if issues := catalog.LintTemplate(&t); len(issues) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  "template has blocking issues",
				"issues": issues,
			})
			return
		}
		updated, err := reg.ReplaceTemplate(c.Request.Context(), &t)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

// DELETE /api/views/:id
func DeleteViewHandler(reg *Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := reg.RemoveTemplate(c.Request.Context(), c.Param("id")); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// POST /api/views/:id/copy
func CopyViewHandler(reg *Registry) gin.HandlerFunc {
	type copyReq struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	return func(c *gin.Context) {
		var req copyReq
		if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"errors": []FieldError{ferr(ErrInvalidPayload, "name", "name is required")},
			})
			return
		}
		clone, err := reg.CreateFromTemplate(c.Request.Context(), c.Param("id"), req.Name, req.Description)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, clone)
	}
}

// ===== структурные операции над шаблоном =====

type reorderReq struct {
	Order []string `json:"order"`
}

// POST /api/views/:id/sections
func AddSectionHandler(reg *Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var sec catalog.Section
		if err := c.ShouldBindJSON(&sec); err != nil || sec.Title == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"errors": []FieldError{ferr(ErrInvalidPayload, "title", "section title is required")},
			})
			return
		}
		for _, a := range sec.Attributes {
			if _, ok := catalog.ParseAttrType(string(a.Type)); !ok {
				c.JSON(http.StatusBadRequest, gin.H{
					"errors": []FieldError{ferr(ErrInvalidPayload, a.Name, "invalid attribute type")},
				})
				return
			}
		}
		t, err := reg.MutateTemplate(c.Request.Context(), c.Param("id"), func(t *catalog.Template) error {
			if sec.ID == "" {
				sec.ID = reg.newIDLocked()
			}
			for _, a := range sec.Attributes {
				if a.ID == "" {
					a.ID = reg.newIDLocked()
				}
				if a.Type != catalog.TypePicklist {
					a.Options = nil
				}
			}
			t.AddSection(&sec)
			return nil
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, t)
	}
}

// DELETE /api/views/:id/sections/:sectionID
func RemoveSectionHandler(reg *Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		sectionID := c.Param("sectionID")
		t, err := reg.MutateTemplate(c.Request.Context(), c.Param("id"), func(t *catalog.Template) error {
			if _, ok := t.Section(sectionID); !ok {
				return &catalog.NotFoundError{Kind: "section", ID: sectionID}
			}
			t.RemoveSection(sectionID)
			return nil
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
	}
}

// PUT /api/views/:id/sections/_reorder
func ReorderSectionsHandler(reg *Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req reorderReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
			return
		}
		t, err := reg.MutateTemplate(c.Request.Context(), c.Param("id"), func(t *catalog.Template) error {
			return t.ReorderSections(req.Order)
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
	}
}

// POST /api/views/:id/sections/:sectionID/attributes
func AddAttributeHandler(reg *Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in catalog.AttributeDefinition
		if err := c.ShouldBindJSON(&in); err != nil || in.Name == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"errors": []FieldError{ferr(ErrInvalidPayload, "name", "attribute name is required")},
			})
			return
		}
		if _, ok := catalog.ParseAttrType(string(in.Type)); !ok {
			c.JSON(http.StatusBadRequest, gin.H{
				"errors": []FieldError{ferr(ErrInvalidPayload, in.Name, "invalid attribute type")},
			})
			return
		}
		sectionID := c.Param("sectionID")
		t, err := reg.MutateTemplate(c.Request.Context(), c.Param("id"), func(t *catalog.Template) error {
			sec, ok := t.Section(sectionID)
			if !ok {
				return &catalog.NotFoundError{Kind: "section", ID: sectionID}
			}
			id := in.ID
			if id == "" {
				id = reg.newIDLocked()
			}
			a, err := catalog.NewAttribute(id, in.Name, in.Type, in.Required, in.Value, in.Options)
			if err != nil {
				return err
			}
			sec.AddAttribute(a)
			return nil
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, t)
	}
}

// DELETE /api/views/:id/sections/:sectionID/attributes/:attrID
func RemoveAttributeHandler(reg *Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		sectionID := c.Param("sectionID")
		attrID := c.Param("attrID")
		t, err := reg.MutateTemplate(c.Request.Context(), c.Param("id"), func(t *catalog.Template) error {
			sec, ok := t.Section(sectionID)
			if !ok {
				return &catalog.NotFoundError{Kind: "section", ID: sectionID}
			}
			if _, ok := sec.Attribute(attrID); !ok {
				return &catalog.NotFoundError{Kind: "attribute", ID: attrID}
			}
			sec.RemoveAttribute(attrID)
			return nil
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
	}
}

// PUT /api/views/:id/sections/:sectionID/attributes/_reorder
func ReorderAttributesHandler(reg *Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req reorderReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
			return
		}
		sectionID := c.Param("sectionID")
		t, err := reg.MutateTemplate(c.Request.Context(), c.Param("id"), func(t *catalog.Template) error {
			sec, ok := t.Section(sectionID)
			if !ok {
				return &catalog.NotFoundError{Kind: "section", ID: sectionID}
			}
			return sec.ReorderAttributes(req.Order)
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
	}
}

// ===== опции Picklist =====

// mutateAttribute — общий каркас операций над одним определением.
func mutateAttribute(reg *Registry, c *gin.Context, fn func(*catalog.AttributeDefinition) error) {
	sectionID := c.Param("sectionID")
	attrID := c.Param("attrID")
	t, err := reg.MutateTemplate(c.Request.Context(), c.Param("id"), func(t *catalog.Template) error {
		sec, ok := t.Section(sectionID)
		if !ok {
			return &catalog.NotFoundError{Kind: "section", ID: sectionID}
		}
		a, ok := sec.Attribute(attrID)
		if !ok {
			return &catalog.NotFoundError{Kind: "attribute", ID: attrID}
		}
		return fn(a)
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// POST /api/views/:id/sections/:sectionID/attributes/:attrID/options
func AddOptionHandler(reg *Registry) gin.HandlerFunc {
	type optionReq struct {
		Option string `json:"option"`
	}
	return func(c *gin.Context) {
		var req optionReq
		if err := c.ShouldBindJSON(&req); err != nil || req.Option == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"errors": []FieldError{ferr(ErrInvalidPayload, "option", "option is required")},
			})
			return
		}
		mutateAttribute(reg, c, func(a *catalog.AttributeDefinition) error {
			a.AddOption(req.Option)
			return nil
		})
	}
}

// DELETE /api/views/:id/sections/:sectionID/attributes/:attrID/options/:option
func RemoveOptionHandler(reg *Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		option := c.Param("option")
		mutateAttribute(reg, c, func(a *catalog.AttributeDefinition) error {
			a.RemoveOption(option)
			return nil
		})
	}
}

// PUT /api/views/:id/sections/:sectionID/attributes/:attrID/options/_reorder
func ReorderOptionsHandler(reg *Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req reorderReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
			return
		}
		mutateAttribute(reg, c, func(a *catalog.AttributeDefinition) error {
			return a.ReorderOptions(req.Order)
		})
	}
}

// ===== служебные =====

// GET /health
func HealthHandler(reg *Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := reg.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
