package api

import (
	"net/http"

	"vitrina/internal/reference"

	"github.com/gin-gonic/gin"
)

// GET /api/catalogs/:name — справочник опций для фронта и сидера.
func CatalogHandler(catalogs map[string]reference.OptionDirectory) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		dir, ok := catalogs[name]
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Catalog not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"name":    name,
			"options": dir.Options,
		})
	}
}
