// api/router.go
package api

import (
	"vitrina/internal/reference"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter(reg *Registry, catalogs map[string]reference.OptionDirectory) *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default())

	r.GET("/health", HealthHandler(reg))

	apiGroup := r.Group("/api")
	{
		// products
		apiGroup.GET("/products", ListProductsHandler(reg))
		apiGroup.POST("/products", CreateProductHandler(reg))
		apiGroup.GET("/products/:sku", GetProductHandler(reg))
		apiGroup.PUT("/products/:sku", UpdateProductHandler(reg))
		apiGroup.DELETE("/products/:sku", DeleteProductHandler(reg))

		// view templates
		apiGroup.GET("/views", ListViewsHandler(reg))
		apiGroup.POST("/views", CreateViewHandler(reg))
		apiGroup.GET("/views/:id", GetViewHandler(reg))
		apiGroup.PUT("/views/:id", UpdateViewHandler(reg))
		apiGroup.DELETE("/views/:id", DeleteViewHandler(reg))
		apiGroup.POST("/views/:id/copy", CopyViewHandler(reg))

		// структура шаблона: секции, атрибуты, опции
		apiGroup.POST("/views/:id/sections", AddSectionHandler(reg))
		apiGroup.PUT("/views/:id/sections/_reorder", ReorderSectionsHandler(reg))
		apiGroup.DELETE("/views/:id/sections/:sectionID", RemoveSectionHandler(reg))
		apiGroup.POST("/views/:id/sections/:sectionID/attributes", AddAttributeHandler(reg))
		apiGroup.PUT("/views/:id/sections/:sectionID/attributes/_reorder", ReorderAttributesHandler(reg))
		apiGroup.DELETE("/views/:id/sections/:sectionID/attributes/:attrID", RemoveAttributeHandler(reg))
		apiGroup.POST("/views/:id/sections/:sectionID/attributes/:attrID/options", AddOptionHandler(reg))
		apiGroup.PUT("/views/:id/sections/:sectionID/attributes/:attrID/options/_reorder", ReorderOptionsHandler(reg))
		apiGroup.DELETE("/views/:id/sections/:sectionID/attributes/:attrID/options/:option", RemoveOptionHandler(reg))

		// справочники опций
		apiGroup.GET("/catalogs/:name", CatalogHandler(catalogs))
	}

	return r
}

func RunServer(addr string, reg *Registry, catalogs map[string]reference.OptionDirectory) {
	_ = NewRouter(reg, catalogs).Run(addr)
}
