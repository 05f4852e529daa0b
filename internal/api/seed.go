package api

import (
	"context"
	"fmt"

	"vitrina/internal/catalog"
	"vitrina/internal/reference"
)

// Seed наполняет пустой реестр демо-данными: default-шаблон
// "Complete Product View" и один продукт под него. Если шаблоны уже
// есть — ничего не делаем, сидер идемпотентен.
func Seed(ctx context.Context, reg *Registry, catalogs map[string]reference.OptionDirectory) error {
	if len(reg.Templates()) > 0 {
		return nil
	}

	// опции берём из справочников, литералы — fallback на случай пустой папки
	opts := func(name string, fallback ...string) []string {
		if dir, ok := catalogs[name]; ok && len(dir.Options) > 0 {
			return dir.Options
		}
		return fallback
	}

	tpl, err := buildDefaultTemplate(opts)
	if err != nil {
		return err
	}
	created, err := reg.AddTemplate(ctx, tpl)
	if err != nil {
		return err
	}

	if _, err := reg.AddProduct(ctx, sampleProductStructure(), created.ID); err != nil {
		return err
	}
	return nil
}

type seedAttr struct {
	id       string
	name     string
	typ      catalog.AttrType
	required bool
	options  []string
}

func buildDefaultTemplate(opts func(string, ...string) []string) (*catalog.Template, error) {
	sections := []struct {
		id    string
		title string
		order int
		attrs []seedAttr
	}{
		{"basic-info", "Basic Information", 0, []seedAttr{
			{"1", "Product Name", catalog.TypeString, true, nil},
			{"2", "SKU", catalog.TypeString, true, nil},
			{"3", "Brand", catalog.TypePicklist, true, opts("brand", "Advance Auto Parts", "Bosch", "K&N", "Fram", "Mobil 1", "Purolator", "WIX", "AC Delco")},
			{"4", "Category", catalog.TypePicklist, true, opts("category", "Automotive Filters", "Engine Parts", "Maintenance Items", "Performance Parts", "OEM Parts")},
			{"5", "Product Type", catalog.TypePicklist, true, opts("product_type", "Oil Filter", "Air Filter", "Fuel Filter", "Cabin Filter", "Transmission Filter")},
			{"6", "Status", catalog.TypePicklist, true, opts("status", "Active", "Inactive", "Discontinued", "Coming Soon", "Out of Stock")},
			{"7", "Launch Date", catalog.TypeDate, false, nil},
			{"8", "Discontinue Date", catalog.TypeDate, false, nil},
		}},
		{"pricing-inventory", "Pricing & Inventory", 1, []seedAttr{
			{"9", "Cost Price", catalog.TypeNumber, true, nil},
			{"10", "Selling Price", catalog.TypeNumber, true, nil},
			{"11", "MSRP", catalog.TypeNumber, false, nil},
			{"12", "Currency", catalog.TypePicklist, true, opts("currency", "USD", "EUR", "GBP", "CAD", "AUD")},
			{"13", "Stock Quantity", catalog.TypeNumber, true, nil},
			{"14", "Minimum Stock Level", catalog.TypeNumber, false, nil},
			{"15", "Is Trackable", catalog.TypeBoolean, false, nil},
			{"16", "Backorder Allowed", catalog.TypeBoolean, false, nil},
		}},
		{"physical-specs", "Physical Specifications", 2, []seedAttr{
			{"17", "Weight (lbs)", catalog.TypeNumber, false, nil},
			{"18", "Length (inches)", catalog.TypeNumber, false, nil},
			{"19", "Width (inches)", catalog.TypeNumber, false, nil},
			{"20", "Height (inches)", catalog.TypeNumber, false, nil},
			{"21", "Color", catalog.TypePicklist, false, opts("color", "Black", "White", "Silver", "Blue", "Red", "Yellow", "Green")},
			{"22", "Material", catalog.TypePicklist, false, opts("material", "Metal", "Plastic", "Composite", "Rubber", "Synthetic", "Paper")},
			{"23", "Package Type", catalog.TypePicklist, false, opts("package_type", "Retail Box", "Bulk Pack", "Blister Pack", "Poly Bag", "Custom Packaging")},
		}},
		{"descriptions", "Descriptions & Content", 3, []seedAttr{
			{"24", "Short Description", catalog.TypeText, true, nil},
			{"25", "Long Description", catalog.TypeRichText, false, nil},
			{"26", "Features", catalog.TypeRichText, false, nil},
			{"27", "Benefits", catalog.TypeRichText, false, nil},
			{"28", "Usage Instructions", catalog.TypeRichText, false, nil},
			{"29", "Keywords", catalog.TypeText, false, nil},
		}},
		{"media", "Media & Assets", 4, []seedAttr{
			{"30", "Primary Image URL", catalog.TypeString, true, nil},
			{"31", "Gallery Images", catalog.TypeText, false, nil},
			{"32", "Video URL", catalog.TypeString, false, nil},
			{"33", "Brochure URL", catalog.TypeString, false, nil},
			{"34", "Manual URL", catalog.TypeString, false, nil},
		}},
		{"warranty-support", "Warranty & Support", 5, []seedAttr{
			{"35", "Warranty Period (months)", catalog.TypeNumber, false, nil},
			{"36", "Warranty Type", catalog.TypePicklist, false, opts("warranty_type", "Limited", "Full", "Extended", "Lifetime", "No Warranty")},
			{"37", "Warranty Coverage", catalog.TypeRichText, false, nil},
			{"38", "Support Contact", catalog.TypeString, false, nil},
			{"39", "Return Policy", catalog.TypeRichText, false, nil},
		}},
	}

	tpl := catalog.NewTemplate("", "Complete Product View",
		"Comprehensive view with all product details for internal management", true)
	for _, sd := range sections {
		sec := &catalog.Section{ID: sd.id, Title: sd.title, Order: sd.order}
		for _, ad := range sd.attrs {
			a, err := catalog.NewAttribute(ad.id, ad.name, ad.typ, ad.required, nil, ad.options)
			if err != nil {
				return nil, fmt.Errorf("seed attribute %s: %w", ad.name, err)
			}
			sec.AddAttribute(a)
		}
		tpl.AddSection(sec)
	}
	return tpl, nil
}

// Значения ниже лежат в литеральных fallback-списках buildDefaultTemplate,
// поэтому продукт проходит валидацию и без YAML-справочников.
func sampleProductStructure() []catalog.RecordSection {
	av := func(name string, value any) catalog.AttributeValue {
		return catalog.AttributeValue{Name: name, Value: value}
	}
	return []catalog.RecordSection{
		{Title: "Basic Information", Attributes: []catalog.AttributeValue{
			av("Product Name", "Premium Auto Oil Filter Pro"),
			av("SKU", "AOF-PRO-2024-001"),
			av("Brand", "Advance Auto Parts"),
			av("Category", "Automotive Filters"),
			av("Product Type", "Oil Filter"),
			av("Status", "Active"),
			av("Launch Date", "2024-01-15"),
			av("Discontinue Date", nil),
		}},
		{Title: "Pricing & Inventory", Attributes: []catalog.AttributeValue{
			av("Cost Price", "12.50"),
			av("Selling Price", "24.99"),
			av("MSRP", "29.99"),
			av("Currency", "USD"),
			av("Stock Quantity", "150"),
			av("Minimum Stock Level", "25"),
			av("Is Trackable", true),
			av("Backorder Allowed", nil),
		}},
		{Title: "Physical Specifications", Attributes: []catalog.AttributeValue{
			av("Weight (lbs)", "0.8"),
			av("Length (inches)", "4.5"),
			av("Width (inches)", "3.2"),
			av("Height (inches)", "3.2"),
			av("Color", "Black"),
			av("Material", "Metal"),
			av("Package Type", "Retail Box"),
		}},
		{Title: "Descriptions & Content", Attributes: []catalog.AttributeValue{
			av("Short Description", "High-performance oil filter designed for maximum engine protection and extended service life."),
			av("Long Description", "The Premium Auto Oil Filter Pro features advanced filtration technology with synthetic media that captures 99% of harmful contaminants."),
			av("Features", "• Advanced synthetic filtration media\n• Anti-drainback valve prevents dry starts\n• Heavy-duty steel construction"),
			av("Keywords", "oil filter, automotive, engine protection, synthetic media, premium quality"),
		}},
		{Title: "Media & Assets", Attributes: []catalog.AttributeValue{
			av("Primary Image URL", "https://example.com/images/oil-filter-primary.jpg"),
			av("Gallery Images", "https://example.com/images/oil-filter-1.jpg, https://example.com/images/oil-filter-2.jpg"),
		}},
		{Title: "Warranty & Support", Attributes: []catalog.AttributeValue{
			av("Warranty Period (months)", "12"),
			av("Warranty Type", "Limited"),
			av("Support Contact", "support@advanceautoparts.com"),
			av("Return Policy", "30-day return policy for unused products in original packaging."),
		}},
	}
}
