package catalog

import "time"

// AttributeValue — значение атрибута на записи: имя + значение, без типа.
type AttributeValue struct {
	Name    string   `json:"name"`
	Value   any      `json:"value"`
	Options []string `json:"options,omitempty"`
}

// RecordSection — секция значений на продуктовой записи.
type RecordSection struct {
	Title      string           `json:"title"`
	Attributes []AttributeValue `json:"attributes"`
}

// Product — мешок значений, опционально сверяемый с шаблоном.
// SKU — производное поле: значение атрибута с именем "SKU", пересчитывается
// после каждой мутации.
type Product struct {
	SKU       string          `json:"sku,omitempty"`
	Structure []RecordSection `json:"structure"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func NewProduct(structure []RecordSection) *Product {
	now := time.Now().UTC()
	return &Product{
		SKU:       deriveSKU(structure),
		Structure: structure,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Update заменяет structure целиком, предварительно сверив каждый атрибут
// с одноимённым определением в шаблоне (если шаблон задан). Любая ошибка —
// и запись остаётся нетронутой: сначала полная проверка, потом запись.
// Атрибуты без определения в шаблоне проходят без валидации — это
// намеренная нетипизированная лазейка, а не упущение.
func (p *Product) Update(structure []RecordSection, tpl *Template) error {
	if err := ValidateStructure(structure, tpl); err != nil {
		return err
	}
	p.Structure = structure
	p.SKU = deriveSKU(structure)
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// ValidateStructure сверяет каждый атрибут структуры с одноимённым
// определением в шаблоне. nil-шаблон — проверять нечего.
func ValidateStructure(structure []RecordSection, tpl *Template) error {
	if tpl == nil {
		return nil
	}
	for _, sec := range structure {
		for _, attr := range sec.Attributes {
			def, ok := tpl.FindAttribute(attr.Name)
			if !ok {
				continue
			}
			if def.Required && attr.Value == nil {
				return &RequiredFieldError{Attribute: attr.Name}
			}
			if !def.Validate(attr.Value) {
				return &ValidationError{Attribute: attr.Name, Value: attr.Value}
			}
		}
	}
	return nil
}

// Snapshot — глубокая копия записи для чтения вне лока реестра.
func (p *Product) Snapshot() *Product {
	out := &Product{
		SKU:       p.SKU,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
		Structure: make([]RecordSection, len(p.Structure)),
	}
	for i, sec := range p.Structure {
		attrs := make([]AttributeValue, len(sec.Attributes))
		copy(attrs, sec.Attributes)
		for j := range attrs {
			attrs[j].Options = append([]string(nil), attrs[j].Options...)
		}
		out.Structure[i] = RecordSection{Title: sec.Title, Attributes: attrs}
	}
	return out
}

// deriveSKU — первый атрибут с именем "SKU" в порядке обхода секций.
// Не-строковое или отсутствующее значение = SKU нет.
func deriveSKU(structure []RecordSection) string {
	for _, sec := range structure {
		for _, attr := range sec.Attributes {
			if attr.Name == "SKU" {
				if s, ok := attr.Value.(string); ok {
					return s
				}
				return ""
			}
		}
	}
	return ""
}
