package catalog

import (
	"sort"
	"time"
)

// Template — документ-схема: упорядоченные секции определений атрибутов.
// Секции держатся отсортированными по Order.
type Template struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	IsDefault   bool       `json:"is_default"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Sections    []*Section `json:"sections"`
}

func NewTemplate(id, name, description string, isDefault bool) *Template {
	now := time.Now().UTC()
	return &Template{
		ID:          id,
		Name:        name,
		Description: description,
		IsDefault:   isDefault,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (t *Template) touch() {
	t.UpdatedAt = time.Now().UTC()
}

// AddSection добавляет секцию и пересортировывает список по Order.
// Сортировка стабильная: при равных Order сохраняется порядок вставки.
func (t *Template) AddSection(sec *Section) {
	t.Sections = append(t.Sections, sec)
	sort.SliceStable(t.Sections, func(i, j int) bool {
		return t.Sections[i].Order < t.Sections[j].Order
	})
	t.touch()
}

// RemoveSection убирает секцию и плотно перенумеровывает остаток в 0..n-1.
// Неизвестный id — no-op.
func (t *Template) RemoveSection(id string) {
	out := t.Sections[:0]
	for _, s := range t.Sections {
		if s.ID != id {
			out = append(out, s)
		}
	}
	t.Sections = out
	t.renumber()
	t.touch()
}

// ReorderSections перестраивает список по заданному порядку id и перенумеровывает.
// Как и для атрибутов, требуется точная перестановка текущего набора.
func (t *Template) ReorderSections(newOrder []string) error {
	current := make([]string, len(t.Sections))
	byID := make(map[string]*Section, len(t.Sections))
	for i, s := range t.Sections {
		current[i] = s.ID
		byID[s.ID] = s
	}
	if !samePermutation(newOrder, current) {
		return &InvalidOrderError{Subject: "sections"}
	}
	out := make([]*Section, 0, len(newOrder))
	for _, id := range newOrder {
		out = append(out, byID[id])
	}
	t.Sections = out
	t.renumber()
	t.touch()
	return nil
}

func (t *Template) renumber() {
	for i, s := range t.Sections {
		s.Order = i
	}
}

// Section ищет секцию по id.
func (t *Template) Section(id string) (*Section, bool) {
	for _, s := range t.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

// FindAttribute ищет определение по отображаемому имени по всем секциям.
// Именно так продуктовые payload'ы матчатся на схему.
func (t *Template) FindAttribute(name string) (*AttributeDefinition, bool) {
	for _, s := range t.Sections {
		for _, a := range s.Attributes {
			if a.Name == name {
				return a, true
			}
		}
	}
	return nil, false
}

// Copy — глубокий клон со свежими id из генератора. Клон никогда не default,
// timestamps новые, источник не трогаем.
func (t *Template) Copy(newID, newName, newDescription string, genID func() string) *Template {
	out := NewTemplate(newID, newName, newDescription, false)
	for _, s := range t.Sections {
		out.AddSection(s.clone(genID))
	}
	return out
}

// Snapshot — глубокая копия с теми же id и timestamps. В отличие от Copy
// это не клон-как-новый-документ, а слепок для чтения вне лока реестра.
func (t *Template) Snapshot() *Template {
	out := &Template{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		IsDefault:   t.IsDefault,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		Sections:    make([]*Section, 0, len(t.Sections)),
	}
	for _, s := range t.Sections {
		out.Sections = append(out.Sections, s.snapshot())
	}
	return out
}

// Normalize приводит документ, пришедший извне, к инвариантам:
// секции отсортированы по Order, options сброшены у не-Picklist атрибутов.
func (t *Template) Normalize() {
	sort.SliceStable(t.Sections, func(i, j int) bool {
		return t.Sections[i].Order < t.Sections[j].Order
	})
	for _, s := range t.Sections {
		for _, a := range s.Attributes {
			if a.Type != TypePicklist {
				a.Options = nil
			}
		}
	}
}
