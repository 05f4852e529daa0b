package catalog

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// AttrType — закрытый набор типов атрибутов. Имена совпадают с тем,
// что хранится в документе (включая "Rich Text" с пробелом).
type AttrType string

const (
	TypeString   AttrType = "String"
	TypeNumber   AttrType = "Number"
	TypeBoolean  AttrType = "Boolean"
	TypeDate     AttrType = "Date"
	TypeText     AttrType = "Text"
	TypeRichText AttrType = "Rich Text"
	TypePicklist AttrType = "Picklist"
)

var attrTypes = map[AttrType]struct{}{
	TypeString: {}, TypeNumber: {}, TypeBoolean: {}, TypeDate: {},
	TypeText: {}, TypeRichText: {}, TypePicklist: {},
}

// ParseAttrType проверяет, что строка — один из семи известных типов.
func ParseAttrType(s string) (AttrType, bool) {
	t := AttrType(s)
	_, ok := attrTypes[t]
	return t, ok
}

// AttributeDefinition описывает одно типизированное поле шаблона.
// Options заполняется только для Picklist, для остальных типов сбрасывается.
type AttributeDefinition struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Type     AttrType `json:"type"`
	Required bool     `json:"required"`
	Value    any      `json:"value,omitempty"`
	Options  []string `json:"options,omitempty"`
}

// NewAttribute конструирует определение и держит инвариант options-только-у-Picklist.
func NewAttribute(id, name string, typ AttrType, required bool, value any, options []string) (*AttributeDefinition, error) {
	if _, ok := attrTypes[typ]; !ok {
		return nil, fmt.Errorf("invalid attribute type: %q", typ)
	}
	a := &AttributeDefinition{
		ID:       id,
		Name:     name,
		Type:     typ,
		Required: required,
		Value:    value,
	}
	if typ == TypePicklist {
		a.Options = append([]string(nil), options...)
	}
	return a, nil
}

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`) // YYYY-MM-DD

// Validate — чистый предикат "значение подходит под тип".
// nil валиден тогда и только тогда, когда атрибут необязательный.
func (a *AttributeDefinition) Validate(value any) bool {
	if value == nil {
		return !a.Required
	}
	switch a.Type {
	case TypeString, TypeText, TypeRichText:
		_, ok := value.(string)
		return ok
	case TypeNumber:
		switch v := value.(type) {
		case float64:
			return true
		case int, int32, int64:
			return true
		case string:
			_, err := strconv.ParseFloat(v, 64)
			return err == nil
		default:
			return false
		}
	case TypeBoolean:
		_, ok := value.(bool)
		return ok
	case TypeDate:
		s, ok := value.(string)
		if !ok || !dateRe.MatchString(s) {
			return false
		}
		_, err := time.Parse("2006-01-02", s)
		return err == nil
	case TypePicklist:
		s, ok := value.(string)
		if !ok {
			return false
		}
		// пустой список опций означает "подходит любая строка"
		if len(a.Options) == 0 {
			return true
		}
		for _, opt := range a.Options {
			if s == opt {
				return true
			}
		}
		return false
	}
	return false
}

// AddOption добавляет опцию в конец списка. Для не-Picklist,
// пустой строки или дубликата — тихий no-op.
func (a *AttributeDefinition) AddOption(option string) {
	if a.Type != TypePicklist || option == "" {
		return
	}
	for _, opt := range a.Options {
		if opt == option {
			return
		}
	}
	a.Options = append(a.Options, option)
}

// RemoveOption убирает опцию, если она есть.
func (a *AttributeDefinition) RemoveOption(option string) {
	if a.Type != TypePicklist {
		return
	}
	for i, opt := range a.Options {
		if opt == option {
			a.Options = append(a.Options[:i], a.Options[i+1:]...)
			return
		}
	}
}

// ReorderOptions заменяет список только если newOrder — точная перестановка текущего.
func (a *AttributeDefinition) ReorderOptions(newOrder []string) error {
	if a.Type != TypePicklist {
		return &InvalidOrderError{Subject: "options"}
	}
	if !samePermutation(newOrder, a.Options) {
		return &InvalidOrderError{Subject: "options"}
	}
	a.Options = append([]string(nil), newOrder...)
	return nil
}

func (a *AttributeDefinition) snapshot() *AttributeDefinition {
	cp := *a
	cp.Options = append([]string(nil), a.Options...)
	return &cp
}

// clone — глубокая копия; новый id проставляет вызывающая сторона.
func (a *AttributeDefinition) clone(newID string) *AttributeDefinition {
	out := &AttributeDefinition{
		ID:       newID,
		Name:     a.Name,
		Type:     a.Type,
		Required: a.Required,
		Value:    a.Value,
	}
	if a.Type == TypePicklist {
		out.Options = append([]string(nil), a.Options...)
	}
	return out
}

// samePermutation — сравнение как множеств без учёта порядка.
func samePermutation(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(b))
	for _, s := range b {
		seen[s]++
	}
	for _, s := range a {
		if seen[s] == 0 {
			return false
		}
		seen[s]--
	}
	return true
}
