package catalog

import "fmt"

// ValidationError — значение атрибута не прошло предикат типа.
type ValidationError struct {
	Attribute string
	Value     any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value for attribute %q: %v", e.Attribute, e.Value)
}

// RequiredFieldError — обязательный атрибут пришёл без значения.
type RequiredFieldError struct {
	Attribute string
}

func (e *RequiredFieldError) Error() string {
	return fmt.Sprintf("attribute %q is required", e.Attribute)
}

// InvalidOrderError — новый порядок не является перестановкой текущего набора.
type InvalidOrderError struct {
	Subject string // "sections" | "attributes" | "options"
}

func (e *InvalidOrderError) Error() string {
	return fmt.Sprintf("new order must contain exactly the current set of %s", e.Subject)
}

// NotFoundError — поиск по id/sku промахнулся там, где это ошибка вызова.
type NotFoundError struct {
	Kind string // "view template" | "section" | "attribute" | "product"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// DefaultProtectedError — попытка удалить шаблон с is_default=true.
type DefaultProtectedError struct {
	ID string
}

func (e *DefaultProtectedError) Error() string {
	return fmt.Sprintf("view template %q is the default and cannot be deleted", e.ID)
}
