package catalog

// Section — упорядоченная именованная группа определений атрибутов.
// Order плотно перенумеровывается шаблоном при любой структурной правке.
type Section struct {
	ID         string                 `json:"id"`
	Title      string                 `json:"title"`
	Order      int                    `json:"order"`
	Attributes []*AttributeDefinition `json:"attributes"`
}

func (s *Section) AddAttribute(a *AttributeDefinition) {
	s.Attributes = append(s.Attributes, a)
}

func (s *Section) RemoveAttribute(id string) {
	out := s.Attributes[:0]
	for _, a := range s.Attributes {
		if a.ID != id {
			out = append(out, a)
		}
	}
	s.Attributes = out
}

// Attribute ищет определение по id.
func (s *Section) Attribute(id string) (*AttributeDefinition, bool) {
	for _, a := range s.Attributes {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}

// ReorderAttributes перестраивает список по заданному порядку id.
// Порядок обязан быть точной перестановкой текущих id, иначе InvalidOrderError —
// молчаливая потеря атрибутов недопустима.
func (s *Section) ReorderAttributes(newOrder []string) error {
	current := make([]string, len(s.Attributes))
	byID := make(map[string]*AttributeDefinition, len(s.Attributes))
	for i, a := range s.Attributes {
		current[i] = a.ID
		byID[a.ID] = a
	}
	if !samePermutation(newOrder, current) {
		return &InvalidOrderError{Subject: "attributes"}
	}
	out := make([]*AttributeDefinition, 0, len(newOrder))
	for _, id := range newOrder {
		out = append(out, byID[id])
	}
	s.Attributes = out
	return nil
}

func (s *Section) snapshot() *Section {
	out := &Section{
		ID:         s.ID,
		Title:      s.Title,
		Order:      s.Order,
		Attributes: make([]*AttributeDefinition, 0, len(s.Attributes)),
	}
	for _, a := range s.Attributes {
		out.Attributes = append(out.Attributes, a.snapshot())
	}
	return out
}

func (s *Section) clone(newID func() string) *Section {
	out := &Section{
		ID:         newID(),
		Title:      s.Title,
		Order:      s.Order,
		Attributes: make([]*AttributeDefinition, 0, len(s.Attributes)),
	}
	for _, a := range s.Attributes {
		out.Attributes = append(out.Attributes, a.clone(newID()))
	}
	return out
}
