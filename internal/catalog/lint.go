package catalog

import "fmt"

// TemplateIssue — одно замечание линтера по документу шаблона.
type TemplateIssue struct {
	Section   string `json:"section,omitempty"`
	Attribute string `json:"attribute,omitempty"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// LintTemplate проверяет документ шаблона, пришедший от клиента,
// до того как он попадёт в реестр. Возвращает полный список замечаний,
// а не первое попавшееся.
func LintTemplate(t *Template) []TemplateIssue {
	var issues []TemplateIssue

	if t.Name == "" {
		issues = append(issues, TemplateIssue{
			Code: "name_missing", Message: "template name is required",
		})
	}
	if t.Description == "" {
		issues = append(issues, TemplateIssue{
			Code: "description_missing", Message: "template description is required",
		})
	}
	if len(t.Sections) == 0 {
		issues = append(issues, TemplateIssue{
			Code: "sections_empty", Message: "template must have at least one section",
		})
	}

	seenOrders := make(map[int]string, len(t.Sections))
	for i, s := range t.Sections {
		secRef := s.ID
		if secRef == "" {
			secRef = fmt.Sprintf("#%d", i)
		}
		if s.Title == "" {
			issues = append(issues, TemplateIssue{
				Section: secRef,
				Code:    "title_missing",
				Message: fmt.Sprintf("section %s must have a title", secRef),
			})
		}
		if s.Order < 0 {
			issues = append(issues, TemplateIssue{
				Section: secRef,
				Code:    "order_invalid",
				Message: fmt.Sprintf("section %s has negative order %d", secRef, s.Order),
			})
		} else if other, dup := seenOrders[s.Order]; dup {
			issues = append(issues, TemplateIssue{
				Section: secRef,
				Code:    "order_duplicate",
				Message: fmt.Sprintf("sections %s and %s share order %d", other, secRef, s.Order),
			})
		} else {
			seenOrders[s.Order] = secRef
		}

		seen := make(map[string]struct{}, len(s.Attributes))
		for j, a := range s.Attributes {
			attrRef := a.Name
			if attrRef == "" {
				attrRef = fmt.Sprintf("#%d", j)
				issues = append(issues, TemplateIssue{
					Section: secRef, Attribute: attrRef,
					Code:    "attr_name_missing",
					Message: fmt.Sprintf("attribute %s in section %s must have a name", attrRef, secRef),
				})
			} else if _, dup := seen[a.Name]; dup {
				issues = append(issues, TemplateIssue{
					Section: secRef, Attribute: a.Name,
					Code:    "attr_name_duplicate",
					Message: fmt.Sprintf("attribute name %q is not unique within section %s", a.Name, secRef),
				})
			}
			seen[a.Name] = struct{}{}

			if _, ok := ParseAttrType(string(a.Type)); !ok {
				issues = append(issues, TemplateIssue{
					Section: secRef, Attribute: attrRef,
					Code:    "type_unknown",
					Message: fmt.Sprintf("attribute %s has invalid type %q", attrRef, a.Type),
				})
			}
			if a.Type != TypePicklist && len(a.Options) > 0 {
				issues = append(issues, TemplateIssue{
					Section: secRef, Attribute: attrRef,
					Code:    "options_on_non_picklist",
					Message: fmt.Sprintf("attribute %s of type %q must not carry options", attrRef, a.Type),
				})
			}
			// required picklist без опций принимает любую строку —
			// почти всегда это ошибка автора шаблона
			if a.Type == TypePicklist && a.Required && len(a.Options) == 0 {
				issues = append(issues, TemplateIssue{
					Section: secRef, Attribute: attrRef,
					Code:    "picklist_options_empty",
					Message: fmt.Sprintf("required picklist %s has no options and will accept any string", attrRef),
				})
			}
		}
	}
	return issues
}
