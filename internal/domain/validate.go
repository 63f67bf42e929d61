package domain

import "strings"

const maxNameLen = 200

// Validate checks a MenuItem before any store write. It also normalizes
// defaults on portion sizes and choices: when more than one row in a set is
// flagged default, the first flagged row wins and the rest are cleared.
func (m *MenuItem) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return invalid("name", "must not be empty")
	}
	if len(m.Name) > maxNameLen {
		return invalid("name", "too long")
	}
	if m.Price < 0 {
		return invalid("price", "must not be negative")
	}
	if (m.ImageURL == nil) != (m.ImagePath == nil) {
		return invalid("image", "url and storage path must be set together")
	}
	for _, t := range m.DietaryTags {
		if !ValidDietaryTag(t) {
			return invalid("dietary_tags", "unknown tag "+string(t))
		}
	}
	for i := range m.Portions {
		p := &m.Portions[i]
		if strings.TrimSpace(p.Name) == "" {
			return invalid("portion_sizes", "portion name must not be empty")
		}
		if p.Price < 0 {
			return invalid("portion_sizes", "portion price must not be negative")
		}
	}
	normalizePortionDefaults(m.Portions)
	for i := range m.Options {
		o := &m.Options[i]
		if strings.TrimSpace(o.Name) == "" {
			return invalid("customization_options", "option name must not be empty")
		}
		if o.MaxSelections < 1 {
			return invalid("customization_options", "max_selections must be at least 1")
		}
		for _, c := range o.Choices {
			if strings.TrimSpace(c.Name) == "" {
				return invalid("customization_options", "choice name must not be empty")
			}
		}
		normalizeChoiceDefaults(o.Choices)
	}
	return nil
}

func (c *Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return invalid("name", "must not be empty")
	}
	if len(c.Name) > maxNameLen {
		return invalid("name", "too long")
	}
	return nil
}

func (p *UserPreferences) Validate() error {
	if strings.TrimSpace(p.UserID) == "" {
		return invalid("user_id", "must not be empty")
	}
	for _, t := range p.DietaryFilters {
		if !ValidDietaryTag(t) {
			return invalid("dietary_filters", "unknown tag "+string(t))
		}
	}
	return nil
}

// normalizePortionDefaults enforces at most one default: first flagged wins.
func normalizePortionDefaults(ps []PortionSize) {
	seen := false
	for i := range ps {
		if ps[i].IsDefault {
			if seen {
				ps[i].IsDefault = false
			}
			seen = true
		}
	}
}

func normalizeChoiceDefaults(cs []CustomizationChoice) {
	seen := false
	for i := range cs {
		if cs[i].IsDefault {
			if seen {
				cs[i].IsDefault = false
			}
			seen = true
		}
	}
}
