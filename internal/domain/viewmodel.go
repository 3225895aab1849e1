package domain

// Field is one labeled value on a rendered card.
type Field struct {
	Label  string `json:"label"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// ViewModel is the normalized, display-ready representation of a snapshot.
// It is produced fresh on every normalization and never mutated; the
// presentation layer owns its rendering. For a given provider the field
// count and label set are stable across refreshes so card layouts do not
// jump around.
type ViewModel struct {
	Title          string  `json:"title"`
	LinkURL        string  `json:"link_url,omitempty"`
	ThumbnailURL   string  `json:"thumbnail_url,omitempty"`
	Fields         []Field `json:"fields"`
	FooterText     string  `json:"footer_text"`
	SourceProvider string  `json:"source_provider"`
}
