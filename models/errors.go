package models

// ValidationError beschreibt genau ein Feld, das seine Regel verletzt.
// Der Aufrufer kann die Anfrage korrigiert erneut senden.
type ValidationError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

func (e *ValidationError) Error() string {
	return e.Rule
}

func invalid(field, rule string) *ValidationError {
	return &ValidationError{Field: field, Rule: rule}
}
