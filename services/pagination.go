package services

// PageRequest ist die 1-basierte Seitenanfrage. Limit wird auf 1-100
// begrenzt, Default 20.
type PageRequest struct {
	Page  int `json:"page" form:"page"`
	Limit int `json:"limit" form:"limit"`
}

// Clamp normalisiert Seite und Limit auf die erlaubten Bereiche.
func (p *PageRequest) Clamp() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
}

// Offset ist der Skip-Wert für die Datenbankabfrage.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// TotalPages ist ceil(total/limit). Eine Seite jenseits des Bereichs liefert
// eine leere Ergebnismenge, keinen Fehler.
func TotalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
