package services

import "errors"

// Fehler-Taxonomie der Schreib- und Lesepfade. Handler bilden sie auf
// HTTP-Statuscodes ab, Services geben sie unverändert nach oben.
var (
	// ErrNotFound: referenzierte ID existiert nicht.
	ErrNotFound = errors.New("record not found")

	// ErrConflict: eine Uniqueness-Invariante wurde verletzt (z.B.
	// source+external_id oder startup+investor). Nicht retrybar.
	ErrConflict = errors.New("uniqueness conflict")

	// ErrConcurrency: die Serialisierung pro startup_id konnte nicht
	// rechtzeitig greifen. Der komplette Insert ist gefahrlos wiederholbar.
	ErrConcurrency = errors.New("concurrent score write timed out")

	// ErrScoringUnavailable: der externe ML-Service hat nicht geantwortet.
	// Es wurde kein partieller Score persistiert.
	ErrScoringUnavailable = errors.New("scoring unavailable")
)
