package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// FounderProfile bündelt Bio und Social-Links.
type FounderProfile struct {
	Bio            string `json:"bio,omitempty"`
	LinkedinURL    string `json:"linkedin_url,omitempty"`
	TwitterURL     string `json:"twitter_url,omitempty"`
	GithubURL      string `json:"github_url,omitempty"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}

// Education ist eine Ausbildungsstation.
type Education struct {
	Institution  string `json:"institution"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"field_of_study"`
	StartYear    int    `json:"start_year"`
	EndYear      *int   `json:"end_year,omitempty"`
	IsGraduated  bool   `json:"is_graduated"`
}

// Experience ist eine berufliche Station. Laufende Stationen haben kein
// end_date; für Dauerberechnungen zählt dann die aktuelle Uhrzeit.
type Experience struct {
	Company      string     `json:"company"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	IsCurrent    bool       `json:"is_current"`
	Achievements []string   `json:"achievements"`
}

// FounderSkills fasst Fähigkeiten und Erfahrungstiefe zusammen.
type FounderSkills struct {
	TechnicalSkills      []string `json:"technical_skills"`
	DomainExpertise      []string `json:"domain_expertise"`
	LeadershipExperience bool     `json:"leadership_experience"`
	YearsOfExperience    float64  `json:"years_of_experience"`
}

// PreviousStartup ist eine frühere Gründung mit Ausgang.
type PreviousStartup struct {
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Outcome     string   `json:"outcome"`
	ExitValue   *float64 `json:"exit_value,omitempty"`
	Description string   `json:"description,omitempty"`
}

// FounderScore sind die sieben Teilscores der Gründerbewertung.
type FounderScore struct {
	OverallScore         float64   `json:"overall_score"`
	ExperienceScore      float64   `json:"experience_score"`
	EducationScore       float64   `json:"education_score"`
	TrackRecordScore     float64   `json:"track_record_score"`
	LeadershipScore      float64   `json:"leadership_score"`
	AdaptabilityScore    float64   `json:"adaptability_score"`
	DomainExpertiseScore float64   `json:"domain_expertise_score"`
	ScoredAt             time.Time `json:"scored_at"`
}

// RedFlag ist ein erkanntes Warnsignal am Gründerprofil.
type RedFlag struct {
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Severity    string    `json:"severity"`
	DetectedAt  time.Time `json:"detected_at"`
}

// Reference ist eine Referenzperson.
type Reference struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Contact      string `json:"contact,omitempty"`
	Verified     bool   `json:"verified"`
	Notes        string `json:"notes,omitempty"`
}

// Founder gehört zu genau einem Startup (per Referenz).
type Founder struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name      string `json:"name" gorm:"index;not null"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role" gorm:"index"`
	StartupID uint   `json:"startup_id" gorm:"index;not null"`

	Profile          FounderProfile    `json:"profile" gorm:"serializer:json"`
	Education        []Education       `json:"education" gorm:"serializer:json"`
	Experience       []Experience      `json:"experience" gorm:"serializer:json"`
	Skills           FounderSkills     `json:"skills" gorm:"serializer:json"`
	PreviousStartups []PreviousStartup `json:"previous_startups" gorm:"serializer:json"`

	Achievements []string `json:"achievements" gorm:"serializer:json"`
	Publications []string `json:"publications" gorm:"serializer:json"`
	Patents      []string `json:"patents" gorm:"serializer:json"`
	Awards       []string `json:"awards" gorm:"serializer:json"`

	FounderScore *FounderScore `json:"founder_score,omitempty" gorm:"serializer:json"`
	RedFlags     []RedFlag     `json:"red_flags" gorm:"serializer:json"`
	References   []Reference   `json:"references" gorm:"serializer:json"`

	LastSynced *time.Time `json:"last_synced,omitempty"`
}

// TableName gibt explizit den Tabellennamen an.
func (Founder) TableName() string {
	return "founders"
}

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Validate prüft jedes Feld einzeln gegen seine Regel.
func (f *Founder) Validate() error {
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		return invalid("name", "Founder name is required")
	}
	if f.Email != "" {
		f.Email = strings.ToLower(strings.TrimSpace(f.Email))
		if !emailPattern.MatchString(f.Email) {
			return invalid("email", "Please provide a valid email")
		}
	}
	if !isOneOf(f.Role, FounderRoles) {
		return invalid("role", "Founder role is required and must be one of the known roles")
	}
	if f.StartupID == 0 {
		return invalid("startup_id", "Startup ID is required")
	}
	if len(f.Profile.Bio) > 2000 {
		return invalid("profile.bio", "Bio cannot exceed 2000 characters")
	}
	currentYear := time.Now().Year()
	for _, e := range f.Education {
		if strings.TrimSpace(e.Institution) == "" {
			return invalid("education.institution", "Institution is required")
		}
		if !isOneOf(e.Degree, Degrees) {
			return invalid("education.degree", fmt.Sprintf("%q is not a valid degree", e.Degree))
		}
		if strings.TrimSpace(e.FieldOfStudy) == "" {
			return invalid("education.field_of_study", "Field of study is required")
		}
		if e.StartYear < 1950 || e.StartYear > currentYear {
			return invalid("education.start_year", "Start year must be between 1950 and the current year")
		}
		if e.EndYear != nil && (*e.EndYear < 1950 || *e.EndYear > currentYear+10) {
			return invalid("education.end_year", "End year is out of range")
		}
	}
	for _, e := range f.Experience {
		if strings.TrimSpace(e.Company) == "" {
			return invalid("experience.company", "Company is required")
		}
		if strings.TrimSpace(e.Title) == "" {
			return invalid("experience.title", "Title is required")
		}
		if len(e.Description) > 1000 {
			return invalid("experience.description", "Description cannot exceed 1000 characters")
		}
		if e.StartDate.IsZero() {
			return invalid("experience.start_date", "Start date is required")
		}
	}
	if f.Skills.YearsOfExperience < 0 {
		return invalid("skills.years_of_experience", "Years of experience cannot be negative")
	}
	for _, p := range f.PreviousStartups {
		if strings.TrimSpace(p.Name) == "" {
			return invalid("previous_startups.name", "Startup name is required")
		}
		if strings.TrimSpace(p.Role) == "" {
			return invalid("previous_startups.role", "Role is required")
		}
		if !isOneOf(p.Outcome, StartupOutcomes) {
			return invalid("previous_startups.outcome", fmt.Sprintf("%q is not a valid outcome", p.Outcome))
		}
		if p.ExitValue != nil && *p.ExitValue < 0 {
			return invalid("previous_startups.exit_value", "Exit value cannot be negative")
		}
	}
	if f.FounderScore != nil {
		scores := []float64{
			f.FounderScore.OverallScore, f.FounderScore.ExperienceScore,
			f.FounderScore.EducationScore, f.FounderScore.TrackRecordScore,
			f.FounderScore.LeadershipScore, f.FounderScore.AdaptabilityScore,
			f.FounderScore.DomainExpertiseScore,
		}
		for _, v := range scores {
			if v < 0 || v > 100 {
				return invalid("founder_score", "Founder sub-scores must be between 0 and 100")
			}
		}
	}
	for _, r := range f.RedFlags {
		if !isOneOf(r.Type, RedFlagTypes) {
			return invalid("red_flags.type", fmt.Sprintf("%q is not a valid red flag type", r.Type))
		}
		if r.Description == "" || len(r.Description) > 500 {
			return invalid("red_flags.description", "Red flag description is required and cannot exceed 500 characters")
		}
		if !isOneOf(r.Severity, Severities) {
			return invalid("red_flags.severity", fmt.Sprintf("%q is not a valid severity", r.Severity))
		}
	}
	for _, r := range f.References {
		if strings.TrimSpace(r.Name) == "" {
			return invalid("references.name", "Reference name is required")
		}
		if strings.TrimSpace(r.Relationship) == "" {
			return invalid("references.relationship", "Relationship is required")
		}
		if len(r.Notes) > 1000 {
			return invalid("references.notes", "Reference notes cannot exceed 1000 characters")
		}
	}
	return nil
}

const hoursPerYear = 365.25 * 24

// TotalExperienceYears summiert die Dauer aller Stationen. Offene Stationen
// laufen bis now, der Wert ist damit zeitabhängig.
func (f *Founder) TotalExperienceYears(now time.Time) float64 {
	var total float64
	for _, e := range f.Experience {
		end := now
		if e.EndDate != nil {
			end = *e.EndDate
		}
		if end.Before(e.StartDate) {
			continue
		}
		total += end.Sub(e.StartDate).Hours() / hoursPerYear
	}
	return total
}

// SuccessfulExitsCount zählt frühere Gründungen mit Ausgang exit oder acquired.
func (f *Founder) SuccessfulExitsCount() int {
	count := 0
	for _, p := range f.PreviousStartups {
		if p.Outcome == "exit" || p.Outcome == "acquired" {
			count++
		}
	}
	return count
}

// HasCriticalRedFlags meldet, ob mindestens ein Red Flag mit Severity "high" existiert.
func (f *Founder) HasCriticalRedFlags() bool {
	for _, r := range f.RedFlags {
		if r.Severity == "high" {
			return true
		}
	}
	return false
}

// FounderView ist die Serialisierungsform inklusive abgeleiteter Felder.
type FounderView struct {
	Founder
	TotalExperienceYears float64 `json:"total_experience_years"`
	SuccessfulExitsCount int     `json:"successful_exits_count"`
	HasCriticalRedFlags  bool    `json:"has_critical_red_flags"`
}

// NewFounderView berechnet die abgeleiteten Felder zum Zeitpunkt now.
func NewFounderView(f Founder, now time.Time) FounderView {
	return FounderView{
		Founder:              f,
		TotalExperienceYears: f.TotalExperienceYears(now),
		SuccessfulExitsCount: f.SuccessfulExitsCount(),
		HasCriticalRedFlags:  f.HasCriticalRedFlags(),
	}
}
