package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/recruit/go/internal/geo"
)

// Athlete is a registered player. Registration and profile edits happen
// elsewhere; this service only reads athletes.
type Athlete struct {
	ID             uuid.UUID        `json:"id"`
	Username       string           `json:"username"`
	FirstName      string           `json:"first_name"`
	LastName       string           `json:"last_name"`
	PrimarySport   string           `json:"primary_sport"`
	SecondarySport *string          `json:"secondary_sport,omitempty"`
	Rank           int              `json:"rank"`
	Classification string           `json:"classification"`
	Location       *geo.Coordinates `json:"location,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// PlaysSport reports whether sport is the athlete's primary or secondary sport.
func (a Athlete) PlaysSport(sport string) bool {
	if a.PrimarySport == sport {
		return true
	}
	return a.SecondarySport != nil && *a.SecondarySport == sport
}

// Candidate is a free agent returned by discovery together with its exact
// distance from the search origin.
type Candidate struct {
	Athlete    Athlete `json:"athlete"`
	DistanceKm float64 `json:"distance_km"`
}

// CandidateFilter is the storage-side pre-filter used by discovery.
type CandidateFilter struct {
	Box    geo.Box
	Sport  string
	Search string
	// SearchWidens ORs the search condition with the sport condition instead of ANDing it.
	SearchWidens bool
	Limit        int
}

// MatchesSearch reports a case-insensitive substring match of search against
// the username, first name or last name. An empty search matches everyone.
func (a Athlete) MatchesSearch(search string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(a.Username), needle) ||
		strings.Contains(strings.ToLower(a.FirstName), needle) ||
		strings.Contains(strings.ToLower(a.LastName), needle)
}

// Matches applies the sport and search conditions of the filter to a.
// The bounding box and free-agent checks are the store's job.
func (f CandidateFilter) Matches(a Athlete) bool {
	sportOK := f.Sport != "" && a.PlaysSport(f.Sport)
	searchOK := f.Search != "" && a.MatchesSearch(f.Search)

	switch {
	case f.Sport == "" && f.Search == "":
		return true
	case f.Sport == "":
		return searchOK
	case f.Search == "":
		return sportOK
	case f.SearchWidens:
		return sportOK || searchOK
	default:
		return sportOK && searchOK
	}
}
