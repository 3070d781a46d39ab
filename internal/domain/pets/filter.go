package pets

import (
	"net/url"
	"strconv"
	"strings"

	"pet-adoption/internal/ports/auth"
)

// BuildFilter arma el predicado de listado desde los query params.
// Sin status explícito se listan solo Available, salvo que un admin pida adminView=true.
func BuildFilter(q url.Values, actor auth.Actor) ListFilter {
	f := ListFilter{
		Search:  strings.TrimSpace(q.Get("search")),
		Species: Species(strings.TrimSpace(q.Get("species"))),
		Breed:   strings.TrimSpace(q.Get("breed")),
		Gender:  Gender(strings.TrimSpace(q.Get("gender"))),
		Size:    Size(strings.TrimSpace(q.Get("size"))),
		MinAge:  parseAge(q.Get("minAge")),
		MaxAge:  parseAge(q.Get("maxAge")),
	}

	if s := Status(strings.TrimSpace(q.Get("status"))); s != "" {
		f.Statuses = []Status{s}
		return f
	}

	adminView := strings.EqualFold(strings.TrimSpace(q.Get("adminView")), "true")
	if adminView && actor.Can(auth.ActionPetListAllStatuses) {
		return f
	}
	f.Statuses = []Status{StatusAvailable}
	return f
}

func parseAge(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// Matches evalúa el predicado en memoria. Lo usa el store in-memory y
// sirve como referencia de la semántica que implementa el SQL.
func (f ListFilter) Matches(p Pet) bool {
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Breed), q) {
			return false
		}
	}
	if f.Species != "" && p.Species != f.Species {
		return false
	}
	if f.Breed != "" && !strings.Contains(strings.ToLower(p.Breed), strings.ToLower(f.Breed)) {
		return false
	}
	if f.Gender != "" && p.Gender != f.Gender {
		return false
	}
	if f.Size != "" && p.Size != f.Size {
		return false
	}
	if f.MinAge != nil && p.Age < *f.MinAge {
		return false
	}
	if f.MaxAge != nil && p.Age > *f.MaxAge {
		return false
	}
	if len(f.Statuses) > 0 {
		ok := false
		for _, s := range f.Statuses {
			if p.Status == s {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}
