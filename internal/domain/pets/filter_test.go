package pets

import (
	"net/url"
	"testing"

	"pet-adoption/internal/ports/auth"
)

func TestBuildFilter_DefaultsToAvailable(t *testing.T) {
	q := url.Values{"search": {" lab "}, "minAge": {"2"}, "maxAge": {"x"}}
	f := BuildFilter(q, auth.Actor{})

	if f.Search != "lab" {
		t.Fatalf("search not trimmed: %q", f.Search)
	}
	if f.MinAge == nil || *f.MinAge != 2 || f.MaxAge != nil {
		t.Fatalf("unexpected ages %v %v", f.MinAge, f.MaxAge)
	}
	if len(f.Statuses) != 1 || f.Statuses[0] != StatusAvailable {
		t.Fatalf("expected Available-only, got %v", f.Statuses)
	}
}

func TestBuildFilter_AdminViewOnlyForAdmins(t *testing.T) {
	q := url.Values{"adminView": {"true"}}

	user := BuildFilter(q, auth.Actor{ID: "u-1", Role: auth.RoleUser})
	if len(user.Statuses) != 1 || user.Statuses[0] != StatusAvailable {
		t.Fatalf("non-admin adminView must be ignored, got %v", user.Statuses)
	}

	admin := BuildFilter(q, auth.Actor{ID: "a-1", Role: auth.RoleAdmin})
	if len(admin.Statuses) != 0 {
		t.Fatalf("admin adminView lists every status, got %v", admin.Statuses)
	}
}

func TestBuildFilter_ExplicitStatusWins(t *testing.T) {
	f := BuildFilter(url.Values{"status": {"Adopted"}}, auth.Actor{})
	if len(f.Statuses) != 1 || f.Statuses[0] != StatusAdopted {
		t.Fatalf("expected Adopted, got %v", f.Statuses)
	}
}

func TestListFilter_Matches(t *testing.T) {
	two, five := 2, 5
	p := Pet{Name: "Milo", Breed: "Labrador", Species: SpeciesDog, Gender: GenderMale, Size: SizeLarge, Age: 3, Status: StatusAvailable}

	cases := []struct {
		name string
		f    ListFilter
		want bool
	}{
		{"empty", ListFilter{}, true},
		{"search by breed", ListFilter{Search: "LABR"}, true},
		{"search by name", ListFilter{Search: "mil"}, true},
		{"search miss", ListFilter{Search: "poodle"}, false},
		{"species", ListFilter{Species: SpeciesCat}, false},
		{"age range", ListFilter{MinAge: &two, MaxAge: &five}, true},
		{"age below", ListFilter{MinAge: &five}, false},
		{"status", ListFilter{Statuses: []Status{StatusPending, StatusAdopted}}, false},
		{"size+gender", ListFilter{Size: SizeLarge, Gender: GenderMale}, true},
	}
	for _, c := range cases {
		if got := c.f.Matches(p); got != c.want {
			t.Fatalf("%s: got %v want %v", c.name, got, c.want)
		}
	}
}
