package httpresp

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"pet-adoption/internal/platform/apierr"
	"pet-adoption/internal/platform/logger"
)

func TestParsePage_Defaults(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x?page=abc&limit=-3", nil)
	p := ParsePage(r, 12)
	if p.Number != 1 || p.Limit != 12 || p.Skip() != 0 {
		t.Fatalf("unexpected page %+v", p)
	}

	r = httptest.NewRequest(http.MethodGet, "/x?page=3&limit=500", nil)
	p = ParsePage(r, 10)
	if p.Number != 3 || p.Limit != maxLimit || p.Skip() != 2*maxLimit {
		t.Fatalf("unexpected page %+v", p)
	}
}

func TestPage_SkipSaturates(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x?page=92233720368547758&limit=100", nil)
	p := ParsePage(r, 10)
	if p.Number != 92233720368547758 || p.Limit != 100 {
		t.Fatalf("unexpected page %+v", p)
	}
	if got := p.Skip(); got != math.MaxInt {
		t.Fatalf("Skip() = %d, want math.MaxInt", got)
	}

	cases := []struct {
		page Page
		want int
	}{
		{Page{Number: 0, Limit: 10}, 0},
		{Page{Number: 1, Limit: 10}, 0},
		{Page{Number: 4, Limit: 0}, 0},
		{Page{Number: math.MaxInt, Limit: 2}, math.MaxInt},
		{Page{Number: math.MaxInt/10 + 1, Limit: 10}, math.MaxInt/10*10},
		{Page{Number: math.MaxInt/10 + 2, Limit: 10}, math.MaxInt},
	}
	for _, tc := range cases {
		if got := tc.page.Skip(); got != tc.want {
			t.Fatalf("%+v.Skip() = %d, want %d", tc.page, got, tc.want)
		}
	}
}

func TestPaginated_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Paginated(rec, "ok", []string{"a", "b"}, Page{Number: 2, Limit: 2}, 5)

	var env struct {
		Success    bool       `json:"success"`
		Data       []string   `json:"data"`
		Pagination Pagination `json:"pagination"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !env.Success || len(env.Data) != 2 {
		t.Fatalf("unexpected envelope %s", rec.Body.String())
	}
	want := Pagination{Page: 2, Limit: 2, Total: 5, Pages: 3, Count: 2}
	if env.Pagination != want {
		t.Fatalf("pagination = %+v, want %+v", env.Pagination, want)
	}
}

func TestError_MapsKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{apierr.NotFound("Pet not found"), http.StatusNotFound, "Pet not found"},
		{fmt.Errorf("wrap: %w", apierr.Forbidden("nope")), http.StatusForbidden, "nope"},
		{apierr.Validation([]apierr.FieldError{{Field: "name", Message: "required"}}), http.StatusUnprocessableEntity, "Validation Error"},
		{errors.New("db down"), http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, c := range cases {
		rec := httptest.NewRecorder()
		Error(rec, logger.Nop(), c.err)

		if rec.Code != c.status {
			t.Fatalf("%v: status %d, want %d", c.err, rec.Code, c.status)
		}
		var env ErrorEnvelope
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
		if env.Success || env.Message != c.msg {
			t.Fatalf("%v: unexpected envelope %+v", c.err, env)
		}
	}
}
