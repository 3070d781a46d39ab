package pets_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"pet-adoption/internal/adapters/storage/memory"
	"pet-adoption/internal/domain/events"
	"pet-adoption/internal/domain/pets"
	"pet-adoption/internal/platform/apierr"
	"pet-adoption/internal/platform/metrics"
	"pet-adoption/internal/ports/auth"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin = auth.Actor{ID: "admin-1", Role: auth.RoleAdmin}
	user  = auth.Actor{ID: "user-1", Role: auth.RoleUser}
)

type fakePhotos struct {
	mu   sync.Mutex
	keys []string
	ct   []string
	err  error
}

func (f *fakePhotos) Put(_ context.Context, key, contentType string, body io.Reader, _ int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if _, err := io.ReadAll(body); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, key)
	f.ct = append(f.ct, contentType)
	return "/uploads/" + key, nil
}

type fixture struct {
	svc     *pets.Service
	events  *events.Service
	photos  *fakePhotos
	metrics *metrics.Metrics
}

func newFixture() *fixture {
	f := &fixture{
		events:  events.NewService(memory.NewEventRepo()),
		photos:  &fakePhotos{},
		metrics: metrics.New(),
	}
	f.svc = pets.NewService(memory.NewPetRepo(), pets.Deps{
		Photos:  f.photos,
		Events:  f.events,
		Metrics: f.metrics,
	})
	return f
}

func validPet() pets.CreateInput {
	return pets.CreateInput{
		Name:        "  Milo ",
		Species:     pets.SpeciesDog,
		Breed:       "Beagle",
		Age:         3,
		Gender:      pets.GenderMale,
		Size:        pets.SizeMedium,
		Description: "Friendly and calm",
		AdoptionFee: 50,
		Location:    "Springfield",
	}
}

func (f *fixture) eventTypes(t *testing.T, petID string) []events.EventType {
	t.Helper()
	list, err := f.events.ListByPet(context.Background(), admin, petID, events.ListFilter{})
	require.NoError(t, err)
	out := make([]events.EventType, 0, len(list))
	for _, e := range list {
		out = append(out, e.Type)
	}
	return out
}

func TestCreate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p, err := f.svc.Create(ctx, admin, validPet())
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Milo", p.Name)
	assert.Equal(t, pets.StatusAvailable, p.Status)
	assert.Equal(t, admin.ID, p.AddedBy)
	assert.Empty(t, p.Photos)
	assert.Equal(t, []events.EventType{events.EventTypePetCreated}, f.eventTypes(t, p.ID))

	_, err = f.svc.Create(ctx, user, validPet())
	assert.ErrorIs(t, err, pets.ErrForbidden)
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture()

	in := validPet()
	in.Name = ""
	in.Age = -1
	in.Species = "Dragon"
	in.Description = strings.Repeat("x", 1001)

	_, err := f.svc.Create(context.Background(), admin, in)
	require.Error(t, err)

	ae, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, apierr.KindValidation, ae.Kind)

	fields := map[string]string{}
	for _, fe := range ae.Fields {
		fields[fe.Field] = fe.Message
	}
	assert.Equal(t, "Please provide pet name", fields["name"])
	assert.Equal(t, "Age cannot be negative", fields["age"])
	assert.Equal(t, "Please specify species", fields["species"])
	assert.Equal(t, "Description cannot be more than 1000 characters", fields["description"])
}

func TestUpdate_PartialAndOverride(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p, err := f.svc.Create(ctx, admin, validPet())
	require.NoError(t, err)

	age := 4
	adopted := pets.StatusAdopted
	got, err := f.svc.Update(ctx, admin, p.ID, pets.UpdateInput{Age: &age, Status: &adopted})
	require.NoError(t, err)
	assert.Equal(t, 4, got.Age)
	assert.Equal(t, "Milo", got.Name)
	assert.Equal(t, pets.StatusAdopted, got.Status)

	assert.ElementsMatch(t,
		[]events.EventType{events.EventTypePetCreated, events.EventTypePetUpdated, events.EventTypePetStatusOverridden},
		f.eventTypes(t, p.ID))
	want := `
# HELP adoption_pet_status_changes_total Pet status changes driven by the adoption workflow or admin overrides.
# TYPE adoption_pet_status_changes_total counter
adoption_pet_status_changes_total{source="admin",to="Adopted"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(f.metrics.Registry(), strings.NewReader(want), "adoption_pet_status_changes_total"))

	_, err = f.svc.Update(ctx, user, p.ID, pets.UpdateInput{Age: &age})
	assert.ErrorIs(t, err, pets.ErrForbidden)

	_, err = f.svc.Update(ctx, admin, "missing", pets.UpdateInput{Age: &age})
	assert.ErrorIs(t, err, pets.ErrNotFound)
}

func TestSetStatus(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p, err := f.svc.Create(ctx, admin, validPet())
	require.NoError(t, err)

	got, err := f.svc.SetStatus(ctx, admin, p.ID, pets.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, pets.StatusPending, got.Status)

	stored, err := f.svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, pets.StatusPending, stored.Status)

	_, err = f.svc.SetStatus(ctx, admin, p.ID, "Lost")
	assert.ErrorIs(t, err, pets.ErrInvalidStatus)

	_, err = f.svc.SetStatus(ctx, user, p.ID, pets.StatusAdopted)
	assert.ErrorIs(t, err, pets.ErrForbidden)

	// Mismo estado: no hay override que registrar.
	_, err = f.svc.SetStatus(ctx, admin, p.ID, pets.StatusPending)
	require.NoError(t, err)

	n := 0
	for _, typ := range f.eventTypes(t, p.ID) {
		if typ == events.EventTypePetStatusOverridden {
			n++
		}
	}
	assert.Equal(t, 1, n)
}

func TestDelete(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p, err := f.svc.Create(ctx, admin, validPet())
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Delete(ctx, user, p.ID), pets.ErrForbidden)
	require.NoError(t, f.svc.Delete(ctx, admin, p.ID))

	_, err = f.svc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, pets.ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, admin, p.ID), pets.ErrNotFound)
}

func TestAddPhotos(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p, err := f.svc.Create(ctx, admin, validPet())
	require.NoError(t, err)

	upload := func(name, ct string) pets.PhotoUpload {
		return pets.PhotoUpload{Filename: name, ContentType: ct, Size: 3, Body: strings.NewReader("img")}
	}

	got, err := f.svc.AddPhotos(ctx, admin, p.ID, []pets.PhotoUpload{
		upload("a.PNG", "application/octet-stream"),
		upload("b.jpg", "image/jpeg"),
	})
	require.NoError(t, err)
	require.Len(t, got.Photos, 2)
	assert.True(t, strings.HasPrefix(got.Photos[0], "/uploads/pets/"+p.ID+"/"))
	assert.True(t, strings.HasSuffix(got.Photos[0], ".png"))
	assert.Equal(t, []string{"image/png", "image/jpeg"}, f.photos.ct)

	// Se agregan, no reemplazan.
	got, err = f.svc.AddPhotos(ctx, admin, p.ID, []pets.PhotoUpload{upload("c.webp", "image/webp")})
	require.NoError(t, err)
	assert.Len(t, got.Photos, 3)
	assert.Contains(t, f.eventTypes(t, p.ID), events.EventTypePhotosAdded)
}

func TestAddPhotos_Rejections(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p, err := f.svc.Create(ctx, admin, validPet())
	require.NoError(t, err)

	ok := pets.PhotoUpload{Filename: "a.png", Size: 10, Body: strings.NewReader("x")}
	tooMany := make([]pets.PhotoUpload, pets.MaxPhotosPerUpload+1)
	for i := range tooMany {
		tooMany[i] = ok
	}

	cases := []struct {
		name  string
		actor auth.Actor
		files []pets.PhotoUpload
		want  error
	}{
		{"forbidden", user, []pets.PhotoUpload{ok}, pets.ErrForbidden},
		{"empty", admin, nil, pets.ErrNoPhotos},
		{"too many", admin, tooMany, pets.ErrTooManyPhotos},
		{"bad type", admin, []pets.PhotoUpload{{Filename: "doc.pdf", Size: 1, Body: strings.NewReader("x")}}, pets.ErrPhotoInvalidType},
		{"too large", admin, []pets.PhotoUpload{{Filename: "big.jpg", Size: pets.MaxPhotoBytes + 1, Body: strings.NewReader("x")}}, pets.ErrPhotoTooLarge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.AddPhotos(ctx, tc.actor, p.ID, tc.files)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	f.photos.err = errors.New("bucket down")
	_, err = f.svc.AddPhotos(ctx, admin, p.ID, []pets.PhotoUpload{ok})
	assert.EqualError(t, err, "bucket down")
}

func TestListStatsAndFilterOptions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	mk := func(name string, species pets.Species, breed string, status pets.Status) {
		in := validPet()
		in.Name = name
		in.Species = species
		in.Breed = breed
		in.Status = status
		_, err := f.svc.Create(ctx, admin, in)
		require.NoError(t, err)
	}
	mk("Milo", pets.SpeciesDog, "Beagle", pets.StatusAvailable)
	mk("Luna", pets.SpeciesCat, "Siamese", pets.StatusAvailable)
	mk("Rex", pets.SpeciesDog, "Boxer", pets.StatusAdopted)

	items, total, err := f.svc.List(ctx, pets.ListFilter{Statuses: []pets.Status{pets.StatusAvailable}, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, items, 1)

	st, err := f.svc.Stats(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, map[string]int{"Available": 2, "Pending": 0, "Adopted": 1}, st.ByStatus)
	assert.Equal(t, 2, st.BySpecies["Dog"])

	_, err = f.svc.Stats(ctx, user)
	assert.ErrorIs(t, err, pets.ErrForbidden)

	opts, err := f.svc.FilterOptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cat", "Dog"}, opts.Species)
	assert.Equal(t, []string{"Beagle", "Boxer", "Siamese"}, opts.Breeds)
	assert.Equal(t, []string{"Springfield"}, opts.Locations)
}
