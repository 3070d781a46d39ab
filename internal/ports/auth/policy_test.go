package auth

import "testing"

func TestParseRole(t *testing.T) {
	if r, ok := ParseRole(" Admin "); !ok || r != RoleAdmin {
		t.Fatalf("expected admin, got %q %v", r, ok)
	}
	if _, ok := ParseRole("root"); ok {
		t.Fatalf("unknown roles must be rejected")
	}
}

func TestActor_Can(t *testing.T) {
	user := Actor{ID: "u-1", Role: RoleUser}
	admin := Actor{ID: "a-1", Role: RoleAdmin}
	anon := Actor{Role: RoleAdmin}

	if !user.Can(ActionApplicationSubmit) {
		t.Fatalf("users can submit applications")
	}
	if user.Can(ActionApplicationReview) || user.Can(ActionPetCreate) {
		t.Fatalf("users cannot review or create pets")
	}
	if !admin.Can(ActionApplicationReview) || !admin.Can(ActionPetDelete) {
		t.Fatalf("admins can review and delete pets")
	}
	if anon.Can(ActionPetCreate) {
		t.Fatalf("actor without id is never allowed")
	}
}

func TestActor_CanOnOwned(t *testing.T) {
	user := Actor{ID: "u-1", Role: RoleUser}
	admin := Actor{ID: "a-1", Role: RoleAdmin}

	if !user.CanOnOwned(ActionApplicationViewAny, "u-1") {
		t.Fatalf("owner can act on own resource")
	}
	if user.CanOnOwned(ActionApplicationViewAny, "u-2") {
		t.Fatalf("non-owner user cannot act on others")
	}
	if !admin.CanOnOwned(ActionApplicationDeleteAny, "u-2") {
		t.Fatalf("admin can act on any resource")
	}
	if user.CanOnOwned(ActionApplicationViewAny, "") {
		t.Fatalf("empty owner must not match")
	}
}
