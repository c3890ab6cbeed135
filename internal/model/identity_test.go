package model

import "testing"

func TestIdentity_ZeroValue_IsUnauthenticated(t *testing.T) {
	var id Identity

	if id.IsAuthenticated() {
		t.Error("zero value should be unauthenticated")
	}
	if id != Unauthenticated() {
		t.Error("zero value should equal Unauthenticated()")
	}
	if _, ok := id.UserID(); ok {
		t.Error("UserID() should report false for unauthenticated identity")
	}
	if id.Kind() != "" {
		t.Errorf("Kind() = %q, want empty", id.Kind())
	}
}

func TestIdentity_Authenticated_CarriesIDAndKind(t *testing.T) {
	id := Authenticated(7, PrincipalTutor)

	if !id.IsAuthenticated() {
		t.Fatal("expected authenticated identity")
	}
	userID, ok := id.UserID()
	if !ok || userID != 7 {
		t.Errorf("UserID() = (%d, %v), want (7, true)", userID, ok)
	}
	if id.Kind() != PrincipalTutor {
		t.Errorf("Kind() = %q, want %q", id.Kind(), PrincipalTutor)
	}
	if id.String() != "Tutor:7" {
		t.Errorf("String() = %q, want %q", id.String(), "Tutor:7")
	}
}

func TestIdentity_Equality(t *testing.T) {
	if Authenticated(1, PrincipalTutor) != Authenticated(1, PrincipalTutor) {
		t.Error("identities with same id and kind should be equal")
	}
	if Authenticated(1, PrincipalTutor) == Authenticated(2, PrincipalTutor) {
		t.Error("identities with different ids should differ")
	}
	if Authenticated(1, PrincipalTutor) == Authenticated(1, PrincipalKind("Admin")) {
		t.Error("identities with different kinds should differ")
	}
}

func TestTutor_Profile_OmitsPasswordHash(t *testing.T) {
	tutor := &Tutor{ID: 3, Name: "Jane Smith", Email: "jane@example.com", PasswordHash: "hash"}

	p := tutor.Profile()
	if p.ID != 3 || p.Name != "Jane Smith" || p.Email != "jane@example.com" {
		t.Errorf("Profile() = %+v", p)
	}
}

func TestAPIError_Error_ContainsCodeAndMessage(t *testing.T) {
	err := NewEmailTakenError()
	if err.Error() != "[EMAIL_TAKEN] "+MessageEmailTaken {
		t.Errorf("Error() = %q", err.Error())
	}
}
