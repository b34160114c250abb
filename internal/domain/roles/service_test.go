package roles

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/healthpass/healthpass/internal/domain/profile"
)

type mockRepo struct {
	assignments map[uuid.UUID]map[string]*UserRole
}

func newMockRepo() *mockRepo {
	return &mockRepo{assignments: make(map[uuid.UUID]map[string]*UserRole)}
}

func (m *mockRepo) Add(ctx context.Context, userID uuid.UUID, role string) (*UserRole, error) {
	if m.assignments[userID] == nil {
		m.assignments[userID] = make(map[string]*UserRole)
	}
	if _, exists := m.assignments[userID][role]; exists {
		return nil, ErrDuplicateRole
	}
	ur := &UserRole{ID: uuid.New(), UserID: userID, Role: role}
	m.assignments[userID][role] = ur
	return ur, nil
}

func (m *mockRepo) Remove(ctx context.Context, userID uuid.UUID, role string) error {
	delete(m.assignments[userID], role)
	return nil
}

func (m *mockRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*UserRole, error) {
	var items []*UserRole
	for _, ur := range m.assignments[userID] {
		items = append(items, ur)
	}
	return items, nil
}

func (m *mockRepo) ListAll(ctx context.Context) ([]*UserRole, error) {
	var items []*UserRole
	for _, byRole := range m.assignments {
		for _, ur := range byRole {
			items = append(items, ur)
		}
	}
	return items, nil
}

type mockProfileLister struct {
	profiles []*profile.Profile
}

func (m *mockProfileLister) List(ctx context.Context, limit, offset int) ([]*profile.Profile, int, error) {
	return m.profiles, len(m.profiles), nil
}

func TestAddRole_DuplicateConflicts(t *testing.T) {
	svc := NewService(newMockRepo(), &mockProfileLister{})
	userID := uuid.New()

	if _, err := svc.AddRole(context.Background(), userID, RoleDoctor); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.AddRole(context.Background(), userID, RoleDoctor); !errors.Is(err, ErrDuplicateRole) {
		t.Errorf("expected ErrDuplicateRole, got %v", err)
	}

	roles, _ := svc.ListByUser(context.Background(), userID)
	if len(roles) != 1 {
		t.Errorf("expected exactly one assignment, got %d", len(roles))
	}
}

func TestAddRole_Validation(t *testing.T) {
	svc := NewService(newMockRepo(), &mockProfileLister{})

	if _, err := svc.AddRole(context.Background(), uuid.Nil, RoleDoctor); err == nil {
		t.Error("expected error for missing user id")
	}
	if _, err := svc.AddRole(context.Background(), uuid.New(), "superuser"); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestRemoveRole_AbsentIsNoOp(t *testing.T) {
	svc := NewService(newMockRepo(), &mockProfileLister{})

	if err := svc.RemoveRole(context.Background(), uuid.New(), RolePharmacist); err != nil {
		t.Errorf("removing an unheld role must succeed, got %v", err)
	}
}

func TestAddRemoveRole_RoundTrip(t *testing.T) {
	svc := NewService(newMockRepo(), &mockProfileLister{})
	userID := uuid.New()

	if _, err := svc.AddRole(context.Background(), userID, RolePatient); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.RemoveRole(context.Background(), userID, RolePatient); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.AddRole(context.Background(), userID, RolePatient); err != nil {
		t.Errorf("expected re-add after removal to succeed, got %v", err)
	}
}

func TestListUsersWithRoles(t *testing.T) {
	repo := newMockRepo()
	doctor := &profile.Profile{ID: uuid.New(), FirstName: "Greg", LastName: "House"}
	patient := &profile.Profile{ID: uuid.New(), FirstName: "Jane", LastName: "Doe"}
	lister := &mockProfileLister{profiles: []*profile.Profile{doctor, patient}}
	svc := NewService(repo, lister)

	svc.AddRole(context.Background(), doctor.ID, RoleDoctor)
	svc.AddRole(context.Background(), doctor.ID, RoleAdmin)
	svc.AddRole(context.Background(), patient.ID, RolePatient)

	items, total, err := svc.ListUsersWithRoles(context.Background(), 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 users, got %d", total)
	}

	byID := make(map[uuid.UUID]*UserWithRoles)
	for _, item := range items {
		byID[item.Profile.ID] = item
	}
	if len(byID[doctor.ID].Roles) != 2 {
		t.Errorf("expected 2 roles for doctor, got %v", byID[doctor.ID].Roles)
	}
	if len(byID[patient.ID].Roles) != 1 {
		t.Errorf("expected 1 role for patient, got %v", byID[patient.ID].Roles)
	}
}
