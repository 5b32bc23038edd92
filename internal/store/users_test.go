package store

import (
	"context"
	"testing"

	"github.com/tilestock/tilestock/internal/db"
	"github.com/tilestock/tilestock/internal/model"
)

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, "ayse", "hash", model.RoleUser)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Username != "ayse" || user.Role != model.RoleUser {
		t.Errorf("unexpected user: %+v", user)
	}

	byName, err := GetUserByUsername(ctx, database, "ayse")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if byName == nil || byName.ID != user.ID {
		t.Errorf("expected lookup by username to match, got %+v", byName)
	}
}

func TestDuplicateActiveUsernameRejected(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateUser(ctx, database, "ayse", "hash", model.RoleUser); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := CreateUser(ctx, database, "ayse", "hash", model.RoleUser); err == nil {
		t.Error("expected duplicate active username to be rejected")
	}
}

func TestSoftDeletedUsernameReusable(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "ayse", "hash", model.RoleUser)
	if err := DeleteUser(ctx, database, user.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	if _, err := CreateUser(ctx, database, "ayse", "hash2", model.RoleUser); err != nil {
		t.Errorf("expected soft-deleted username to be reusable: %v", err)
	}

	if u, _ := GetUserByUsername(ctx, database, "ayse"); u == nil || u.PasswordHash != "hash2" {
		t.Errorf("expected the new account to be active, got %+v", u)
	}
}

func TestUpdateUserPassword(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "admin", "old", model.RoleAdmin)
	if err := UpdateUserPassword(ctx, database, user.ID, "new"); err != nil {
		t.Fatalf("UpdateUserPassword: %v", err)
	}

	got, _ := GetUser(ctx, database, user.ID)
	if got.PasswordHash != "new" {
		t.Errorf("expected updated hash, got %q", got.PasswordHash)
	}
}

func TestListUsersSkipsDeleted(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateUser(ctx, database, "a", "hash", model.RoleUser)
	b, _ := CreateUser(ctx, database, "b", "hash", model.RoleUser)
	DeleteUser(ctx, database, b.ID)

	users, err := ListUsers(ctx, database)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 1 || users[0].Username != "a" {
		t.Errorf("expected only active users, got %+v", users)
	}
}
