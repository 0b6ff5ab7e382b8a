package services

import (
	"context"
	"errors"
	"testing"

	"github.com/akapustin/itemhub/internal/common"
	"github.com/akapustin/itemhub/internal/server/models"
)

type fakeItemsRepo struct {
	byID map[string]*models.Item

	created *models.Item

	listCalled        bool
	listByOwnerCalled bool
	listOwnerID       string

	updated *models.Item

	deletedID string
	deleteErr error
}

func (f *fakeItemsRepo) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	f.created = item
	return item, nil
}

func (f *fakeItemsRepo) GetByID(ctx context.Context, id string) (*models.Item, error) {
	if it, ok := f.byID[id]; ok {
		cp := *it
		return &cp, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeItemsRepo) List(ctx context.Context, offset, limit int) ([]*models.Item, error) {
	f.listCalled = true
	var out []*models.Item
	for _, it := range f.byID {
		out = append(out, it)
	}
	return out, nil
}

func (f *fakeItemsRepo) ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]*models.Item, error) {
	f.listByOwnerCalled = true
	f.listOwnerID = ownerID
	var out []*models.Item
	for _, it := range f.byID {
		if it.OwnerID == ownerID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeItemsRepo) Update(ctx context.Context, item *models.Item) (*models.Item, error) {
	f.updated = item
	return item, nil
}

func (f *fakeItemsRepo) Delete(ctx context.Context, id string) error {
	f.deletedID = id
	return f.deleteErr
}

var (
	owner     = &models.User{ID: "u-owner", IsActive: true}
	stranger  = &models.User{ID: "u-other", IsActive: true}
	superuser = &models.User{ID: "u-admin", IsActive: true, IsSuperuser: true}
)

func TestCanAccessItem(t *testing.T) {
	item := &models.Item{ID: "i-1", OwnerID: "u-owner"}

	tests := []struct {
		name      string
		principal *models.User
		want      bool
	}{
		{"owner", owner, true},
		{"stranger", stranger, false},
		{"superuser", superuser, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanAccessItem(tt.principal, item); got != tt.want {
				t.Fatalf("CanAccessItem(%s) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestItemCreate_SetsOwnerAndID(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	repo := &fakeItemsRepo{}
	s := NewItemService(db, &fakeRepoManager{i: repo})

	got, err := s.Create(context.Background(), owner, "Test Item", "a description")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID == "" {
		t.Fatal("expected generated id")
	}
	if got.OwnerID != owner.ID {
		t.Fatalf("owner mismatch: %q", got.OwnerID)
	}
}

func TestItemGet_ForbiddenForStranger(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	repo := &fakeItemsRepo{byID: map[string]*models.Item{"i-1": {ID: "i-1", OwnerID: "u-owner"}}}
	s := NewItemService(db, &fakeRepoManager{i: repo})

	_, err := s.Get(context.Background(), stranger, "i-1")
	if !errors.Is(err, common.ErrForbidden) {
		t.Fatalf("want ErrForbidden, got %v", err)
	}

	got, err := s.Get(context.Background(), superuser, "i-1")
	if err != nil {
		t.Fatalf("superuser must bypass ownership: %v", err)
	}
	if got.ID != "i-1" {
		t.Fatalf("unexpected item: %+v", got)
	}
}

func TestItemList_ScopedByRole(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	repo := &fakeItemsRepo{byID: map[string]*models.Item{
		"i-1": {ID: "i-1", OwnerID: "u-owner"},
		"i-2": {ID: "i-2", OwnerID: "u-other"},
	}}
	s := NewItemService(db, &fakeRepoManager{i: repo})

	mine, err := s.List(context.Background(), owner, 0, 100)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if !repo.listByOwnerCalled || repo.listOwnerID != "u-owner" {
		t.Fatal("non-superuser listing must filter by owner at the query level")
	}
	if len(mine) != 1 || mine[0].ID != "i-1" {
		t.Fatalf("unexpected result: %+v", mine)
	}

	all, err := s.List(context.Background(), superuser, 0, 100)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if !repo.listCalled {
		t.Fatal("superuser listing must use the unfiltered query")
	}
	if len(all) != 2 {
		t.Fatalf("superuser must see all items, got %d", len(all))
	}
}

func TestItemUpdate_PartialAndForbidden(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	repo := &fakeItemsRepo{byID: map[string]*models.Item{
		"i-1": {ID: "i-1", Title: "Old", Description: "keep me", OwnerID: "u-owner"},
	}}
	s := NewItemService(db, &fakeRepoManager{i: repo})

	newTitle := "New"
	got, err := s.Update(context.Background(), owner, "i-1", UpdateItemInput{Title: &newTitle})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if got.Title != "New" || got.Description != "keep me" {
		t.Fatalf("partial update wrong: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err = s.Update(context.Background(), stranger, "i-1", UpdateItemInput{Title: &newTitle})
	if !errors.Is(err, common.ErrForbidden) {
		t.Fatalf("want ErrForbidden, got %v", err)
	}
}

func TestItemDelete_OwnershipGate(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	repo := &fakeItemsRepo{byID: map[string]*models.Item{"i-1": {ID: "i-1", OwnerID: "u-owner"}}}
	s := NewItemService(db, &fakeRepoManager{i: repo})

	if err := s.Delete(context.Background(), stranger, "i-1"); !errors.Is(err, common.ErrForbidden) {
		t.Fatalf("want ErrForbidden, got %v", err)
	}

	if err := s.Delete(context.Background(), owner, "i-1"); err != nil {
		t.Fatalf("owner delete error: %v", err)
	}
	if repo.deletedID != "i-1" {
		t.Fatalf("repo not called: %q", repo.deletedID)
	}
}

func TestItemDelete_MissingItem(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	repo := &fakeItemsRepo{}
	s := NewItemService(db, &fakeRepoManager{i: repo})

	if err := s.Delete(context.Background(), owner, "ghost"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
