package ember

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

type userModel struct {
	ID    int64  `db:"id"`
	Name  string `db:"name"`
	Email string `db:"email"`
}

func testRepository(t *testing.T) *Repository {
	t.Helper()

	db, err := NewDB("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE users (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL
	)`)
	if err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}

	return NewRepository(db, "users")
}

func TestRepositorySaveAndFindByID(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	user := &userModel{ID: 1, Name: "Ada", Email: "ada@example.com"}
	if err := repo.Save(ctx, user); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	var loaded userModel
	if err := repo.FindByID(ctx, int64(1), &loaded); err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if loaded.Name != "Ada" || loaded.Email != "ada@example.com" {
		t.Errorf("Unexpected row: %+v", loaded)
	}
}

func TestRepositoryFindByIDMissing(t *testing.T) {
	repo := testRepository(t)

	var loaded userModel
	err := repo.FindByID(context.Background(), int64(99), &loaded)
	if err != sql.ErrNoRows {
		t.Fatalf("Expected sql.ErrNoRows, got %v", err)
	}
}

func TestRepositoryFindAll(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	models := []interface{}{
		&userModel{ID: 1, Name: "Ada", Email: "ada@example.com"},
		&userModel{ID: 2, Name: "Grace", Email: "grace@example.com"},
		&userModel{ID: 3, Name: "Edsger", Email: "edsger@example.com"},
	}
	if err := repo.SaveAll(ctx, models); err != nil {
		t.Fatalf("SaveAll failed: %v", err)
	}

	var all []userModel
	if err := repo.FindAll(ctx, &all); err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected three rows, got %d", len(all))
	}

	var some []userModel
	if err := repo.FindAllByIDs(ctx, []interface{}{int64(1), int64(3)}, &some); err != nil {
		t.Fatalf("FindAllByIDs failed: %v", err)
	}
	if len(some) != 2 {
		t.Errorf("Expected two rows, got %d", len(some))
	}
}

func TestRepositoryDeleteByID(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	if err := repo.Save(ctx, &userModel{ID: 1, Name: "Ada", Email: "ada@example.com"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	deleted, err := repo.DeleteByID(ctx, int64(1))
	if err != nil {
		t.Fatalf("DeleteByID failed: %v", err)
	}
	if !deleted {
		t.Error("Expected the row to be reported deleted")
	}

	deleted, err = repo.DeleteByID(ctx, int64(1))
	if err != nil {
		t.Fatalf("Second DeleteByID failed: %v", err)
	}
	if deleted {
		t.Error("Expected no row to be deleted the second time")
	}
}

func TestRepositoryUpsert(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	user := &userModel{ID: 1, Name: "Ada", Email: "ada@example.com"}
	queryBy := map[string]interface{}{"email": "ada@example.com"}

	// no match: insert
	if err := repo.Upsert(ctx, user, queryBy); err != nil {
		t.Fatalf("Upsert insert failed: %v", err)
	}

	// match: update in place
	user.Name = "Ada Lovelace"
	if err := repo.Upsert(ctx, user, queryBy); err != nil {
		t.Fatalf("Upsert update failed: %v", err)
	}

	var all []userModel
	if err := repo.FindAll(ctx, &all); err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("Expected upsert to not duplicate rows, got %d", len(all))
	}
	if all[0].Name != "Ada Lovelace" {
		t.Errorf("Expected the update to apply, got %q", all[0].Name)
	}
}

func TestRepositorySaveAllRollsBackOnFailure(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	models := []interface{}{
		&userModel{ID: 1, Name: "Ada", Email: "ada@example.com"},
		&userModel{ID: 1, Name: "Dup", Email: "dup@example.com"}, // duplicate key
	}
	if err := repo.SaveAll(ctx, models); err == nil {
		t.Fatal("Expected the duplicate key to fail the batch")
	}

	var all []userModel
	if err := repo.FindAll(ctx, &all); err != nil {
		t.Fatalf("FindAll failed: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("Expected the whole batch rolled back, got %d rows", len(all))
	}
}

func TestModelColumnsRejectUntaggedStructs(t *testing.T) {
	type bare struct{ X int }

	if _, err := modelColumns(&bare{}); err == nil {
		t.Fatal("Expected a model without db tags to be rejected")
	}
}

func TestPlaceholderStyles(t *testing.T) {
	sqlite := &DB{driver: "sqlite3"}
	if sqlite.Placeholder(3) != "?" {
		t.Errorf("Expected ? for sqlite3, got %s", sqlite.Placeholder(3))
	}

	postgres := &DB{driver: "postgres"}
	if postgres.Placeholder(3) != "$3" {
		t.Errorf("Expected $3 for postgres, got %s", postgres.Placeholder(3))
	}
}
