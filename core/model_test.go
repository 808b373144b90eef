package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

func userModel(t *testing.T) (*Model, *fakeEngine) {
	t.Helper()
	db, engine := newTestDB(t)
	m, err := db.Model(context.Background(), "users")
	if err != nil {
		t.Fatalf("model: %v", err)
	}
	return m, engine
}

func TestModelSetGet(t *testing.T) {
	m, _ := userModel(t)

	if err := m.TrySet("name", "Alice"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := m.Get("name"); got != "Alice" {
		t.Errorf("get = %v", got)
	}
	if !m.Has("name") || m.Has("email") {
		t.Error("Has is wrong")
	}

	m.Unset("name")
	if m.Has("name") {
		t.Error("unset did not clear the field")
	}
}

func TestModelUnknownColumn(t *testing.T) {
	m, _ := userModel(t)

	err := m.TrySet("nope", 1)
	if !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("err = %v, want ErrUnknownColumn", err)
	}
}

func TestModelValidationFailureIsNotAnError(t *testing.T) {
	m, _ := userModel(t)

	// 51 chars against varchar(50).
	if err := m.TrySet("name", strings.Repeat("x", 51)); err != nil {
		t.Fatalf("validation failure must not be a Go error: %v", err)
	}
	if !m.HasErrors() {
		t.Fatal("expected accumulated errors")
	}
	msgs := m.Errors["name"]
	if len(msgs) != 1 || !strings.Contains(msgs[0], "name") {
		t.Errorf("errors = %v", msgs)
	}
	if m.Has("name") {
		t.Error("rejected value must not be stored")
	}
}

func TestModelConcurrentSetOnSharedDescriptor(t *testing.T) {
	db, _ := newTestDB(t)

	// Warm the registry so every model below shares one descriptor.
	if _, err := db.Model(context.Background(), "users"); err != nil {
		t.Fatalf("model: %v", err)
	}

	// Rules live on the shared descriptor; a check on one model must not
	// disturb a simultaneous check on another.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := db.Model(context.Background(), "users")
			if err != nil {
				t.Errorf("model: %v", err)
				return
			}
			for j := 0; j < 100; j++ {
				m.Errors = make(map[string][]string)
				if i%2 == 0 {
					if err := m.TrySet("group_id", "not a number"); err != nil {
						t.Errorf("set: %v", err)
						return
					}
					msgs := m.Errors["group_id"]
					if len(msgs) != 1 || !strings.Contains(msgs[0], "whole number") {
						t.Errorf("group_id errors = %v", msgs)
						return
					}
				} else {
					if err := m.TrySet("name", strings.Repeat("x", 51)); err != nil {
						t.Errorf("set: %v", err)
						return
					}
					msgs := m.Errors["name"]
					if len(msgs) != 1 || !strings.Contains(msgs[0], "longer than 50") {
						t.Errorf("name errors = %v", msgs)
						return
					}
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestModelCoercesOnSet(t *testing.T) {
	m, _ := userModel(t)

	if err := m.TrySet("group_id", "7"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := m.Get("group_id"); got != 7 {
		t.Errorf("group_id = %v (%T), want int 7", got, got)
	}

	if err := m.TrySet("active", "0"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := m.Get("active"); got != false {
		t.Errorf("active = %v (%T), want false", got, got)
	}
}

func TestModelAutomaticColumnRejectsAssignment(t *testing.T) {
	m, _ := userModel(t)

	if err := m.TrySet("id", 5); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !m.HasErrors() {
		t.Fatal("expected an error on the generated column")
	}
	if !strings.Contains(m.Errors["id"][0], "automatically generated") {
		t.Errorf("errors = %v", m.Errors["id"])
	}
}

func TestModelInsertBindsEveryColumn(t *testing.T) {
	m, engine := userModel(t)
	ctx := context.Background()

	m.TrySet("name", "Alice")
	res, err := m.Insert(ctx)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if res.RowsAffected != 1 {
		t.Errorf("rows = %d", res.RowsAffected)
	}

	st := engine.lastExec()
	want := "INSERT INTO `users` (`id`, `name`, `email`, `active`, `group_id`) VALUES (?, ?, ?, ?, ?)"
	if st.query != want {
		t.Errorf("sql = %q, want %q", st.query, want)
	}
	if len(st.args) != 5 {
		t.Fatalf("args = %v", st.args)
	}
	// Absent fields bind NULL.
	if st.args[0] != nil || st.args[2] != nil {
		t.Errorf("absent columns should be nil: %v", st.args)
	}
	if st.args[1] != "Alice" {
		t.Errorf("args[1] = %v", st.args[1])
	}
	if m.LastQuery() != want {
		t.Errorf("last query = %q", m.LastQuery())
	}
}

func TestModelReplace(t *testing.T) {
	m, engine := userModel(t)

	m.TrySet("name", "Bob")
	if _, err := m.Replace(context.Background()); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if !strings.HasPrefix(engine.lastExec().query, "REPLACE INTO `users`") {
		t.Errorf("sql = %q", engine.lastExec().query)
	}
}

func TestModelUpdateWritesDirtyOnly(t *testing.T) {
	m, engine := userModel(t)
	ctx := context.Background()

	// Hydrated state: primary key present, nothing dirty yet.
	m.values["id"] = 3
	m.values["email"] = "old@example.test"
	m.TrySet("name", "New")

	if _, err := m.Update(ctx); err != nil {
		t.Fatalf("update: %v", err)
	}

	st := engine.lastExec()
	want := "UPDATE `users` SET `name` = ? WHERE (`id` = ?)"
	if st.query != want {
		t.Errorf("sql = %q, want %q", st.query, want)
	}
	if len(st.args) != 2 || st.args[0] != "New" || st.args[1] != int64(3) {
		t.Errorf("args = %v", st.args)
	}
}

func TestModelDeleteBoundsByPrimary(t *testing.T) {
	m, engine := userModel(t)

	m.values["id"] = 3
	if _, err := m.Delete(context.Background()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	st := engine.lastExec()
	want := "DELETE FROM `users` WHERE (`id` = ?)"
	if st.query != want {
		t.Errorf("sql = %q, want %q", st.query, want)
	}
}

func TestModelWritesRequirePrimary(t *testing.T) {
	db, engine := newTestDB(t)
	m, err := db.Model(context.Background(), "notes")
	if err != nil {
		t.Fatalf("model: %v", err)
	}

	m.TrySet("body", "hello")
	if _, err := m.Update(context.Background()); !errors.Is(err, ErrNoPrimaryKey) {
		t.Errorf("update err = %v, want ErrNoPrimaryKey", err)
	}
	if _, err := m.Delete(context.Background()); !errors.Is(err, ErrNoPrimaryKey) {
		t.Errorf("delete err = %v, want ErrNoPrimaryKey", err)
	}
	// The guard fires before any SQL is built.
	if st := engine.lastExec(); st.query != "" {
		t.Errorf("unexpected statement %q", st.query)
	}
}

func TestModelCleanResetsDirty(t *testing.T) {
	m, engine := userModel(t)

	m.values["id"] = 1
	m.TrySet("name", "A")
	m.Clean()

	// Nothing dirty means nothing to write.
	res, err := m.Update(context.Background())
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if res.RowsAffected != 0 {
		t.Errorf("rows = %d", res.RowsAffected)
	}
	if st := engine.lastExec(); st.query != "" {
		t.Errorf("unexpected statement %q", st.query)
	}
}

func TestModelTranslatesExecErrors(t *testing.T) {
	m, engine := userModel(t)
	engine.execErr = errors.New("disk full")

	m.TrySet("name", "A")
	_, err := m.Insert(context.Background())
	var dbErr *DBError
	if !errors.As(err, &dbErr) {
		t.Fatalf("err = %v, want *DBError", err)
	}
	if dbErr.Code != "HY000" {
		t.Errorf("code = %q", dbErr.Code)
	}
}

func TestModelListColumnsAndDefinition(t *testing.T) {
	m, _ := userModel(t)

	if len(m.Definition()) != 5 {
		t.Errorf("definition = %d columns", len(m.Definition()))
	}
	names := m.ListColumns("id", "email")
	if len(names) != 3 || names[0] != "name" {
		t.Errorf("names = %v", names)
	}
}
