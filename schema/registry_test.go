package schema

import (
	"context"
	"testing"
	"time"

	"github.com/nerdsrescueme/norm/datastore"
)

// fakeSource counts catalog passes so tests can assert on cache behavior.
type fakeSource struct {
	cols     []RawColumn
	cons     []RawConstraint
	colCalls int
}

func (s *fakeSource) Columns(ctx context.Context, table string) ([]RawColumn, error) {
	s.colCalls++
	return s.cols, nil
}

func (s *fakeSource) Constraints(ctx context.Context, table string) ([]RawConstraint, error) {
	return s.cons, nil
}

func userSource() *fakeSource {
	id := rawCol("id", "int(10) unsigned")
	id.Key = "PRI"
	id.Extra = "auto_increment"
	id.Nullable = false
	name := rawCol("name", "varchar(50)")
	name.Nullable = false
	return &fakeSource{
		cols: []RawColumn{id, name},
		cons: []RawConstraint{{Name: "PRIMARY", Type: "PRIMARY KEY"}},
	}
}

func TestCacheKey(t *testing.T) {
	if got := CacheKey("users"); got != "users.model-cache" {
		t.Errorf("CacheKey = %q", got)
	}
}

func TestRegistryLoadMemoizes(t *testing.T) {
	src := userSource()
	r := NewRegistry(src, nil, nil, 0)

	ctx := context.Background()
	t1, err := r.Load(ctx, "users")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	t2, err := r.Load(ctx, "users")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if t1 != t2 {
		t.Error("expected the same descriptor instance")
	}
	if src.colCalls != 1 {
		t.Errorf("catalog passes = %d, want 1", src.colCalls)
	}

	if len(t1.Primary) != 1 || t1.Primary[0].FieldName() != "id" {
		t.Errorf("primary = %v", t1.Primary)
	}
}

func TestRegistryDatastoreRoundTrip(t *testing.T) {
	src := userSource()
	store := datastore.NewMemory()
	defer store.Close()

	ctx := context.Background()
	r := NewRegistry(src, store, nil, time.Minute)
	if _, err := r.Load(ctx, "users"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !store.Exists(ctx, CacheKey("users")) {
		t.Fatal("descriptor not written to the datastore")
	}

	// A second registry sharing the store reads the cached descriptor
	// without a catalog pass.
	src2 := &fakeSource{}
	r2 := NewRegistry(src2, store, nil, time.Minute)
	tbl, err := r2.Load(ctx, "users")
	if err != nil {
		t.Fatalf("cached load: %v", err)
	}
	if src2.colCalls != 0 {
		t.Errorf("catalog passes = %d, want 0", src2.colCalls)
	}
	if _, ok := tbl.Column("name"); !ok {
		t.Error("decoded descriptor lost its columns")
	}
}

func TestRegistryCorruptCacheFallsThrough(t *testing.T) {
	src := userSource()
	store := datastore.NewMemory()
	defer store.Close()

	ctx := context.Background()
	if err := store.Write(ctx, CacheKey("users"), []byte("not json"), time.Minute); err != nil {
		t.Fatalf("seed: %v", err)
	}

	r := NewRegistry(src, store, nil, time.Minute)
	if _, err := r.Load(ctx, "users"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if src.colCalls != 1 {
		t.Errorf("catalog passes = %d, want 1", src.colCalls)
	}
}

func TestRegistryForget(t *testing.T) {
	src := userSource()
	r := NewRegistry(src, nil, nil, 0)

	ctx := context.Background()
	if _, err := r.Load(ctx, "users"); err != nil {
		t.Fatalf("load: %v", err)
	}
	r.Forget("users")
	if _, err := r.Load(ctx, "users"); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if src.colCalls != 2 {
		t.Errorf("catalog passes = %d, want 2", src.colCalls)
	}
}

func TestTableEncodeDecode(t *testing.T) {
	src := userSource()
	tbl, err := NewTable("users", src.cols, src.cons, nil)
	if err != nil {
		t.Fatalf("new table: %v", err)
	}

	data, err := tbl.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeTable(data, nil)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if got.Name != "users" {
		t.Errorf("name = %q", got.Name)
	}
	if len(got.Columns) != 2 {
		t.Fatalf("columns = %d", len(got.Columns))
	}
	id, _ := got.Column("id")
	if !id.Primary() || !id.Automatic() {
		t.Error("decoded id lost its key role")
	}
	// Rules are re-derived, not serialized.
	if len(id.Assumptions()) == 0 {
		t.Error("decoded column has no rules")
	}
}

func TestTableCompositePrimaryLimit(t *testing.T) {
	cols := make([]RawColumn, 0, 3)
	for _, n := range []string{"a", "b", "c"} {
		c := rawCol(n, "int(10)")
		c.Key = "PRI"
		c.Nullable = false
		cols = append(cols, c)
	}

	if _, err := NewTable("wide", cols[:2], nil, nil); err != nil {
		t.Errorf("two-column key should work: %v", err)
	}
	if _, err := NewTable("wide", cols, nil, nil); err == nil {
		t.Error("three-column key should error")
	}
}

func TestTableSkipsUnmodeledConstraints(t *testing.T) {
	src := userSource()
	cons := append(src.cons, RawConstraint{Name: "age_chk", Type: "CHECK"})
	tbl, err := NewTable("users", src.cols, cons, nil)
	if err != nil {
		t.Fatalf("new table: %v", err)
	}
	if len(tbl.Constraints) != 1 {
		t.Errorf("constraints = %d, want 1 (CHECK ignored)", len(tbl.Constraints))
	}
}

func TestColumnNamesExclude(t *testing.T) {
	src := userSource()
	tbl, err := NewTable("users", src.cols, src.cons, nil)
	if err != nil {
		t.Fatalf("new table: %v", err)
	}
	names := tbl.ColumnNames("id")
	if len(names) != 1 || names[0] != "name" {
		t.Errorf("names = %v", names)
	}
}
