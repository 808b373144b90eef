package datastore

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryReadWrite(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	ctx := context.Background()

	if _, err := m.Read(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if m.Exists(ctx, "missing") {
		t.Error("missing key should not exist")
	}

	if err := m.Write(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := m.Read(ctx, "k")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "v" {
		t.Errorf("read = %q", got)
	}
	if !m.Exists(ctx, "k") {
		t.Error("written key should exist")
	}
}

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	ctx := context.Background()

	if err := m.Write(ctx, "k", []byte("v"), time.Millisecond); err != nil {
		t.Fatalf("write: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := m.Read(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected expiry, got %v", err)
	}
}

func TestMemoryCopiesValues(t *testing.T) {
	m := NewMemory()
	defer m.Close()
	ctx := context.Background()

	src := []byte("abc")
	if err := m.Write(ctx, "k", src, 0); err != nil {
		t.Fatalf("write: %v", err)
	}
	src[0] = 'x'

	got, err := m.Read(ctx, "k")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "abc" {
		t.Errorf("stored value aliased the caller's slice: %q", got)
	}

	got[0] = 'y'
	again, _ := m.Read(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("read value aliased the stored slice: %q", again)
	}
}

func TestMemoryCloseIdempotent(t *testing.T) {
	m := NewMemory()
	if err := m.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
