package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/warlocks1507/checkin/internal/repository"
	"github.com/warlocks1507/checkin/internal/roster"
)

func TestReadRoster(t *testing.T) {
	in := "full_name,subteam\nAda Lovelace, Software\n\nGrace Hopper\n  ,Build\n"
	rows, err := readRoster(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d: %+v", len(rows), rows)
	}
	if rows[0].FullName != "Ada Lovelace" || rows[0].Subteam != "Software" {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if rows[1].FullName != "Grace Hopper" || rows[1].Subteam != "" {
		t.Fatalf("unexpected second row: %+v", rows[1])
	}
}

func TestReadRoster_MalformedQuote(t *testing.T) {
	if _, err := readRoster(strings.NewReader("\"Ada,Software\n")); err == nil {
		t.Fatal("expected error for unterminated quote")
	}
}

type mockCreator struct {
	created []roster.CreateInput
	failAt  int
}

func (m *mockCreator) Create(_ context.Context, in roster.CreateInput) (*repository.Student, error) {
	if m.failAt > 0 && len(m.created)+1 == m.failAt {
		return nil, errors.New("db down")
	}
	m.created = append(m.created, in)
	return &repository.Student{ID: int64(len(m.created)), FullName: in.FullName}, nil
}

func TestSeedRoster(t *testing.T) {
	rows := []roster.CreateInput{{FullName: "A"}, {FullName: "B"}, {FullName: "C"}}

	ok := &mockCreator{}
	n, err := seedRoster(context.Background(), ok, rows)
	if err != nil || n != 3 {
		t.Fatalf("expected 3 imported, got %d (%v)", n, err)
	}

	failing := &mockCreator{failAt: 2}
	n, err = seedRoster(context.Background(), failing, rows)
	if err == nil {
		t.Fatal("expected error")
	}
	if n != 1 {
		t.Fatalf("expected 1 imported before failure, got %d", n)
	}
}
