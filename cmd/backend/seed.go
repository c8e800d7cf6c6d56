package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/warlocks1507/checkin/internal/repository"
	"github.com/warlocks1507/checkin/internal/roster"
)

type rosterCreator interface {
	Create(ctx context.Context, in roster.CreateInput) (*repository.Student, error)
}

// readRoster parses full_name[,subteam] rows. A leading full_name header row is skipped.
func readRoster(r io.Reader) ([]roster.CreateInput, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var out []roster.CreateInput
	for n := 1; ; n++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", n, err)
		}
		name := strings.TrimSpace(rec[0])
		if n == 1 && strings.EqualFold(name, "full_name") {
			continue
		}
		if name == "" {
			continue
		}
		in := roster.CreateInput{FullName: name}
		if len(rec) > 1 {
			in.Subteam = strings.TrimSpace(rec[1])
		}
		out = append(out, in)
	}
}

func seedRoster(ctx context.Context, svc rosterCreator, rows []roster.CreateInput) (int, error) {
	for i, in := range rows {
		if _, err := svc.Create(ctx, in); err != nil {
			return i, fmt.Errorf("create %q: %w", in.FullName, err)
		}
	}
	return len(rows), nil
}
