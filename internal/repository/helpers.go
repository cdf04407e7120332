package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
)

func nullableText(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}

// textArray keeps nil slices out of the driver so columns stay '{}' instead
// of NULL.
func textArray(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
