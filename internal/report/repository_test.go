package report

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Database round-trips need a live Postgres; only the stamp validation
// is covered here.

func TestRepository_SaveRun_RejectsBadStamp(t *testing.T) {
	repo := NewRepository(nil)

	err := repo.SaveRun(context.Background(), Stamp{AsOfDate: "14-03-2025", RunTSUTC: "2025-03-14T22:30:00Z"}, nil)
	assert.ErrorContains(t, err, "invalid as_of_date")

	err = repo.SaveRun(context.Background(), Stamp{AsOfDate: "2025-03-14", RunTSUTC: "not a timestamp"}, nil)
	assert.ErrorContains(t, err, "invalid run timestamp")
}
