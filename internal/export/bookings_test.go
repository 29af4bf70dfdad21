package export

import (
	"bytes"
	"testing"
	"time"

	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteOwnerBookings(t *testing.T) {
	start := time.Date(2030, 1, 2, 10, 0, 0, 0, time.UTC)
	views := []*models.BookingView{
		{
			ID: 1, Start: start, End: start.Add(time.Hour), Status: models.StatusApproved,
			Booker: models.User{ID: 2, Name: "Bob", Email: "bob@example.com"},
			Item:   models.Item{ID: 3, Name: "Drill"},
		},
		{
			ID: 2, Start: start, End: start.Add(2 * time.Hour), Status: models.StatusWaiting,
			Booker: models.User{ID: 4, Name: "Eve", Email: "eve@example.com"},
			Item:   models.Item{ID: 3, Name: "Drill"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteOwnerBookings(&buf, views, start))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, headers, rows[1])
	assert.Equal(t, []string{"1", "Drill", "Bob", "bob@example.com", "02.01.2030 10:00", "02.01.2030 11:00", "APPROVED"}, rows[2])
	assert.Equal(t, "WAITING", rows[3][6])
}

func TestStatusFill(t *testing.T) {
	assert.NotEqual(t, statusFill(models.StatusApproved), statusFill(models.StatusRejected))
	assert.Equal(t, statusFill(models.StatusWaiting), statusFill(""))
}
