package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseState(t *testing.T) {
	tests := []struct {
		token   string
		want    BookingState
		wantErr bool
	}{
		{token: "", want: StateAll},
		{token: "ALL", want: StateAll},
		{token: "CURRENT", want: StateCurrent},
		{token: "PAST", want: StatePast},
		{token: "FUTURE", want: StateFuture},
		{token: "WAITING", want: StateWaiting},
		{token: "REJECTED", want: StateRejected},
		{token: "all", want: StateUnknown, wantErr: true},
		{token: "UNSUPPORTED_STATUS", want: StateUnknown, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := ParseState(tt.token)
			assert.Equal(t, tt.want, got)
			if tt.wantErr {
				var use *UnknownStateError
				require.ErrorAs(t, err, &use)
				assert.Equal(t, "Unknown state: "+tt.token, err.Error())
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestBookingStateMatches(t *testing.T) {
	now := time.Date(2030, 5, 10, 12, 0, 0, 0, time.UTC)
	past := &Booking{Start: now.Add(-48 * time.Hour), End: now.Add(-24 * time.Hour), Status: StatusApproved}
	current := &Booking{Start: now.Add(-time.Hour), End: now.Add(time.Hour), Status: StatusWaiting}
	future := &Booking{Start: now.Add(24 * time.Hour), End: now.Add(48 * time.Hour), Status: StatusRejected}

	cases := map[BookingState][]bool{
		StateAll:      {true, true, true},
		StatePast:     {true, false, false},
		StateCurrent:  {false, true, false},
		StateFuture:   {false, false, true},
		StateWaiting:  {false, true, false},
		StateRejected: {false, false, true},
		StateUnknown:  {false, false, false},
	}

	for state, want := range cases {
		t.Run(string(state), func(t *testing.T) {
			assert.Equal(t, want[0], state.Matches(now, past))
			assert.Equal(t, want[1], state.Matches(now, current))
			assert.Equal(t, want[2], state.Matches(now, future))
		})
	}
}

func TestBookingStateBoundaries(t *testing.T) {
	now := time.Date(2030, 5, 10, 12, 0, 0, 0, time.UTC)
	startsNow := &Booking{Start: now, End: now.Add(time.Hour)}
	endsNow := &Booking{Start: now.Add(-time.Hour), End: now}

	assert.False(t, StateCurrent.Matches(now, startsNow))
	assert.False(t, StateFuture.Matches(now, startsNow))
	assert.False(t, StateCurrent.Matches(now, endsNow))
	assert.False(t, StatePast.Matches(now, endsNow))
}

func TestValidInterval(t *testing.T) {
	now := time.Date(2030, 5, 10, 12, 0, 0, 0, time.UTC)

	assert.NoError(t, ValidInterval(now.Add(time.Hour), now.Add(2*time.Hour), now))
	assert.Error(t, ValidInterval(now.Add(2*time.Hour), now.Add(time.Hour), now))
	assert.Error(t, ValidInterval(now.Add(time.Hour), now.Add(time.Hour), now))
	assert.Error(t, ValidInterval(now.Add(-time.Hour), now.Add(time.Hour), now))
	assert.Error(t, ValidInterval(time.Time{}, now.Add(time.Hour), now))
}

func TestPatches(t *testing.T) {
	name := "Drill"
	it := Item{ID: 1, Name: "Saw", Description: "Hand saw", Available: true, OwnerID: 7}
	ItemPatch{Name: &name}.Apply(&it)
	assert.Equal(t, "Drill", it.Name)
	assert.Equal(t, "Hand saw", it.Description)
	assert.True(t, it.Available)
	assert.Equal(t, int64(7), it.OwnerID)

	email := "new@example.com"
	u := User{ID: 1, Name: "Ann", Email: "ann@example.com"}
	UserPatch{Email: &email}.Apply(&u)
	assert.Equal(t, "Ann", u.Name)
	assert.Equal(t, email, u.Email)
}

func TestShortOf(t *testing.T) {
	assert.Nil(t, ShortOf(nil))
	b := &Booking{ID: 3, BookerID: 4, ItemID: 5, Status: StatusApproved}
	s := ShortOf(b)
	assert.Equal(t, int64(3), s.ID)
	assert.Equal(t, int64(4), s.BookerID)
	assert.Equal(t, StatusApproved, s.Status)
}
