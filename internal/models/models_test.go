package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFriendshipEnsureCanonicalOrder(t *testing.T) {
	f := &Friendship{SenderID: 9, ReceiverID: 4}
	f.EnsureCanonicalOrder()

	assert.Equal(t, uint(4), f.PairLow)
	assert.Equal(t, uint(9), f.PairHigh)
	assert.Equal(t, uint(9), f.SenderID, "direction must be preserved")
	assert.Equal(t, uint(4), f.ReceiverID)
}

func TestFriendshipOtherParty(t *testing.T) {
	f := &Friendship{SenderID: 1, ReceiverID: 2}

	assert.Equal(t, uint(2), f.OtherParty(1))
	assert.Equal(t, uint(1), f.OtherParty(2))
}

func TestFriendshipJSONHidesPairColumns(t *testing.T) {
	f := Friendship{SenderID: 1, ReceiverID: 2, Status: FriendshipStatusPending}
	f.EnsureCanonicalOrder()

	raw, err := json.Marshal(f)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "pairLow")
	assert.NotContains(t, string(raw), "sender\"")
	assert.Contains(t, string(raw), `"status":"pending"`)
}

func TestFilmStatusValid(t *testing.T) {
	assert.True(t, FilmStatusPlanToWatch.Valid())
	assert.True(t, FilmStatusWatching.Valid())
	assert.True(t, FilmStatusWatched.Valid())
	assert.False(t, FilmStatus("dropped").Valid())
	assert.False(t, FilmStatus("").Valid())
}

func TestUserPasswordHashNotSerialized(t *testing.T) {
	u := User{Name: "Ann", Email: "ann@example.com", PasswordHash: "secret-hash"}
	raw, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-hash")
	assert.Contains(t, string(raw), `"emailVerified":false`)
}

func TestOptionalUnmarshal(t *testing.T) {
	type patch struct {
		Review    Optional[string]    `json:"review"`
		WatchedAt Optional[time.Time] `json:"watchedAt"`
	}

	tests := []struct {
		name      string
		body      string
		wantSet   bool
		wantValid bool
		wantValue string
	}{
		{"absent", `{}`, false, false, ""},
		{"null", `{"review":null}`, true, false, ""},
		{"value", `{"review":"Great"}`, true, true, "Great"},
		{"empty string", `{"review":""}`, true, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p patch
			require.NoError(t, json.Unmarshal([]byte(tt.body), &p))
			assert.Equal(t, tt.wantSet, p.Review.Set)
			assert.Equal(t, tt.wantValid, p.Review.Valid)
			assert.Equal(t, tt.wantValue, p.Review.Value)
			assert.False(t, p.WatchedAt.Set)
		})
	}
}

func TestOptionalTime(t *testing.T) {
	var o Optional[time.Time]
	require.NoError(t, json.Unmarshal([]byte(`"2024-03-01T20:00:00Z"`), &o))
	require.NotNil(t, o.Ptr())
	assert.Equal(t, 2024, o.Ptr().Year())

	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &o))
	assert.Nil(t, Null[time.Time]().Ptr())
}
