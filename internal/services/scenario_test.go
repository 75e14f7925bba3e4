package services_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filmtrack/internal/models"
	"filmtrack/internal/services"
	"filmtrack/internal/storage/storagetest"
)

// 好友 -> 片单 -> 公开片单 -> 删除 的完整流程。
func TestFriendsAndFilmsScenario(t *testing.T) {
	f := newFixture(t)
	a := storagetest.CreateUser(t, f.db, "ann")
	b := storagetest.CreateUser(t, f.db, "ben")
	ctx := context.Background()

	// 1. A 向 B 发送请求
	fr, err := f.friends.SendFriendRequest(ctx, a.ID, b.ID)
	require.NoError(t, err)
	status, err := f.friends.GetFriendshipStatus(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", status.Status)
	assert.True(t, *status.IsSender)

	// 2. B 接受，双方都能看到对方
	_, err = f.friends.AcceptFriendRequest(ctx, fr.ID, b.ID)
	require.NoError(t, err)
	aFriends, err := f.friends.GetFriends(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, aFriends, 1)
	assert.Equal(t, b.ID, aFriends[0].Friend.ID)
	bFriends, err := f.friends.GetFriends(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, bFriends, 1)
	assert.Equal(t, a.ID, bFriends[0].Friend.ID)
	pending, err := f.friends.GetPendingRequests(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// 3. A 添加影片，使用默认值
	film, err := f.films.CreateFilm(ctx, a.ID, services.CreateFilmInput{TmdbID: 550, Title: "Fight Club", PosterURL: "x", Year: 1999})
	require.NoError(t, err)
	assert.Equal(t, models.FilmStatusPlanToWatch, film.Status)
	assert.Equal(t, 0, film.Rating)

	// 4. A 更新状态和评分，review 仍为 null
	var in services.UpdateFilmInput
	require.NoError(t, json.Unmarshal([]byte(`{"status":"watched","rating":5}`), &in))
	updated, err := f.films.UpdateFilm(ctx, film.ID, a.ID, in)
	require.NoError(t, err)
	assert.Equal(t, models.FilmStatusWatched, updated.Status)
	assert.Equal(t, 5, updated.Rating)
	assert.Nil(t, updated.Review)

	// 5. B 查看 A 的公开片单，只有投影字段
	public, err := f.films.ListPublicFilms(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, film.ID, public[0].ID)
	assert.Equal(t, 5, public[0].Rating)
	raw, err := json.Marshal(public[0])
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.NotContains(t, fields, "userId")
	assert.NotContains(t, fields, "updatedAt")

	// 6. A 删除影片，再次查询不存在
	require.NoError(t, f.films.DeleteFilm(ctx, film.ID, a.ID))
	got, err := f.films.GetFilm(ctx, film.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	_, err = f.films.GetOwnFilm(ctx, film.ID, a.ID)
	assert.ErrorIs(t, err, services.ErrFilmNotFound)
}
