package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-room-service/internal/model"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewStore(rdb, time.Hour), mr
}

func TestGrantCurrentClear(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	cur, err := s.Current(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, cur)

	sid, sess, err := s.Grant(ctx, "", model.Room{ID: 3, RoomNumber: "103"})
	require.NoError(t, err)
	require.NotEmpty(t, sid)
	assert.Equal(t, uint64(3), sess.RoomID)

	cur, err = s.Current(ctx, sid)
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.Equal(t, "103", cur.RoomNumber)

	require.NoError(t, s.Clear(ctx, sid))
	cur, err = s.Current(ctx, sid)
	require.NoError(t, err)
	assert.Nil(t, cur)
}

func TestGrantRotatesIDAndLastWriteWins(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	first, _, err := s.Grant(ctx, "", model.Room{ID: 1, RoomNumber: "101"})
	require.NoError(t, err)
	second, _, err := s.Grant(ctx, first, model.Room{ID: 2, RoomNumber: "102"})
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	old, err := s.Current(ctx, first)
	require.NoError(t, err)
	assert.Nil(t, old, "previous id must no longer resolve")

	cur, err := s.Current(ctx, second)
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.Equal(t, uint64(2), cur.RoomID)
}

func TestMarkScannedOncePerRoomAcrossRotation(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	sid, _, err := s.Grant(ctx, "", model.Room{ID: 5, RoomNumber: "105"})
	require.NoError(t, err)

	first, err := s.MarkScanned(ctx, sid, 5)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := s.MarkScanned(ctx, sid, 5)
	require.NoError(t, err)
	assert.False(t, again)

	// Rescanning the same room rotates the id but keeps the flag.
	sid2, _, err := s.Grant(ctx, sid, model.Room{ID: 5, RoomNumber: "105"})
	require.NoError(t, err)
	again, err = s.MarkScanned(ctx, sid2, 5)
	require.NoError(t, err)
	assert.False(t, again)

	other, err := s.MarkScanned(ctx, sid2, 6)
	require.NoError(t, err)
	assert.True(t, other)
}

func TestSessionExpires(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)

	sid, _, err := s.Grant(ctx, "", model.Room{ID: 1, RoomNumber: "101"})
	require.NoError(t, err)
	mr.FastForward(2 * time.Hour)

	cur, err := s.Current(ctx, sid)
	require.NoError(t, err)
	assert.Nil(t, cur)
}

func TestCorruptSessionReadsAsNone(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)
	require.NoError(t, mr.Set("roomsession:bad", "{not json"))

	cur, err := s.Current(ctx, "bad")
	require.NoError(t, err)
	assert.Nil(t, cur)
}

func TestCookies(t *testing.T) {
	c := Cookie("rs_session", "abc", true)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, "abc", c.Value)

	gone := ExpiredCookie("rs_session", false)
	assert.Equal(t, -1, gone.MaxAge)
	assert.Empty(t, gone.Value)
}
