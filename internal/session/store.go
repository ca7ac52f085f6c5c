// Package session keeps the room a browser is bound to.  State lives in
// Redis under a random id; the browser only holds that id in an HTTP-only
// cookie, so a guest cannot change which room their session belongs to.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/hotel-room-service/internal/model"
)

// RoomSession is the room context granted by a valid QR scan.
type RoomSession struct {
	RoomID     uint64    `json:"room_id"`
	RoomNumber string    `json:"room_number"`
	GrantedAt  time.Time `json:"granted_at"`
}

// Context is the per-request view of the session, resolved once by
// middleware.  Room is nil while the ordering UI is locked.
type Context struct {
	ID   string
	Room *RoomSession
}

// Unlocked reports whether the request carries a granted room.
func (c *Context) Unlocked() bool { return c != nil && c.Room != nil }

// Store is the Redis implementation of the room session store.
type Store struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
	now    func() time.Time
}

// NewStore panics on a nil client; sessions have no fallback backend.
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if rdb == nil {
		panic("session: nil redis client")
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Store{rdb: rdb, ttl: ttl, prefix: "roomsession", now: time.Now}
}

func (s *Store) key(sid string) string     { return s.prefix + ":" + sid }
func (s *Store) scanKey(sid string) string { return s.prefix + ":" + sid + ":scanned" }

// Grant binds a fresh session id to room and returns it.  When prevSID names
// an existing session, its scan flags move to the new id and the old id is
// dropped, so the id changes on every grant while scan logging stays
// once per browser session.  Later grants overwrite earlier ones.
func (s *Store) Grant(ctx context.Context, prevSID string, room model.Room) (string, *RoomSession, error) {
	sess := &RoomSession{RoomID: room.ID, RoomNumber: room.RoomNumber, GrantedAt: s.now().UTC()}
	payload, err := json.Marshal(sess)
	if err != nil {
		return "", nil, err
	}
	sid := uuid.NewString()

	var carry bool
	if prevSID != "" {
		n, err := s.rdb.Exists(ctx, s.scanKey(prevSID)).Result()
		if err != nil {
			return "", nil, fmt.Errorf("session exists: %w", err)
		}
		carry = n > 0
	}

	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.key(sid), payload, s.ttl)
		if prevSID != "" {
			if carry {
				p.Rename(ctx, s.scanKey(prevSID), s.scanKey(sid))
				p.Expire(ctx, s.scanKey(sid), s.ttl)
			}
			p.Del(ctx, s.key(prevSID))
		}
		return nil
	})
	if err != nil {
		return "", nil, fmt.Errorf("session grant: %w", err)
	}
	return sid, sess, nil
}

// Current returns the room session for sid, or nil when there is none.
// Reading refreshes the expiry.
func (s *Store) Current(ctx context.Context, sid string) (*RoomSession, error) {
	if sid == "" {
		return nil, nil
	}
	raw, err := s.rdb.GetEx(ctx, s.key(sid), s.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session read: %w", err)
	}
	var sess RoomSession
	if err := json.Unmarshal(raw, &sess); err != nil || sess.RoomID == 0 {
		// Unreadable state is treated as no session.
		return nil, nil
	}
	return &sess, nil
}

// Clear removes the session and its scan flags.
func (s *Store) Clear(ctx context.Context, sid string) error {
	if sid == "" {
		return nil
	}
	return s.rdb.Del(ctx, s.key(sid), s.scanKey(sid)).Err()
}

// MarkScanned records that roomID was scanned in this session.  It returns
// true only the first time.
func (s *Store) MarkScanned(ctx context.Context, sid string, roomID uint64) (bool, error) {
	var added *redis.IntCmd
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		added = p.SAdd(ctx, s.scanKey(sid), strconv.FormatUint(roomID, 10))
		p.Expire(ctx, s.scanKey(sid), s.ttl)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("session mark scanned: %w", err)
	}
	return added.Val() == 1, nil
}

// Cookie builds the HTTP-only cookie carrying sid.  It is a browser-session
// cookie; the server-side TTL bounds its usefulness.
func Cookie(name, sid string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredCookie deletes the session cookie on the client.
func ExpiredCookie(name string, secure bool) *http.Cookie {
	c := Cookie(name, "", secure)
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0)
	return c
}
