package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"strconv"
)

// RoomTokenCodec derives and checks the token printed in a room's QR code.
// The token is HMAC-SHA256 over "<roomID>|<roomNumber>" keyed with a server
// secret, hex encoded.  Nothing is stored; rotating the secret invalidates
// every printed code at once.
type RoomTokenCodec struct {
	secret []byte
}

// NewRoomTokenCodec panics on an empty secret, the same way handlers refuse
// nil repositories: a codec without a key would accept forged tokens.
func NewRoomTokenCodec(secret string) *RoomTokenCodec {
	if secret == "" {
		panic("utils: empty room token secret")
	}
	return &RoomTokenCodec{secret: []byte(secret)}
}

func roomCanonical(roomID uint64, roomNumber string) []byte {
	return []byte(strconv.FormatUint(roomID, 10) + "|" + roomNumber)
}

func (c *RoomTokenCodec) mac(roomID uint64, roomNumber string) []byte {
	m := hmac.New(sha256.New, c.secret)
	m.Write(roomCanonical(roomID, roomNumber))
	return m.Sum(nil)
}

// Issue returns the token for a room.
func (c *RoomTokenCodec) Issue(roomID uint64, roomNumber string) string {
	return hex.EncodeToString(c.mac(roomID, roomNumber))
}

// Verify reports whether token belongs to the room.  Malformed input is just
// a mismatch; the comparison is constant time.
func (c *RoomTokenCodec) Verify(roomID uint64, roomNumber, token string) bool {
	got, err := hex.DecodeString(token)
	if err != nil || len(got) != sha256.Size {
		return false
	}
	return hmac.Equal(got, c.mac(roomID, roomNumber))
}

// ScanURL is the URL encoded into the room's QR code.
func (c *RoomTokenCodec) ScanURL(baseURL string, roomID uint64, roomNumber string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", errors.New("utils: base URL must be absolute")
	}
	u.Path = "/scan"
	q := url.Values{}
	q.Set("room", strconv.FormatUint(roomID, 10))
	q.Set("token", c.Issue(roomID, roomNumber))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
