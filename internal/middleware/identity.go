package middleware

// identity.go holds helpers shared by the limiter and request logger for
// naming the caller: a staff id once JWTAuth ran, otherwise the room
// session id, otherwise "anon".

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

func staffID(c echo.Context) string {
    if id, ok := c.Get(CtxUserID).(uint64); ok && id > 0 {
        return strconv.FormatUint(id, 10)
    }
    return ""
}

func sessionID(c echo.Context) string {
    if sc := SessionContextFrom(c); sc != nil && sc.ID != "" {
        return sc.ID
    }
    return ""
}

// callerID returns the most specific identity available for c.
func callerID(c echo.Context) string {
    if id := staffID(c); id != "" {
        return "staff:" + id
    }
    if sid := sessionID(c); sid != "" {
        return "session:" + sid
    }
    return "anon"
}
