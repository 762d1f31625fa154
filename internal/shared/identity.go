package shared

import (
	"context"
	"strconv"
)

// UserID extracts the authenticated user's ID from the session in context.
// The second result is false for anonymous requests.
func UserID(ctx context.Context) (int64, bool) {
	sess := SessionFromContext(ctx)
	if sess == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(sess.User(), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
