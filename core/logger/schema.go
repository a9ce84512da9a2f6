package logger

import "strings"

func normalizeStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}

// defaultKeyOrder fixes where well-known keys appear in a line. Keys not
// listed follow in lexical order.
var defaultKeyOrder = []string{
	// envelope
	"ts", "level", "component", "event", "status",
	// correlation
	"rid", "rid_full", "review_id", "ts_unix_nano",
	"update_id", "user_id", "chat_id", "chat_type", "handler",
	// telegram transport
	"op", "cb_key", "duration_ms", "messages", "edits", "kb",
	"payload", "lang", "username", "mode", "listen", "public_url",
	// review flow
	"phone", "admin_id", "kind", "position", "items", "bonus",
	"sessions", "evicted", "lane", "count",
	// storage
	"db", "host", "port", "from", "to",
	// failures
	"err", "err_code", "cause", "retryable", "attempts", "backoff_ms", "pending_count",
}
