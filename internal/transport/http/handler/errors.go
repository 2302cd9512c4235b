package handler

const (
	errInternalServer = "internal server error"
	errInvalidRating  = "rating must be 0, 1, or 2"
	errInvalidIdemKey = "idempotency_key must be 1 to 64 characters"
	errInvalidUserID  = "user_id must be a valid uuid"
	errInvalidCardID  = "card_id must be a valid uuid"
	errInvalidUntil   = "until must be a valid ISO-8601 timestamp"
)
