package utils

import "time"

// AdminKeyHeader carries the static key protecting admin routes.
const AdminKeyHeader = "X-Admin-Key"

// AnswerCacheTTL is the time-to-live for cached FAQ answers.
const AnswerCacheTTL = 12 * time.Hour
