package queue

import "time"

// Job types
const (
	JobTypeEmailVerification = "job_type_email_verification"
	JobTypePasswordReset     = "job_type_password_reset"
)

// PayloadEmailVerification is the payload of an email verification job.
// CooldownBucket makes the payload unique per time window: together with the
// UNIQUE(job_type, payload) queue constraint it limits each address to one
// verification email per window.
type PayloadEmailVerification struct {
	Email          string `json:"email"`
	CooldownBucket int    `json:"cooldown_bucket"`
}

// PayloadPasswordReset is the payload of a password reset job. CooldownBucket
// works as in PayloadEmailVerification.
type PayloadPasswordReset struct {
	Email          string `json:"email"`
	CooldownBucket int    `json:"cooldown_bucket"`
}

// CoolDownBucket returns the number of complete duration periods since the
// Unix epoch. All times inside the same window map to the same bucket, so a
// payload embedding the bucket collides with any equivalent payload from the
// same window. Panics on non-positive durations.
func CoolDownBucket(duration time.Duration, t time.Time) int {
	if duration <= 0 {
		panic("duration must be positive")
	}
	return int(t.Unix() / int64(duration.Seconds()))
}
