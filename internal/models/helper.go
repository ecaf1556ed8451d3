package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Collection names of the persisted documents.
const (
	CollectionQuizzes          = "quizzes"
	CollectionClasses          = "classes"
	CollectionClassEnrollments = "classEnrollments"
	CollectionSubmissions      = "submissions"
	CollectionTeacherEmails    = "teacherEmails"
	CollectionUserProfiles     = "userProfiles"
)

// DefaultMaxAttempts applies when a quiz has no usable maxAttempts value.
const DefaultMaxAttempts = 1

// AttemptLimit holds a quiz's maxAttempts as it was stored. Documents may
// carry anything in that field, so decoding never fails: values that are not
// numbers are kept as invalid and Effective falls back to DefaultMaxAttempts.
type AttemptLimit struct {
	Number float64
	Valid  bool
}

func NewAttemptLimit(n int) AttemptLimit {
	return AttemptLimit{Number: float64(n), Valid: true}
}

// Effective returns the attempt limit with the default substitution applied.
func (a AttemptLimit) Effective() int {
	if !a.Valid {
		return DefaultMaxAttempts
	}
	return CoerceMaxAttempts(a.Number)
}

// CoerceMaxAttempts turns an arbitrary value into a positive attempt limit.
// Non-numeric, non-finite, zero and negative values give DefaultMaxAttempts;
// fractional values are floored.
func CoerceMaxAttempts(v any) int {
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return DefaultMaxAttempts
	}
	f = math.Floor(f)
	if f < 1 {
		return DefaultMaxAttempts
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case AttemptLimit:
		return n.Number, n.Valid
	case *AttemptLimit:
		if n == nil {
			return 0, false
		}
		return n.Number, n.Valid
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func (a *AttemptLimit) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		*a = AttemptLimit{}
		return nil
	}
	f, ok := toFloat(raw)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		*a = AttemptLimit{}
		return nil
	}
	*a = AttemptLimit{Number: f, Valid: true}
	return nil
}

func (a AttemptLimit) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(a.Number)
}

func (a *AttemptLimit) Scan(value any) error {
	var n sql.NullFloat64
	if err := n.Scan(value); err != nil {
		*a = AttemptLimit{}
		return nil
	}
	*a = AttemptLimit{Number: n.Float64, Valid: n.Valid}
	return nil
}

func (a AttemptLimit) Value() (driver.Value, error) {
	if !a.Valid {
		return nil, nil
	}
	return a.Number, nil
}

// GormDataType keeps the column numeric instead of deriving it from the struct.
func (AttemptLimit) GormDataType() string {
	return "double precision"
}
