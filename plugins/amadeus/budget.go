package amadeus

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Budget is an optional price ceiling. The zero value is unbounded.
type Budget struct {
	ceiling float64
	bounded bool
}

// Unbounded returns a budget without a ceiling
func Unbounded() Budget {
	return Budget{}
}

// MaxPrice returns a budget capped at v. Non-positive and infinite
// values mean no ceiling.
func MaxPrice(v float64) Budget {
	if v <= 0 || math.IsInf(v, 1) || math.IsNaN(v) {
		return Budget{}
	}
	return Budget{ceiling: v, bounded: true}
}

// Bounded reports whether a ceiling is set
func (b Budget) Bounded() bool {
	return b.bounded
}

// Ceiling returns the ceiling and whether it is set
func (b Budget) Ceiling() (float64, bool) {
	return b.ceiling, b.bounded
}

// Allows reports whether price fits in the budget
func (b Budget) Allows(price float64) bool {
	return !b.bounded || price <= b.ceiling
}

func (b Budget) String() string {
	if !b.bounded {
		return "unlimited"
	}
	return strconv.FormatFloat(b.ceiling, 'f', -1, 64)
}

var unboundedWords = map[string]bool{
	"":          true,
	"inf":       true,
	"infinity":  true,
	"unlimited": true,
	"none":      true,
	"null":      true,
	"no limit":  true,
}

// ParseBudget interprets a decoded JSON budget value: a number, a numeric
// string (optionally with "$" and thousands separators), or a marker for no limit.
func ParseBudget(v interface{}) (Budget, error) {
	switch val := v.(type) {
	case nil:
		return Unbounded(), nil
	case float64:
		return MaxPrice(val), nil
	case string:
		s := strings.ToLower(strings.TrimSpace(val))
		if unboundedWords[s] {
			return Unbounded(), nil
		}
		s = strings.TrimPrefix(s, "$")
		s = strings.ReplaceAll(s, ",", "")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Budget{}, fmt.Errorf("budget %q is not a number", val)
		}
		return MaxPrice(f), nil
	default:
		return Budget{}, fmt.Errorf("budget %v is not a number", val)
	}
}
