package model

import (
	"fmt"
	"strings"
)

// CollisionPolicy selects what a registry does when a command registers an ID
// that already exists.
type CollisionPolicy int

const (
	// CollisionReplace overwrites the existing entry silently.
	CollisionReplace CollisionPolicy = iota
	// CollisionReplaceAndWarn overwrites the existing entry and asks the
	// caller to log a warning.
	CollisionReplaceAndWarn
	// CollisionWarn keeps the existing entry and asks the caller to log a
	// warning; the new object is discarded.
	CollisionWarn
	// CollisionFail keeps the existing entry and marks the registration as
	// failed.
	CollisionFail
)

func (p CollisionPolicy) String() string {
	switch p {
	case CollisionReplace:
		return "Replace"
	case CollisionReplaceAndWarn:
		return "ReplaceAndWarn"
	case CollisionWarn:
		return "Warn"
	case CollisionFail:
		return "Fail"
	default:
		return fmt.Sprintf("CollisionPolicy(%d)", int(p))
	}
}

// CollisionPolicyNames lists the accepted parameter spellings, in enum order.
var CollisionPolicyNames = []string{"Replace", "ReplaceAndWarn", "Warn", "Fail"}

// ParseCollisionPolicy maps a parameter value to a policy. Matching is
// case-insensitive.
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "replace":
		return CollisionReplace, nil
	case "replaceandwarn":
		return CollisionReplaceAndWarn, nil
	case "warn":
		return CollisionWarn, nil
	case "fail":
		return CollisionFail, nil
	default:
		return CollisionFail, fmt.Errorf("unknown collision policy %q (expected one of %s)",
			s, strings.Join(CollisionPolicyNames, ", "))
	}
}
