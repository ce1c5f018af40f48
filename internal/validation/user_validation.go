package validation

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"user_management/internal/model"
)

// ValidateUserIdentifier coerces a route parameter into a positive user ID.
// Numeric strings such as "42", " 42 " or "42.0" are accepted.
func ValidateUserIdentifier(raw string) (int64, error) {
	verr := &ValidationError{}
	s := strings.TrimSpace(raw)
	if s == "" {
		verr.add("id", "is required")
		return 0, verr
	}

	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			verr.add("id", "is out of range")
			return 0, verr
		}
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			verr.add("id", "must be a number")
			return 0, verr
		}
		if f != math.Trunc(f) {
			verr.add("id", "must be an integer")
			return 0, verr
		}
		if f >= math.MaxInt64 || f < math.MinInt64 {
			verr.add("id", "is out of range")
			return 0, verr
		}
		id = int64(f)
	}

	if !verr.checkVar("id", id, "gt=0") {
		return 0, verr
	}
	return id, nil
}

// ValidateUserUpdate checks the optional name, email and role fields of an update body.
// Unknown keys are ignored. Every invalid field is reported, not only the first.
func ValidateUserUpdate(body map[string]any) (model.UserUpdate, error) {
	var upd model.UserUpdate
	verr := &ValidationError{}

	if raw, ok := body["name"]; ok {
		if name, isStr := raw.(string); !isStr {
			verr.add("name", "must be a string")
		} else {
			name = strings.TrimSpace(name)
			if verr.checkVar("name", name, "min=2,max=255") {
				upd.Name = &name
			}
		}
	}

	if raw, ok := body["email"]; ok {
		if email, isStr := raw.(string); !isStr {
			verr.add("email", "must be a string")
		} else {
			email = strings.ToLower(strings.TrimSpace(email))
			if verr.checkVar("email", email, "required,email,max=255") {
				upd.Email = &email
			}
		}
	}

	if raw, ok := body["role"]; ok {
		if role, isStr := raw.(string); !isStr {
			verr.add("role", "must be a string")
		} else if verr.checkVar("role", role, "oneof=user admin") {
			r := model.Role(role)
			upd.Role = &r
		}
	}

	if err := verr.err(); err != nil {
		return model.UserUpdate{}, err
	}
	return upd, nil
}
