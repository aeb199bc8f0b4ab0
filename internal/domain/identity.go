package domain

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

var digitRun = regexp.MustCompile(`\d+`)

// EntityID is a numeric identifier as the entity store serializes it:
// sometimes a plain JSON number, sometimes a composite display string
// with the number embedded ("ORD-2024-00042"). Null or digitless input
// leaves the ID unresolved rather than failing the decode.
type EntityID struct {
	Value int64
	Valid bool
}

// NewEntityID returns a resolved identifier.
func NewEntityID(value int64) EntityID {
	return EntityID{Value: value, Valid: true}
}

// NormalizeID extracts the canonical numeric identifier from a raw
// value. When a string carries several digit runs the last run wins,
// matching how the store embeds an id at the end of display strings.
func NormalizeID(v any) EntityID {
	switch val := v.(type) {
	case nil:
		return EntityID{}
	case int:
		return NewEntityID(int64(val))
	case int64:
		return NewEntityID(val)
	case float64:
		return NewEntityID(int64(val))
	case json.Number:
		parsed, err := val.Int64()
		if err != nil {
			return normalizeString(val.String())
		}
		return NewEntityID(parsed)
	case string:
		return normalizeString(val)
	default:
		return EntityID{}
	}
}

func normalizeString(s string) EntityID {
	runs := digitRun.FindAllString(s, -1)
	if len(runs) == 0 {
		return EntityID{}
	}
	parsed, err := strconv.ParseInt(runs[len(runs)-1], 10, 64)
	if err != nil {
		return EntityID{}
	}
	return NewEntityID(parsed)
}

// UnmarshalJSON accepts a number, a string with an embedded number, or
// null. Unresolvable input is tolerated, never an error.
func (id *EntityID) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*id = EntityID{}
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*id = EntityID{}
			return nil
		}
		*id = normalizeString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		*id = EntityID{}
		return nil
	}
	*id = NormalizeID(n)
	return nil
}

// MarshalJSON writes the canonical numeric form, or null when
// unresolved.
func (id EntityID) MarshalJSON() ([]byte, error) {
	if !id.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(id.Value, 10)), nil
}

func (id EntityID) String() string {
	if !id.Valid {
		return ""
	}
	return strconv.FormatInt(id.Value, 10)
}
