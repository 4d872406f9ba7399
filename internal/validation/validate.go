package validation

import (
	"encoding/json"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Clark-Hu/movielog/internal/domain"
	"github.com/Clark-Hu/movielog/internal/failure"
)

// Validate runs every rule against in and returns a validation failure
// carrying all violations, or nil. The input is never modified.
func Validate(rules RuleSet, in Input) error {
	var violations []failure.Violation
	for _, rule := range rules {
		if kind, ok := check(rule, in); !ok {
			violations = append(violations, failure.Violation{Field: rule.Field, Kind: kind})
		}
	}
	if len(violations) > 0 {
		return failure.Validation(violations...)
	}
	return nil
}

func check(rule Rule, in Input) (failure.ViolationKind, bool) {
	value, present := lookup(in, rule.In, rule.Field)
	if !present {
		switch rule.Presence {
		case Required:
			return failure.ViolationRequired, false
		case RequiredWith:
			if _, with := lookup(in, rule.In, rule.With); with {
				return failure.ViolationRequired, false
			}
		}
		return "", true
	}

	if kind, ok := checkType(rule.Type, rule.In, value); !ok {
		return kind, false
	}
	if rule.Type != TypeInteger {
		return "", true
	}

	n, _ := integer(value)
	if (rule.Min != nil && n < *rule.Min) || (rule.Max != nil && n > *rule.Max) {
		return failure.ViolationRange, false
	}
	if rule.MultipleOf > 0 && n%rule.MultipleOf != 0 {
		return failure.ViolationMultipleOf, false
	}
	if len(rule.OneOf) > 0 && !contains(rule.OneOf, n) {
		return failure.ViolationOneOf, false
	}
	if rule.MeanOf[0] != "" {
		a, okA := siblingInt(in, rule.In, rule.MeanOf[0])
		b, okB := siblingInt(in, rule.In, rule.MeanOf[1])
		if okA && okB && int64(domain.MeanOf(int(a), int(b))) != n {
			return failure.ViolationMean, false
		}
	}
	return "", true
}

// lookup treats empty strings and JSON null as absent.
func lookup(in Input, src Source, field string) (any, bool) {
	switch src {
	case SourcePath:
		v := in.Path[field]
		return v, v != ""
	case SourceQuery:
		v := in.Query.Get(field)
		return v, v != ""
	case SourceBody:
		return walk(in.Body, field)
	}
	return nil, false
}

// walk resolves a dotted path such as "rating.total" inside a decoded body.
func walk(body map[string]any, path string) (any, bool) {
	var cur any = body
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, cur != nil
}

func checkType(t Type, src Source, value any) (failure.ViolationKind, bool) {
	switch t {
	case TypeInteger:
		if _, ok := integer(value); !ok {
			return failure.ViolationInteger, false
		}
	case TypeString:
		if _, ok := value.(string); !ok {
			return failure.ViolationString, false
		}
	case TypeBoolean:
		if !boolean(src, value) {
			return failure.ViolationBoolean, false
		}
	case TypeDate:
		s, ok := value.(string)
		if !ok {
			return failure.ViolationDate, false
		}
		if _, err := domain.ParseDate(s); err != nil {
			return failure.ViolationDate, false
		}
	case TypeObjectID:
		s, ok := value.(string)
		if !ok {
			return failure.ViolationObjectID, false
		}
		if _, err := bson.ObjectIDFromHex(s); err != nil {
			return failure.ViolationObjectID, false
		}
	}
	return "", true
}

// integer accepts decimal strings from the path or query, and JSON numbers
// without a fractional part from the body.
// integer accepts JSON integers and decimal strings from any source.
func integer(value any) (int64, bool) {
	switch v := value.(type) {
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case float64:
		n := int64(v)
		return n, float64(n) == v
	}
	return 0, false
}

func boolean(src Source, value any) bool {
	switch v := value.(type) {
	case bool:
		return true
	case string:
		if src == SourceBody {
			return false
		}
		switch v {
		case "true", "false", "1", "0":
			return true
		}
	}
	return false
}

func siblingInt(in Input, src Source, field string) (int64, bool) {
	v, ok := lookup(in, src, field)
	if !ok {
		return 0, false
	}
	return integer(v)
}

func contains(set []int64, n int64) bool {
	for _, v := range set {
		if v == n {
			return true
		}
	}
	return false
}
