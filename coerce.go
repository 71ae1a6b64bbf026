package xbase

import (
	"fmt"

	"github.com/mkfoss/xbase/internal/core"
)

// These helpers accept the single canonical Go type each field setter
// documents, plus the small set of numeric/bool types a caller naturally
// reaches for, per the design notes' call to narrow the original's
// duck-typed field input to one canonical type at the core, leaving looser
// coercion to an outer layer.

func toFloat64(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case core.NumericValue:
		return v.Value, nil
	default:
		return 0, NewFieldSpecError(fmt.Sprintf("expected a numeric value, got %T", value))
	}
}

func toInt32(value interface{}) (int32, error) {
	switch v := value.(type) {
	case int32:
		return v, nil
	case int:
		return int32(v), nil
	case int64:
		return int32(v), nil
	case float64:
		return int32(v), nil
	default:
		return 0, NewFieldSpecError(fmt.Sprintf("expected an integer value, got %T", value))
	}
}

func toLogical(value interface{}) (core.Logical, error) {
	switch v := value.(type) {
	case core.Logical:
		return v, nil
	case bool:
		if v {
			return core.LogicalTrue, nil
		}
		return core.LogicalFalse, nil
	case nil:
		return core.LogicalUnknown, nil
	default:
		return core.LogicalUnknown, NewFieldSpecError(fmt.Sprintf("expected a bool or core.Logical, got %T", value))
	}
}
