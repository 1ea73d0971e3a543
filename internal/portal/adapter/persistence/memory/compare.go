package memory

import (
	"consultancy-portal/internal/portal/domain/model"
)

// afterCursor reports whether rec sorts strictly after the cursor under orders.
func afterCursor(rec model.Record, cur *model.Cursor, orders []model.Order) bool {
	for _, o := range orders {
		rv, _ := rec.Get(o.Field)
		cv, _ := cur.Value(o.Field)
		c := model.CompareValues(rv, cv)
		if o.Direction == model.Descending {
			c = -c
		}
		if c != 0 {
			return c > 0
		}
	}
	return false
}

func matches(rec model.Record, f model.Filter) bool {
	v, ok := rec.Get(f.Field)
	if !ok {
		return false
	}
	switch f.Operator {
	case model.OperatorEqual:
		return model.CompareValues(v, f.Value) == 0
	case model.OperatorNotEqual:
		return model.CompareValues(v, f.Value) != 0
	case model.OperatorLessThan:
		return model.SameKind(v, f.Value) && model.CompareValues(v, f.Value) < 0
	case model.OperatorLessThanOrEqual:
		return model.SameKind(v, f.Value) && model.CompareValues(v, f.Value) <= 0
	case model.OperatorGreaterThan:
		return model.SameKind(v, f.Value) && model.CompareValues(v, f.Value) > 0
	case model.OperatorGreaterThanOrEqual:
		return model.SameKind(v, f.Value) && model.CompareValues(v, f.Value) >= 0
	case model.OperatorIn:
		values, ok := f.Value.([]interface{})
		if !ok {
			return false
		}
		for _, candidate := range values {
			if model.CompareValues(v, candidate) == 0 {
				return true
			}
		}
	}
	return false
}
