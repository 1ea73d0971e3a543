package model

import (
	"strings"
	"time"
)

// Value kinds give a total order across types: null < bool < number < time < string.
const (
	kindNull = iota
	kindBool
	kindNumber
	kindTime
	kindString
	kindOther
)

func valueKind(v interface{}) int {
	switch v.(type) {
	case nil:
		return kindNull
	case bool:
		return kindBool
	case int, int32, int64, float32, float64:
		return kindNumber
	case time.Time:
		return kindTime
	case string:
		return kindString
	default:
		return kindOther
	}
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

// SameKind reports whether a and b compare within one type rather than by kind.
func SameKind(a, b interface{}) bool {
	return valueKind(a) == valueKind(b)
}

// CompareValues orders two field values; the result is -1, 0 or 1.
func CompareValues(a, b interface{}) int {
	ka, kb := valueKind(a), valueKind(b)
	if ka != kb {
		if ka < kb {
			return -1
		}
		return 1
	}
	switch ka {
	case kindBool:
		ab, bb := a.(bool), b.(bool)
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		default:
			return 1
		}
	case kindNumber:
		af, bf := toFloat(a), toFloat(b)
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	case kindTime:
		return a.(time.Time).Compare(b.(time.Time))
	case kindString:
		return strings.Compare(a.(string), b.(string))
	}
	return 0
}

// CompareRecords compares two records under orders, the way a store sorts a page.
func CompareRecords(a, b Record, orders []Order) int {
	for _, o := range orders {
		av, _ := a.Get(o.Field)
		bv, _ := b.Get(o.Field)
		c := CompareValues(av, bv)
		if o.Direction == Descending {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}
