package model

// Query describes a read against one collection of the document store.
type Query struct {
	Collection string
	Filters    []Filter
	Orders     []Order
	Limit      int
	// StartAfter positions the query after a previously returned record.
	StartAfter *Cursor
}

// Filter represents a single filter condition in a query (where clause).
type Filter struct {
	Field    string
	Operator string
	Value    interface{}
}

// Order represents a single ordering condition in a query.
type Order struct {
	Field     string
	Direction string
}

const (
	// Ascending is used for ordering in ascending order.
	Ascending = "asc"
	// Descending is used for ordering in descending order.
	Descending = "desc"
)

// Operator types for filters
const (
	OperatorEqual              = "=="
	OperatorNotEqual           = "!="
	OperatorLessThan           = "<"
	OperatorLessThanOrEqual    = "<="
	OperatorGreaterThan        = ">"
	OperatorGreaterThanOrEqual = ">="
	OperatorIn                 = "in"
)

// Where is shorthand for an equality filter.
func Where(field string, value interface{}) Filter {
	return Filter{Field: field, Operator: OperatorEqual, Value: value}
}

// IsOrdered reports whether the query orders on anything besides the document ID.
func (q Query) IsOrdered() bool {
	for _, o := range q.Orders {
		if o.Field != FieldID {
			return true
		}
	}
	return false
}

// Unordered returns a copy of q ordered by document ID only.
func (q Query) Unordered() Query {
	out := q
	out.Orders = []Order{{Field: FieldID, Direction: Ascending}}
	return out
}
