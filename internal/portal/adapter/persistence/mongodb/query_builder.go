package mongodb

import (
	"fmt"
	"sort"
	"time"

	"consultancy-portal/internal/portal/domain/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fieldPath maps a record field to its stored path. The record ID lives in _id.
func fieldPath(field string) string {
	if field == model.FieldID {
		return "_id"
	}
	return field
}

var comparisonOps = map[string]string{
	model.OperatorEqual:              "$eq",
	model.OperatorNotEqual:           "$ne",
	model.OperatorLessThan:           "$lt",
	model.OperatorLessThanOrEqual:    "$lte",
	model.OperatorGreaterThan:        "$gt",
	model.OperatorGreaterThanOrEqual: "$gte",
	model.OperatorIn:                 "$in",
}

// buildFilter turns the query's where clauses into a conjunctive filter.
func buildFilter(filters []model.Filter) (bson.M, error) {
	if len(filters) == 0 {
		return bson.M{}, nil
	}
	clauses := make([]bson.M, 0, len(filters))
	for _, f := range filters {
		op, ok := comparisonOps[f.Operator]
		if !ok {
			return nil, fmt.Errorf("unsupported operator %q on %s", f.Operator, f.Field)
		}
		clauses = append(clauses, bson.M{fieldPath(f.Field): bson.M{op: toBSON(f.Value)}})
	}
	if len(clauses) == 1 {
		return clauses[0], nil
	}
	return bson.M{"$and": clauses}, nil
}

// buildCursorFilter matches records strictly after the cursor in the sort order.
//
// For orders (a desc, _id desc) and cursor (va, vid) it yields
// {$or: [{a: {$lt: va}}, {a: va, _id: {$lt: vid}}]}.
func buildCursorFilter(q model.Query) bson.M {
	if q.StartAfter == nil || len(q.Orders) == 0 {
		return nil
	}
	branches := make([]bson.M, 0, len(q.Orders))
	for i, order := range q.Orders {
		branch := bson.M{}
		for _, prev := range q.Orders[:i] {
			v, _ := q.StartAfter.Value(prev.Field)
			branch[fieldPath(prev.Field)] = toBSON(v)
		}
		v, _ := q.StartAfter.Value(order.Field)
		op := "$gt"
		if order.Direction == model.Descending {
			op = "$lt"
		}
		branch[fieldPath(order.Field)] = bson.M{op: toBSON(v)}
		branches = append(branches, branch)
	}
	if len(branches) == 1 {
		return branches[0]
	}
	return bson.M{"$or": branches}
}

// mergeFiltersWithAnd combines two filters, flattening existing $and arrays.
func mergeFiltersWithAnd(filter1, filter2 bson.M) bson.M {
	if len(filter1) == 0 {
		return filter2
	}
	if len(filter2) == 0 {
		return filter1
	}
	var clauses []bson.M
	for _, f := range []bson.M{filter1, filter2} {
		if and, ok := f["$and"].([]bson.M); ok && len(f) == 1 {
			clauses = append(clauses, and...)
			continue
		}
		clauses = append(clauses, f)
	}
	return bson.M{"$and": clauses}
}

// buildSort returns the sort document for the query's orders.
func buildSort(orders []model.Order) bson.D {
	sortDoc := make(bson.D, 0, len(orders))
	for _, o := range orders {
		dir := 1
		if o.Direction == model.Descending {
			dir = -1
		}
		sortDoc = append(sortDoc, bson.E{Key: fieldPath(o.Field), Value: dir})
	}
	return sortDoc
}

// flattenSet renders fields as dotted $set paths so nested maps merge rather than replace.
// An empty nested map sets nothing, matching the memory store's merge.
func flattenSet(prefix string, fields map[string]interface{}, out bson.M) bson.M {
	if out == nil {
		out = bson.M{}
	}
	for k, v := range fields {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]interface{}); ok {
			flattenSet(key, nested, out)
			continue
		}
		out[key] = toBSON(v)
	}
	return out
}

// toBSON normalizes values for storage. Times are kept at millisecond precision.
func toBSON(v interface{}) interface{} {
	switch x := v.(type) {
	case time.Time:
		return primitive.NewDateTimeFromTime(x)
	case map[string]interface{}:
		out := make(bson.M, len(x))
		for k, val := range x {
			out[k] = toBSON(val)
		}
		return out
	case []interface{}:
		out := make(bson.A, len(x))
		for i, val := range x {
			out[i] = toBSON(val)
		}
		return out
	case []string:
		out := make(bson.A, len(x))
		for i, val := range x {
			out[i] = val
		}
		return out
	}
	return v
}

// fromBSON converts a decoded document into plain maps, slices and times.
func fromBSON(v interface{}) interface{} {
	switch x := v.(type) {
	case bson.M:
		out := make(map[string]interface{}, len(x))
		for k, val := range x {
			out[k] = fromBSON(val)
		}
		return out
	case bson.D:
		out := make(map[string]interface{}, len(x))
		for _, e := range x {
			out[e.Key] = fromBSON(e.Value)
		}
		return out
	case bson.A:
		out := make([]interface{}, len(x))
		for i, val := range x {
			out[i] = fromBSON(val)
		}
		return out
	case primitive.DateTime:
		return x.Time().UTC()
	case primitive.ObjectID:
		return x.Hex()
	case int32:
		return int64(x)
	}
	return v
}

// toRecord turns a stored document into a record.
func toRecord(doc bson.M) model.Record {
	id := fmt.Sprint(fromBSON(doc["_id"]))
	fields := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		if k == "_id" {
			continue
		}
		fields[k] = fromBSON(v)
	}
	return model.Record{ID: id, Fields: fields}
}

// toDocument renders fields for insert or replace.
func toDocument(id string, fields map[string]interface{}) bson.D {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k == "_id" || k == model.FieldID {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	doc := make(bson.D, 0, len(keys)+1)
	doc = append(doc, bson.E{Key: "_id", Value: id})
	for _, k := range keys {
		doc = append(doc, bson.E{Key: k, Value: toBSON(fields[k])})
	}
	return doc
}

// setDocument is the $set update for a merge write. With nothing to set it
// rewrites _id to itself, which leaves the document as it was.
func setDocument(id string, fields map[string]interface{}) bson.M {
	set := flattenSet("", withoutID(fields), nil)
	if len(set) == 0 {
		set["_id"] = id
	}
	return bson.M{"$set": set}
}
