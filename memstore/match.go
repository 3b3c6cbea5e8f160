package memstore

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func marshalFilter(filter bson.D) (bson.Raw, error) {
	if len(filter) == 0 {
		return nil, nil
	}
	return bson.Marshal(filter)
}

// matches evaluates a filter document against doc. An empty filter matches everything.
func matches(doc, filter bson.Raw) (bool, error) {
	if len(filter) == 0 {
		return true, nil
	}
	elems, err := filter.Elements()
	if err != nil {
		return false, err
	}
	for _, e := range elems {
		var ok bool
		switch key := e.Key(); key {
		case "$and", "$or":
			ok, err = matchLogical(doc, key, e.Value())
		default:
			ok, err = matchField(doc, key, e.Value())
		}
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func matchLogical(doc bson.Raw, op string, arg bson.RawValue) (bool, error) {
	arr, ok := arg.ArrayOK()
	if !ok {
		return false, fmt.Errorf("memstore: %s needs an array", op)
	}
	vals, err := arr.Values()
	if err != nil {
		return false, err
	}
	for _, v := range vals {
		sub, ok := v.DocumentOK()
		if !ok {
			return false, fmt.Errorf("memstore: %s entries must be documents", op)
		}
		m, err := matches(doc, sub)
		if err != nil {
			return false, err
		}
		if op == "$or" && m {
			return true, nil
		}
		if op == "$and" && !m {
			return false, nil
		}
	}
	return op == "$and", nil
}

func matchField(doc bson.Raw, path string, cond bson.RawValue) (bool, error) {
	field, err := doc.LookupErr(strings.Split(path, ".")...)
	present := err == nil

	if ops, ok := operatorDoc(cond); ok {
		elems, err := ops.Elements()
		if err != nil {
			return false, err
		}
		for _, op := range elems {
			m, err := applyOperator(field, present, op.Key(), op.Value())
			if err != nil || !m {
				return false, err
			}
		}
		return true, nil
	}

	if !present {
		return cond.Type == bson.TypeNull, nil
	}
	return equalOrContains(field, cond), nil
}

// operatorDoc reports whether cond is a document whose keys are operators.
func operatorDoc(cond bson.RawValue) (bson.Raw, bool) {
	d, ok := cond.DocumentOK()
	if !ok {
		return nil, false
	}
	elems, err := d.Elements()
	if err != nil || len(elems) == 0 {
		return nil, false
	}
	return d, strings.HasPrefix(elems[0].Key(), "$")
}

func applyOperator(field bson.RawValue, present bool, op string, arg bson.RawValue) (bool, error) {
	switch op {
	case "$eq":
		return present && equalOrContains(field, arg), nil
	case "$ne":
		return !present || !equalOrContains(field, arg), nil
	case "$exists":
		want, ok := arg.BooleanOK()
		if !ok {
			return false, fmt.Errorf("memstore: $exists needs a boolean")
		}
		return present == want, nil
	case "$in":
		arr, ok := arg.ArrayOK()
		if !ok {
			return false, fmt.Errorf("memstore: $in needs an array")
		}
		vals, err := arr.Values()
		if err != nil {
			return false, err
		}
		for _, v := range vals {
			if present && equalOrContains(field, v) {
				return true, nil
			}
		}
		return false, nil
	case "$elemMatch":
		sub, ok := arg.DocumentOK()
		if !ok {
			return false, fmt.Errorf("memstore: $elemMatch needs a document")
		}
		if !present {
			return false, nil
		}
		arr, ok := field.ArrayOK()
		if !ok {
			return false, nil
		}
		vals, err := arr.Values()
		if err != nil {
			return false, err
		}
		for _, v := range vals {
			elem, ok := v.DocumentOK()
			if !ok {
				continue
			}
			m, err := matches(elem, sub)
			if err != nil {
				return false, err
			}
			if m {
				return true, nil
			}
		}
		return false, nil
	}
	return false, fmt.Errorf("memstore: unsupported operator %s", op)
}

// equalOrContains follows the document-database rule that equality against an
// array field matches when any element is equal.
func equalOrContains(field, v bson.RawValue) bool {
	if field.Equal(v) {
		return true
	}
	arr, ok := field.ArrayOK()
	if !ok {
		return false
	}
	vals, err := arr.Values()
	if err != nil {
		return false
	}
	for _, x := range vals {
		if x.Equal(v) {
			return true
		}
	}
	return false
}

// project applies an inclusion projection. _id is kept unless excluded with 0.
func project(doc bson.Raw, projection bson.D) (bson.Raw, error) {
	if len(projection) == 0 {
		return append(bson.Raw(nil), doc...), nil
	}
	include := make(map[string]bool, len(projection))
	keepID := true
	for _, p := range projection {
		on := fmt.Sprint(p.Value) != "0" && p.Value != false
		if p.Key == "_id" {
			keepID = on
			continue
		}
		include[p.Key] = on
	}

	elems, err := doc.Elements()
	if err != nil {
		return nil, err
	}
	out := bson.D{}
	for _, e := range elems {
		if (e.Key() == "_id" && keepID) || include[e.Key()] {
			out = append(out, bson.E{Key: e.Key(), Value: e.Value()})
		}
	}
	return bson.Marshal(out)
}
