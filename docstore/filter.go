package docstore

import "go.mongodb.org/mongo-driver/v2/bson"

const (
	FieldID               = "_id"
	FieldConcurrencyStamp = "concurrency_stamp"
)

// All matches every document.
func All() bson.D { return bson.D{} }

func ByID(id any) bson.D {
	return bson.D{{Key: FieldID, Value: id}}
}

func Eq(field string, value any) bson.D {
	return bson.D{{Key: field, Value: value}}
}

// Contains matches documents whose array field holds value.
func Contains(field string, value any) bson.D {
	return Eq(field, value)
}

func In[T any](field string, values []T) bson.D {
	arr := make(bson.A, 0, len(values))
	for _, v := range values {
		arr = append(arr, v)
	}
	return bson.D{{Key: field, Value: bson.D{{Key: "$in", Value: arr}}}}
}

// ElemMatch matches documents with at least one element of the array field
// satisfying every condition in cond.
func ElemMatch(field string, cond bson.D) bson.D {
	return bson.D{{Key: field, Value: bson.D{{Key: "$elemMatch", Value: cond}}}}
}

func And(filters ...bson.D) bson.D {
	arr := make(bson.A, 0, len(filters))
	for _, f := range filters {
		arr = append(arr, f)
	}
	return bson.D{{Key: "$and", Value: arr}}
}

// Fields builds an inclusion projection.
func Fields(names ...string) bson.D {
	p := make(bson.D, 0, len(names))
	for _, n := range names {
		p = append(p, bson.E{Key: n, Value: 1})
	}
	return p
}

// NewObjectIDHex returns a fresh ObjectID in hex form, for string keyed entities.
func NewObjectIDHex() string {
	return bson.NewObjectID().Hex()
}
