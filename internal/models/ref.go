package models

import (
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRef is a reference to a user. It renders as the bare id until the
// user has been joined in, then as the user's public projection.
type UserRef struct {
	ID   primitive.ObjectID
	User *UserCompact
}

func (r UserRef) MarshalJSON() ([]byte, error) {
	if r.User != nil {
		return json.Marshal(r.User)
	}
	return marshalID(r.ID)
}

// UnmarshalBSONValue accepts either an ObjectID or a joined user document.
func (r *UserRef) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	var u UserCompact
	joined, err := decodeRef(t, data, &r.ID, &u)
	if err != nil || !joined {
		return err
	}
	r.ID, r.User = u.ID, &u
	return nil
}

// PostRef is a reference to a post, rendered like UserRef.
type PostRef struct {
	ID   primitive.ObjectID
	Post *PostView
}

func (r PostRef) MarshalJSON() ([]byte, error) {
	if r.Post != nil {
		return json.Marshal(r.Post)
	}
	return marshalID(r.ID)
}

func (r *PostRef) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	var p PostView
	joined, err := decodeRef(t, data, &r.ID, &p)
	if err != nil || !joined {
		return err
	}
	r.ID, r.Post = p.ID, &p
	return nil
}

func marshalID(id primitive.ObjectID) ([]byte, error) {
	if id.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(id)
}

// decodeRef stores an ObjectID in id, or decodes an embedded document into
// doc and reports joined.
func decodeRef(t bsontype.Type, data []byte, id *primitive.ObjectID, doc interface{}) (bool, error) {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.ObjectID:
		*id = raw.ObjectID()
		return false, nil
	case bsontype.EmbeddedDocument:
		return true, raw.Unmarshal(doc)
	case bsontype.Null, bsontype.Undefined:
		return false, nil
	default:
		return false, fmt.Errorf("cannot decode %s into a reference", t)
	}
}
