package todo

// Package todo contains domain types for the todo collection and its
// persistence format. It is pure and free of store/service concerns.

import (
	"encoding/json"
	"fmt"
)

// storageKeyPrefix namespaces durable-store entries per user.
const storageKeyPrefix = "todoes_"

// StorageKey derives the durable-store address for a user's collection.
// The result is only meaningful for a resolved user; callers must never
// derive a key from an empty user ID.
func StorageKey(userID string) string {
	return storageKeyPrefix + userID
}

// Todo is a single item in a user's collection. Fields carries arbitrary
// caller-supplied attributes merged at creation/update time; they are
// flattened alongside the fixed keys in the persisted JSON.
type Todo struct {
	ID        string
	Text      string
	Completed bool
	Fields    map[string]any
}

// fixed JSON keys; everything else round-trips through Fields.
const (
	keyID        = "id"
	keyText      = "text"
	keyCompleted = "completed"
)

// MarshalJSON flattens Fields alongside the fixed keys so the stored value
// is a plain array of objects.
func (t Todo) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(t.Fields)+3)
	for k, v := range t.Fields {
		obj[k] = v
	}
	obj[keyID] = t.ID
	obj[keyText] = t.Text
	obj[keyCompleted] = t.Completed
	return json.Marshal(obj)
}

// UnmarshalJSON splits the fixed keys back out of the flattened object.
// Numeric IDs (written by older clients that derived IDs from timestamps)
// are tolerated and normalized to their decimal string form.
func (t *Todo) UnmarshalJSON(data []byte) error {
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	switch id := obj[keyID].(type) {
	case string:
		t.ID = id
	case float64:
		t.ID = formatNumericID(id)
	case nil:
		t.ID = ""
	default:
		return fmt.Errorf("unsupported todo id type %T", id)
	}
	if text, ok := obj[keyText].(string); ok {
		t.Text = text
	}
	if completed, ok := obj[keyCompleted].(bool); ok {
		t.Completed = completed
	}

	delete(obj, keyID)
	delete(obj, keyText)
	delete(obj, keyCompleted)
	if len(obj) > 0 {
		t.Fields = obj
	} else {
		t.Fields = nil
	}
	return nil
}

func formatNumericID(id float64) string {
	// Timestamp-derived IDs are integral; avoid scientific notation.
	return fmt.Sprintf("%.0f", id)
}

// Input is a partial todo supplied by callers to Add and Update. Nil
// pointers leave the corresponding attribute untouched on update.
type Input struct {
	Text      *string
	Completed *bool
	Fields    map[string]any
}

// apply merges the input into t.
func (in Input) apply(t *Todo) {
	if in.Text != nil {
		t.Text = *in.Text
	}
	if in.Completed != nil {
		t.Completed = *in.Completed
	}
	if len(in.Fields) > 0 {
		if t.Fields == nil {
			t.Fields = make(map[string]any, len(in.Fields))
		}
		for k, v := range in.Fields {
			t.Fields[k] = v
		}
	}
}

// Collection is an ordered sequence of todos, newest first on insertion.
// Order is stable under update and preserved across a save/load round trip.
type Collection []Todo

// Prepend inserts a new todo at the head, merging the input into it.
func (c *Collection) Prepend(id string, in Input) Todo {
	t := Todo{ID: id}
	in.apply(&t)
	*c = append(Collection{t}, *c...)
	return t
}

// Apply merges the input into the todo with the given ID. It reports
// whether a matching todo was found; a miss is not an error.
func (c Collection) Apply(id string, in Input) bool {
	for i := range c {
		if c[i].ID == id {
			in.apply(&c[i])
			return true
		}
	}
	return false
}

// Remove deletes the todo with the given ID, reporting whether it existed.
func (c *Collection) Remove(id string) bool {
	for i := range *c {
		if (*c)[i].ID == id {
			*c = append((*c)[:i], (*c)[i+1:]...)
			return true
		}
	}
	return false
}

// Toggle flips Completed on the todo with the given ID, reporting whether
// it existed.
func (c Collection) Toggle(id string) bool {
	for i := range c {
		if c[i].ID == id {
			c[i].Completed = !c[i].Completed
			return true
		}
	}
	return false
}

// Clone returns a copy safe to hand to callers. Field maps are copied
// shallowly; values are caller-owned.
func (c Collection) Clone() Collection {
	if c == nil {
		return nil
	}
	out := make(Collection, len(c))
	copy(out, c)
	for i := range out {
		if out[i].Fields != nil {
			fields := make(map[string]any, len(out[i].Fields))
			for k, v := range out[i].Fields {
				fields[k] = v
			}
			out[i].Fields = fields
		}
	}
	return out
}

// Encode serializes the collection to the durable-store value format, a
// JSON array of flattened todo objects.
func (c Collection) Encode() (string, error) {
	if c == nil {
		c = Collection{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode collection: %w", err)
	}
	return string(data), nil
}

// Decode parses a stored value back into a collection.
func Decode(value string) (Collection, error) {
	var c Collection
	if err := json.Unmarshal([]byte(value), &c); err != nil {
		return nil, fmt.Errorf("decode collection: %w", err)
	}
	return c, nil
}
