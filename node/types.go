package node

import (
	"math"
	"slices"

	"github.com/pkg/errors"
)

// Kind represents JSON value kinds. Numbers split into Int and Float the way
// ClassifyNumber splits them.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a materialized JSON value.
type Value struct {
	kind Kind

	// Scalar values (only one valid based on kind)
	boolVal  bool
	intVal   int64
	floatVal float64
	strVal   string

	// Number text as it appeared in the source, re-emitted verbatim by Encode.
	raw string

	// Container values
	items   []*Value
	members []Member
}

// Member is a key/value pair of an object. Objects keep source order and may
// hold duplicate keys.
type Member struct {
	Key   string
	Value *Value
}

// ============================================================
// Constructors
// ============================================================

// Null creates a null value.
func Null() *Value {
	return &Value{kind: KindNull}
}

// Bool creates a boolean value.
func Bool(v bool) *Value {
	return &Value{kind: KindBool, boolVal: v}
}

// Int creates an integer value.
func Int(v int64) *Value {
	return &Value{kind: KindInt, intVal: v}
}

// Float creates a float value.
func Float(v float64) *Value {
	return &Value{kind: KindFloat, floatVal: v}
}

// Str creates a string value.
func Str(v string) *Value {
	return &Value{kind: KindString, strVal: v}
}

// Array creates an array value.
func Array(items ...*Value) *Value {
	return &Value{kind: KindArray, items: items}
}

// Object creates an object value.
func Object(members ...Member) *Value {
	return &Value{kind: KindObject, members: members}
}

// Field creates a Member for use in Object construction.
func Field(key string, value *Value) Member {
	return Member{Key: key, Value: value}
}

// ============================================================
// Accessors
// ============================================================

// Kind returns the value kind. A nil value is null.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

// IsNull returns true if this is a null value.
func (v *Value) IsNull() bool {
	return v == nil || v.kind == KindNull
}

func (v *Value) expect(k Kind) error {
	if v == nil {
		return errors.New("node: nil value")
	}
	if v.kind != k {
		return errors.Errorf("node: expected %s, got %s", k, v.kind)
	}
	return nil
}

// AsBool returns the boolean value.
func (v *Value) AsBool() (bool, error) {
	if err := v.expect(KindBool); err != nil {
		return false, err
	}
	return v.boolVal, nil
}

// AsInt returns the integer value.
func (v *Value) AsInt() (int64, error) {
	if err := v.expect(KindInt); err != nil {
		return 0, err
	}
	return v.intVal, nil
}

// AsFloat returns the float value.
func (v *Value) AsFloat() (float64, error) {
	if err := v.expect(KindFloat); err != nil {
		return 0, err
	}
	return v.floatVal, nil
}

// AsStr returns the string value.
func (v *Value) AsStr() (string, error) {
	if err := v.expect(KindString); err != nil {
		return "", err
	}
	return v.strVal, nil
}

// AsArray returns the array items.
func (v *Value) AsArray() ([]*Value, error) {
	if err := v.expect(KindArray); err != nil {
		return nil, err
	}
	return v.items, nil
}

// AsObject returns the object members in source order.
func (v *Value) AsObject() ([]Member, error) {
	if err := v.expect(KindObject); err != nil {
		return nil, err
	}
	return v.members, nil
}

// Raw returns the source text of a decoded number, or "" when the value was
// built in memory.
func (v *Value) Raw() string {
	if v == nil {
		return ""
	}
	return v.raw
}

// Len returns the length of an array or object.
func (v *Value) Len() int {
	switch v.Kind() {
	case KindArray:
		return len(v.items)
	case KindObject:
		return len(v.members)
	default:
		return 0
	}
}

// Get returns the value of the first member named key, or nil.
func (v *Value) Get(key string) *Value {
	if v.Kind() != KindObject {
		return nil
	}
	for _, m := range v.members {
		if m.Key == key {
			return m.Value
		}
	}
	return nil
}

// Index returns the i-th item of an array.
func (v *Value) Index(i int) (*Value, error) {
	if err := v.expect(KindArray); err != nil {
		return nil, err
	}
	if i < 0 || i >= len(v.items) {
		return nil, errors.Errorf("node: index %d out of bounds (len=%d)", i, len(v.items))
	}
	return v.items[i], nil
}

// ============================================================
// Mutators
// ============================================================

// Set replaces the first member named key, or appends one.
func (v *Value) Set(key string, val *Value) {
	if v.Kind() != KindObject {
		panic("node: cannot set on non-object")
	}
	for i := range v.members {
		if v.members[i].Key == key {
			v.members[i].Value = val
			return
		}
	}
	v.members = append(v.members, Member{Key: key, Value: val})
}

// Append adds an item to an array.
func (v *Value) Append(val *Value) {
	if v.Kind() != KindArray {
		panic("node: cannot append to non-array")
	}
	v.items = append(v.items, val)
}

// ============================================================
// Numeric Coercion Helpers
// ============================================================

// Number returns a numeric value as float64 if int or float.
func (v *Value) Number() (float64, bool) {
	switch v.Kind() {
	case KindInt:
		return float64(v.intVal), true
	case KindFloat:
		return v.floatVal, true
	default:
		return 0, false
	}
}

// IsNumeric returns true if int or float.
func (v *Value) IsNumeric() bool {
	k := v.Kind()
	return k == KindInt || k == KindFloat
}

// ============================================================
// Go value bridge
// ============================================================

// maxSafeInt is the largest integer a float64 holds exactly.
const maxSafeInt = 1<<53 - 1

// FromAny converts the output of a generic JSON unmarshal (nil, bool,
// float64, string, []any, map[string]any) to a Value. Integral floats within
// ±2^53 become Int. Map members are sorted by key.
func FromAny(v any) (*Value, error) {
	if v == nil {
		return Null(), nil
	}

	switch val := v.(type) {
	case bool:
		return Bool(val), nil

	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil, errors.New("node: NaN and infinities are not JSON")
		}
		if val == math.Trunc(val) && val >= -maxSafeInt && val <= maxSafeInt {
			return Int(int64(val)), nil
		}
		return Float(val), nil

	case int:
		return Int(int64(val)), nil

	case int64:
		return Int(val), nil

	case string:
		return Str(val), nil

	case []any:
		items := make([]*Value, 0, len(val))
		for i, elem := range val {
			item, err := FromAny(elem)
			if err != nil {
				return nil, errors.Wrapf(err, "array[%d]", i)
			}
			items = append(items, item)
		}
		return Array(items...), nil

	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		members := make([]Member, 0, len(val))
		for _, k := range keys {
			elem := val[k]
			item, err := FromAny(elem)
			if err != nil {
				return nil, errors.Wrapf(err, "object[%q]", k)
			}
			members = append(members, Member{Key: k, Value: item})
		}
		return Object(members...), nil

	default:
		return nil, errors.Errorf("node: unsupported Go type %T", v)
	}
}

// ToAny converts v to the shapes a generic JSON unmarshal produces: numbers
// become float64, arrays []any and objects map[string]any. Duplicate keys
// keep the last member.
func ToAny(v *Value) any {
	switch v.Kind() {
	case KindNull:
		return nil
	case KindBool:
		return v.boolVal
	case KindInt:
		return float64(v.intVal)
	case KindFloat:
		return v.floatVal
	case KindString:
		return v.strVal
	case KindArray:
		items := make([]any, 0, len(v.items))
		for _, item := range v.items {
			items = append(items, ToAny(item))
		}
		return items
	case KindObject:
		obj := make(map[string]any, len(v.members))
		for _, m := range v.members {
			obj[m.Key] = ToAny(m.Value)
		}
		return obj
	default:
		return nil
	}
}

// Equal reports whether a and b hold the same JSON value. Number source text
// is ignored; Int and Float compare by kind and value. Object members compare
// in order.
func Equal(a, b *Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case KindNull:
		return true
	case KindBool:
		return a.boolVal == b.boolVal
	case KindInt:
		return a.intVal == b.intVal
	case KindFloat:
		return a.floatVal == b.floatVal || (math.IsNaN(a.floatVal) && math.IsNaN(b.floatVal))
	case KindString:
		return a.strVal == b.strVal
	case KindArray:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !Equal(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.members) != len(b.members) {
			return false
		}
		for i := range a.members {
			if a.members[i].Key != b.members[i].Key || !Equal(a.members[i].Value, b.members[i].Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
