package shared

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// The portal API is loosely typed: numbers arrive as strings, collections
// arrive as null or objects, ids arrive as numbers. The types below never
// fail to unmarshal so a single bad field defaults instead of rejecting the
// whole payload.

var jsonNull = []byte("null")

// Number is a JSON number that also accepts numeric strings. Anything else,
// including NaN and infinities, decodes as invalid.
type Number struct {
	Value float64
	Valid bool
}

// Num returns a valid Number.
func Num(v float64) Number {
	return Number{Value: v, Valid: true}
}

func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, jsonNull) {
		return nil
	}

	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		n.set(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			n.set(f)
		}
	}
	return nil
}

func (n *Number) set(f float64) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return
	}
	n.Value = f
	n.Valid = true
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return jsonNull, nil
	}
	return json.Marshal(n.Value)
}

// Or returns the value, or def when the number is invalid.
func (n Number) Or(def float64) float64 {
	if !n.Valid {
		return def
	}
	return n.Value
}

// Text is a JSON string that also accepts numbers and booleans.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	*t = ""
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, jsonNull) {
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = Text(s)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(b, &num); err == nil {
		*t = Text(num.String())
		return nil
	}

	var flag bool
	if err := json.Unmarshal(b, &flag); err == nil {
		*t = Text(strconv.FormatBool(flag))
	}
	return nil
}

func (t Text) String() string {
	return string(t)
}

// FirstText returns the first non-blank value.
func FirstText(values ...Text) string {
	for _, v := range values {
		if s := strings.TrimSpace(string(v)); s != "" {
			return s
		}
	}
	return ""
}

// List is a JSON array whose malformed elements are skipped. A value that is
// not an array leaves the list absent (Present == false).
type List[T any] struct {
	Items   []T
	Present bool
}

// ListOf returns a present list holding items.
func ListOf[T any](items ...T) List[T] {
	if items == nil {
		items = []T{}
	}
	return List[T]{Items: items, Present: true}
}

func (l *List[T]) UnmarshalJSON(b []byte) error {
	*l = List[T]{}

	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil || raw == nil {
		return nil
	}

	l.Present = true
	l.Items = make([]T, 0, len(raw))
	for _, elem := range raw {
		var item T
		if err := json.Unmarshal(elem, &item); err != nil {
			continue
		}
		l.Items = append(l.Items, item)
	}
	return nil
}

func (l List[T]) MarshalJSON() ([]byte, error) {
	if !l.Present {
		return jsonNull, nil
	}
	if l.Items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.Items)
}

// KPIs is the snapshot's map of named metrics. A non-object decodes as empty.
type KPIs map[string]Number

func (k *KPIs) UnmarshalJSON(b []byte) error {
	var m map[string]Number
	if err := json.Unmarshal(b, &m); err != nil || m == nil {
		*k = KPIs{}
		return nil
	}
	*k = m
	return nil
}

// Get returns the named KPI when it is present and numeric.
func (k KPIs) Get(name string) (float64, bool) {
	n, ok := k[name]
	if !ok || !n.Valid {
		return 0, false
	}
	return n.Value, true
}

// Numeric returns only the valid entries, as plain numbers.
func (k KPIs) Numeric() map[string]float64 {
	out := make(map[string]float64, len(k))
	for name, n := range k {
		if n.Valid {
			out[name] = n.Value
		}
	}
	return out
}

// CourseRef is a course reference that arrives either as a bare id or as a
// populated object.
type CourseRef struct {
	ID    Text
	Code  Text
	Title Text
}

func (c *CourseRef) UnmarshalJSON(b []byte) error {
	*c = CourseRef{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, jsonNull) {
		return nil
	}

	if b[0] != '{' {
		return c.ID.UnmarshalJSON(b)
	}

	var obj struct {
		ID      Text `json:"id"`
		MongoID Text `json:"_id"`
		Code    Text `json:"code"`
		Title   Text `json:"title"`
		Name    Text `json:"name"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil
	}
	c.ID = Text(FirstText(obj.ID, obj.MongoID))
	c.Code = obj.Code
	c.Title = Text(FirstText(obj.Title, obj.Name))
	return nil
}

func (c CourseRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{
		"id":    string(c.ID),
		"code":  string(c.Code),
		"title": string(c.Title),
	})
}

// Ident carries a record id published as either "id" or "_id".
type Ident struct {
	ID      Text `json:"id,omitempty"`
	MongoID Text `json:"_id,omitempty"`
}

// Key returns whichever id is set.
func (i Ident) Key() string {
	return FirstText(i.ID, i.MongoID)
}
