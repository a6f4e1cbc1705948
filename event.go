package analytics

import "maps"

// Event is the backend-agnostic record of one trackable occurrence.
//
// Populate it with the chained setters and hand it to one or more adapters:
//
//	event := analytics.NewEvent().
//		SetType("pageview").
//		SetName("pageview").
//		SetURL("https://example.com/docs")
//
// Event performs no validation; each adapter decides which fields it needs.
// The zero value is ready to use.
type Event struct {
	typ   string
	name  string
	url   string
	value float64
	props map[string]any
}

// NewEvent creates an empty event.
func NewEvent() *Event {
	return &Event{props: make(map[string]any)}
}

// Type returns the backend-level event category, e.g. "pageview".
func (e *Event) Type() string { return e.typ }

// SetType sets the event category.
func (e *Event) SetType(typ string) *Event {
	e.typ = typ
	return e
}

// Name returns the optional label or action identifier.
func (e *Event) Name() string { return e.name }

// SetName sets the label.
func (e *Event) SetName(name string) *Event {
	e.name = name
	return e
}

// URL returns the optional page or location reference.
func (e *Event) URL() string { return e.url }

// SetURL sets the location reference.
func (e *Event) SetURL(url string) *Event {
	e.url = url
	return e
}

// Value returns the magnitude attached to the event. Zero means unset.
func (e *Event) Value() float64 { return e.value }

// SetValue sets the magnitude.
func (e *Event) SetValue(value float64) *Event {
	e.value = value
	return e
}

// Props returns the extension bag. It is never nil. An event without props
// returns a fresh empty map that is not retained, so reading never modifies
// e; use SetProp or SetProps to write.
func (e *Event) Props() map[string]any {
	if e.props == nil {
		return map[string]any{}
	}
	return e.props
}

// SetProps replaces the extension bag. A nil map clears it.
func (e *Event) SetProps(props map[string]any) *Event {
	e.props = props
	return e
}

// SetProp sets a single extension field.
func (e *Event) SetProp(key string, value any) *Event {
	if e.props == nil {
		e.props = make(map[string]any)
	}
	e.props[key] = value
	return e
}

// Prop returns a single extension field and whether it was present.
func (e *Event) Prop(key string) (any, bool) {
	v, ok := e.props[key]
	return v, ok
}

// Clone returns a copy whose top-level props map can be modified without
// affecting e. Nested values are shared.
func (e *Event) Clone() *Event {
	c := *e
	c.props = make(map[string]any, len(e.props))
	maps.Copy(c.props, e.props)
	return &c
}
