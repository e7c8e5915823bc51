// Package redact replaces volatile fields of an IR node with a fixed
// marker before the node is serialized into a snapshot.
//
// A redaction path names fields by key, separated by dots:
//
//	value             top level field "value"
//	fakeObject.id     field "id" of the object under "fakeObject"
//	'a.b'.c           quoted keys may contain dots; \' escapes a quote
//	items.*.id        "*" applies the rest of the path to every field
//	$..*              every top level field
//
// A leading "$." is accepted and ignored. Redacted values become the
// string Ignored. Missing keys are not an error; looking up a key in
// anything but an object is, and the error wraps ErrType.
package redact
