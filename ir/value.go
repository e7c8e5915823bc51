package ir

import (
	"encoding"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// FromValue materializes a Go value into a node tree.
//
// Structs contribute their exported fields, named and filtered by their
// json tags; maps contribute their entries in sorted key order. Values
// implementing json.Marshaler or encoding.TextMarshaler are converted
// through those methods. A pointer, map or slice that is reached again
// while still being converted is a cycle, reported with ErrCycle.
func FromValue(v any) (*Node, error) {
	c := &converter{visiting: map[visit]struct{}{}}
	return c.convert(reflect.ValueOf(v), "$")
}

type visit struct {
	ptr uintptr
	typ reflect.Type
	len int
}

type converter struct {
	visiting map[visit]struct{}
}

var (
	jsonMarshalerType = reflect.TypeFor[json.Marshaler]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
)

func (c *converter) convert(v reflect.Value, path string) (*Node, error) {
	if !v.IsValid() {
		return Null(), nil
	}
	if node, ok, err := c.marshaler(v, path); ok {
		return node, err
	}
	switch v.Kind() {
	case reflect.Bool:
		return FromBool(v.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return FromInt(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := v.Uint()
		if u > math.MaxInt64 {
			return FromNumber(strconv.FormatUint(u, 10)), nil
		}
		return FromInt(int64(u)), nil
	case reflect.Float32:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: %v at %s", ErrUnsupported, f, path)
		}
		return FromNumber(FormatFloat(f, 32)), nil
	case reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: %v at %s", ErrUnsupported, f, path)
		}
		return FromFloat(f), nil
	case reflect.String:
		return FromString(v.String()), nil
	case reflect.Interface:
		if v.IsNil() {
			return Null(), nil
		}
		return c.convert(v.Elem(), path)
	case reflect.Pointer:
		if v.IsNil() {
			return Null(), nil
		}
		leave, err := c.enter(v, 0, path)
		if err != nil {
			return nil, err
		}
		defer leave()
		return c.convert(v.Elem(), path)
	case reflect.Map:
		if v.IsNil() {
			return Null(), nil
		}
		leave, err := c.enter(v, 0, path)
		if err != nil {
			return nil, err
		}
		defer leave()
		return c.convertMap(v, path)
	case reflect.Slice:
		if v.IsNil() {
			return Null(), nil
		}
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return FromString(base64.StdEncoding.EncodeToString(v.Bytes())), nil
		}
		leave, err := c.enter(v, v.Len(), path)
		if err != nil {
			return nil, err
		}
		defer leave()
		return c.convertList(v, path)
	case reflect.Array:
		return c.convertList(v, path)
	case reflect.Struct:
		return c.convertStruct(v, path)
	default:
		return nil, fmt.Errorf("%w: %s at %s", ErrUnsupported, v.Type(), path)
	}
}

func (c *converter) enter(v reflect.Value, n int, path string) (func(), error) {
	key := visit{ptr: v.Pointer(), typ: v.Type(), len: n}
	if _, ok := c.visiting[key]; ok {
		return nil, fmt.Errorf("%w: %s refers back to a value being converted", ErrCycle, path)
	}
	c.visiting[key] = struct{}{}
	return func() { delete(c.visiting, key) }, nil
}

func (c *converter) marshaler(v reflect.Value, path string) (*Node, bool, error) {
	if !v.CanInterface() || v.Kind() == reflect.Interface {
		return nil, false, nil
	}
	t := v.Type()
	if t.Kind() != reflect.Pointer && v.CanAddr() && reflect.PointerTo(t).Implements(jsonMarshalerType) {
		v = v.Addr()
		t = v.Type()
	}
	if t.Implements(jsonMarshalerType) {
		if t.Kind() == reflect.Pointer && v.IsNil() {
			return Null(), true, nil
		}
		d, err := v.Interface().(json.Marshaler).MarshalJSON()
		if err != nil {
			return nil, true, fmt.Errorf("marshal %s at %s: %w", t, path, err)
		}
		node, err := FromJSON(d)
		if err != nil {
			return nil, true, fmt.Errorf("marshal %s at %s: %w", t, path, err)
		}
		return node, true, nil
	}
	if t.Implements(textMarshalerType) {
		if t.Kind() == reflect.Pointer && v.IsNil() {
			return Null(), true, nil
		}
		d, err := v.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return nil, true, fmt.Errorf("marshal %s at %s: %w", t, path, err)
		}
		return FromString(string(d)), true, nil
	}
	return nil, false, nil
}

func (c *converter) convertMap(v reflect.Value, path string) (*Node, error) {
	res := make(map[string]*Node, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		key, err := mapKey(iter.Key())
		if err != nil {
			return nil, fmt.Errorf("%w at %s", err, path)
		}
		child, err := c.convert(iter.Value(), path+"."+QuoteField(key))
		if err != nil {
			return nil, err
		}
		res[key] = child
	}
	return FromMap(res), nil
}

func mapKey(k reflect.Value) (string, error) {
	if k.Kind() == reflect.String {
		return k.String(), nil
	}
	if !k.CanInterface() {
		return "", fmt.Errorf("%w: unexported map key type %s", ErrUnsupported, k.Type())
	}
	if tm, ok := k.Interface().(encoding.TextMarshaler); ok {
		if k.Kind() == reflect.Pointer && k.IsNil() {
			return "", nil
		}
		d, err := tm.MarshalText()
		if err != nil {
			return "", err
		}
		return string(d), nil
	}
	switch k.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10), nil
	}
	return "", fmt.Errorf("%w: map key type %s", ErrUnsupported, k.Type())
}

func (c *converter) convertList(v reflect.Value, path string) (*Node, error) {
	n := v.Len()
	elts := make([]*Node, n)
	for i := 0; i < n; i++ {
		child, err := c.convert(v.Index(i), path+"["+strconv.Itoa(i)+"]")
		if err != nil {
			return nil, err
		}
		elts[i] = child
	}
	return FromSlice(elts), nil
}

func (c *converter) convertStruct(v reflect.Value, path string) (*Node, error) {
	fields := structFields(v.Type())
	kvs := make([]KeyVal, 0, len(fields))
	for _, f := range fields {
		fv, ok := fieldByIndex(v, f.index)
		if !ok {
			continue
		}
		if f.omitEmpty && isEmpty(fv) {
			continue
		}
		child, err := c.convert(fv, path+"."+QuoteField(f.name))
		if err != nil {
			return nil, err
		}
		kvs = append(kvs, KeyVal{Key: f.name, Val: child})
	}
	return FromKeyVals(kvs), nil
}

// fieldByIndex is reflect.Value.FieldByIndex that reports false instead
// of panicking at a nil embedded pointer.
func fieldByIndex(v reflect.Value, index []int) (reflect.Value, bool) {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Value{}, false
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v, true
}

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Interface, reflect.Pointer:
		return v.IsZero()
	}
	return false
}

type field struct {
	name      string
	index     []int
	omitEmpty bool
}

var fieldCache sync.Map // map[reflect.Type][]field

func structFields(t reflect.Type) []field {
	if fs, ok := fieldCache.Load(t); ok {
		return fs.([]field)
	}
	fs := collectFields(t, nil, map[string]bool{})
	fieldCache.Store(t, fs)
	return fs
}

// collectFields lists the json-visible fields of t. Fields of embedded
// structs without a json name are promoted unless a shallower field
// already claimed the name.
func collectFields(t reflect.Type, index []int, taken map[string]bool) []field {
	var res, embedded []field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag := sf.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		idx := append(append([]int(nil), index...), i)
		if sf.Anonymous && name == "" {
			ft := sf.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				embedded = append(embedded, field{index: idx})
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		if taken[name] {
			continue
		}
		taken[name] = true
		res = append(res, field{
			name:      name,
			index:     idx,
			omitEmpty: strings.Contains(","+opts+",", ",omitempty,"),
		})
	}
	for _, e := range embedded {
		et := t.Field(e.index[len(e.index)-1]).Type
		if et.Kind() == reflect.Pointer {
			et = et.Elem()
		}
		res = append(res, collectFields(et, e.index, taken)...)
	}
	return res
}

// FormatFloat formats f the way encoding/json does for the given bit
// size.
func FormatFloat(f float64, bits int) string {
	abs := math.Abs(f)
	fmt := byte('f')
	if abs != 0 {
		if bits == 64 && (abs < 1e-6 || abs >= 1e21) || bits == 32 && (float32(abs) < 1e-6 || float32(abs) >= 1e21) {
			fmt = 'e'
		}
	}
	s := strconv.FormatFloat(f, fmt, -1, bits)
	if fmt == 'e' {
		n := len(s)
		if n >= 4 && s[n-4] == 'e' && s[n-3] == '-' && s[n-2] == '0' {
			s = s[:n-2] + s[n-1:]
		}
	}
	return s
}
