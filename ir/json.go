package ir

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// FromJSON parses a single JSON document, keeping object fields in
// document order.
func FromJSON(d []byte) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(d))
	dec.UseNumber()
	node, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after JSON value", ErrParse)
	}
	return node, nil
}

func decodeValue(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	switch x := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return FromBool(x), nil
	case string:
		return FromString(x), nil
	case json.Number:
		return fromJSONNumber(x), nil
	case json.Delim:
		switch x {
		case '[':
			var elts []*Node
			for dec.More() {
				elt, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				elts = append(elts, elt)
			}
			if _, err := dec.Token(); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrParse, err)
			}
			return FromSlice(elts), nil
		case '{':
			var kvs []KeyVal
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, fmt.Errorf("%w: %w", ErrParse, err)
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("%w: object key %v", ErrParse, keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				kvs = append(kvs, KeyVal{Key: key, Val: val})
			}
			if _, err := dec.Token(); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrParse, err)
			}
			return FromKeyVals(kvs), nil
		}
	}
	return nil, fmt.Errorf("%w: unexpected token %v", ErrParse, tok)
}

func fromJSONNumber(n json.Number) *Node {
	if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
		return FromInt(i)
	}
	if f, err := strconv.ParseFloat(string(n), 64); err == nil && FormatFloat(f, 64) == string(n) {
		return FromFloat(f)
	}
	return FromNumber(string(n))
}
