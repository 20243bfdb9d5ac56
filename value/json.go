package value

import (
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// FromJSON parses a JSON document into a Value, preserving object key
// order from the source bytes and distinguishing integers from floats by
// the presence of a '.', 'e' or 'E' in the number's literal text.
//
// encoding/json's map[string]any decode target cannot preserve key order
// (Go maps have none), so this walks jsoniter's token iterator directly
// instead of unmarshaling into an intermediate any.
func FromJSON(data []byte) (Value, error) {
	iter := jsoniter.ParseBytes(jsonAPI, data)

	v := readValue(iter)
	if iter.Error != nil {
		return Value{}, iter.Error
	}

	return v, nil
}

func readValue(iter *jsoniter.Iterator) Value {
	switch iter.WhatIsNext() {
	case jsoniter.NilValue:
		iter.ReadNil()

		return Null()
	case jsoniter.BoolValue:
		return Bool(iter.ReadBool())
	case jsoniter.NumberValue:
		return readNumber(iter)
	case jsoniter.StringValue:
		return Str(iter.ReadString())
	case jsoniter.ArrayValue:
		var elems []Value

		iter.ReadArrayCB(func(iter *jsoniter.Iterator) bool {
			elems = append(elems, readValue(iter))

			return true
		})

		return NewArray(elems)
	case jsoniter.ObjectValue:
		obj := NewObject()

		iter.ReadObjectCB(func(iter *jsoniter.Iterator, field string) bool {
			obj.Set(field, readValue(iter))

			return true
		})

		return Obj(obj)
	default:
		iter.Skip()

		return Null()
	}
}

func readNumber(iter *jsoniter.Iterator) Value {
	lit := iter.ReadNumber().String()
	if strings.ContainsAny(lit, ".eE") {
		f, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return Float(0)
		}

		return Float(f)
	}

	i, err := strconv.ParseInt(lit, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(lit, 64)
		if ferr != nil {
			return Int(0)
		}

		return Float(f)
	}

	return Int(i)
}

// ToJSON renders v as a single-line JSON document. Object field order is
// source order, not sorted, which is what makes it different from
// plugging a Value through encoding/json's map codec.
func ToJSON(v Value) ([]byte, error) {
	var buf strings.Builder

	if err := writeJSON(&buf, v); err != nil {
		return nil, err
	}

	return []byte(buf.String()), nil
}

func writeJSON(buf *strings.Builder, v Value) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		if v.b {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindInteger:
		buf.WriteString(strconv.FormatInt(v.i, 10))
	case KindFloat:
		buf.WriteString(strconv.FormatFloat(v.f, 'g', -1, 64))
	case KindString:
		b, err := jsonAPI.Marshal(v.s)
		if err != nil {
			return err
		}

		buf.Write(b)
	case KindArray:
		buf.WriteByte('[')

		for i, e := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}

			if err := writeJSON(buf, e); err != nil {
				return err
			}
		}

		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')

		for i, k := range v.obj.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}

			kb, err := jsonAPI.Marshal(k)
			if err != nil {
				return err
			}

			buf.Write(kb)
			buf.WriteByte(':')

			fv, _ := v.obj.Get(k)
			if err := writeJSON(buf, fv); err != nil {
				return err
			}
		}

		buf.WriteByte('}')
	}

	return nil
}
