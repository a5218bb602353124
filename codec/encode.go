package codec

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

const dateTimeLayout = "20060102T15:04:05"

var timeType = reflect.TypeOf(time.Time{})

// EncodeCall serializes a methodCall document.
func (x *XML) EncodeCall(method string, params []any) ([]byte, error) {
	if method == "" {
		return nil, ErrEmptyMethod
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString("<methodCall><methodName>")
	writeEscaped(&buf, method)
	buf.WriteString("</methodName><params>")
	for i, p := range params {
		buf.WriteString("<param>")
		if err := encodeValue(&buf, reflect.ValueOf(p)); err != nil {
			return nil, fmt.Errorf("param %d: %w", i, err)
		}
		buf.WriteString("</param>")
	}
	buf.WriteString("</params></methodCall>")
	return buf.Bytes(), nil
}

// EncodeResponse serializes a successful methodResponse carrying v.
func (x *XML) EncodeResponse(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString("<methodResponse><params><param>")
	if err := encodeValue(&buf, reflect.ValueOf(v)); err != nil {
		return nil, err
	}
	buf.WriteString("</param></params></methodResponse>")
	return buf.Bytes(), nil
}

// EncodeFault serializes a fault methodResponse.
func (x *XML) EncodeFault(f *Fault) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString("<methodResponse><fault><value><struct>")
	fmt.Fprintf(&buf, "<member><name>faultCode</name><value><int>%d</int></value></member>", f.Code)
	buf.WriteString("<member><name>faultString</name><value><string>")
	writeEscaped(&buf, f.Message)
	buf.WriteString("</string></value></member></struct></value></fault></methodResponse>")
	return buf.Bytes(), nil
}

func encodeValue(buf *bytes.Buffer, v reflect.Value) error {
	buf.WriteString("<value>")
	if err := encodeInner(buf, v); err != nil {
		return err
	}
	buf.WriteString("</value>")
	return nil
}

func encodeInner(buf *bytes.Buffer, v reflect.Value) error {
	if !v.IsValid() {
		buf.WriteString("<nil/>")
		return nil
	}
	if v.Type() == timeType {
		t := v.Interface().(time.Time)
		buf.WriteString("<dateTime.iso8601>" + t.Format(dateTimeLayout) + "</dateTime.iso8601>")
		return nil
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			buf.WriteString("<nil/>")
			return nil
		}
		return encodeInner(buf, v.Elem())
	case reflect.Bool:
		if v.Bool() {
			buf.WriteString("<boolean>1</boolean>")
		} else {
			buf.WriteString("<boolean>0</boolean>")
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		writeInt(buf, v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n := v.Uint()
		if n > math.MaxInt64 {
			return fmt.Errorf("%w: %d overflows i8", ErrUnsupportedType, n)
		}
		writeInt(buf, int64(n))
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: %v is not representable as double", ErrUnsupportedType, f)
		}
		buf.WriteString("<double>" + strconv.FormatFloat(f, 'f', -1, 64) + "</double>")
	case reflect.String:
		buf.WriteString("<string>")
		writeEscaped(buf, v.String())
		buf.WriteString("</string>")
	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			raw := make([]byte, v.Len())
			for i := range raw {
				raw[i] = byte(v.Index(i).Uint())
			}
			buf.WriteString("<base64>" + base64.StdEncoding.EncodeToString(raw) + "</base64>")
			return nil
		}
		buf.WriteString("<array><data>")
		for i := range v.Len() {
			if err := encodeValue(buf, v.Index(i)); err != nil {
				return err
			}
		}
		buf.WriteString("</data></array>")
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("%w: map key %s", ErrUnsupportedType, v.Type().Key())
		}
		keys := v.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		buf.WriteString("<struct>")
		for _, k := range keys {
			if err := encodeMember(buf, k.String(), v.MapIndex(k)); err != nil {
				return err
			}
		}
		buf.WriteString("</struct>")
	case reflect.Struct:
		buf.WriteString("<struct>")
		t := v.Type()
		for i := range t.NumField() {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			name, omitEmpty, skip := fieldName(field)
			if skip || (omitEmpty && v.Field(i).IsZero()) {
				continue
			}
			if err := encodeMember(buf, name, v.Field(i)); err != nil {
				return err
			}
		}
		buf.WriteString("</struct>")
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, v.Type())
	}
	return nil
}

func encodeMember(buf *bytes.Buffer, name string, v reflect.Value) error {
	buf.WriteString("<member><name>")
	writeEscaped(buf, name)
	buf.WriteString("</name>")
	if err := encodeValue(buf, v); err != nil {
		return fmt.Errorf("member %q: %w", name, err)
	}
	buf.WriteString("</member>")
	return nil
}

func writeInt(buf *bytes.Buffer, n int64) {
	if n >= math.MinInt32 && n <= math.MaxInt32 {
		buf.WriteString("<int>" + strconv.FormatInt(n, 10) + "</int>")
		return
	}
	buf.WriteString("<i8>" + strconv.FormatInt(n, 10) + "</i8>")
}

// fieldName reads the `xmlrpc:"name,omitempty"` tag. A tag of "-" skips the field.
func fieldName(f reflect.StructField) (name string, omitEmpty, skip bool) {
	tag := f.Tag.Get("xmlrpc")
	if tag == "-" {
		return "", false, true
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = f.Name
	}
	return name, opts == "omitempty", false
}

func writeEscaped(buf *bytes.Buffer, s string) {
	// EscapeText only fails when the writer does; bytes.Buffer never does.
	_ = xml.EscapeText(buf, []byte(s))
}
