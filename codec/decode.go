package codec

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
)

var dateTimeLayouts = []string{
	dateTimeLayout,
	"20060102T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// DecodeResponse parses a methodResponse document. A fault response is
// returned as a *Fault error.
func (x *XML) DecodeResponse(r io.Reader) (any, error) {
	p, err := x.newParser(r)
	if err != nil {
		return nil, err
	}
	if err := p.expectStart("methodResponse"); err != nil {
		return nil, err
	}
	start, err := p.nextStart()
	if err != nil {
		return nil, err
	}

	switch start.Name.Local {
	case "params":
		var v any
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "param" {
			if v, err = p.parseValue(); err != nil {
				return nil, err
			}
			if err := p.expectEnd("param"); err != nil {
				return nil, err
			}
			if err := p.expectEnd("params"); err != nil {
				return nil, err
			}
		} else if ee, ok := tok.(xml.EndElement); !ok || ee.Name.Local != "params" {
			return nil, unexpected("<param>", tok)
		}
		return v, p.expectEnd("methodResponse")
	case "fault":
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		if err := p.expectEnd("fault"); err != nil {
			return nil, err
		}
		f, err := faultFromValue(v)
		if err != nil {
			return nil, err
		}
		return nil, f
	default:
		return nil, unexpected("<params> or <fault>", start)
	}
}

// DecodeCall parses a methodCall document.
func (x *XML) DecodeCall(r io.Reader) (string, []any, error) {
	p, err := x.newParser(r)
	if err != nil {
		return "", nil, err
	}
	if err := p.expectStart("methodCall"); err != nil {
		return "", nil, err
	}
	if err := p.expectStart("methodName"); err != nil {
		return "", nil, err
	}
	method, err := p.text("methodName")
	if err != nil {
		return "", nil, err
	}
	method = strings.TrimSpace(method)
	if method == "" {
		return "", nil, ErrEmptyMethod
	}

	params := []any{}
	tok, err := p.next()
	if err != nil {
		return "", nil, err
	}
	if ee, ok := tok.(xml.EndElement); ok && ee.Name.Local == "methodCall" {
		return method, params, nil
	}
	if se, ok := tok.(xml.StartElement); !ok || se.Name.Local != "params" {
		return "", nil, unexpected("<params>", tok)
	}
	for {
		tok, err := p.next()
		if err != nil {
			return "", nil, err
		}
		if ee, ok := tok.(xml.EndElement); ok && ee.Name.Local == "params" {
			break
		}
		if se, ok := tok.(xml.StartElement); !ok || se.Name.Local != "param" {
			return "", nil, unexpected("<param>", tok)
		}
		v, err := p.parseValue()
		if err != nil {
			return "", nil, err
		}
		if err := p.expectEnd("param"); err != nil {
			return "", nil, err
		}
		params = append(params, v)
	}
	return method, params, p.expectEnd("methodCall")
}

func faultFromValue(v any) (*Fault, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: fault value is not a struct", ErrMalformed)
	}
	f := &Fault{}
	switch code := m["faultCode"].(type) {
	case int:
		f.Code = code
	case int64:
		f.Code = int(code)
	default:
		return nil, fmt.Errorf("%w: fault has no integer faultCode", ErrMalformed)
	}
	f.Message, _ = m["faultString"].(string)
	return f, nil
}

// parser walks an XML-RPC document token by token.
type parser struct {
	d *xml.Decoder
}

func (x *XML) newParser(r io.Reader) (*parser, error) {
	if x.encoding == "" {
		d := xml.NewDecoder(r)
		d.CharsetReader = charset.NewReaderLabel
		return &parser{d: d}, nil
	}
	cr, err := charset.NewReaderLabel(x.encoding, r)
	if err != nil {
		return nil, fmt.Errorf("codec: response encoding %q: %w", x.encoding, err)
	}
	d := xml.NewDecoder(cr)
	// The stream is already UTF-8; ignore whatever the declaration claims.
	d.CharsetReader = func(_ string, in io.Reader) (io.Reader, error) { return in, nil }
	return &parser{d: d}, nil
}

// next returns the next element boundary or non-blank text.
func (p *parser) next() (xml.Token, error) {
	for {
		tok, err := p.d.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: unexpected end of document", ErrMalformed)
			}
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		switch t := tok.(type) {
		case xml.StartElement, xml.EndElement:
			return t, nil
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return t.Copy(), nil
			}
		}
	}
}

func (p *parser) nextStart() (xml.StartElement, error) {
	tok, err := p.next()
	if err != nil {
		return xml.StartElement{}, err
	}
	se, ok := tok.(xml.StartElement)
	if !ok {
		return xml.StartElement{}, unexpected("start element", tok)
	}
	return se, nil
}

func (p *parser) expectStart(name string) error {
	se, err := p.nextStart()
	if err != nil {
		return err
	}
	if se.Name.Local != name {
		return unexpected("<"+name+">", se)
	}
	return nil
}

func (p *parser) expectEnd(name string) error {
	tok, err := p.next()
	if err != nil {
		return err
	}
	if ee, ok := tok.(xml.EndElement); !ok || ee.Name.Local != name {
		return unexpected("</"+name+">", tok)
	}
	return nil
}

// text collects the raw character data up to the closing tag of name.
func (p *parser) text(name string) (string, error) {
	var sb strings.Builder
	for {
		tok, err := p.d.Token()
		if err != nil {
			return "", fmt.Errorf("%w: reading <%s>: %v", ErrMalformed, name, err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.EndElement:
			if t.Name.Local != name {
				return "", unexpected("</"+name+">", t)
			}
			return sb.String(), nil
		case xml.StartElement:
			return "", unexpected("text", t)
		}
	}
}

func (p *parser) parseValue() (any, error) {
	if err := p.expectStart("value"); err != nil {
		return nil, err
	}
	return p.valueBody()
}

// valueBody parses what follows an opening <value> tag, including the
// closing tag.
func (p *parser) valueBody() (any, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case xml.EndElement:
		if t.Name.Local != "value" {
			return nil, unexpected("</value>", t)
		}
		return "", nil
	case xml.CharData:
		// Untyped values are strings.
		if err := p.expectEnd("value"); err != nil {
			return nil, err
		}
		return string(t), nil
	case xml.StartElement:
		v, err := p.typed(t.Name.Local)
		if err != nil {
			return nil, err
		}
		return v, p.expectEnd("value")
	}
	return nil, unexpected("value content", tok)
}

func (p *parser) typed(kind string) (any, error) {
	switch kind {
	case "struct":
		return p.parseStruct()
	case "array":
		return p.parseArray()
	case "nil":
		return nil, p.expectEnd("nil")
	}

	raw, err := p.text(kind)
	if err != nil {
		return nil, err
	}
	s := strings.TrimSpace(raw)
	switch kind {
	case "string":
		return raw, nil
	case "int", "i4":
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: bad <%s> %q", ErrMalformed, kind, s)
		}
		return int(n), nil
	case "i8":
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad <i8> %q", ErrMalformed, s)
		}
		return n, nil
	case "boolean":
		switch s {
		case "1", "true":
			return true, nil
		case "0", "false":
			return false, nil
		}
		return nil, fmt.Errorf("%w: bad <boolean> %q", ErrMalformed, s)
	case "double":
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad <double> %q", ErrMalformed, s)
		}
		return f, nil
	case "dateTime.iso8601":
		for _, layout := range dateTimeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return nil, fmt.Errorf("%w: bad <dateTime.iso8601> %q", ErrMalformed, s)
	case "base64":
		b, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(s), ""))
		if err != nil {
			return nil, fmt.Errorf("%w: bad <base64>: %v", ErrMalformed, err)
		}
		return b, nil
	}
	return nil, fmt.Errorf("%w: unknown value type <%s>", ErrMalformed, kind)
}

func (p *parser) parseStruct() (map[string]any, error) {
	m := make(map[string]any)
	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		if ee, ok := tok.(xml.EndElement); ok && ee.Name.Local == "struct" {
			return m, nil
		}
		if se, ok := tok.(xml.StartElement); !ok || se.Name.Local != "member" {
			return nil, unexpected("<member>", tok)
		}

		var (
			name     string
			value    any
			hasName  bool
			hasValue bool
		)
		for {
			tok, err := p.next()
			if err != nil {
				return nil, err
			}
			if ee, ok := tok.(xml.EndElement); ok && ee.Name.Local == "member" {
				break
			}
			se, ok := tok.(xml.StartElement)
			if !ok {
				return nil, unexpected("<name> or <value>", tok)
			}
			switch se.Name.Local {
			case "name":
				if name, err = p.text("name"); err != nil {
					return nil, err
				}
				hasName = true
			case "value":
				if value, err = p.valueBody(); err != nil {
					return nil, err
				}
				hasValue = true
			default:
				return nil, unexpected("<name> or <value>", se)
			}
		}
		if !hasName || !hasValue {
			return nil, fmt.Errorf("%w: struct member needs a name and a value", ErrMalformed)
		}
		m[name] = value
	}
}

func (p *parser) parseArray() ([]any, error) {
	if err := p.expectStart("data"); err != nil {
		return nil, err
	}
	items := []any{}
	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		if ee, ok := tok.(xml.EndElement); ok && ee.Name.Local == "data" {
			break
		}
		if se, ok := tok.(xml.StartElement); !ok || se.Name.Local != "value" {
			return nil, unexpected("<value>", tok)
		}
		v, err := p.valueBody()
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, p.expectEnd("array")
}

func unexpected(want string, got xml.Token) error {
	var desc string
	switch t := got.(type) {
	case xml.StartElement:
		desc = "<" + t.Name.Local + ">"
	case xml.EndElement:
		desc = "</" + t.Name.Local + ">"
	case xml.CharData:
		desc = fmt.Sprintf("text %q", string(t))
	default:
		desc = fmt.Sprintf("%T", got)
	}
	return fmt.Errorf("%w: expected %s, got %s", ErrMalformed, want, desc)
}
