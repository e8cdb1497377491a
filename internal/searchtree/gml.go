package searchtree

import (
	"fmt"
	"html"
	"strings"
	"unicode"
)

type valueKind int

const (
	valueInt valueKind = iota
	valueReal
	valueString
	valueList
)

type gmlValue struct {
	kind valueKind
	text string
	list []gmlPair
}

type gmlPair struct {
	key   string
	value gmlValue
	line  int
}

type lineError struct {
	line int
	msg  string
}

func (e *lineError) Error() string {
	return fmt.Sprintf("line %v: %v", e.line, e.msg)
}

type gmlParser struct {
	src  string
	pos  int
	line int
}

func parseGml(src string) ([]gmlPair, error) {
	var p = &gmlParser{src: src, line: 1}
	var pairs, err = p.parseList(false)
	if err != nil {
		return nil, err
	}
	return pairs, nil
}

func (p *gmlParser) errorf(format string, args ...interface{}) error {
	return &lineError{line: p.line, msg: fmt.Sprintf(format, args...)}
}

func (p *gmlParser) skipSpace() {
	for p.pos < len(p.src) {
		var c = p.src[p.pos]
		switch {
		case c == '\n':
			p.line++
			p.pos++
		case c == '#':
			for p.pos < len(p.src) && p.src[p.pos] != '\n' {
				p.pos++
			}
		case c == ' ' || c == '\t' || c == '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *gmlParser) parseList(nested bool) ([]gmlPair, error) {
	var result []gmlPair
	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			if nested {
				return nil, p.errorf("unexpected end of file, ']' expected")
			}
			return result, nil
		}
		if p.src[p.pos] == ']' {
			if !nested {
				return nil, p.errorf("unexpected ']'")
			}
			p.pos++
			return result, nil
		}
		var line = p.line
		var key, err = p.parseKey()
		if err != nil {
			return nil, err
		}
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		result = append(result, gmlPair{key: key, value: value, line: line})
	}
}

func (p *gmlParser) parseKey() (string, error) {
	var start = p.pos
	for p.pos < len(p.src) {
		var c = rune(p.src[p.pos])
		if c == '_' || unicode.IsLetter(c) || (p.pos > start && unicode.IsDigit(c)) {
			p.pos++
			continue
		}
		break
	}
	if start == p.pos {
		return "", p.errorf("key expected, found %q", p.src[p.pos])
	}
	return p.src[start:p.pos], nil
}

func (p *gmlParser) parseValue() (gmlValue, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return gmlValue{}, p.errorf("unexpected end of file, value expected")
	}
	switch c := p.src[p.pos]; {
	case c == '[':
		p.pos++
		var list, err = p.parseList(true)
		if err != nil {
			return gmlValue{}, err
		}
		return gmlValue{kind: valueList, list: list}, nil
	case c == '"':
		p.pos++
		var end = strings.IndexByte(p.src[p.pos:], '"')
		if end < 0 {
			return gmlValue{}, p.errorf("unterminated string")
		}
		var s = p.src[p.pos : p.pos+end]
		p.line += strings.Count(s, "\n")
		p.pos += end + 1
		return gmlValue{kind: valueString, text: html.UnescapeString(s)}, nil
	case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	default:
		return gmlValue{}, p.errorf("unexpected character %q", c)
	}
}

func (p *gmlParser) parseNumber() (gmlValue, error) {
	var start = p.pos
	var kind = valueInt
	if c := p.src[p.pos]; c == '+' || c == '-' {
		p.pos++
	}
	var digits int
	for p.pos < len(p.src) {
		var c = p.src[p.pos]
		switch {
		case c >= '0' && c <= '9':
			digits++
		case c == '.' || c == 'e' || c == 'E':
			kind = valueReal
		case (c == '+' || c == '-') && (p.src[p.pos-1] == 'e' || p.src[p.pos-1] == 'E'):
		default:
			if digits == 0 {
				return gmlValue{}, p.errorf("bad number %q", p.src[start:p.pos])
			}
			return gmlValue{kind: kind, text: p.src[start:p.pos]}, nil
		}
		p.pos++
	}
	if digits == 0 {
		return gmlValue{}, p.errorf("bad number %q", p.src[start:p.pos])
	}
	return gmlValue{kind: kind, text: p.src[start:p.pos]}, nil
}
