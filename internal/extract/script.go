package extract

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dop251/goja"
	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"
	"github.com/dop251/goja/token"
	"github.com/rs/zerolog/log"
)

// evalTimeout bounds evaluation of an object literal that is not strict JSON.
const evalTimeout = 100 * time.Millisecond

var (
	errUnterminated = errors.New("extract: unterminated object literal")
	errNotLiteral   = errors.New("extract: object contains non-literal code")
)

// AssignedObject finds the first <script> containing marker (for example
// "window.SwymProductInfo.product") and decodes the object literal assigned
// right after it. Strict JSON is tried first and a sandboxed JavaScript
// evaluation second. Scripts whose literal cannot be decoded are skipped.
func AssignedObject(doc *Document, marker string) (Object, bool) {
	var found Object
	doc.Doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		rest, ok := afterAssignment(s.Text(), marker)
		if !ok {
			return true
		}
		span, err := BalancedObject(rest)
		if err != nil {
			log.Debug().Err(err).Str("marker", marker).Msg("No object literal after marker")
			return true
		}
		obj, err := decodeLiteral(span)
		if err != nil {
			log.Debug().Err(err).Str("marker", marker).Msg("Failed to decode object literal")
			return true
		}
		found = obj
		return false
	})
	return found, found != nil
}

// afterAssignment returns the text following the first "marker =" in body.
// Occurrences where marker is only a prefix of a longer name, such as
// "product" inside "productId", are skipped.
func afterAssignment(body, marker string) (string, bool) {
	for off := 0; ; {
		idx := strings.Index(body[off:], marker)
		if idx < 0 {
			return "", false
		}
		rest := body[off+idx+len(marker):]
		trimmed := strings.TrimLeft(rest, " \t\r\n")
		if strings.HasPrefix(trimmed, "=") && !strings.HasPrefix(trimmed, "==") {
			return trimmed[1:], true
		}
		off += idx + len(marker)
	}
}

// BalancedObject returns the text from the first '{' in s up to its
// matching '}'. Braces inside quoted strings are ignored.
func BalancedObject(s string) (string, error) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", errUnterminated
	}
	depth := 0
	var quote byte
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", errUnterminated
}

func decodeLiteral(span string) (Object, error) {
	v, jsonErr := decodeJSON(span)
	if jsonErr == nil {
		if obj, ok := v.(Object); ok {
			return obj, nil
		}
	}
	return evalLiteral(span)
}

// evalLiteral evaluates a JavaScript object literal in an isolated runtime
// with no globals beyond the ECMAScript built-ins. The source is parsed first
// and anything other than plain literal values is refused unexecuted.
func evalLiteral(span string) (Object, error) {
	src := "(" + span + ")"
	prog, err := parser.ParseFile(nil, "", src, 0)
	if err != nil {
		return nil, err
	}
	if len(prog.Body) != 1 {
		return nil, errNotLiteral
	}
	stmt, ok := prog.Body[0].(*ast.ExpressionStatement)
	if !ok {
		return nil, errNotLiteral
	}
	if _, ok := stmt.Expression.(*ast.ObjectLiteral); !ok || !isLiteral(stmt.Expression) {
		return nil, errNotLiteral
	}

	vm := goja.New()
	timer := time.AfterFunc(evalTimeout, func() {
		vm.Interrupt("object literal evaluation timed out")
	})
	defer timer.Stop()

	val, err := vm.RunString(src)
	if err != nil {
		return nil, err
	}
	obj, ok := val.Export().(map[string]any)
	if !ok {
		return nil, errors.New("extract: literal is not an object")
	}
	return obj, nil
}

// isLiteral reports whether expr is built only from object, array, string,
// number, boolean and null literals, allowing a leading minus on numbers.
func isLiteral(expr ast.Expression) bool {
	switch e := expr.(type) {
	case *ast.StringLiteral, *ast.NumberLiteral, *ast.BooleanLiteral, *ast.NullLiteral:
		return true
	case *ast.UnaryExpression:
		_, num := e.Operand.(*ast.NumberLiteral)
		return e.Operator == token.MINUS && !e.Postfix && num
	case *ast.ArrayLiteral:
		for _, v := range e.Value {
			if v != nil && !isLiteral(v) {
				return false
			}
		}
		return true
	case *ast.ObjectLiteral:
		for _, prop := range e.Value {
			kv, ok := prop.(*ast.PropertyKeyed)
			if !ok || kv.Kind != ast.PropertyKindValue || kv.Computed {
				return false
			}
			switch kv.Key.(type) {
			case *ast.StringLiteral, *ast.NumberLiteral:
			default:
				return false
			}
			if !isLiteral(kv.Value) {
				return false
			}
		}
		return true
	}
	return false
}

// ScriptEntries decodes the JSON object held by the first script matching
// selector and returns its object-valued members in document order.
func ScriptEntries(doc *Document, selector string) []Object {
	body := strings.TrimSpace(doc.Doc.Find(selector).First().Text())
	if body == "" {
		return nil
	}
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil
	}
	var out []Object
	for dec.More() {
		if _, err := dec.Token(); err != nil { // key
			return out
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			log.Debug().Err(err).Str("selector", selector).Msg("Stopped reading script entries")
			return out
		}
		if obj, ok := v.(Object); ok {
			out = append(out, obj)
		}
	}
	return out
}
