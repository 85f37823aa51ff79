package value

import (
	"bytes"
	"encoding/json"
	"fmt"
)

func parseJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeJSONValue(dec)
	if err != nil {
		return Null(), &ParseError{Format: JSON, Reason: err.Error()}
	}
	var trailing any
	if err := dec.Decode(&trailing); err == nil {
		return Null(), &ParseError{Format: JSON, Reason: "trailing content after top-level value"}
	}
	return v, nil
}

// decodeJSONValue reads one JSON value from dec token by token instead of
// decoding into map[string]any, whose range order the runtime randomizes —
// object keys land in the ordered Map in the document's own order.
func decodeJSONValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Null(), err
	}
	return jsonTokenToValue(dec, tok)
}

func jsonTokenToValue(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			m := NewMap()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Null(), err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Null(), fmt.Errorf("unexpected object key token %v", keyTok)
				}
				val, err := decodeJSONValue(dec)
				if err != nil {
					return Null(), err
				}
				m.Set(key, val)
			}
			if _, err := dec.Token(); err != nil { // consume closing '}'
				return Null(), err
			}
			return MapOf(m), nil
		case '[':
			var items []Value
			for dec.More() {
				val, err := decodeJSONValue(dec)
				if err != nil {
					return Null(), err
				}
				items = append(items, val)
			}
			if _, err := dec.Token(); err != nil { // consume closing ']'
				return Null(), err
			}
			return Seq(items...), nil
		}
		return Null(), fmt.Errorf("unexpected json delimiter %v", t)
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i), nil
		}
		f, _ := t.Float64()
		return Float(f), nil
	case string:
		return Str(t), nil
	default:
		return Null(), fmt.Errorf("unexpected json token %v", tok)
	}
}

// emitJSON hand-writes the encoder rather than calling json.Marshal so that
// Map insertion order survives emission; encoding/json always sorts
// map[string]any keys alphabetically, which would violate the value
// model's ordered-map invariant.
func emitJSON(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v Value, indent int) error {
	switch v.Kind() {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		if v.Bool() {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindInt:
		fmt.Fprintf(buf, "%d", v.Int())
	case KindFloat:
		data, err := json.Marshal(v.Float())
		if err != nil {
			return err
		}
		buf.Write(data)
	case KindStr:
		data, err := json.Marshal(v.Str())
		if err != nil {
			return err
		}
		buf.Write(data)
	case KindSeq:
		seq := v.Seq()
		if len(seq) == 0 {
			buf.WriteString("[]")
			return nil
		}
		buf.WriteString("[\n")
		for i, item := range seq {
			writeJSONIndent(buf, indent+1)
			if err := writeJSON(buf, item, indent+1); err != nil {
				return err
			}
			if i < len(seq)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		writeJSONIndent(buf, indent)
		buf.WriteByte(']')
	case KindMap:
		m := v.Map()
		if m.Len() == 0 {
			buf.WriteString("{}")
			return nil
		}
		buf.WriteString("{\n")
		i, n := 0, m.Len()
		for pair := m.Oldest(); pair != nil; pair = pair.Next() {
			writeJSONIndent(buf, indent+1)
			keyData, err := json.Marshal(pair.Key)
			if err != nil {
				return err
			}
			buf.Write(keyData)
			buf.WriteString(": ")
			if err := writeJSON(buf, pair.Value, indent+1); err != nil {
				return err
			}
			if i < n-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
			i++
		}
		writeJSONIndent(buf, indent)
		buf.WriteByte('}')
	}
	return nil
}

func writeJSONIndent(buf *bytes.Buffer, indent int) {
	for i := 0; i < indent; i++ {
		buf.WriteString("  ")
	}
}
