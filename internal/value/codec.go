package value

// Parse decodes bytes of the given format into a Value. Text and Unknown
// formats never fail: their content becomes a single Str.
func Parse(format Format, data []byte) (Value, error) {
	switch format {
	case JSON:
		return parseJSON(data)
	case YAML:
		return parseYAML(data)
	case TOML:
		return parseTOML(data)
	case INI:
		return parseINI(data)
	default:
		return parseText(data)
	}
}

// Emit encodes a Value back to bytes for the given format. Output is
// canonical and deterministic for a fixed input Value: repeated calls with
// structurally equal values produce identical bytes.
func Emit(format Format, v Value) ([]byte, error) {
	switch format {
	case JSON:
		return emitJSON(v)
	case YAML:
		return emitYAML(v)
	case TOML:
		return emitTOML(v)
	case INI:
		return emitINI(v)
	default:
		return emitText(v)
	}
}

func parseText(data []byte) (Value, error) {
	return Str(string(data)), nil
}

func emitText(v Value) ([]byte, error) {
	if v.Kind() != KindStr {
		return nil, &ParseError{Format: Text, Reason: "text value must be a string, got " + v.Kind().String()}
	}
	return []byte(v.Str()), nil
}
