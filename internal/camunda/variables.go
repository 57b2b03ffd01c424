package camunda

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Spok95/medcart/internal/apperr"
)

// Variable — типизированная переменная движка. Value после json.Unmarshal
// может быть чем угодно: движок отдаёт числа, строки и строки-с-JSON-внутри
// (в т.ч. дважды закавыченные). Декодеры ниже обязаны это переживать.
type Variable struct {
	Value any    `json:"value"`
	Type  string `json:"type,omitempty"`
}

type Variables map[string]Variable

func (v Variables) Has(name string) bool {
	vv, ok := v[name]
	return ok && vv.Value != nil
}

func (v Variables) Raw(name string) any {
	return v[name].Value
}

// stripQuotes снимает внешние кавычки: `"9"` -> `9`.
func stripQuotes(s string) string {
	return strings.Trim(s, `"`)
}

// Int декодирует лесенкой: нативный тип → снять кавычки → JSON →
// прямое преобразование. Дальше — DecodingError с именем переменной.
func (v Variables) Int(name string) (int64, error) {
	raw := v[name].Value
	switch val := raw.(type) {
	case float64:
		return int64(val), nil
	case int64:
		return val, nil
	case int:
		return int64(val), nil
	case json.Number:
		f, err := val.Float64()
		if err == nil {
			return int64(f), nil
		}
	case string:
		cleaned := stripQuotes(val)
		var parsed any
		if err := json.Unmarshal([]byte(cleaned), &parsed); err == nil {
			switch p := parsed.(type) {
			case float64:
				return int64(p), nil
			case string:
				if n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64); err == nil {
					return n, nil
				}
			}
		}
		if n, err := strconv.ParseInt(strings.TrimSpace(cleaned), 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, apperr.Decoding(name, raw)
}

func (v Variables) Float(name string) (float64, error) {
	raw := v[name].Value
	switch val := raw.(type) {
	case float64:
		return val, nil
	case int64:
		return float64(val), nil
	case int:
		return float64(val), nil
	case string:
		cleaned := stripQuotes(val)
		var parsed any
		if err := json.Unmarshal([]byte(cleaned), &parsed); err == nil {
			switch p := parsed.(type) {
			case float64:
				return p, nil
			case string:
				if f, err := strconv.ParseFloat(strings.TrimSpace(p), 64); err == nil {
					return f, nil
				}
			}
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(cleaned), 64); err == nil {
			return f, nil
		}
	}
	return 0, apperr.Decoding(name, raw)
}

// String: отсутствующая или null-переменная даёт пустую строку,
// обязательность проверяет вызывающий через Has.
func (v Variables) String(name string) string {
	raw := v[name].Value
	switch val := raw.(type) {
	case nil:
		return ""
	case string:
		return stripQuotes(val)
	default:
		return fmt.Sprint(val)
	}
}

// Bool повторяет толерантность оригинала: число — по знаку,
// строка — пробуем JSON, иначе непустая строка истинна.
func (v Variables) Bool(name string) bool {
	raw := v[name].Value
	switch val := raw.(type) {
	case nil:
		return false
	case bool:
		return val
	case float64:
		return val != 0
	case string:
		cleaned := stripQuotes(val)
		var parsed any
		if err := json.Unmarshal([]byte(cleaned), &parsed); err == nil {
			switch p := parsed.(type) {
			case bool:
				return p
			case float64:
				return p != 0
			}
		}
		return cleaned != ""
	default:
		return true
	}
}

// List достаёт список объектов (тип Json движка приходит либо уже
// распарсенным, либо строкой с JSON).
func (v Variables) List(name string) ([]map[string]any, error) {
	raw := v[name].Value
	var arr []any
	switch val := raw.(type) {
	case nil:
		return nil, nil
	case []any:
		arr = val
	case []map[string]any:
		out := make([]map[string]any, len(val))
		copy(out, val)
		return out, nil
	case string:
		if err := json.Unmarshal([]byte(val), &arr); err != nil {
			return nil, apperr.Decoding(name, raw)
		}
	default:
		return nil, apperr.Decoding(name, raw)
	}

	out := make([]map[string]any, 0, len(arr))
	for _, el := range arr {
		m, ok := el.(map[string]any)
		if !ok {
			return nil, apperr.Decoding(name, raw)
		}
		out = append(out, m)
	}
	return out, nil
}

// NewVariables собирает типизированные переменные для complete.
// Составные значения уходят типом Json с сериализованной строкой —
// так их хранит движок.
func NewVariables(values map[string]any) Variables {
	out := make(Variables, len(values))
	for name, val := range values {
		out[name] = newVariable(val)
	}
	return out
}

func newVariable(val any) Variable {
	switch v := val.(type) {
	case nil:
		return Variable{Type: "Null"}
	case bool:
		return Variable{Value: v, Type: "Boolean"}
	case string:
		return Variable{Value: v, Type: "String"}
	case int:
		return Variable{Value: v, Type: "Integer"}
	case int64:
		return Variable{Value: v, Type: "Long"}
	case float64:
		return Variable{Value: v, Type: "Double"}
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return Variable{Value: fmt.Sprint(v), Type: "String"}
		}
		return Variable{Value: string(data), Type: "Json"}
	}
}
