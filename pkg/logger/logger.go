// Package logger writes one line per event with the event's fields encoded as
// JSON. Credentials in field values are masked before they are written.
package logger

import (
	"encoding/json"
	"log"
	"strings"
)

// Fields are the structured attributes of one log line.
type Fields map[string]any

type level string

const (
	levelInfo  level = "INFO"
	levelError level = "ERROR"
)

const masked = "******"

var sensitiveKeys = map[string]struct{}{
	"authorization": {},
	"token":         {},
	"bearer":        {},
	"password":      {},
	"secret":        {},
	"jwtsecret":     {},
	"jwt_secret":    {},
	"dsn":           {},
	"databasedsn":   {},
}

func Info(message string, fields Fields) {
	emit(levelInfo, message, fields)
}

// Error logs message with err under the "error" key. fields is not modified.
func Error(message string, err error, fields Fields) {
	if err != nil {
		fields = fields.with("error", err.Error())
	}
	emit(levelError, message, fields)
}

func (f Fields) with(key string, value any) Fields {
	out := make(Fields, len(f)+1)
	for k, v := range f {
		out[k] = v
	}
	out[key] = value
	return out
}

func emit(lvl level, message string, fields Fields) {
	log.Printf("%s %s %s", lvl, message, encode(fields))
}

// encode renders fields as JSON after masking. Values such as decimals and
// UUIDs go through their own MarshalJSON.
func encode(fields Fields) string {
	if len(fields) == 0 {
		return `{}`
	}
	b, err := json.Marshal(mask(fields))
	if err != nil {
		return `{}`
	}
	return string(b)
}

// mask round-trips payload through JSON and replaces the values of sensitive
// keys at any depth.
func mask(payload any) any {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "<unavailable>"
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return "<unavailable>"
	}
	return maskValue(data)
}

func maskValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		for key, inner := range typed {
			if isSensitiveKey(key) {
				typed[key] = masked
				continue
			}
			typed[key] = maskValue(inner)
		}
		return typed
	case []any:
		for i, item := range typed {
			typed[i] = maskValue(item)
		}
		return typed
	default:
		return value
	}
}

func isSensitiveKey(key string) bool {
	normalized := strings.ToLower(strings.NewReplacer("-", "", " ", "").Replace(strings.TrimSpace(key)))
	_, ok := sensitiveKeys[normalized]
	return ok
}
