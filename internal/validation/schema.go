package validation

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"time"

	"github.com/araddon/dateparse"

	"copilot-context/internal/domain"
)

// maxDateMillis es el rango de fechas representables: ±100.000.000 días desde la época.
const maxDateMillis = 8.64e15

// walker recorre el valor decodificado y acumula issues en vez de cortar en la primera.
type walker struct {
	issues []Issue
	failed map[string]bool
}

func (w *walker) add(path, message string) {
	if w.failed == nil {
		w.failed = make(map[string]bool)
	}
	w.failed[path] = true
	w.issues = append(w.issues, Issue{Path: path, Message: message})
}

func (w *walker) contextRequest(raw any) domain.ContextRequest {
	var req domain.ContextRequest

	obj, ok := raw.(map[string]any)
	if !ok {
		w.add("", expected("object", raw))
		return req
	}

	req.TicketID = w.requiredString(obj, "ticketId", "ticketId")
	req.TicketingPlatformType = domain.PlatformType(w.requiredString(obj, "ticketingPlatformType", "ticketingPlatformType"))
	req.TicketAttributesData = w.attributeData(obj, "ticketAttributesData")
	req.UserAttributesData = w.attributeData(obj, "userAttributesData")
	req.OrgAttributesData = w.attributeData(obj, "orgAttributesData")
	req.Messages = w.messages(obj, "messages")
	return req
}

// attributeData exige un objeto cuyos valores sean todos truthy.
func (w *walker) attributeData(obj map[string]any, key string) domain.AttributeData {
	v, ok := obj[key]
	if !ok {
		w.add(key, msgRequired)
		return nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		w.add(key, expected("object", v))
		return nil
	}

	data := make(domain.AttributeData, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		if !truthy(m[k]) {
			w.add(key+"."+k, msgMustBeTruthy)
			continue
		}
		data[k] = m[k]
	}
	return data
}

func (w *walker) messages(obj map[string]any, key string) []domain.Message {
	v, ok := obj[key]
	if !ok {
		w.add(key, msgRequired)
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		w.add(key, expected("array", v))
		return nil
	}

	out := make([]domain.Message, 0, len(items))
	for i, item := range items {
		out = append(out, w.message(item, indexPath(key, i)))
	}
	return out
}

func (w *walker) message(raw any, path string) domain.Message {
	var msg domain.Message

	obj, ok := raw.(map[string]any)
	if !ok {
		w.add(path, expected("object", raw))
		return msg
	}

	msg.ID = w.requiredString(obj, "id", path+".id")
	msg.CreatedAt = w.createdAt(obj, path+".createdAt")
	msg.Content = w.requiredString(obj, "content", path+".content")
	msg.AuthorID = w.requiredString(obj, "authorId", path+".authorId")
	msg.AuthorType = domain.AuthorType(w.requiredString(obj, "authorType", path+".authorType"))
	msg.AuthorName = w.optionalString(obj, "authorName", path+".authorName")
	msg.Files = w.files(obj, path+".files")
	msg.IsInternalComment = w.optionalBool(obj, "isInternalComment", path+".isInternalComment")
	return msg
}

func (w *walker) files(obj map[string]any, path string) []domain.File {
	v, ok := obj["files"]
	if !ok {
		w.add(path, msgRequired)
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		w.add(path, expected("array", v))
		return nil
	}

	out := make([]domain.File, 0, len(items))
	for i, item := range items {
		itemPath := indexPath(path, i)
		f, ok := item.(map[string]any)
		if !ok {
			w.add(itemPath, expected("object", item))
			continue
		}
		out = append(out, domain.File{
			ID:  w.requiredString(f, "id", itemPath+".id"),
			URL: w.requiredString(f, "url", itemPath+".url"),
		})
	}
	return out
}

// createdAt acepta cualquier valor con forma de fecha; los valores falsy equivalen a ausente.
func (w *walker) createdAt(obj map[string]any, path string) *time.Time {
	v, ok := obj["createdAt"]
	if !ok || !truthy(v) {
		return nil
	}

	var t time.Time
	switch val := v.(type) {
	case string:
		// Sólo dígitos se interpreta como año únicamente con 4 cifras; "1714557600000" no es una fecha.
		if isDigits(val) && len(val) != 4 {
			w.add(path, msgInvalidDate)
			return nil
		}
		parsed, err := dateparse.ParseIn(val, time.UTC)
		if err != nil {
			w.add(path, msgInvalidDate)
			return nil
		}
		t = parsed.UTC()
	case json.Number:
		f, err := val.Float64()
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > maxDateMillis {
			w.add(path, msgInvalidDate)
			return nil
		}
		t = time.UnixMilli(int64(f)).UTC()
	default:
		w.add(path, msgInvalidDate)
		return nil
	}

	if ms := t.UnixMilli(); ms > maxDateMillis || ms < -maxDateMillis {
		w.add(path, msgInvalidDate)
		return nil
	}
	return &t
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (w *walker) requiredString(obj map[string]any, key, path string) string {
	v, ok := obj[key]
	if !ok {
		w.add(path, msgRequired)
		return ""
	}
	s, ok := v.(string)
	if !ok {
		w.add(path, expected("string", v))
		return ""
	}
	return s
}

func (w *walker) optionalString(obj map[string]any, key, path string) *string {
	v, ok := obj[key]
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		w.add(path, expected("string", v))
		return nil
	}
	return &s
}

func (w *walker) optionalBool(obj map[string]any, key, path string) *bool {
	v, ok := obj[key]
	if !ok {
		return nil
	}
	b, ok := v.(bool)
	if !ok {
		w.add(path, expected("boolean", v))
		return nil
	}
	return &b
}

// truthy: null, false, 0 y "" son falsy; objetos y arrays (aunque estén vacíos) son truthy.
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case json.Number:
		f, err := val.Float64()
		return err != nil || f != 0
	case float64:
		return val != 0
	default:
		return true
	}
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case json.Number, float64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func expected(want string, got any) string {
	return fmt.Sprintf("Expected %s, received %s", want, typeName(got))
}

func indexPath(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}
