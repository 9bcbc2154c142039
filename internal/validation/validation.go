// Package validation convierte el body crudo del hook de contexto en un
// domain.ContextRequest, reportando cada campo inválido con su ruta JSON.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"copilot-context/internal/domain"
)

const (
	msgRequired       = "Required"
	msgMustBeTruthy   = "Value must be truthy"
	msgInvalidDate    = "Invalid date"
	msgMalformedJSON  = "Malformed JSON body"
	msgBodyTooLarge   = "Request body too large"
	msgUnreadableBody = "Unable to read request body"
)

// Issue es una violación concreta del esquema.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// ValidationError agrupa todas las issues encontradas en un request.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	return strings.Join(parts, ", ")
}

// BodyTooLarge construye el error que se devuelve cuando el body supera el límite.
func BodyTooLarge() *ValidationError {
	return &ValidationError{Issues: []Issue{{Message: msgBodyTooLarge}}}
}

// UnreadableBody construye el error para bodies que no se pudieron leer.
func UnreadableBody() *ValidationError {
	return &ValidationError{Issues: []Issue{{Message: msgUnreadableBody}}}
}

// Parse decodifica y valida el body. Devuelve *ValidationError cuando el
// payload no cumple el esquema.
func Parse(body []byte) (domain.ContextRequest, error) {
	raw, err := decode(body)
	if err != nil {
		return domain.ContextRequest{}, &ValidationError{Issues: []Issue{{Message: msgMalformedJSON}}}
	}

	w := &walker{}
	req := w.contextRequest(raw)
	w.checkConstraints(req)

	if len(w.issues) > 0 {
		return domain.ContextRequest{}, &ValidationError{Issues: w.issues}
	}
	return req, nil
}

func decode(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after JSON value")
	}
	return raw, nil
}
