package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"copilot-context/internal/domain"
)

var (
	structValidator     *validator.Validate
	structValidatorOnce sync.Once
)

// constraints usa el mismo tag "binding" que gin para las reglas declarativas
// (enums y validación anidada de mensajes).
func constraints() *validator.Validate {
	structValidatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.SetTagName("binding")
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		structValidator = v
	})
	return structValidator
}

// checkConstraints agrega las violaciones de tags; omite rutas que el walker ya reportó.
func (w *walker) checkConstraints(req domain.ContextRequest) {
	err := constraints().Struct(req)
	if err == nil {
		return
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		w.add("", err.Error())
		return
	}

	for _, fe := range verrs {
		path := fieldPath(fe.Namespace())
		if w.reported(path) {
			continue
		}
		w.add(path, constraintMessage(fe))
	}
}

// reported indica si la ruta, o alguno de sus padres, ya tiene una issue.
func (w *walker) reported(path string) bool {
	for p := range w.failed {
		if p == "" || p == path || strings.HasPrefix(path, p+".") || strings.HasPrefix(path, p+"[") {
			return true
		}
	}
	return false
}

// fieldPath quita el nombre del struct raíz: "ContextRequest.messages[0].authorType" -> "messages[0].authorType".
func fieldPath(namespace string) string {
	_, rest, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}
	return rest
}

func constraintMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		options := strings.Fields(fe.Param())
		quoted := make([]string, 0, len(options))
		for _, o := range options {
			quoted = append(quoted, "'"+o+"'")
		}
		return fmt.Sprintf("Invalid enum value. Expected %s, received '%v'", strings.Join(quoted, " | "), fe.Value())
	case "required":
		return msgRequired
	default:
		return fmt.Sprintf("Failed %q constraint", fe.Tag())
	}
}
