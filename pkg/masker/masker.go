package masker

import (
	"errors"
	"reflect"

	"go.uber.org/zap"
)

var ErrConfigNotPointer = errors.New("config must be a pointer to a struct")

// LogConfigs logs config structs, nested ones included, one line per struct.
// Fields tagged masked:"true" are logged masked so secrets never reach the
// log stream in the clear.
func LogConfigs(logger *zap.Logger, configs ...interface{}) error {
	for _, config := range configs {
		v := reflect.ValueOf(config)
		t := reflect.TypeOf(config)

		if v.Kind() != reflect.Ptr {
			return ErrConfigNotPointer
		}
		v = v.Elem()
		t = t.Elem()

		masked := maskStructFields(v, t)
		logger.Info("Config", zap.Any(t.Name(), masked))
	}
	return nil
}

// maskStructFields walks the struct, recursing into nested structs and
// masking tagged string fields.
func maskStructFields(v reflect.Value, t reflect.Type) map[string]interface{} {
	result := make(map[string]interface{})
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)
		masked := fieldType.Tag.Get("masked")

		switch field.Kind() {
		case reflect.Struct:
			result[fieldType.Name] = maskStructFields(field, field.Type())
		case reflect.String:
			if masked == "true" {
				result[fieldType.Name] = maskSensitiveData(field.String())
			} else {
				result[fieldType.Name] = field.String()
			}
		default:
			result[fieldType.Name] = field.Interface()
		}
	}
	return result
}

// maskSensitiveData keeps only the first and last characters. Strings of two
// characters or fewer come back fully masked.
func maskSensitiveData(data string) string {
	if len(data) <= 2 {
		return "****"
	}
	return string(data[0]) + "****" + string(data[len(data)-1])
}
