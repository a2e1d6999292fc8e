package material

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"reflect"
)

// UniformBytes packs a uniform struct little-endian, field by field. Blank
// padding fields are written as zeros.
func UniformBytes(uniform any) []byte {
	val := reflect.ValueOf(uniform)
	if val.Kind() == reflect.Pointer {
		val = val.Elem()
	}
	buf := new(bytes.Buffer)
	buf.Grow(int(val.Type().Size()))
	writeUniform(val, buf)
	return buf.Bytes()
}

func writeUniform(field reflect.Value, buf *bytes.Buffer) {
	switch field.Kind() {
	case reflect.Array:
		for i := 0; i < field.Len(); i++ {
			writeUniform(field.Index(i), buf)
		}

	case reflect.Struct:
		t := field.Type()
		for i := 0; i < field.NumField(); i++ {
			if !t.Field(i).IsExported() {
				buf.Write(make([]byte, t.Field(i).Type.Size()))
				continue
			}
			writeUniform(field.Field(i), buf)
		}

	case reflect.Uint32, reflect.Int32, reflect.Float32:
		if err := binary.Write(buf, binary.LittleEndian, field.Interface()); err != nil {
			panic(fmt.Errorf("failed to write uniform field: %w", err))
		}

	default:
		panic(fmt.Errorf("unsupported uniform type: %v", field.Type()))
	}
}
