package material

import (
	"errors"
	"fmt"
	"reflect"

	gekko "github.com/gekko3d/gekko-npr"
)

// Contract is the agreement between a Go uniform struct and the shader that
// reads it. Uniform fields carry the WGSL member name in a wgsl tag.
type Contract struct {
	UniformStruct string
	Uniform       any
	FlagPrefix    string
	Features      []FeatureBit
}

// CheckContract compares the shader's uniform struct layout and flag
// constants with the Go side and reports every mismatch.
func CheckContract(shader *gekko.ShaderAsset, c Contract) error {
	var errs []error
	if err := CheckLayout(shader, c.UniformStruct, c.Uniform); err != nil {
		errs = append(errs, err)
	}

	expect := func(name string, want uint32) {
		got, ok := shader.U32Const(name)
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("constant %s not found", name))
		case got != want:
			errs = append(errs, fmt.Errorf("constant %s: shader %d, Go %d", name, got, want))
		}
	}
	for _, b := range c.Features {
		expect(b.ShaderConst(c.FlagPrefix), b.Mask())
	}
	for _, code := range AllAlphaModes() {
		expect(code.ShaderConst(c.FlagPrefix), code.Bits())
	}
	expect(c.FlagPrefix+"_ALPHA_MODE_SHIFT_BITS", AlphaModeShiftBits)
	expect(c.FlagPrefix+"_ALPHA_MODE_RESERVED_BITS", AlphaModeReservedBits)

	return errors.Join(errs...)
}

// CheckLayout compares the wgsl-tagged fields of uniform with the members of
// the named shader struct: names and byte offsets in order, and total size.
func CheckLayout(shader *gekko.ShaderAsset, structName string, uniform any) error {
	var errs []error

	st, ok := shader.Struct(structName)
	if !ok {
		return fmt.Errorf("shader %s: struct %s not found", shader.Name, structName)
	}

	t := reflect.TypeOf(uniform)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	var fields []reflect.StructField
	for i := 0; i < t.NumField(); i++ {
		if _, ok := t.Field(i).Tag.Lookup("wgsl"); ok {
			fields = append(fields, t.Field(i))
		}
	}

	if len(fields) != len(st.Members) {
		errs = append(errs, fmt.Errorf("%s: Go has %d members, shader has %d", structName, len(fields), len(st.Members)))
	}
	for i := 0; i < min(len(fields), len(st.Members)); i++ {
		f, m := fields[i], st.Members[i]
		name := f.Tag.Get("wgsl")
		if name != m.Name {
			errs = append(errs, fmt.Errorf("%s member %d: Go %s, shader %s", structName, i, name, m.Name))
			continue
		}
		if uint32(f.Offset) != m.Offset {
			errs = append(errs, fmt.Errorf("%s.%s: Go offset %d, shader offset %d", structName, name, f.Offset, m.Offset))
		}
	}
	if uint32(t.Size()) != st.Span {
		errs = append(errs, fmt.Errorf("%s: Go size %d, shader span %d", structName, t.Size(), st.Span))
	}

	return errors.Join(errs...)
}
