package material

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	gekko "github.com/gekko3d/gekko-npr"
)

// TextureSlot is a material field tagged
//
//	gekko:"texture" binding:"1" sampler:"2" filter:"linear" mode:"wrap"
//
// filter is linear or nearest, mode is wrap, mirror or clamp.
type TextureSlot struct {
	Name           string
	Texture        gekko.Handle[gekko.Image]
	Binding        uint32
	SamplerBinding uint32
	Filter         string
	WrapMode       string
}

var imageHandleType = reflect.TypeOf(gekko.Handle[gekko.Image]{})

// TextureSlots lists the texture fields of material in declaration order.
// Malformed tags are programming errors and panic.
func TextureSlots(material any) []TextureSlot {
	val := reflect.ValueOf(material)
	if val.Kind() == reflect.Pointer {
		val = val.Elem()
	}
	t := val.Type()

	var res []TextureSlot
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Tag.Get("gekko") != "texture" {
			continue
		}
		if field.Type != imageHandleType {
			panic(fmt.Sprintf("texture field %s must be a Handle[Image]", field.Name))
		}

		slot := TextureSlot{
			Name:           field.Name,
			Texture:        val.Field(i).Interface().(gekko.Handle[gekko.Image]),
			Binding:        parseBindingTag(field, "binding"),
			SamplerBinding: parseBindingTag(field, "sampler"),
			Filter:         strings.ToLower(field.Tag.Get("filter")),
			WrapMode:       strings.ToLower(field.Tag.Get("mode")),
		}
		if slot.Filter == "" {
			slot.Filter = "linear"
		}
		if slot.WrapMode == "" {
			slot.WrapMode = "wrap"
		}
		res = append(res, slot)
	}
	return res
}

func parseBindingTag(field reflect.StructField, key string) uint32 {
	v, err := strconv.ParseUint(field.Tag.Get(key), 10, 32)
	if err != nil {
		panic(fmt.Errorf("texture field %s: bad %s tag: %w", field.Name, key, err))
	}
	return uint32(v)
}
