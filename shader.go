package gekko

import (
	"bufio"
	"fmt"
	"slices"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
)

// ShaderAsset is a registered WGSL shader. Source holds the shader's own
// text; Composed prepends its imports (depth first, each once).
type ShaderAsset struct {
	Id       AssetId
	Name     string
	Source   string
	Imports  []AssetId
	Composed string

	module *ir.Module
}

// ShaderStructMember is a uniform struct member as laid out by the shader
// compiler.
type ShaderStructMember struct {
	Name   string
	Offset uint32
}

type ShaderStruct struct {
	Name    string
	Members []ShaderStructMember
	Span    uint32
}

// RegisterShader stores a shader under a fixed id. Registering the same id
// again replaces the previous entry. Imports must already be registered.
// The composed source is parsed and lowered; failures are returned and the
// previous registration, if any, is kept.
func (server *AssetServer) RegisterShader(id AssetId, name string, source string, imports ...AssetId) error {
	server.mu.RLock()
	composed, err := server.composeLocked(source, imports)
	server.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("register shader %s: %w", name, err)
	}

	module, err := lowerWGSL(Preprocess(composed, nil))
	if err != nil {
		return fmt.Errorf("register shader %s: %w", name, err)
	}

	server.mu.Lock()
	server.shaders[id] = &ShaderAsset{
		Id:       id,
		Name:     name,
		Source:   source,
		Imports:  slices.Clone(imports),
		Composed: composed,
		module:   module,
	}
	server.mu.Unlock()
	return nil
}

func (server *AssetServer) Shader(id AssetId) (*ShaderAsset, bool) {
	server.mu.RLock()
	defer server.mu.RUnlock()

	s, ok := server.shaders[id]
	return s, ok
}

func (server *AssetServer) composeLocked(source string, imports []AssetId) (string, error) {
	var b strings.Builder
	seen := make(set[AssetId])

	var visit func(ids []AssetId) error
	visit = func(ids []AssetId) error {
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}

			dep, ok := server.shaders[id]
			if !ok {
				return fmt.Errorf("missing import %s", id)
			}
			if err := visit(dep.Imports); err != nil {
				return err
			}
			b.WriteString(dep.Source)
			b.WriteString("\n")
		}
		return nil
	}

	if err := visit(imports); err != nil {
		return "", err
	}
	b.WriteString(source)
	return b.String(), nil
}

func lowerWGSL(source string) (*ir.Module, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, err
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, fmt.Errorf("lower: %w", err)
	}
	return module, nil
}

// Specialize returns the composed source with the given shader defs applied.
func (s *ShaderAsset) Specialize(defs []string) string {
	return Preprocess(s.Composed, defs)
}

// Struct looks up a named struct type.
func (s *ShaderAsset) Struct(name string) (ShaderStruct, bool) {
	for _, t := range s.module.Types {
		if t.Name != name {
			continue
		}
		var st ir.StructType
		switch inner := t.Inner.(type) {
		case ir.StructType:
			st = inner
		case *ir.StructType:
			st = *inner
		default:
			continue
		}

		res := ShaderStruct{Name: name, Span: st.Span}
		for _, m := range st.Members {
			res.Members = append(res.Members, ShaderStructMember{Name: m.Name, Offset: m.Offset})
		}
		return res, true
	}
	return ShaderStruct{}, false
}

// U32Const returns the value of a module-scope integer constant.
func (s *ShaderAsset) U32Const(name string) (uint32, bool) {
	for _, c := range s.module.Constants {
		if c.Name != name {
			continue
		}
		switch v := c.Value.(type) {
		case ir.ScalarValue:
			return uint32(v.Bits), true
		case *ir.ScalarValue:
			return uint32(v.Bits), true
		}
		if int(c.Init) < len(s.module.GlobalExpressions) {
			if lit, ok := s.module.GlobalExpressions[c.Init].Kind.(ir.Literal); ok {
				switch v := lit.Value.(type) {
				case ir.LiteralU32:
					return uint32(v), true
				case ir.LiteralI32:
					return uint32(v), true
				}
			}
		}
		return 0, false
	}
	return 0, false
}

// EntryPoints lists the shader's entry point names.
func (s *ShaderAsset) EntryPoints() []string {
	res := make([]string, 0, len(s.module.EntryPoints))
	for _, ep := range s.module.EntryPoints {
		res = append(res, ep.Name)
	}
	return res
}

// Preprocess resolves #ifdef NAME / #ifndef NAME / #else / #endif lines.
// Lines inside inactive branches are dropped; directives never reach the
// shader compiler.
func Preprocess(source string, defs []string) string {
	defined := make(set[string], len(defs))
	for _, d := range defs {
		defined[d] = struct{}{}
	}

	type frame struct{ parentActive, active bool }
	var stack []frame
	active := true

	var out strings.Builder
	sc := bufio.NewScanner(strings.NewReader(source))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "#ifdef "), strings.HasPrefix(trimmed, "#ifndef "):
			directive, name, _ := strings.Cut(trimmed, " ")
			_, isDefined := defined[strings.TrimSpace(name)]
			cond := isDefined == (directive == "#ifdef")
			stack = append(stack, frame{parentActive: active, active: active && cond})
			active = active && cond
			continue
		case trimmed == "#else":
			if n := len(stack); n > 0 {
				top := stack[n-1]
				top.active = top.parentActive && !top.active
				stack[n-1] = top
				active = top.active
			}
			continue
		case trimmed == "#endif":
			if n := len(stack); n > 0 {
				active = stack[n-1].parentActive
				stack = stack[:n-1]
			}
			continue
		}

		if active {
			out.WriteString(line)
			out.WriteByte('\n')
		}
	}
	return out.String()
}
