package formula

import "strings"

// ComputedSuffix distinguishes computed quantity names from input variables at
// the reference level: `[post_qty]` always resolves from the computed
// namespace, `[post_spacing]` always from inputs. The two namespaces are held
// in separate maps so a component's own result can never shadow an input.
const ComputedSuffix = "_qty"

// AttributeLookup resolves dotted references such as `[picket.width_inches]`
// against the material already selected for a component. The caller supplies
// it alongside the context; the evaluator itself never touches a data store.
type AttributeLookup func(component, attribute string) (float64, bool)

// Context is the named-value environment a formula evaluates against.
type Context struct {
	inputs   map[string]float64
	flags    map[string]bool
	computed map[string]float64
	attrs    AttributeLookup
}

// NewContext returns an empty evaluation context.
func NewContext() *Context {
	return &Context{
		inputs:   make(map[string]float64),
		flags:    make(map[string]bool),
		computed: make(map[string]float64),
	}
}

// SetInput binds a numeric input variable.
func (c *Context) SetInput(name string, v float64) {
	c.inputs[name] = v
}

// SetFlag binds a boolean input variable.
func (c *Context) SetFlag(name string, v bool) {
	c.flags[name] = v
}

// SetComputed records a component's computed quantity under its conventional
// `<code>_qty` name.
func (c *Context) SetComputed(componentCode string, qty float64) {
	c.computed[componentCode+ComputedSuffix] = qty
}

// WithAttributes attaches the dotted-reference side channel.
func (c *Context) WithAttributes(lookup AttributeLookup) *Context {
	c.attrs = lookup
	return c
}

// Input returns a bound input variable.
func (c *Context) Input(name string) (float64, bool) {
	v, ok := c.inputs[name]
	return v, ok
}

// resolve looks up a plain `[name]` reference. Names carrying the computed
// suffix resolve exclusively from the computed namespace; everything else
// from inputs. Missing names are reported, never defaulted.
func (c *Context) resolve(name string) (Value, bool) {
	if strings.HasSuffix(name, ComputedSuffix) {
		v, ok := c.computed[name]
		if !ok {
			return Value{}, false
		}
		return Number(v), true
	}
	if v, ok := c.inputs[name]; ok {
		return Number(v), true
	}
	if b, ok := c.flags[name]; ok {
		return Bool(b), true
	}
	return Value{}, false
}

// resolveAttr looks up a dotted `[component.attribute]` reference.
func (c *Context) resolveAttr(component, attribute string) (Value, bool) {
	if c.attrs == nil {
		return Value{}, false
	}
	v, ok := c.attrs(component, attribute)
	if !ok {
		return Value{}, false
	}
	return Number(v), true
}
