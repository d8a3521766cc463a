package compiler

import "github.com/roach88/blockc/internal/names"

// Binding is one setup-time constant of a factory: const Name = Expr;
type Binding struct {
	Name string
	Expr string
}

// SetupCache deduplicates lookups that only need to run once per factory
// instantiation, such as resolving a variable's storage slot.
type SetupCache struct {
	pool   *names.Pool
	byExpr map[string]string
	order  []Binding
}

// NewSetupCache creates an empty cache drawing names from a fresh "b" pool.
func NewSetupCache() *SetupCache {
	return &SetupCache{
		pool:   names.NewPool(names.SetupPrefix),
		byExpr: make(map[string]string),
	}
}

// Bind returns the identifier bound to expr, allocating one the first time
// an expression is seen. Expressions match by exact text.
func (c *SetupCache) Bind(expr string) string {
	if name, ok := c.byExpr[expr]; ok {
		return name
	}
	name := c.pool.Next()
	c.byExpr[expr] = name
	c.order = append(c.order, Binding{Name: name, Expr: expr})
	return name
}

// Bindings returns every binding in first-use order.
func (c *SetupCache) Bindings() []Binding {
	return c.order
}

// Len returns the number of distinct bindings.
func (c *SetupCache) Len() int {
	return len(c.order)
}
