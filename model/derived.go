package model

// Derived is a zero-storage marker field for a computed property: one
// whose value is derived from other properties via a plain Go method (e.g.
// `func (p *Person) MotherId() string`) rather than stored directly. Tag it
// with `reactor:"dependsOn=A,B"` so writes to A or B fan out a
// property_changed for its own name, per §4.1's dependency propagation.
type Derived struct {
	owner    *Base
	propName string
}

func (d *Derived) bindSlot(owner *Base, desc *Descriptor) {
	d.owner = owner
	d.propName = desc.Name
}

// Name returns the property name this marker was bound to.
func (d *Derived) Name() string { return d.propName }

var _ boundSlot = (*Derived)(nil)
