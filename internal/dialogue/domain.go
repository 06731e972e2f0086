package dialogue

import (
	"fmt"
	"slices"
)

// #region domain

// Domain describes the action space of an assistant plus the intents and
// slots its conversations may reference. The action order is fixed at
// construction time and defines the indexing of probability vectors.
type Domain struct {
	actions []string
	index   map[string]int
	intents map[string]struct{}
	slots   map[string]struct{}
}

// NewDomain builds a domain from ordered action names. ActionListenName
// is prepended when missing so every domain can wait for user input.
func NewDomain(actions, intents, slots []string) (*Domain, error) {
	if !slices.Contains(actions, ActionListenName) {
		actions = append([]string{ActionListenName}, actions...)
	}

	d := &Domain{
		actions: slices.Clone(actions),
		index:   make(map[string]int, len(actions)),
		intents: make(map[string]struct{}, len(intents)),
		slots:   make(map[string]struct{}, len(slots)),
	}
	for i, a := range d.actions {
		if a == "" {
			return nil, fmt.Errorf("action %d: empty name", i)
		}
		if _, dup := d.index[a]; dup {
			return nil, fmt.Errorf("duplicate action %q", a)
		}
		d.index[a] = i
	}
	for _, in := range intents {
		d.intents[in] = struct{}{}
	}
	for _, s := range slots {
		d.slots[s] = struct{}{}
	}
	return d, nil
}

// #endregion domain

// #region lookups

// ActionCount returns the size of the action space.
func (d *Domain) ActionCount() int { return len(d.actions) }

// Actions returns the ordered action names.
func (d *Domain) Actions() []string { return slices.Clone(d.actions) }

// IndexForAction resolves an action name to its probability-vector index.
func (d *Domain) IndexForAction(name string) (int, error) {
	i, ok := d.index[name]
	if !ok {
		return 0, fmt.Errorf("action %q not in domain", name)
	}
	return i, nil
}

// HasIntent reports whether the domain declares the intent.
func (d *Domain) HasIntent(name string) bool {
	_, ok := d.intents[name]
	return ok
}

// HasSlot reports whether the domain declares the slot.
func (d *Domain) HasSlot(name string) bool {
	_, ok := d.slots[name]
	return ok
}

// #endregion lookups
