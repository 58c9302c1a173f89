package catalog

import (
	"scaleplus-loyalty/pkg/collection"
	"scaleplus-loyalty/pkg/errutil"
)

// Mechanics lists the ways members earn points. Entries are informational.
type Mechanics struct {
	items *collection.Ordered[Mechanic]
}

func NewMechanics(mechanics ...Mechanic) *Mechanics {
	m := &Mechanics{items: collection.New(func(m Mechanic) string { return m.ID })}
	for _, mechanic := range mechanics {
		m.items.Set(mechanic)
	}
	return m
}

func notFoundMechanic(id string) error {
	return ErrMechanicNotFound.With(errutil.WithDetail("mechanicId", id))
}

func (m *Mechanics) Get(id string) (Mechanic, error) {
	mechanic, ok := m.items.Get(id)
	if !ok {
		return Mechanic{}, notFoundMechanic(id)
	}
	return mechanic, nil
}

func (m *Mechanics) List() []Mechanic {
	return m.items.List()
}

func (m *Mechanics) Active() []Mechanic {
	return m.items.Filter(func(mech Mechanic) bool { return mech.IsActive })
}

func (m *Mechanics) Len() int {
	return m.items.Len()
}

func (m *Mechanics) Add(mechanic Mechanic) (Mechanic, error) {
	if mechanic.ID == "" {
		return Mechanic{}, ErrInvalidMechanic.With(errutil.WithDetail("id", "is required"))
	}
	if err := mechanic.Validate(); err != nil {
		return Mechanic{}, err
	}
	if m.items.Has(mechanic.ID) {
		return Mechanic{}, ErrInvalidMechanic.With(errutil.WithDetail("id", "already exists"))
	}
	m.items.Set(mechanic)
	return mechanic, nil
}

func (m *Mechanics) Update(mechanic Mechanic) (Mechanic, error) {
	if !m.items.Has(mechanic.ID) {
		return Mechanic{}, notFoundMechanic(mechanic.ID)
	}
	if err := mechanic.Validate(); err != nil {
		return Mechanic{}, err
	}
	m.items.Set(mechanic)
	return mechanic, nil
}

func (m *Mechanics) Delete(id string) error {
	if !m.items.Delete(id) {
		return notFoundMechanic(id)
	}
	return nil
}

func (m *Mechanics) Clone() *Mechanics {
	return &Mechanics{items: m.items.Clone()}
}

func (m *Mechanics) MarshalJSON() ([]byte, error) {
	return m.items.MarshalJSON()
}

func (m *Mechanics) UnmarshalJSON(data []byte) error {
	fresh := NewMechanics()
	if err := fresh.items.UnmarshalJSON(data); err != nil {
		return err
	}
	*m = *fresh
	return nil
}
