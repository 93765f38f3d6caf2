package student

import "github.com/mroldanv/presente/core"

// Student belongs to exactly one account's partition and is keyed by its
// normalized RUT there.
type Student struct {
	RUT  string `json:"rut"`
	Name string `json:"name"`
}

// NewStudent contains information needed to add a Student.
type NewStudent struct {
	Name string `json:"name" validate:"required"`
	RUT  string `json:"rut" validate:"required,rut"`
}

func (ns *NewStudent) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	ns.RUT = core.CleanString(ns.RUT)
	return core.Validate.Struct(ns)
}

// UpdateStudent defines what may be changed on an existing Student. A RUT
// change cascades into every session and roster referencing the old one.
type UpdateStudent struct {
	Name string `json:"name" validate:"required"`
	RUT  string `json:"rut" validate:"required,rut"`
}

func (us *UpdateStudent) Validate() error {
	us.Name = core.CleanString(us.Name)
	us.RUT = core.CleanString(us.RUT)
	return core.Validate.Struct(us)
}
