package subject

import (
	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/crud"
)

type Subject struct {
	crud.Base
	Code        string `json:"code" db:"code"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
}

// NewSubject contains information needed to create a new Subject.
type NewSubject struct {
	Code        string `json:"code" form:"code" validate:"required,max=20"`
	Name        string `json:"name" form:"name" validate:"required,max=100"`
	Description string `json:"description" form:"description" validate:"max=1000"`
}

func (ns *NewSubject) Clean() {
	ns.Code = core.CleanString(ns.Code)
	ns.Name = core.CleanString(ns.Name)
	ns.Description = core.CleanString(ns.Description)
}

type UpdateSubject NewSubject

func (us *UpdateSubject) Clean() { (*NewSubject)(us).Clean() }
