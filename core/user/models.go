package user

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/supinter/ums/core"
)

// Roles
const (
	RoleFounder    = "founder"
	RoleDirector   = "director"
	RoleIT         = "it"
	RoleAccountant = "accountant"
	RoleSecretary  = "secretary"
)

var (
	AllRoles = []string{RoleFounder, RoleDirector, RoleIT, RoleAccountant, RoleSecretary}

	// AdminRoles may administer user accounts.
	AdminRoles = []string{RoleFounder, RoleDirector, RoleIT}

	rolePriorities = map[string]int{
		RoleFounder:    50,
		RoleDirector:   40,
		RoleIT:         30,
		RoleAccountant: 20,
		RoleSecretary:  10,
	}

	Roles = []Role{
		{Name: "Fondateur", Value: RoleFounder},
		{Name: "Directeur", Value: RoleDirector},
		{Name: "Informaticien", Value: RoleIT},
		{Name: "Comptable", Value: RoleAccountant},
		{Name: "Secrétaire", Value: RoleSecretary},
	}
)

func RolePriority(role string) int {
	return rolePriorities[role]
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type User struct {
	ID           string      `json:"id" db:"id"`
	Email        string      `json:"email" db:"email"`
	Name         string      `json:"name" db:"name"`
	Role         string      `json:"role" db:"role"`
	CampusID     null.String `json:"campus_id" db:"campus_id"`
	CampusName   null.String `json:"campus_name" db:"campus_name"`
	IsActive     bool        `json:"is_active" db:"is_active"`
	PasswordHash []byte      `json:"-" db:"password_hash"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"` // UTC
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"` // UTC
	LastLogin    null.Time   `json:"last_login" db:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsFounder() bool {
	return u.Role == RoleFounder
}

func (u *User) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if u.Role == role {
			return true
		}
	}
	return false
}

// Scope returns the campus restriction applied to everything the User reads or writes.
func (u *User) Scope() core.Scope {
	if u.IsFounder() {
		return core.Scope{Unrestricted: true}
	}
	return core.Scope{CampusID: u.CampusID.String}
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required,notblank"`
	Role     string `json:"role" validate:"required,allroles"`
	CampusID string `json:"campus_id" validate:"omitempty,uuid"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Role = core.CleanString(nu.Role, true /* lower */)
	nu.CampusID = core.CleanString(nu.CampusID)
	if nu.Role == "" {
		nu.Role = RoleSecretary
	}

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(ctx, nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing User.
// Empty fields keep their current value.
type UpdateUser struct {
	Email    string  `json:"email" validate:"omitempty,email"`
	Name     string  `json:"name"`
	Role     string  `json:"role" validate:"omitempty,allroles"`
	CampusID *string `json:"campus_id" validate:"omitempty,uuid"`
	IsActive *bool   `json:"is_active"`
	Password string  `json:"password"`
}

func (uu *UpdateUser) Validate(ctx context.Context, origUsr User, validate *validator.Validate, svc Service) error {
	if name := core.CleanString(uu.Name); name != "" {
		uu.Name = name
	} else {
		uu.Name = origUsr.Name
	}
	if email := core.CleanString(uu.Email, true /* lower */); email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}
	if role := core.CleanString(uu.Role, true /* lower */); role != "" {
		uu.Role = role
	} else {
		uu.Role = origUsr.Role
	}
	if uu.CampusID == nil {
		uu.CampusID = &origUsr.CampusID.String
	} else {
		*uu.CampusID = core.CleanString(*uu.CampusID)
	}

	if err := validate.Struct(uu); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(ctx, uu.Email, origUsr.ID)
}

type ResetUserPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetUserPassword) Validate(validate *validator.Validate) error { return validate.Struct(rp) }

type GetFilter struct {
	ID    string
	Email string
}

type QueryFilter struct {
	Search   string `query:"search"`
	Role     string `query:"role"`
	CampusID string `query:"campus_id"`
	IsActive *bool  `query:"is_active"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Role = core.CleanString(qf.Role, true /* lower */)
	qf.CampusID = core.CleanString(qf.CampusID)
}
