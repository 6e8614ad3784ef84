package authz

import (
	"slices"

	"github.com/taskroom/taskroom/internal/modules/model"
)

// Principal is the caller as recovered from the access token.
type Principal struct {
	UserID uint
	Role   model.Role
}

func (p *Principal) Authenticated() bool {
	return p != nil && p.UserID != 0
}

func (p *Principal) IsAdmin() bool {
	return p.Authenticated() && p.Role == model.RoleAdmin
}

// Target describes the record an object-level check runs against.
// A nil Target stands for a record that does not exist.
type Target struct {
	UserID      uint
	AssigneeIDs []uint
}

// Permission is a pair of predicates: one on the request, one on the record.
type Permission interface {
	Name() string
	HasPermission(p *Principal) bool
	HasObjectPermission(p *Principal, t *Target) bool
	// ObjectScoped reports whether HasObjectPermission depends on the record.
	ObjectScoped() bool
}

var (
	Authenticated Permission = authenticated{}
	Admin         Permission = admin{}
	Profile       Permission = profile{}
	Assignee      Permission = assignee{}
)

type authenticated struct{}

func (authenticated) Name() string                                 { return "authenticated" }
func (authenticated) HasPermission(p *Principal) bool              { return p.Authenticated() }
func (authenticated) HasObjectPermission(*Principal, *Target) bool { return true }
func (authenticated) ObjectScoped() bool                           { return false }

type admin struct{}

func (admin) Name() string                                 { return "admin" }
func (admin) HasPermission(p *Principal) bool              { return p.IsAdmin() }
func (admin) HasObjectPermission(*Principal, *Target) bool { return true }
func (admin) ObjectScoped() bool                           { return false }

// profile grants access to the caller's own user record.
type profile struct{}

func (profile) Name() string                    { return "profile" }
func (profile) HasPermission(p *Principal) bool { return p.Authenticated() }
func (profile) HasObjectPermission(p *Principal, t *Target) bool {
	return t != nil && p.Authenticated() && t.UserID == p.UserID
}
func (profile) ObjectScoped() bool { return true }

// assignee grants access to tasks the caller is assigned to.
type assignee struct{}

func (assignee) Name() string                    { return "assignee" }
func (assignee) HasPermission(p *Principal) bool { return p.Authenticated() }
func (assignee) HasObjectPermission(p *Principal, t *Target) bool {
	return t != nil && p.Authenticated() && slices.Contains(t.AssigneeIDs, p.UserID)
}
func (assignee) ObjectScoped() bool { return true }
