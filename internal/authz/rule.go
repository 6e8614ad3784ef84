package authz

import "strings"

type combinator int

const (
	allOf combinator = iota
	anyOf
)

// Rule combines permissions with explicit AND or OR semantics.
type Rule struct {
	op    combinator
	perms []Permission
}

func AllOf(perms ...Permission) Rule { return Rule{op: allOf, perms: perms} }

func AnyOf(perms ...Permission) Rule { return Rule{op: anyOf, perms: perms} }

// AllowRequest evaluates the request phase.
func (r Rule) AllowRequest(p *Principal) bool {
	if len(r.perms) == 0 {
		return false
	}
	for _, perm := range r.perms {
		ok := perm.HasPermission(p)
		if r.op == anyOf && ok {
			return true
		}
		if r.op == allOf && !ok {
			return false
		}
	}
	return r.op == allOf
}

// AllowObject evaluates both phases against t. Under AnyOf a single
// permission must pass both of its own predicates.
func (r Rule) AllowObject(p *Principal, t *Target) bool {
	if len(r.perms) == 0 {
		return false
	}
	for _, perm := range r.perms {
		ok := perm.HasPermission(p) && perm.HasObjectPermission(p, t)
		if r.op == anyOf && ok {
			return true
		}
		if r.op == allOf && !ok {
			return false
		}
	}
	return r.op == allOf
}

func (r Rule) ObjectScoped() bool {
	for _, perm := range r.perms {
		if perm.ObjectScoped() {
			return true
		}
	}
	return false
}

func (r Rule) String() string {
	names := make([]string, 0, len(r.perms))
	for _, perm := range r.perms {
		names = append(names, perm.Name())
	}
	op := "AllOf"
	if r.op == anyOf {
		op = "AnyOf"
	}
	return op + "(" + strings.Join(names, ", ") + ")"
}
