package authz

import "errors"

type Resource string

const (
	ResUser           Resource = "user"
	ResProject        Resource = "project"
	ResTask           Resource = "task"
	ResNotification   Resource = "notification"
	ResMessage        Resource = "message"
	ResMessageArchive Resource = "message_archive"
)

type Action string

const (
	List     Action = "list"
	Retrieve Action = "retrieve"
	Create   Action = "create"
	Update   Action = "update"
	Delete   Action = "delete"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
)

type key struct {
	res Resource
	act Action
}

// Matrix is the single table of access rules. Pairs without an entry fall
// back to admin-only.
type Matrix struct {
	rules    map[key]Rule
	fallback Rule
}

// NewMatrix builds the access table. With legacyConjunctive the user and
// task update rules require both of their permissions instead of either.
func NewMatrix(legacyConjunctive bool) *Matrix {
	selfOrAdmin := AnyOf(Profile, Admin)
	assigneeOrAdmin := AnyOf(Assignee, Admin)
	if legacyConjunctive {
		selfOrAdmin = AllOf(Profile, Admin)
		assigneeOrAdmin = AllOf(Assignee, Admin)
	}

	member := AllOf(Authenticated)
	adminOnly := AllOf(Admin)

	return &Matrix{
		fallback: adminOnly,
		rules: map[key]Rule{
			{ResUser, List}:   member,
			{ResUser, Create}: adminOnly,
			{ResUser, Update}: selfOrAdmin,
			{ResUser, Delete}: adminOnly,

			{ResProject, List}:     member,
			{ResProject, Retrieve}: member,
			{ResProject, Create}:   adminOnly,
			{ResProject, Update}:   adminOnly,
			{ResProject, Delete}:   adminOnly,

			{ResTask, List}:     member,
			{ResTask, Retrieve}: assigneeOrAdmin,
			{ResTask, Create}:   adminOnly,
			{ResTask, Update}:   assigneeOrAdmin,
			{ResTask, Delete}:   adminOnly,

			{ResNotification, List}:     member,
			{ResNotification, Retrieve}: member,
			{ResNotification, Create}:   member,
			{ResNotification, Update}:   member,
			{ResNotification, Delete}:   member,

			{ResMessage, List}:   member,
			{ResMessage, Create}: member,

			{ResMessageArchive, Create}: adminOnly,
		},
	}
}

func (m *Matrix) Rule(res Resource, act Action) Rule {
	if r, ok := m.rules[key{res, act}]; ok {
		return r
	}
	return m.fallback
}

func (m *Matrix) ObjectScoped(res Resource, act Action) bool {
	return m.Rule(res, act).ObjectScoped()
}

// Check runs the request phase. It must pass before any record is loaded.
func (m *Matrix) Check(p *Principal, res Resource, act Action) error {
	if !p.Authenticated() {
		return ErrUnauthenticated
	}
	if !m.Rule(res, act).AllowRequest(p) {
		return ErrForbidden
	}
	return nil
}

// CheckObject runs both phases against a loaded record. A nil target means
// the record is missing: callers that only an object predicate could admit
// get ErrForbidden, callers admitted without one get ErrNotFound.
func (m *Matrix) CheckObject(p *Principal, res Resource, act Action, t *Target) error {
	if !p.Authenticated() {
		return ErrUnauthenticated
	}
	rule := m.Rule(res, act)
	if !rule.AllowObject(p, t) {
		return ErrForbidden
	}
	if t == nil {
		return ErrNotFound
	}
	return nil
}
