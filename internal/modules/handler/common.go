package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/taskroom/taskroom/internal/authz"
	"github.com/taskroom/taskroom/internal/middleware"
	"github.com/taskroom/taskroom/internal/modules/serializer"
	"github.com/taskroom/taskroom/internal/modules/service"
	"github.com/taskroom/taskroom/internal/pkg/paging"
)

const dateLayout = "2006-01-02"

var (
	errInvalidID = errors.New("a valid integer is required")
	errBadDate   = errors.New("date has wrong format, use YYYY-MM-DD")
)

// respondError renders err with its matching status and envelope.
func respondError(c *gin.Context, err error) {
	var fe *service.FieldError
	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
	case errors.Is(err, authz.ErrForbidden):
		c.JSON(http.StatusForbidden, serializer.Forbidden())
	case errors.Is(err, authz.ErrNotFound), errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, serializer.NotFound())
	case errors.As(err, &fe):
		c.JSON(http.StatusBadRequest, serializer.ValidationErr(map[string][]string{fe.Field: {fe.Err.Error()}}))
	case errors.Is(err, service.ErrArchiveDisabled):
		c.JSON(http.StatusServiceUnavailable, serializer.Unavailable(err.Error(), nil))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
	}
}

func fieldError(c *gin.Context, field string, err error) {
	c.JSON(http.StatusBadRequest, serializer.ValidationErr(map[string][]string{field: {err.Error()}}))
}

// parseID reads the :id path parameter. Zero and non-numeric ids are
// reported as absent so they resolve like a missing record.
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func queryUint(c *gin.Context, name string) (*uint, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 0)
	if err != nil {
		return nil, errInvalidID
	}
	id := uint(v)
	return &id, nil
}

func queryBool(c *gin.Context, name string) (*bool, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, errors.New("must be a valid boolean")
	}
	return &v, nil
}

func pageParams(c *gin.Context) (paging.Params, bool) {
	var p paging.Params
	if err := c.ShouldBindQuery(&p); err != nil {
		c.JSON(http.StatusBadRequest, serializer.BindErr(err))
		return p, false
	}
	return p.Normalize(), true
}

func parseDate(raw *string) (*datatypes.Date, error) {
	if raw == nil {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *raw)
	if err != nil {
		return nil, errBadDate
	}
	d := datatypes.Date(t)
	return &d, nil
}

func formatDate(d datatypes.Date) string {
	t := time.Time(d)
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// authorize runs the request phase of the rule for (res, act).
func authorize(c *gin.Context, m *authz.Matrix, res authz.Resource, act authz.Action) bool {
	if err := m.Check(middleware.Principal(c), res, act); err != nil {
		respondError(c, err)
		return false
	}
	return true
}

// loadFor runs the request phase, loads the record named by :id and runs
// the object phase against it. A missing record is resolved by the matrix
// so it yields 403 or 404 depending on how the caller would be admitted.
func loadFor[T any](
	c *gin.Context,
	m *authz.Matrix,
	res authz.Resource,
	act authz.Action,
	get func(ctx context.Context, id uint) (*T, error),
	target func(*T) *authz.Target,
) (*T, bool) {
	p := middleware.Principal(c)
	if err := m.Check(p, res, act); err != nil {
		respondError(c, err)
		return nil, false
	}

	var rec *T
	if id, ok := parseID(c); ok {
		got, err := get(c.Request.Context(), id)
		if err != nil && !errors.Is(err, service.ErrNotFound) {
			respondError(c, err)
			return nil, false
		}
		rec = got
	}

	var t *authz.Target
	if rec != nil {
		t = target(rec)
	}
	if err := m.CheckObject(p, res, act, t); err != nil {
		respondError(c, err)
		return nil, false
	}
	return rec, true
}

func anyTarget[T any](*T) *authz.Target { return &authz.Target{} }
