package serializer

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signInForm struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,max=8"`
	Role     string `json:"role" binding:"omitempty,oneof=ADM MBR"`
}

func TestBindErr_FieldNames(t *testing.T) {
	UseJSONFieldNames()

	err := binding.Validator.ValidateStruct(&signInForm{Password: "much-too-long", Role: "ROOT"})
	require.Error(t, err)

	res := BindErr(err)
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "validation error", res.Msg)
	assert.Equal(t, []string{"this field is required"}, res.Errors["username"])
	assert.Equal(t, []string{"ensure this field has no more than 8 characters"}, res.Errors["password"])
	assert.Equal(t, []string{`"ROOT" is not a valid choice`}, res.Errors["role"])
}

func TestBindErr_NonValidatorError(t *testing.T) {
	res := BindErr(errors.New("unexpected EOF"))
	assert.Equal(t, []string{"unexpected EOF"}, res.Errors[NonFieldErrors])
}

func TestErrorEnvelopes(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, Forbidden().Code)
	assert.Equal(t, "you do not have permission to perform this action", Forbidden().Msg)
	assert.Equal(t, "not found", NotFound().Msg)
	assert.Equal(t, "authentication credentials were not provided or are invalid", AuthErr("").Msg)
	assert.Empty(t, AuthErr("").Error)

	db := DBErr("", errors.New("connection reset"))
	assert.Equal(t, http.StatusInternalServerError, db.Code)
	assert.Equal(t, "database error", db.Msg)

	un := Unavailable("chat archive storage is not configured", nil)
	assert.Equal(t, http.StatusServiceUnavailable, un.Code)
	assert.Empty(t, un.Error)
}
