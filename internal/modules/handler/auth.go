package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskroom/taskroom/internal/modules/model"
	"github.com/taskroom/taskroom/internal/modules/serializer"
	"github.com/taskroom/taskroom/internal/modules/service"
	"github.com/taskroom/taskroom/internal/pkg/tokens"
)

type AuthHandler struct {
	svc service.AuthService
}

func NewAuthHandler(s service.AuthService) *AuthHandler {
	return &AuthHandler{svc: s}
}

type LoginReq struct {
	// Username also accepts an email address.
	Username string `json:"username" binding:"required" example:"alice"`
	Password string `json:"password" binding:"required" example:"s3cret"`
}

type LoginResp struct {
	ID        uint       `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FirstName string     `json:"firstname"`
	LastName  string     `json:"lastname"`
	Token     string     `json:"token"`
	Refresh   string     `json:"refresh"`
	Type      model.Role `json:"type"`
}

// Login godoc
//
//	@Summary		Sign in
//	@Description	Sign in with a username or an email address. Unknown users and wrong passwords are reported with 200 and a message body.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		handler.LoginReq	true	"Credentials"
//	@Success		200		{object}	handler.LoginResp
//	@Router			/login/ [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.BindErr(err))
		return
	}

	out, err := h.svc.SignIn(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	switch out.Outcome {
	case service.SignInUserNotFound:
		c.JSON(http.StatusOK, gin.H{"message": "User not found"})
	case service.SignInIncorrectPassword:
		c.JSON(http.StatusOK, gin.H{"error": "Incorrect password"})
	default:
		u := out.User
		c.JSON(http.StatusOK, LoginResp{
			ID:        u.ID,
			Username:  u.Username,
			Email:     u.Email,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Token:     out.Tokens.Access,
			Refresh:   out.Tokens.Refresh,
			Type:      u.UserType,
		})
	}
}

type RefreshReq struct {
	Refresh string `json:"refresh" binding:"required"`
}

// Refresh godoc
//
//	@Summary	Refresh access token
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		payload	body		handler.RefreshReq	true	"Refresh token"
//	@Success	200		{object}	map[string]string
//	@Failure	401		{object}	serializer.Response
//	@Router		/token/refresh/ [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.BindErr(err))
		return
	}

	access, err := h.svc.Refresh(c.Request.Context(), req.Refresh)
	switch {
	case errors.Is(err, tokens.ErrInvalidToken), errors.Is(err, tokens.ErrWrongTokenType):
		c.JSON(http.StatusUnauthorized, serializer.AuthErr("token is invalid or expired"))
		return
	case err != nil:
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": access})
}
