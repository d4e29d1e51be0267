package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/practice-scheduler/internal/domain/user"
	"github.com/BruksfildServices01/practice-scheduler/internal/dto"
	"github.com/BruksfildServices01/practice-scheduler/internal/httperr"
	"github.com/BruksfildServices01/practice-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/practice-scheduler/internal/middleware"
	"github.com/BruksfildServices01/practice-scheduler/internal/usecase/account"
)

type UserHandler struct {
	accounts *account.Service
}

func NewUserHandler(accounts *account.Service) *UserHandler {
	return &UserHandler{accounts: accounts}
}

type CreateUserRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role" binding:"required"`
}

func (h *UserHandler) Me(c *gin.Context) {
	p, _ := middleware.PrincipalFrom(c)

	u, err := h.accounts.Me(c.Request.Context(), p)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, dto.UserFromModel(u))
}

func (h *UserHandler) Create(c *gin.Context) {
	p, _ := middleware.PrincipalFrom(c)

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "email, password and role are required")
		return
	}

	u, err := h.accounts.CreateUser(c.Request.Context(), p, account.Input{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      user.Role(req.Role),
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, dto.UserFromModel(u))
}
