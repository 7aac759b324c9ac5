package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/trattoria/internal/domain/model"
	"github.com/polkiloo/trattoria/internal/server/http/dto"
	"github.com/polkiloo/trattoria/internal/server/http/middleware"
	"github.com/polkiloo/trattoria/internal/usecase"
)

// StaffHandler processes login and staff accounts.
type StaffHandler struct {
	facade StaffFacade
}

// NewStaffHandler creates StaffHandler instance.
func NewStaffHandler(facade StaffFacade) *StaffHandler {
	return &StaffHandler{facade: facade}
}

// Login handles POST /api/staff/login.
func (h *StaffHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	staff, token, err := h.facade.Authenticate(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		respondErr(c, err)
		return
	}

	middleware.SetAuthCookie(c, token)
	c.JSON(http.StatusOK, dto.LoginResponse{Token: token, Staff: toStaffResponse(*staff)})
}

// Create handles POST /api/staff.
func (h *StaffHandler) Create(c *gin.Context) {
	var req dto.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	staff, err := h.facade.CreateStaff(c.Request.Context(), usecase.NewStaff{
		Login:    req.Login,
		Name:     req.Name,
		Password: req.Password,
		Role:     model.Role(req.Role),
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, toStaffResponse(*staff))
}

// Me handles GET /api/staff/me.
func (h *StaffHandler) Me(c *gin.Context) {
	staff, err := h.facade.Staff(c.Request.Context(), CurrentClaims(c).StaffID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, toStaffResponse(*staff))
}
