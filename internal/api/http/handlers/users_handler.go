package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-kit/helpdesk-service/internal/api/dto"
	"github.com/helpdesk-kit/helpdesk-service/internal/service"
	apperrors "github.com/helpdesk-kit/helpdesk-service/pkg/util/errorutil"
)

// UsersHandler serves login/logout and the IT-support directory.
type UsersHandler struct {
	auth    *service.AuthService
	tickets *service.TicketService
	cookie  string
}

// NewUsersHandler constructs the handler.
func NewUsersHandler(authService *service.AuthService, ticketService *service.TicketService, cookieName string) *UsersHandler {
	return &UsersHandler{auth: authService, tickets: ticketService, cookie: cookieName}
}

// Login POST /auth/login sets the session cookie.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}

	user, token, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookie,
		Value:    token,
		Expires:  time.Now().Add(h.auth.TokenManager().TTL()),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(dto.LoginResponse{User: dto.FromUser(user)})
}

// Logout POST /auth/logout clears the session cookie.
func (h *UsersHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.SendStatus(fiber.StatusNoContent)
}

// ListITSupport GET /user/get-it-support.
func (h *UsersHandler) ListITSupport(c *fiber.Ctx) error {
	users, err := h.tickets.ListITSupport(c.UserContext())
	if err != nil {
		return err
	}
	resp := dto.UserListResponse{Users: make([]dto.UserResponse, 0, len(users))}
	for i := range users {
		resp.Users = append(resp.Users, dto.FromUser(&users[i]))
	}
	return c.JSON(resp)
}
