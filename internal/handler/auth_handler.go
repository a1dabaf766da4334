package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"go-inventory-tims/internal/middleware"
	"go-inventory-tims/internal/model"
	"go-inventory-tims/internal/service"
)

type AuthHandler struct {
	authService  service.AuthService
	cookieSecure bool
}

func NewAuthHandler(authService service.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{authService: authService, cookieSecure: cookieSecure}
}

// Index sends the visitor to the dashboard or the login page.
// GET /
func (h *AuthHandler) Index(c *fiber.Ctx) error {
	if middleware.CurrentSession(c) != nil {
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	}
	return c.Redirect("/login", fiber.StatusSeeOther)
}

// LoginPage GET /login
func (h *AuthHandler) LoginPage(c *fiber.Ctx) error {
	if middleware.CurrentSession(c) != nil {
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	}
	return page(c, fiber.Map{"page": "login"})
}

// Login POST /login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req service.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err, nil)
	}
	input := fiber.Map{"username": req.Username}

	res, err := h.authService.Login(c.UserContext(), req)
	if errors.Is(err, service.ErrInvalidCredentials) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":  "Invalid username/password",
			"code":   "INVALID_CREDENTIALS",
			"notice": "Invalid username/password",
			"input":  input,
		})
	}
	if err != nil {
		return fail(c, err, input)
	}

	middleware.SetSessionCookie(c, res.Token, res.ExpiresAt, h.cookieSecure)
	return middleware.RedirectWithNotice(c, "/dashboard", "Welcome "+res.User.Username)
}

// Logout GET /logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.authService.Logout(c.UserContext(), c.Cookies(middleware.SessionCookie)); err != nil {
		return fail(c, err, nil)
	}
	middleware.ClearSessionCookie(c)
	return middleware.RedirectWithNotice(c, "/login", "Logged out")
}

// RegisterPage GET /register
func (h *AuthHandler) RegisterPage(c *fiber.Ctx) error {
	return page(c, fiber.Map{"page": "register", "roles": model.AllRoles})
}

// Register POST /register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req service.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return fail(c, err, nil)
	}

	if _, err := h.authService.Register(c.UserContext(), req); err != nil {
		return fail(c, err, fiber.Map{"username": req.Username, "role": req.Role})
	}
	return middleware.RedirectWithNotice(c, "/login", "User registered successfully! Please login.")
}
