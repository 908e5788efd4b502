package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/DikaWasHere/24001200-km7-and-BasicBankingSystem-ch5/internal/core/domain"
	"github.com/DikaWasHere/24001200-km7-and-BasicBankingSystem-ch5/internal/core/security"
)

// AuthUserStore is the slice of the user repository the auth flow needs.
type AuthUserStore interface {
	Create(ctx context.Context, name, email, password string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type AuthHandler struct {
	Repo      AuthUserStore
	JWTSecret string
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body", "message": "Bad Request", "status": false,
		})
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "All fields are required", "message": "Bad Request", "status": false,
		})
	}
	if !emailRegex.MatchString(req.Email) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid email format", "message": "Bad Request", "status": false,
		})
	}

	hashed, err := security.HashPassword(req.Password)
	if err != nil {
		slog.Error("Failed to hash password", "error", err)
		return h.internalError(c)
	}

	user, err := h.Repo.Create(c.Context(), req.Name, req.Email, hashed)
	if errors.Is(err, domain.ErrEmailTaken) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Email already exists", "message": "Bad Request", "status": false,
		})
	}
	if err != nil {
		slog.Error("Failed to register user", "error", err, "email", req.Email)
		return h.internalError(c)
	}

	slog.Info("User registered", "user_id", user.ID)
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "Created Success",
		"data":    user,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "Bad Request", "error": "Invalid request body",
		})
	}

	user, err := h.Repo.GetByEmail(c.Context(), req.Email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{
			"message": "Not Found", "error": "Invalid email or password",
		})
	}
	if err != nil {
		slog.Error("Failed to look up user", "error", err)
		return h.internalError(c)
	}

	if !security.CheckPassword(req.Password, user.Password) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "Bad Request", "error": "Invalid email or password",
		})
	}

	accessToken, err := security.GenerateToken(h.JWTSecret, user.ID, user.Name)
	if err != nil {
		slog.Error("Failed to sign token", "error", err, "user_id", user.ID)
		return h.internalError(c)
	}

	slog.Info("User logged in", "user_id", user.ID)
	return c.JSON(fiber.Map{
		"message":     "Success",
		"accessToken": accessToken,
	})
}

// Authenticate answers behind the JWT middleware; reaching it means the
// token checked out.
func (h *AuthHandler) Authenticate(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Anda Sudah ter Authenticate"})
}

func (h *AuthHandler) internalError(c *fiber.Ctx) error {
	return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
		"error":   "Internal Server Error",
		"message": "An error occurred while processing your request.",
		"status":  false,
	})
}
