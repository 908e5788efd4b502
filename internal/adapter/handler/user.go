package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/gofiber/fiber/v2"

	"github.com/DikaWasHere/24001200-km7-and-BasicBankingSystem-ch5/internal/core/domain"
	"github.com/DikaWasHere/24001200-km7-and-BasicBankingSystem-ch5/internal/core/security"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// UserStore is the user CRUD surface consumed by the handler.
type UserStore interface {
	CreateWithProfile(ctx context.Context, name, email, password, identityType, identityNumber, address string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type UserHandler struct {
	Repo UserStore
}

type CreateUserRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	IdentityType   string `json:"identityType"`
	IdentityNumber string `json:"identityNumber"`
	Address        string `json:"address"`
}

func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.Name == "" || req.Email == "" || req.Password == "" ||
		req.IdentityType == "" || req.IdentityNumber == "" || req.Address == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Semua field harus diisi"})
	}
	if !emailRegex.MatchString(req.Email) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Format email tidak valid"})
	}

	hashed, err := security.HashPassword(req.Password)
	if err != nil {
		slog.Error("Failed to hash password", "error", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	user, err := h.Repo.CreateWithProfile(c.Context(),
		req.Name, req.Email, hashed, req.IdentityType, req.IdentityNumber, req.Address)
	if errors.Is(err, domain.ErrEmailTaken) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Email sudah terdaftar"})
	}
	if err != nil {
		slog.Error("Failed to create user", "error", err, "email", req.Email)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	slog.Info("User created", "user_id", user.ID)
	return c.Status(http.StatusCreated).JSON(user)
}

func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.Repo.List(c.Context())
	if err != nil {
		slog.Error("Failed to list users", "error", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(users)
}

func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	idParam := c.Params("id")
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{
			"message": fmt.Sprintf("User dengan id %s tidak ditemukan.", idParam),
		})
	}

	user, err := h.Repo.GetByID(c.Context(), int64(id))
	if errors.Is(err, domain.ErrUserNotFound) {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{
			"message": fmt.Sprintf("User dengan id %s tidak ditemukan.", idParam),
		})
	}
	if err != nil {
		slog.Error("Failed to get user", "error", err, "user_id", id)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(user)
}
