package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/DikaWasHere/24001200-km7-and-BasicBankingSystem-ch5/internal/adapter/storage"
	"github.com/DikaWasHere/24001200-km7-and-BasicBankingSystem-ch5/internal/core/domain"
)

// AccountStore is the account CRUD surface consumed by the handler.
type AccountStore interface {
	Create(ctx context.Context, bankName, bankAccountNumber string, balance float64, userID int64) (*domain.BankAccount, error)
	List(ctx context.Context) ([]storage.AccountSummary, error)
	GetByID(ctx context.Context, id int64) (*storage.AccountDetail, error)
}

type AccountHandler struct {
	Repo AccountStore
}

type CreateAccountRequest struct {
	BankName          string  `json:"bankName"`
	BankAccountNumber string  `json:"bankAccountNumber"`
	Balance           float64 `json:"balance"`
	UserID            int64   `json:"userId"`
}

func (h *AccountHandler) CreateAccount(c *fiber.Ctx) error {
	var req CreateAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.BankName == "" || req.BankAccountNumber == "" || req.UserID == 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Semua field harus diisi"})
	}
	if req.Balance < 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "saldo tidak boleh negatif"})
	}

	account, err := h.Repo.Create(c.Context(), req.BankName, req.BankAccountNumber, req.Balance, req.UserID)
	if err != nil {
		slog.Error("Failed to create account", "error", err, "user_id", req.UserID)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	slog.Info("Account created", "account_id", account.ID, "user_id", account.UserID)
	return c.Status(http.StatusCreated).JSON(account)
}

func (h *AccountHandler) ListAccounts(c *fiber.Ctx) error {
	accounts, err := h.Repo.List(c.Context())
	if err != nil {
		slog.Error("Failed to list accounts", "error", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(accounts)
}

func (h *AccountHandler) GetAccount(c *fiber.Ctx) error {
	id, err := c.ParamsInt("accountId")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid account ID"})
	}

	detail, err := h.Repo.GetByID(c.Context(), int64(id))
	if errors.Is(err, domain.ErrAccountNotFound) {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		slog.Error("Failed to get account", "error", err, "account_id", id)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(detail)
}
