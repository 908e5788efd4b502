package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/DikaWasHere/24001200-km7-and-BasicBankingSystem-ch5/internal/adapter/storage"
	"github.com/DikaWasHere/24001200-km7-and-BasicBankingSystem-ch5/internal/core/domain"
	"github.com/DikaWasHere/24001200-km7-and-BasicBankingSystem-ch5/internal/core/transfer"
)

// TransferService executes one atomic transfer.
type TransferService interface {
	Execute(ctx context.Context, sourceID, destinationID int64, amount float64) (*transfer.Result, error)
}

// TransferReader serves the ledger views.
type TransferReader interface {
	List(ctx context.Context) ([]domain.Transfer, error)
	GetByID(ctx context.Context, id int64) (*storage.TransferDetail, error)
}

type TransferHandler struct {
	Engine TransferService
	Repo   TransferReader
}

type CreateTransferRequest struct {
	Amount               float64 `json:"amount"`
	SourceAccountID      int64   `json:"sourceAccountId"`
	DestinationAccountID int64   `json:"destinationAccountId"`
}

// CreateTransfer maps the request onto the engine and its outcome onto the
// wire. Business failures keep the legacy 400 messages; storage faults are
// logged and answered with a generic 500.
func (h *TransferHandler) CreateTransfer(c *fiber.Ctx) error {
	var req CreateTransferRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	result, err := h.Engine.Execute(c.Context(), req.SourceAccountID, req.DestinationAccountID, req.Amount)
	if err != nil {
		if isTransferRejection(err) {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		slog.Error("Transfer failed", "error", err,
			"source_id", req.SourceAccountID, "destination_id", req.DestinationAccountID,
			"request_id", c.Locals("request_id"))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	slog.Info("Transfer committed",
		"transfer_id", result.Transfer.ID, "amount", result.Transfer.Amount,
		"source_id", req.SourceAccountID, "destination_id", req.DestinationAccountID)

	return c.Status(http.StatusCreated).JSON(result)
}

func (h *TransferHandler) ListTransactions(c *fiber.Ctx) error {
	transfers, err := h.Repo.List(c.Context())
	if err != nil {
		slog.Error("Failed to list transactions", "error", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(transfers)
}

func (h *TransferHandler) GetTransaction(c *fiber.Ctx) error {
	id, err := c.ParamsInt("transactionId")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	detail, err := h.Repo.GetByID(c.Context(), int64(id))
	if errors.Is(err, domain.ErrTransferNotFound) {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		slog.Error("Failed to get transaction", "error", err, "transaction_id", id)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(detail)
}

// isTransferRejection reports whether the error is one of the typed,
// client-correctable transfer outcomes.
func isTransferRejection(err error) bool {
	return errors.Is(err, domain.ErrInvalidAmount) ||
		errors.Is(err, domain.ErrSourceNotFound) ||
		errors.Is(err, domain.ErrInsufficientFunds) ||
		errors.Is(err, domain.ErrDestinationNotFound)
}
