package transfer

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/covault-pay/covault/internal/respond"
)

func init() {
	respond.Register(ErrSenderMismatch, respond.CodeSenderMismatch, http.StatusForbidden)
	respond.Register(ErrReceiverNotFound, respond.CodeNoReceiver, http.StatusNotFound)
	respond.Register(ErrInvalidStateTransition, respond.CodeBadTransition, http.StatusConflict)
	respond.Register(ErrNotCounterparty, respond.CodeNotParty, http.StatusForbidden)
	respond.Register(ErrTxNotFound, respond.CodeNotFound, http.StatusNotFound)
}

// Handler exposes transfer endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a transfer HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type proposeRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Payload string `json:"payload"`
}

type reactRequest struct {
	TxID     string `json:"txId"`
	IsAgreed bool   `json:"isAgreed"`
}

type reconfirmRequest struct {
	TxID        string `json:"txId"`
	IsConfirmed bool   `json:"isConfirmed"`
}

type signatureRequest struct {
	TxID      string `json:"txId"`
	DeviceID  string `json:"deviceId"`
	Signature string `json:"signature"`
}

type txView struct {
	TxID       string      `json:"txId"`
	SenderID   string      `json:"senderId"`
	ReceiverID string      `json:"receiverId"`
	Payload    string      `json:"payload"`
	Status     string      `json:"status"`
	Strategy   string      `json:"strategy"`
	Signatures []Signature `json:"signatures"`
	CreatedAt  int64       `json:"createdAt"`
	UpdatedAt  int64       `json:"updatedAt"`
}

func viewOf(tx CoinTransaction) txView {
	return txView{
		TxID:       tx.TxID,
		SenderID:   tx.SenderID,
		ReceiverID: tx.ReceiverID,
		Payload:    tx.Payload,
		Status:     tx.Status.String(),
		Strategy:   tx.Strategy.String(),
		Signatures: tx.Signatures,
		CreatedAt:  tx.CreatedAt.UnixMilli(),
		UpdatedAt:  tx.UpdatedAt.UnixMilli(),
	}
}

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

// PreSend proposes a transfer to a registered receiver.
func (h *Handler) PreSend(c *fiber.Ctx) error {
	var req proposeRequest
	if err := c.BodyParser(&req); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	tx, err := h.service.Propose(c.UserContext(), userID(c), ProposeInput{
		DeclaredSender: req.From,
		Receiver:       req.To,
		Payload:        req.Payload,
	})
	if err != nil {
		return respond.Error(c, err)
	}
	return respond.OK(c, viewOf(tx))
}

// React records the receiver's approve/reject decision.
func (h *Handler) React(c *fiber.Ctx) error {
	var req reactRequest
	if err := c.BodyParser(&req); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	tx, err := h.service.Respond(c.UserContext(), userID(c), req.TxID, req.IsAgreed)
	if err != nil {
		return respond.Error(c, err)
	}
	return respond.OK(c, viewOf(tx))
}

// Reconfirm records the sender's final confirm/cancel decision.
func (h *Handler) Reconfirm(c *fiber.Ctx) error {
	var req reconfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	tx, err := h.service.Reconfirm(c.UserContext(), userID(c), req.TxID, req.IsConfirmed)
	if err != nil {
		return respond.Error(c, err)
	}
	return respond.OK(c, viewOf(tx))
}

// UploadSignature appends one device signature to a reconfirmed
// transfer.
func (h *Handler) UploadSignature(c *fiber.Ctx) error {
	var req signatureRequest
	if err := c.BodyParser(&req); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	result, err := h.service.SubmitSignature(c.UserContext(), userID(c), req.TxID, req.DeviceID, req.Signature)
	if err != nil {
		return respond.Error(c, err)
	}
	return respond.OK(c, fiber.Map{
		"count":       result.Count,
		"broadcasted": result.Broadcasted,
		"status":      result.Tx.Status.String(),
	})
}

// SearchMessage lists the transfers still awaiting a move from the
// caller.
func (h *Handler) SearchMessage(c *fiber.Ctx) error {
	pending, err := h.service.PendingFor(c.UserContext(), userID(c))
	if err != nil {
		return respond.Error(c, err)
	}
	views := make([]txView, 0, len(pending))
	for _, tx := range pending {
		views = append(views, viewOf(tx))
	}
	return respond.OK(c, views)
}

// GetTx fetches one transfer by id, visible only to its parties.
func (h *Handler) GetTx(c *fiber.Ctx) error {
	tx, err := h.service.Get(c.UserContext(), userID(c), c.Params("txId"))
	if err != nil {
		return respond.Error(c, err)
	}
	return respond.OK(c, viewOf(tx))
}
