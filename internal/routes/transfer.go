package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/covault-pay/covault/internal/transfer"
)

// RegisterTransferRoutes wires the authed transfer lifecycle endpoints.
func RegisterTransferRoutes(router fiber.Router, h *transfer.Handler) {
	grp := router.Group("/wallet")
	grp.Get("/searchMessage", h.SearchMessage)
	grp.Post("/preSendMoney", h.PreSend)
	grp.Post("/reactPreSendMoney", h.React)
	grp.Post("/reconfirmSendMoney", h.Reconfirm)
	grp.Post("/uploadTxSignature", h.UploadSignature)
	grp.Get("/getTx/:txId", h.GetTx)
}
