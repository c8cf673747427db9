package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/covault-pay/covault/internal/account"
)

// RegisterAccountRoutes wires the public account and verification
// endpoints.
func RegisterAccountRoutes(router fiber.Router, h *account.Handler, codeLimiter fiber.Handler) {
	grp := router.Group("/account")
	grp.Post("/getCode", codeLimiter, h.GetCode)
	grp.Post("/verifyCode", h.VerifyCode)
	grp.Post("/register", h.Register)
	grp.Post("/login", h.Login)
	grp.Post("/contactIsUsed", h.ContactIsUsed)
}

// RegisterProtectedAccountRoutes wires account endpoints that require a
// valid credential.
func RegisterProtectedAccountRoutes(router fiber.Router, h *account.Handler) {
	grp := router.Group("/account")
	grp.Post("/resetPassword", h.ResetPassword)
	grp.Get("/userInfo", h.UserInfo)
}
