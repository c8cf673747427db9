package account

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/covault-pay/covault/internal/respond"
	"github.com/covault-pay/covault/internal/verification"
)

func init() {
	respond.Register(ErrDuplicateRegistration, respond.CodeAlreadyUsed, http.StatusConflict)
	respond.Register(ErrNotRegistered, respond.CodeNotRegistered, http.StatusNotFound)
	respond.Register(ErrPasswordIncorrect, respond.CodeBadPassword, http.StatusUnauthorized)
	respond.Register(ErrNoLoginProof, respond.CodeBadRequest, http.StatusBadRequest)
}

// Handler exposes account and verification endpoints.
type Handler struct {
	service *Service
	codes   *verification.Service
}

// NewHandler constructs an account HTTP handler.
func NewHandler(service *Service, codes *verification.Service) *Handler {
	return &Handler{service: service, codes: codes}
}

type getCodeRequest struct {
	Contact string `json:"contact"`
	Kind    string `json:"kind"`
}

type checkCodeRequest struct {
	Contact string `json:"contact"`
	Code    string `json:"code"`
}

type registerRequest struct {
	Contact          string `json:"contact"`
	DeviceID         string `json:"deviceId"`
	VerificationCode string `json:"verificationCode"`
	InviteCode       string `json:"inviteCode"`
	Password         string `json:"password"`
	SignStrategy     string `json:"signStrategy"`
}

type loginRequest struct {
	Contact          string `json:"contact"`
	DeviceID         string `json:"deviceId"`
	Password         string `json:"password"`
	VerificationCode string `json:"verificationCode"`
}

type resetPasswordRequest struct {
	VerificationCode string `json:"verificationCode"`
	NewPassword      string `json:"newPassword"`
}

type contactRequest struct {
	Contact string `json:"contact"`
}

type authResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

type userInfoResponse struct {
	UserID      string `json:"userId"`
	Contact     string `json:"contact"`
	ContactKind string `json:"contactKind"`
	InviteCode  string `json:"inviteCode,omitempty"`
}

// GetCode issues a one-time code and dispatches it to the contact.
func (h *Handler) GetCode(c *fiber.Ctx) error {
	var req getCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	purpose, err := verification.ParsePurpose(req.Kind)
	if err != nil {
		return respond.BadRequest(c, err.Error())
	}
	if _, err := h.codes.Issue(c.UserContext(), req.Contact, purpose); err != nil {
		return respond.Error(c, err)
	}
	return respond.OK(c, nil)
}

// VerifyCode prechecks a code without consuming it, so clients can gate
// the next form step.
func (h *Handler) VerifyCode(c *fiber.Ctx) error {
	var req checkCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	if err := h.codes.Verify(c.UserContext(), req.Contact, req.Code); err != nil {
		return respond.Error(c, err)
	}
	return respond.OK(c, nil)
}

// Register handles user onboarding.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	user, err := h.service.Register(c.UserContext(), RegisterInput{
		Contact:          req.Contact,
		DeviceID:         req.DeviceID,
		VerificationCode: req.VerificationCode,
		InviteCode:       req.InviteCode,
		Password:         req.Password,
		SignStrategy:     req.SignStrategy,
	})
	if err != nil {
		return respond.Error(c, err)
	}
	return respond.OK(c, fiber.Map{"userId": user.ID})
}

// Login authenticates by password or one-time code and returns a
// session credential.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	token, user, err := h.service.Login(c.UserContext(), LoginInput{
		Contact:          req.Contact,
		DeviceID:         req.DeviceID,
		Password:         req.Password,
		VerificationCode: req.VerificationCode,
	})
	if err != nil {
		return respond.Error(c, err)
	}
	return respond.OK(c, authResponse{Token: token, UserID: user.ID})
}

// ResetPassword replaces the caller's password after a code check. The
// caller's identity comes from the validated credential, never from the
// request body.
func (h *Handler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	userID, _ := c.Locals("user_id").(string)
	if err := h.service.ResetPassword(c.UserContext(), userID, req.VerificationCode, req.NewPassword); err != nil {
		return respond.Error(c, err)
	}
	return respond.OK(c, nil)
}

// ContactIsUsed reports whether a contact already has an account.
func (h *Handler) ContactIsUsed(c *fiber.Ctx) error {
	var req contactRequest
	if err := c.BodyParser(&req); err != nil {
		return respond.BadRequest(c, err.Error())
	}
	used, err := h.service.ContactIsUsed(c.UserContext(), req.Contact)
	if err != nil {
		return respond.Error(c, err)
	}
	return respond.OK(c, fiber.Map{"used": used})
}

// UserInfo returns the caller's own account record.
func (h *Handler) UserInfo(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	user, err := h.service.Get(c.UserContext(), userID)
	if err != nil {
		return respond.Error(c, err)
	}
	return respond.OK(c, userInfoResponse{
		UserID:      user.ID,
		Contact:     user.Contact,
		ContactKind: user.ContactKind.String(),
		InviteCode:  user.InviteCode,
	})
}
