package respond

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/covault-pay/covault/internal/auth"
	"github.com/covault-pay/covault/internal/contact"
	"github.com/covault-pay/covault/internal/verification"
	"github.com/covault-pay/covault/internal/wallet"
)

// Envelope is the uniform API response body. Clients branch on
// StatusCode; Msg is human-readable and Data carries the payload on
// success.
type Envelope struct {
	StatusCode int    `json:"status_code"`
	Msg        string `json:"msg"`
	Data       any    `json:"data,omitempty"`
}

// Numeric result codes carried inside the envelope. The 1xxx block is
// generic, 2xxx covers account and verification flows, 3xxx transfers.
const (
	CodeOK             = 200
	CodeBadRequest     = 1001
	CodeUnauthorized   = 1002
	CodeInternal       = 1003
	CodeNotFound       = 1004
	CodeCodeNotFound   = 2002
	CodeCodeExpired    = 2003
	CodeCodeIncorrect  = 2004
	CodeBadContact     = 2005
	CodeAlreadyUsed    = 2006
	CodeNotRegistered  = 2008
	CodeBadPassword    = 2009
	CodeSenderMismatch = 3001
	CodeNoReceiver     = 3002
	CodeBadTransition  = 3003
	CodeNotParty       = 3004
	CodeDispatchFailed = 3005
)

type mapping struct {
	target error
	code   int
	status int
}

// registered holds mappings contributed by packages this one cannot
// import. Populated from init functions only.
var registered []mapping

// Register binds a sentinel error to its envelope code and HTTP status.
func Register(target error, code, httpStatus int) {
	registered = append(registered, mapping{target: target, code: code, status: httpStatus})
}

// OK writes a success envelope with the given payload.
func OK(c *fiber.Ctx, data any) error {
	return c.Status(http.StatusOK).JSON(Envelope{StatusCode: CodeOK, Msg: "success", Data: data})
}

// BadRequest writes a generic malformed-request envelope.
func BadRequest(c *fiber.Ctx, msg string) error {
	return c.Status(http.StatusBadRequest).JSON(Envelope{StatusCode: CodeBadRequest, Msg: msg})
}

// Error maps a service error onto its numeric code and HTTP status.
// Unknown errors are reported as internal without leaking detail.
func Error(c *fiber.Ctx, err error) error {
	code, status := classify(err)
	msg := err.Error()
	if code == CodeInternal {
		msg = "internal error"
	}
	return c.Status(status).JSON(Envelope{StatusCode: code, Msg: msg})
}

func classify(err error) (code, httpStatus int) {
	switch {
	case errors.Is(err, contact.ErrFormatInvalid):
		return CodeBadContact, http.StatusBadRequest
	case errors.Is(err, verification.ErrCodeNotFound):
		return CodeCodeNotFound, http.StatusBadRequest
	case errors.Is(err, verification.ErrCodeExpired):
		return CodeCodeExpired, http.StatusBadRequest
	case errors.Is(err, verification.ErrCodeMismatch):
		return CodeCodeIncorrect, http.StatusBadRequest
	case errors.Is(err, wallet.ErrBadStrategy):
		return CodeBadRequest, http.StatusBadRequest
	case errors.Is(err, wallet.ErrWalletNotFound):
		return CodeNotFound, http.StatusNotFound
	case errors.Is(err, auth.ErrMissingCredential),
		errors.Is(err, auth.ErrMalformedCredential),
		errors.Is(err, auth.ErrCredentialExpired):
		return CodeUnauthorized, http.StatusUnauthorized
	}
	for _, m := range registered {
		if errors.Is(err, m.target) {
			return m.code, m.status
		}
	}
	return CodeInternal, http.StatusInternalServerError
}
