package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/habicasa/backend/internal/allies"
	"github.com/habicasa/backend/internal/token"
	"github.com/habicasa/backend/internal/verification"
	"go.uber.org/zap"
)

// AuthHandler serves the phone verification endpoints consumed by the
// mobile app. Response bodies follow the {success, message} contract the
// app expects, with user-facing messages in Spanish.
type AuthHandler struct {
	codes  *verification.Service
	allies *allies.Service
	tokens *token.Issuer
	logger *zap.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(codes *verification.Service, allySvc *allies.Service, tokens *token.Issuer, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{codes: codes, allies: allySvc, tokens: tokens, logger: logger}
}

// Register mounts the auth routes on the router.
func (h *AuthHandler) Register(r gin.IRouter) {
	grp := r.Group("/api/auth")
	grp.POST("/send-verification", h.SendVerification)
	grp.POST("/verify-code", h.VerifyCode)
}

type sendVerificationRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
}

type verifyCodeRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	Code        string `json:"code" binding:"required"`
}

// SendVerification handles POST /api/auth/send-verification.
func (h *AuthHandler) SendVerification(c *gin.Context) {
	var req sendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "El número de teléfono es requerido",
		})
		return
	}

	err := h.codes.IssueCode(c.Request.Context(), req.PhoneNumber)
	switch {
	case errors.Is(err, verification.ErrRateLimited):
		recordCodeIssue("rate_limited")
		c.JSON(http.StatusTooManyRequests, gin.H{
			"success": false,
			"message": "Demasiadas solicitudes. Espera 10 minutos para pedir otro código.",
		})
	case errors.Is(err, verification.ErrDispatchFailed):
		recordCodeIssue("dispatch_failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "No se pudo enviar el código. Inténtalo de nuevo.",
		})
	case err != nil:
		recordCodeIssue("error")
		h.logger.Error("send verification failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Ocurrió un error. Inténtalo de nuevo.",
		})
	default:
		recordCodeIssue("sent")
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Código enviado exitosamente",
		})
	}
}

// VerifyCode handles POST /api/auth/verify-code. On success it returns a
// session token and the ally profile, creating the ally on first
// verification.
func (h *AuthHandler) VerifyCode(c *gin.Context) {
	var req verifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "El número de teléfono y el código son requeridos",
		})
		return
	}

	err := h.codes.VerifyCode(req.PhoneNumber, req.Code)
	var mismatch *verification.MismatchError
	switch {
	case errors.Is(err, verification.ErrNoCode):
		recordVerification("not_found")
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "No hay un código pendiente. Solicita uno nuevo.",
		})
		return
	case errors.Is(err, verification.ErrCodeExpired):
		recordVerification("expired")
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "El código expiró. Solicita uno nuevo.",
		})
		return
	case errors.Is(err, verification.ErrTooManyAttempts):
		recordVerification("exhausted")
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Demasiados intentos fallidos. Solicita un código nuevo.",
		})
		return
	case errors.As(err, &mismatch):
		recordVerification("mismatch")
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": mismatchMessage(mismatch.Remaining),
		})
		return
	case err != nil:
		recordVerification("error")
		h.logger.Error("verify code failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Ocurrió un error. Inténtalo de nuevo.",
		})
		return
	}

	ally, err := h.allies.GetOrCreateByPhone(c.Request.Context(), req.PhoneNumber)
	if err != nil {
		recordVerification("error")
		h.logger.Error("ally lookup failed after verification", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Ocurrió un error. Inténtalo de nuevo.",
		})
		return
	}

	tok, err := h.tokens.Issue(ally.ID.String(), ally.Phone)
	if err != nil {
		recordVerification("error")
		h.logger.Error("token issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Ocurrió un error. Inténtalo de nuevo.",
		})
		return
	}

	recordVerification("verified")
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Número verificado exitosamente",
		"token":   tok,
		"ally":    ally,
	})
}

func mismatchMessage(remaining int) string {
	if remaining == 1 {
		return "Código incorrecto. Te queda 1 intento."
	}
	return fmt.Sprintf("Código incorrecto. Te quedan %d intentos.", remaining)
}
