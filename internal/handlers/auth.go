package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/viajes/internal/config"
	"github.com/example/viajes/internal/middleware"
	"github.com/example/viajes/internal/models"
	"github.com/example/viajes/internal/services"
	"github.com/example/viajes/internal/utils"
	"github.com/example/viajes/internal/verification"
)

// SignupNotifier is told about every account created.
type SignupNotifier interface {
	NotifySignup(services.SignupNotification)
}

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	db       *gorm.DB
	cfg      *config.Config
	codes    verification.Store
	mailer   services.CodeSender
	notifier SignupNotifier
	now      func() time.Time
}

// NewAuthHandler constructs an AuthHandler. notifier may be nil.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, codes verification.Store, mailer services.CodeSender, notifier SignupNotifier) *AuthHandler {
	return &AuthHandler{
		db:       db,
		cfg:      cfg,
		codes:    codes,
		mailer:   mailer,
		notifier: notifier,
		now:      time.Now,
	}
}

type registerRequest struct {
	Name     string `json:"nombre"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register stores a pending registration and emails its verification code.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	email := verification.NormalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || email == "" || req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "nombre, email and password are required")
	}

	var existing models.User
	if err := h.db.Where("email = ? AND verificado = ?", email, true).First(&existing).Error; err == nil {
		return fiber.NewError(fiber.StatusBadRequest, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	code, err := verification.GenerateCode()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate verification code")
	}

	pending := verification.Pending{
		Email:        email,
		Code:         code,
		ExpiresAt:    h.now().Add(h.cfg.VerificationTTL),
		PasswordHash: passwordHash,
		DisplayName:  req.Name,
	}
	if err := h.codes.Put(c.UserContext(), pending); err != nil {
		return err
	}

	if err := h.mailer.SendVerificationCode(c.UserContext(), email, req.Name, code); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "verification code sent",
		"email":   email,
	})
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"codigo"`
}

// VerifyCode confirms a pending registration and creates the account.
func (h *AuthHandler) VerifyCode(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Email == "" || req.Code == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email and codigo are required")
	}

	pending, err := h.codes.Consume(c.UserContext(), req.Email, strings.TrimSpace(req.Code), h.now())
	switch {
	case errors.Is(err, verification.ErrNotFound),
		errors.Is(err, verification.ErrExpired),
		errors.Is(err, verification.ErrMismatch):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case err != nil:
		return err
	}

	var existing models.User
	if err := h.db.Where("email = ?", pending.Email).First(&existing).Error; err == nil {
		return fiber.NewError(fiber.StatusBadRequest, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	user := models.User{
		DisplayName:  pending.DisplayName,
		Email:        pending.Email,
		PasswordHash: &pending.PasswordHash,
		RoleID:       models.RoleCustomer,
		IsVerified:   true,
	}
	if err := h.db.Create(&user).Error; err != nil {
		return err
	}

	h.notifySignup(user, "email")
	return h.respondWithToken(c, user)
}

type resendRequest struct {
	Email string `json:"email"`
}

// ResendCode issues a fresh code for a pending registration.
func (h *AuthHandler) ResendCode(c *fiber.Ctx) error {
	var req resendRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Email == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email is required")
	}

	code, err := verification.GenerateCode()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate verification code")
	}

	pending, err := h.codes.Reissue(c.UserContext(), req.Email, code, h.now().Add(h.cfg.VerificationTTL))
	if errors.Is(err, verification.ErrNotFound) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	} else if err != nil {
		return err
	}

	if err := h.mailer.SendVerificationCode(c.UserContext(), pending.Email, pending.DisplayName, code); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "verification code re-sent",
		"email":   pending.Email,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates an existing user.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Email == "" || req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email and password are required")
	}

	var user models.User
	if err := h.db.Where("email = ?", verification.NormalizeEmail(req.Email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	return h.respondWithToken(c, user)
}

type googleRequest struct {
	GoogleID string `json:"googleId"`
	Email    string `json:"email"`
	Name     string `json:"nombre"`
}

// Google signs in with a Google account, linking it to an existing email
// account or creating a verified one on first sight.
func (h *AuthHandler) Google(c *fiber.Ctx) error {
	var req googleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	email := verification.NormalizeEmail(req.Email)
	if req.GoogleID == "" || email == "" {
		return fiber.NewError(fiber.StatusBadRequest, "googleId and email are required")
	}

	var user models.User
	err := h.db.Where("google_id = ?", req.GoogleID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = h.db.Where("email = ?", email).First(&user).Error
		if err == nil {
			if err := h.db.Model(&user).Updates(map[string]interface{}{
				"google_id":  req.GoogleID,
				"verificado": true,
			}).Error; err != nil {
				return err
			}
			googleID := req.GoogleID
			user.GoogleID = &googleID
			user.IsVerified = true
		}
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		name := req.Name
		if name == "" {
			name = strings.SplitN(email, "@", 2)[0]
		}
		googleID := req.GoogleID
		user = models.User{
			DisplayName: name,
			Email:       email,
			GoogleID:    &googleID,
			RoleID:      models.RoleCustomer,
			IsVerified:  true,
		}
		if err := h.db.Create(&user).Error; err != nil {
			return err
		}
		h.notifySignup(user, "google")
	case err != nil:
		return err
	}

	return h.respondWithToken(c, user)
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	claims, ok := middleware.GetCurrentClaims(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", claims.UserUUID()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "user no longer exists")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "user": user.Sanitized()})
}

func (h *AuthHandler) respondWithToken(c *fiber.Ctx, user models.User) error {
	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, user.Email, h.cfg.TokenExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate token")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   token,
		"user":    user.Sanitized(),
	})
}

func (h *AuthHandler) notifySignup(user models.User, method string) {
	if h.notifier == nil {
		return
	}
	n := services.SignupNotification{
		UserID: user.ID.String(),
		Name:   user.DisplayName,
		Email:  user.Email,
		Method: method,
	}
	go h.notifier.NotifySignup(n)
}
