package server

import (
	"errors"
	"fmt"

	"myblog/internal/auth"
	"myblog/internal/models"
	"myblog/internal/validation"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// Login handles POST /api/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := validation.ValidateEmail(req.Email); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	user, err := s.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if user == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("User does not exist"))
	}
	if !user.IsActive {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Account is not active"))
	}
	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); cmpErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Wrong password"))
	}

	token, err := auth.GenerateToken(s.config.JWTSecret, user.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	if err := s.userRepo.TouchLastLogin(c.Context(), user.ID); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return models.Respond(c, fiber.StatusOK, fiber.Map{
		"token": token,
		"user":  user.Public(),
	})
}

// InitCode handles POST /api/initcode. It mails a short-lived verification
// code to the address so registration can prove ownership of it.
func (s *Server) InitCode(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	code := auth.GenerateCode()
	if err := s.codeStore.SetEmailCode(c.Context(), req.Email, code); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	body := fmt.Sprintf("Your verification code is %s. It expires in 5 minutes.", code)
	if err := s.mailer.Send(req.Email, "Verification code", body); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return models.RespondMessage(c, fiber.StatusOK, "Verification code sent")
}

// Register handles POST /api/register. The account is created inactive and
// without a password; activation sets both.
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Email     string `json:"email"`
		Code      string `json:"code"`
		Name      string `json:"name"`
		Telephone string `json:"telephone"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := validation.ValidateEmail(req.Email); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if err := validation.ValidateName(req.Name); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if err := validation.ValidateTelephone(req.Telephone); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	if err := s.codeStore.CheckEmailCode(c.Context(), req.Email, req.Code); err != nil {
		if errors.Is(err, auth.ErrCodeMismatch) {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Verification code is wrong or expired"))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	existing, err := s.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if existing != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Email is already registered"))
	}

	existing, err = s.userRepo.GetByTelephone(c.Context(), req.Telephone)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if existing != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Telephone is already registered"))
	}

	user := &models.User{
		Email:     req.Email,
		Name:      req.Name,
		Telephone: req.Telephone,
		Avatar:    models.DefaultAvatar,
		IsStaff:   true,
	}
	if err := s.userRepo.Create(c.Context(), user); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return models.Respond(c, fiber.StatusCreated, user.Public())
}

// AgreeUser handles POST /api/agreeuser. A superuser approves a pending
// registration; the user receives an activation link by mail.
func (s *Server) AgreeUser(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if user == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("User does not exist"))
	}
	if user.IsActive {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Account is already active"))
	}

	code := auth.GenerateCode()
	if err := s.codeStore.SetActivationCode(c.Context(), req.Email, code); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	activeKey := auth.EncodeActivationKey(req.Email, code)
	link := fmt.Sprintf("%s/active?activekey=%s", s.config.FrontendURL, activeKey)
	body := fmt.Sprintf("Your registration was approved. Activate your account within 30 minutes: %s", link)
	if err := s.mailer.Send(req.Email, "Account activation", body); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return models.RespondMessage(c, fiber.StatusOK, "Activation email sent")
}

// ActiveUser handles POST /api/activeuser. The activation key from the
// emailed link proves the approval; the request sets the first password
// and activates the account.
func (s *Server) ActiveUser(c *fiber.Ctx) error {
	var req struct {
		ActiveKey       string `json:"activekey"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Password != req.ConfirmPassword {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Passwords do not match"))
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	email, code, err := auth.DecodeActivationKey(req.ActiveKey)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid activation key"))
	}

	user, err := s.userRepo.GetByEmail(c.Context(), email)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if user == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("User does not exist"))
	}
	if user.IsActive {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Account is already active"))
	}

	if err := s.codeStore.ConsumeActivationCode(c.Context(), email, code); err != nil {
		if errors.Is(err, auth.ErrCodeMismatch) {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Activation key is wrong or expired"))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	user.Password = string(hashedPassword)
	user.IsActive = true
	if err := s.userRepo.Update(c.Context(), user); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return models.RespondMessage(c, fiber.StatusOK, "Account activated")
}

// ResetPassword handles POST /api/resetpassword for the authenticated user.
func (s *Server) ResetPassword(c *fiber.Ctx) error {
	var req struct {
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Password != req.ConfirmPassword {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Passwords do not match"))
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	user := s.currentUser(c)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	user.Password = string(hashedPassword)
	if err := s.userRepo.Update(c.Context(), user); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return models.RespondMessage(c, fiber.StatusOK, "Password updated")
}
