package controllers

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/bookify/middleware"
	"github.com/meinhoongagan/bookify/models"
	"github.com/meinhoongagan/bookify/store"
	"github.com/meinhoongagan/bookify/utils"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	Store  store.Store
	Secret string
	TTL    time.Duration
	Cache  DirectoryCache // optional, dropped when a provider registers
}

func NewAuthHandler(s store.Store, secret string, ttl time.Duration, cache DirectoryCache) *AuthHandler {
	return &AuthHandler{Store: s, Secret: secret, TTL: ttl, Cache: cache}
}

type registerInput struct {
	FullName        string      `json:"full_name"`
	Email           string      `json:"email"`
	Password        string      `json:"password"`
	Role            models.Role `json:"role"`
	BusinessName    string      `json:"business_name"`
	ServiceCategory string      `json:"service_category"`
	Address         string      `json:"address"`
	PhoneNumber     string      `json:"phone_number"`
}

type authResponse struct {
	Token    string                  `json:"token"`
	User     *models.User            `json:"user"`
	Provider *models.ServiceProvider `json:"provider,omitempty"`
}

// Register creates a customer or a service provider. Providers get their
// business record in the same write.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	input := new(registerInput)
	if err := c.BodyParser(input); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Cannot parse JSON", err)
	}
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Email == "" || input.Password == "" || strings.TrimSpace(input.FullName) == "" {
		return utils.Fail(c, fiber.StatusBadRequest, "Missing required fields", nil)
	}
	if input.Role == "" {
		input.Role = models.RoleUser
	}
	if input.Role != models.RoleUser && input.Role != models.RoleServiceProvider {
		return utils.Fail(c, fiber.StatusBadRequest, "Role must be user or serviceProvider", nil)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, "Failed to hash password", nil)
	}
	user := &models.User{
		FullName: strings.TrimSpace(input.FullName),
		Email:    input.Email,
		Password: string(hashed),
		Role:     input.Role,
	}
	var provider *models.ServiceProvider
	if input.Role == models.RoleServiceProvider {
		provider = &models.ServiceProvider{
			BusinessName:    strings.TrimSpace(input.BusinessName),
			FullName:        user.FullName,
			Email:           user.Email,
			ServiceCategory: strings.TrimSpace(input.ServiceCategory),
			Address:         input.Address,
			PhoneNumber:     input.PhoneNumber,
		}
	}

	if err := h.Store.CreateUser(c.UserContext(), user, provider); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return utils.Fail(c, fiber.StatusConflict, "User with this email already exists", nil)
		}
		return utils.StoreError(c, err, "Failed to create user")
	}
	log.Printf("Registered %s %s", user.Role, user.ID)
	if provider != nil && h.Cache != nil {
		if err := h.Cache.Invalidate(c.UserContext()); err != nil {
			log.Printf("Failed to invalidate provider cache: %v", err)
		}
	}

	token, err := utils.GenerateToken(h.Secret, user, h.TTL)
	if err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, "Failed to generate token", nil)
	}
	return c.Status(fiber.StatusCreated).JSON(authResponse{Token: token, User: user, Provider: provider})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	type LoginInput struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	input := new(LoginInput)
	if err := c.BodyParser(input); err != nil {
		return utils.Fail(c, fiber.StatusBadRequest, "Cannot parse JSON", err)
	}

	user, err := h.Store.GetUserByEmail(c.UserContext(), strings.ToLower(strings.TrimSpace(input.Email)))
	if errors.Is(err, store.ErrNotFound) {
		return utils.Fail(c, fiber.StatusUnauthorized, "Invalid credentials", nil)
	}
	if err != nil {
		return utils.StoreError(c, err, "Failed to fetch user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return utils.Fail(c, fiber.StatusUnauthorized, "Invalid credentials", nil)
	}

	token, err := utils.GenerateToken(h.Secret, user, h.TTL)
	if err != nil {
		return utils.Fail(c, fiber.StatusInternalServerError, "Failed to generate token", nil)
	}
	return c.JSON(authResponse{Token: token, User: user})
}

// Me returns the caller and, for providers, their business record.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	ctx := c.UserContext()
	user, err := h.Store.GetUser(ctx, middleware.UserID(c))
	if err != nil {
		return utils.StoreError(c, err, "User not found")
	}
	resp := fiber.Map{"user": user}
	if user.Role == models.RoleServiceProvider {
		p, err := h.Store.GetProvider(ctx, user.ID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return utils.StoreError(c, err, "Failed to fetch provider")
		}
		if p != nil {
			resp["provider"] = p
		}
	}
	return c.JSON(resp)
}
