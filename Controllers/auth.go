package Controllers

import (
	"crypto/rand"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"RestroManage/Models"
	"RestroManage/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthController struct {
	DB          *gorm.DB
	Validate    *validator.Validate
	SecretKey   string
	TokenExpiry time.Duration
}

func NewAuthController(db *gorm.DB, secretKey string, tokenExpiryMinutes int) *AuthController {
	return &AuthController{
		DB:          db,
		Validate:    validator.New(),
		SecretKey:   secretKey,
		TokenExpiry: time.Duration(tokenExpiryMinutes) * time.Minute,
	}
}

type RegisterRestaurantRequest struct {
	Name         string `json:"name" validate:"required,max=255"`
	CuisineType  string `json:"cuisine_type" validate:"required,max=100"`
	ContactEmail string `json:"contact_email" validate:"required,email"`
	ContactPhone string `json:"contact_phone" validate:"required,max=20"`
	Password     string `json:"password" validate:"required,min=8"`
	Locations    []struct {
		AddressLine1 string `json:"address_line1" validate:"required"`
		TownCity     string `json:"town_city" validate:"required"`
		Postcode     string `json:"postcode" validate:"required"`
	} `json:"locations" validate:"required,min=1,dive"`
}

type LoginRequest struct {
	RestaurantCode string `json:"restaurant_code" validate:"required"`
	Password       string `json:"password" validate:"required"`
}

type PinValidationRequest struct {
	Pin string `json:"pin" validate:"required,min=4,max=10"`
}

// RegisterRestaurant creates a tenant with a generated login code and its
// initial locations.
// POST /api/auth/register
func (ac *AuthController) RegisterRestaurant(c *fiber.Ctx) error {
	var req RegisterRestaurantRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := ac.Validate.Struct(req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to hash password",
		})
	}

	restaurant := Models.Restaurant{
		Name:         req.Name,
		CuisineType:  req.CuisineType,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		PasswordHash: string(passwordHash),
	}

	err = ac.DB.Transaction(func(tx *gorm.DB) error {
		// Retry on the off chance the generated code collides
		for {
			restaurant.RestaurantCode = generateRestaurantCode()
			var count int64
			if err := tx.Model(&Models.Restaurant{}).
				Where("restaurant_code = ?", restaurant.RestaurantCode).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				break
			}
		}
		if err := tx.Create(&restaurant).Error; err != nil {
			return err
		}
		for _, loc := range req.Locations {
			location := Models.Location{
				RestaurantID: restaurant.ID,
				AddressLine1: loc.AddressLine1,
				TownCity:     loc.TownCity,
				Postcode:     loc.Postcode,
			}
			if err := tx.Create(&location).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to register restaurant",
			"error":   err.Error(),
		})
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message":         "Restaurant registered successfully",
		"restaurant_code": restaurant.RestaurantCode,
	})
}

// Login exchanges a restaurant code and password for a JWT.
// POST /api/auth/login
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := ac.Validate.Struct(req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	var restaurant Models.Restaurant
	if err := ac.DB.Preload("Locations").
		Where("restaurant_code = ?", req.RestaurantCode).
		First(&restaurant).Error; err != nil {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
			"message": "Invalid restaurant code or password",
		})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(restaurant.PasswordHash), []byte(req.Password)); err != nil {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
			"message": "Invalid restaurant code or password",
		})
	}

	claims := jwt.RegisteredClaims{
		Issuer:    strconv.FormatUint(uint64(restaurant.ID), 10),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ac.TokenExpiry)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(ac.SecretKey))
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to create token",
		})
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"token":         token,
		"restaurant_id": strconv.FormatUint(uint64(restaurant.ID), 10),
		"restaurant":    restaurant,
	})
}

// ValidateToken confirms the caller's token still resolves to a restaurant.
// GET /api/auth/validate-token
func (ac *AuthController) ValidateToken(c *fiber.Ctx) error {
	restaurant := middleware.CurrentRestaurant(c)
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message":    "Token valid",
		"restaurant": restaurant,
	})
}

// ValidatePin matches a staff PIN against the restaurant's active users.
// POST /api/auth/validate-pin
func (ac *AuthController) ValidatePin(c *fiber.Ctx) error {
	restaurant := middleware.CurrentRestaurant(c)

	var req PinValidationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := ac.Validate.Struct(req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	var users []Models.User
	if err := ac.DB.Where("restaurant_id = ? AND is_active = ?", restaurant.ID, true).
		Find(&users).Error; err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to fetch users",
			"error":   err.Error(),
		})
	}

	// PINs are stored hashed, so compare against each active user
	for _, user := range users {
		if bcrypt.CompareHashAndPassword([]byte(user.PinHash), []byte(req.Pin)) == nil {
			return c.Status(http.StatusOK).JSON(fiber.Map{
				"user": user,
				"role": user.Role,
			})
		}
	}

	return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
		"message": "Invalid PIN",
	})
}

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func generateRestaurantCode() string {
	code := make([]byte, 8)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			// crypto/rand failing means the platform is broken
			panic(err)
		}
		code[i] = codeAlphabet[n.Int64()]
	}
	return string(code)
}
