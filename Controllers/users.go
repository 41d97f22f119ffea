package Controllers

import (
	"net/http"

	"RestroManage/Models"
	"RestroManage/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db, Validate: validator.New()}
}

type CreateUserRequest struct {
	Name string `json:"name" validate:"required,max=255"`
	Pin  string `json:"pin" validate:"required,min=4,max=10"`
	Role string `json:"role" validate:"omitempty,oneof=staff admin"`
}

type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Pin      *string `json:"pin"`
	Role     *string `json:"role" validate:"omitempty,oneof=staff admin"`
	IsActive *bool   `json:"is_active"`
}

// GetUsers lists the restaurant's active staff.
// GET /api/users
func (uc *UserController) GetUsers(c *fiber.Ctx) error {
	restaurant := middleware.CurrentRestaurant(c)

	var users []Models.User
	if err := uc.DB.Where("restaurant_id = ? AND is_active = ?", restaurant.ID, true).
		Find(&users).Error; err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to fetch users",
			"error":   err.Error(),
		})
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"users": users,
		"total": len(users),
	})
}

// CreateUser adds a staff member with a hashed PIN.
// POST /api/users
func (uc *UserController) CreateUser(c *fiber.Ctx) error {
	restaurant := middleware.CurrentRestaurant(c)

	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := uc.Validate.Struct(req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	pinHash, err := bcrypt.GenerateFromPassword([]byte(req.Pin), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to hash PIN",
		})
	}

	role := req.Role
	if role == "" {
		role = "staff"
	}
	user := Models.User{
		RestaurantID: restaurant.ID,
		Name:         req.Name,
		PinHash:      string(pinHash),
		Role:         role,
		IsActive:     true,
	}
	if err := uc.DB.Create(&user).Error; err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to create user",
			"error":   err.Error(),
		})
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"user":    user,
	})
}

// UpdateUser patches a staff member.
// PATCH /api/users/:id
func (uc *UserController) UpdateUser(c *fiber.Ctx) error {
	restaurant := middleware.CurrentRestaurant(c)
	userID, err := parseID(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid user id",
		})
	}

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := uc.Validate.Struct(req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	var user Models.User
	if err := uc.DB.Where("id = ? AND restaurant_id = ?", userID, restaurant.ID).
		First(&user).Error; err != nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{
			"message": "User not found",
		})
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Pin != nil {
		pinHash, err := bcrypt.GenerateFromPassword([]byte(*req.Pin), bcrypt.DefaultCost)
		if err != nil {
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
				"message": "Failed to hash PIN",
			})
		}
		user.PinHash = string(pinHash)
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := uc.DB.Save(&user).Error; err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to update user",
			"error":   err.Error(),
		})
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "User updated successfully",
		"user":    user,
	})
}

// DeleteUser deactivates a staff member. The row stays so older cleaning
// logs keep a valid author.
// DELETE /api/users/:id
func (uc *UserController) DeleteUser(c *fiber.Ctx) error {
	restaurant := middleware.CurrentRestaurant(c)
	userID, err := parseID(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid user id",
		})
	}

	var user Models.User
	if err := uc.DB.Where("id = ? AND restaurant_id = ?", userID, restaurant.ID).
		First(&user).Error; err != nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{
			"message": "User not found",
		})
	}

	user.IsActive = false
	if err := uc.DB.Save(&user).Error; err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to deactivate user",
			"error":   err.Error(),
		})
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "User deactivated successfully",
	})
}
