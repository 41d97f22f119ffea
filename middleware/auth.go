package middleware

import (
	"strings"

	"RestroManage/Models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// Verify authenticates the restaurant from a bearer token (or the legacy jwt
// cookie) and stashes it in c.Locals("restaurant") for the handlers.
func Verify(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" {
			tokenString = c.Cookies("jwt")
		}
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Not logged in",
			})
		}

		token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}

		claims, ok := token.Claims.(*jwt.RegisteredClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid token claims",
			})
		}

		var restaurant Models.Restaurant
		if err := Models.DB.Where("id = ?", claims.Issuer).First(&restaurant).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Restaurant not found",
			})
		}

		c.Locals("restaurant", restaurant)
		return c.Next()
	}
}

// CurrentRestaurant returns the restaurant Verify placed on the context.
func CurrentRestaurant(c *fiber.Ctx) Models.Restaurant {
	restaurant, _ := c.Locals("restaurant").(Models.Restaurant)
	return restaurant
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
