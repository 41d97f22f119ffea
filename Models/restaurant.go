package Models

import "time"

// Restaurant is the tenant. Every task, user and location hangs off exactly
// one restaurant and every query is scoped by its id.
type Restaurant struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	RestaurantCode string     `json:"restaurant_code" gorm:"type:varchar(50);uniqueIndex;not null"`
	Name           string     `json:"name" gorm:"type:varchar(255);not null"`
	CuisineType    string     `json:"cuisine_type" gorm:"type:varchar(100);not null"`
	ContactEmail   string     `json:"contact_email" gorm:"type:varchar(255);not null"`
	ContactPhone   string     `json:"contact_phone" gorm:"type:varchar(20);not null"`
	PasswordHash   string     `json:"-" gorm:"type:varchar(255);not null"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at"`

	// Relationships
	Locations []Location `json:"locations,omitempty" gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE"`
	Users     []User     `json:"users,omitempty" gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE"`
	Tasks     []Task     `json:"tasks,omitempty" gorm:"foreignKey:RestaurantID;constraint:OnDelete:CASCADE"`
}

type Location struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	RestaurantID uint      `json:"restaurant_id" gorm:"index;not null"`
	AddressLine1 string    `json:"address_line1" gorm:"type:varchar(255);not null"`
	TownCity     string    `json:"town_city" gorm:"type:varchar(100);not null"`
	Postcode     string    `json:"postcode" gorm:"type:varchar(20);not null"`
	CreatedAt    time.Time `json:"created_at"`
}

// User is a staff member identified by a PIN at the till. Deactivated rather
// than deleted so cleaning logs keep their author.
type User struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	RestaurantID uint       `json:"restaurant_id" gorm:"index;not null"`
	Name         string     `json:"name" gorm:"type:varchar(255);not null"`
	PinHash      string     `json:"-" gorm:"type:varchar(255);not null"`
	Role         string     `json:"role" gorm:"type:varchar(50);not null;default:'staff'"` // staff, admin
	IsActive     bool       `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}
