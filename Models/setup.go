package Models

import (
	"log"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Connect opens the database and migrates the schema. A DSN containing
// "@tcp(" is treated as MySQL, anything else as a SQLite file path.
func Connect(databaseURL string) {
	var (
		connection *gorm.DB
		err        error
	)
	if strings.Contains(databaseURL, "@tcp(") {
		connection, err = gorm.Open(mysql.Open(mysqlDSN(databaseURL)), &gorm.Config{})
	} else {
		connection, err = gorm.Open(sqlite.Open(databaseURL), &gorm.Config{})
	}
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	DB = connection

	if err := Migrate(DB); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}
}

// mysqlDSN makes sure the driver parses DATETIME columns into time.Time.
// Existing query parameters on the DSN are preserved.
func mysqlDSN(databaseURL string) string {
	if strings.Contains(databaseURL, "parseTime") {
		return databaseURL
	}
	if strings.Contains(databaseURL, "?") {
		return databaseURL + "&parseTime=true"
	}
	return databaseURL + "?parseTime=true"
}

// Migrate runs AutoMigrate in dependency order.
func Migrate(db *gorm.DB) error {
	// 1. Tenant and its directly owned entities
	if err := db.AutoMigrate(
		&Restaurant{},
		&Location{},
		&User{},
	); err != nil {
		return err
	}

	// 2. Tasks depend on restaurants
	if err := db.AutoMigrate(&Task{}); err != nil {
		return err
	}

	// 3. Everything hanging off tasks, plus bookkeeping
	return db.AutoMigrate(
		&MediaFile{},
		&CleaningLog{},
		&MigrationRun{},
	)
}
