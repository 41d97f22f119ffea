package main

import (
	"log"
	"os"

	"RestroManage/Config"
	"RestroManage/FiberConfig"
	"RestroManage/Models"

	_ "github.com/go-sql-driver/mysql"
)

func main() {
	setupLogging()

	cfg := Config.Load()
	Models.Connect(cfg.DatabaseURL)
	FiberConfig.FiberConfig(cfg)
}

func setupLogging() {
	// Create logs directory if it doesn't exist
	if err := os.MkdirAll("logs", 0755); err != nil {
		log.Printf("Error creating logs directory: %v\n", err)
		return
	}

	logFile, err := os.OpenFile("logs/application.log",
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Printf("Error opening log file: %v\n", err)
		return
	}

	log.SetOutput(logFile)
	log.SetFlags(log.Ldate | log.Ltime)
}
