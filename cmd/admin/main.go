package main

import (
	"fmt"
	"log"
	"os"

	"nagarseva/backend/internal/models"
	"nagarseva/backend/internal/storage"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	storageSvc := storage.NewStorageService(db, nil) // No redis needed for admin CLI

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "advance":
		if len(os.Args) < 4 {
			fmt.Println("Usage: admin advance <complaint_code> <status> [note]")
			os.Exit(1)
		}
		code := os.Args[2]
		status := models.Status(os.Args[3])
		note := "Status updated by operator"
		if len(os.Args) > 4 {
			note = os.Args[4]
		}
		if err := advanceComplaint(storageSvc, code, status, note); err != nil {
			log.Fatalf("Error advancing complaint: %v", err)
		}
		fmt.Printf("Complaint %s is now %s.\n", code, status)
	case "show":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin show <complaint_code>")
			os.Exit(1)
		}
		if err := showComplaint(storageSvc, os.Args[2]); err != nil {
			log.Fatalf("Error showing complaint: %v", err)
		}
	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

// advanceComplaint moves a complaint forward in its lifecycle, appending an
// audit row. The storage layer rejects backwards transitions.
func advanceComplaint(s storage.Storage, code string, status models.Status, note string) error {
	complaint, err := s.GetComplaintByCode(code)
	if err != nil {
		return err
	}
	if complaint == nil {
		return fmt.Errorf("no complaint with code %s", code)
	}
	return s.AppendStatus(complaint.ID, status, complaint.AssignedTo, note)
}

func showComplaint(s storage.Storage, code string) error {
	complaint, err := s.GetComplaintByCode(code)
	if err != nil {
		return err
	}
	if complaint == nil {
		return fmt.Errorf("no complaint with code %s", code)
	}

	fmt.Printf("%s [%s] %s - %s, %s\n", complaint.Code, complaint.Status, complaint.IssueType, complaint.City, complaint.State)
	if complaint.AssignedTo != "" {
		fmt.Printf("Assigned to: %s\n", complaint.AssignedTo)
	}
	fmt.Printf("Description: %s\n", complaint.Description)

	trail, err := s.StatusTrail(complaint.ID)
	if err != nil {
		return err
	}
	for _, update := range trail {
		fmt.Printf("  %s  %-10s  %s\n", update.CreatedAt.Format("2006-01-02 15:04:05"), update.Status, update.Note)
	}
	return nil
}
