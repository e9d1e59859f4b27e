package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"todoapi/backend/internal/auth"
	"todoapi/backend/internal/database"
	"todoapi/backend/internal/handlers"
	"todoapi/backend/internal/models"
	"todoapi/backend/internal/repository"
	"todoapi/backend/internal/seeders"
	"todoapi/backend/internal/services"
	"todoapi/backend/pkg/config"
	applog "todoapi/backend/pkg/log"

	"github.com/gin-gonic/gin/binding"
	"golang.org/x/term" // For password masking
)

// readInput reads a line of text from the console.
func readInput(reader *bufio.Reader, prompt string) string {
	fmt.Print(prompt)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// readPassword reads a password from the console, masking the input.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(bytePassword)), nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Database.Driver != "postgres" {
		log.Fatalf("Setup requires DB_DRIVER=postgres (got %q)", cfg.Database.Driver)
	}
	applog.Init(cfg.LogLevel, cfg.Environment)
	defer applog.Sync()

	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)
	fmt.Println("--- Todo API Setup ---")

	// 1. Database
	fmt.Printf("Connecting to database %s at %s:%s...\n", cfg.Database.Name, cfg.Database.Host, cfg.Database.Port)
	db, err := database.Open(cfg.Database, false)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)
	fmt.Println("Successfully connected to the database.")

	// 2. Migrations
	fmt.Println("\n--- Running Database Migrations ---")
	if err := database.Migrate(db, applog.L); err != nil {
		log.Fatalf("Database migration process failed: %v", err)
	}
	fmt.Println("Database migrations completed successfully.")

	// 3. First user
	fmt.Println("\n--- Creating First User ---")
	name := readInput(reader, "Enter User Name: ")
	email := readInput(reader, "Enter User Email: ")

	var password string
	for {
		password, err = readPassword("Enter User Password: ")
		if err != nil {
			log.Fatalf("Failed to read password: %v", err)
		}
		if len(password) < services.MinPasswordLength || len(password) > services.MaxPasswordLength {
			fmt.Printf("Password must be %d to %d characters. Please try again.\n", services.MinPasswordLength, services.MaxPasswordLength)
			continue
		}
		confirm, err := readPassword("Confirm User Password: ")
		if err != nil {
			log.Fatalf("Failed to read password confirmation: %v", err)
		}
		if password == confirm {
			break
		}
		fmt.Println("Passwords do not match. Please try again.")
	}

	// Mesmas regras do POST /api/auth/register.
	payload := handlers.RegisterPayload{Name: strings.TrimSpace(name), Email: strings.TrimSpace(email), Password: password}
	if err := binding.Validator.ValidateStruct(&payload); err != nil {
		log.Fatalf("Invalid user data: %v", err)
	}

	users := repository.NewGormUserRepository(db)
	hasher := auth.NewPasswordHasher(cfg.Reset.BcryptCost)
	user := &models.User{Name: strings.TrimSpace(name), Email: models.NormalizeEmail(email)}
	if err := user.SetPassword(password, hasher.Hash); err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	if err := users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			log.Fatalf("A user with email '%s' already exists.", user.Email)
		}
		log.Fatalf("Failed to create user: %v", err)
	}
	fmt.Printf("User '%s' created successfully with ID: %s\n", user.Email, user.ID)

	// 4. Sample data
	answer := strings.ToLower(readInput(reader, "\nCreate sample todos for this user? [y/N]: "))
	if answer == "y" || answer == "yes" {
		created, err := seeders.SeedSampleTodos(ctx, repository.NewGormTodoRepository(db), user.ID, applog.L)
		if err != nil {
			log.Fatalf("Failed to seed sample todos: %v", err)
		}
		fmt.Printf("%d sample todos created.\n", created)
	}

	fmt.Println("\n--- Todo API Setup Complete! ---")
	fmt.Println("You can now start the main application server.")
}
