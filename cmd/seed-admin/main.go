// Command seed-admin bootstraps the first admin account so the permission
// system has someone who can log in and configure the rest.
package main

import (
	"flag"
	"log"
	"time"

	"case-management-api/config"
	"case-management-api/models"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	var (
		email    string
		name     string
		password string
	)
	flag.StringVar(&email, "email", "", "admin email address")
	flag.StringVar(&name, "name", "Administrator", "admin display name")
	flag.StringVar(&password, "password", "", "initial password")
	flag.Parse()

	if email == "" || password == "" {
		log.Fatal("usage: seed-admin -email admin@example.org -password secret")
	}

	config.InitDB()

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		var role models.Role
		if err := tx.Where("role_name = ?", "admin").First(&role).Error; err != nil {
			if err != gorm.ErrRecordNotFound {
				return err
			}
			role = models.Role{RoleName: "admin"}
			if err := tx.Create(&role).Error; err != nil {
				return err
			}
		}

		var existing models.User
		if err := tx.Where("email = ?", email).First(&existing).Error; err == nil {
			log.Printf("User %s already exists, skipping", email)
			return nil
		}

		now := time.Now()
		user := models.User{
			FullName: name,
			Email:    email,
			Password: string(hashed),
			IsActive: true,
			CreateAt: &now,
			UpdateAt: &now,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		assignment := models.UserRole{
			UserID:   user.UserID,
			RoleID:   role.RoleID,
			IsActive: true,
			CreateAt: &now,
		}
		return tx.Create(&assignment).Error
	})
	if err != nil {
		log.Fatal("Failed to seed admin:", err)
	}

	log.Printf("Admin %s is ready", email)
}
