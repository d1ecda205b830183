package db

import (
	"time"

	"agora/internal/models"
	"agora/internal/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Seed fills an empty database with demo accounts, posts and comments.
// It does nothing once any user exists.
func Seed(db *gorm.DB, log *zap.Logger) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info("users already present, skipping demo seed")
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		users := []struct {
			name, password string
			admin          bool
		}{
			{"admin", "admin123", true},
			{"gamer1", "qwerty", false},
			{"streamer", "123456", false},
		}
		created := make([]models.User, 0, len(users))
		for _, u := range users {
			hash, err := utils.HashPassword(u.password)
			if err != nil {
				return err
			}
			user := models.User{Username: u.name, Password: hash, IsAdmin: u.admin}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			created = append(created, user)
		}
		admin, gamer, streamer := created[0], created[1], created[2]

		price := 1500.0
		posts := []models.Post{
			{
				Title:     "Best Dota 2 builds",
				Content:   "Detailed build guides for different heroes.",
				Section:   "guides",
				UserID:    admin.ID,
				CreatedAt: time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC),
			},
			{
				Title:     "Selling a CS2 skin",
				Content:   "Butterfly Knife | Fade (Factory New) - $1500",
				Section:   models.SectionMarketplace,
				Price:     &price,
				UserID:    gamer.ID,
				CreatedAt: time.Date(2023, 10, 2, 0, 0, 0, 0, time.UTC),
			},
			{
				Title:     "New patch discussion",
				Content:   "Which changes caught your attention the most?",
				Section:   "discussion",
				UserID:    streamer.ID,
				CreatedAt: time.Date(2023, 10, 3, 0, 0, 0, 0, time.UTC),
			},
		}
		if err := tx.Create(&posts).Error; err != nil {
			return err
		}

		comments := []models.Comment{
			{
				Text:      "Great guide, thanks!",
				UserID:    gamer.ID,
				PostID:    posts[0].ID,
				CreatedAt: time.Date(2023, 10, 1, 12, 30, 0, 0, time.UTC),
			},
			{
				Text:      "How much for the knife?",
				UserID:    streamer.ID,
				PostID:    posts[1].ID,
				CreatedAt: time.Date(2023, 10, 2, 14, 15, 0, 0, time.UTC),
			},
		}
		if err := tx.Create(&comments).Error; err != nil {
			return err
		}

		log.Info("demo data created", zap.Int("users", len(created)), zap.Int("posts", len(posts)))
		return nil
	})
}
