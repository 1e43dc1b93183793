// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"circle/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumThreads  int
	ShouldClean bool
}

// Seed populates the database with test data
func Seed(db *gorm.DB, opts Options) error {
	gofakeit.Seed(time.Now().UnixNano())

	log.Printf("🌱 Starting database seeding with %d users and %d threads...", opts.NumUsers, opts.NumThreads)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("⚠️  Warning: Could not clear all existing data, but continuing anyway...")
		}
	}

	users, err := createUsers(db, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("✓ %d test users created", len(users))

	threads, err := createThreads(db, users, opts.NumThreads)
	if err != nil {
		return fmt.Errorf("failed to create threads: %w", err)
	}
	log.Printf("✓ %d threads created", len(threads))

	replies, err := createReplies(db, users, threads)
	if err != nil {
		return fmt.Errorf("failed to create replies: %w", err)
	}
	log.Printf("✓ %d replies created", replies)

	likes, err := createLikes(db, users, threads)
	if err != nil {
		return fmt.Errorf("failed to create likes: %w", err)
	}
	log.Printf("✓ %d likes created", likes)

	follows, err := createFollowerMesh(db, users)
	if err != nil {
		return fmt.Errorf("failed to create follower mesh: %w", err)
	}
	log.Printf("✓ %d follower edges created", follows)

	log.Println("✨ Seeding complete. All test users have the password: password123")
	return nil
}

func clearData(db *gorm.DB) error {
	tables := []string{"likes", "followers", "replies", "threads", "profiles", "users"}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}

func createUsers(db *gorm.DB, count int) ([]models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		fullName := gofakeit.Name()
		username := strings.ToLower(strings.ReplaceAll(fullName, " ", "_")) + fmt.Sprintf("%d", gofakeit.Number(10, 999))
		picture := fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID())

		user := models.User{
			Email:          fmt.Sprintf("%d.%s", i, gofakeit.Email()),
			Username:       &username,
			Password:       string(hashed),
			FullName:       fullName,
			ProfilePicture: &picture,
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, err
		}

		// Roughly two thirds of the users get a bio.
		if gofakeit.Number(0, 2) > 0 {
			profile := models.Profile{UserID: user.ID, Bio: gofakeit.Sentence(12)}
			if err := db.Create(&profile).Error; err != nil {
				return nil, err
			}
		}

		users = append(users, user)
	}
	return users, nil
}

func createThreads(db *gorm.DB, users []models.User, count int) ([]models.Thread, error) {
	threads := make([]models.Thread, 0, count)
	for i := 0; i < count; i++ {
		author := users[rand.Intn(len(users))]
		thread := models.Thread{
			UserID:  author.ID,
			Content: gofakeit.Paragraph(1, 2, 8, " "),
		}

		// A third of the threads carry an image attachment.
		if gofakeit.Number(0, 2) == 0 {
			url := fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID())
			name := gofakeit.Word() + ".jpg"
			thread.FileURL = &url
			thread.FileName = &name
		}

		daysBack := rand.Intn(90)
		thread.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(rand.Intn(24))*time.Hour)

		if err := db.Create(&thread).Error; err != nil {
			return nil, err
		}
		threads = append(threads, thread)
	}
	return threads, nil
}

func createReplies(db *gorm.DB, users []models.User, threads []models.Thread) (int, error) {
	total := 0
	for _, thread := range threads {
		for i := 0; i < gofakeit.Number(0, 5); i++ {
			reply := models.Reply{
				ThreadID: thread.ID,
				UserID:   users[rand.Intn(len(users))].ID,
				Content:  gofakeit.Sentence(gofakeit.Number(4, 14)),
			}
			if err := db.Create(&reply).Error; err != nil {
				return total, err
			}
			total++
		}
	}
	return total, nil
}

func createLikes(db *gorm.DB, users []models.User, threads []models.Thread) (int, error) {
	total := 0
	for _, thread := range threads {
		// Pick a random prefix of a shuffled user list so likers are unique
		// per thread.
		likers := rand.Perm(len(users))[:rand.Intn(len(users))]
		for _, idx := range likers {
			like := models.Like{UserID: users[idx].ID, ThreadID: thread.ID}
			if err := db.Create(&like).Error; err != nil {
				return total, err
			}
			total++
		}
	}
	return total, nil
}

func createFollowerMesh(db *gorm.DB, users []models.User) (int, error) {
	total := 0
	for _, follower := range users {
		targets := rand.Perm(len(users))
		count := rand.Intn(len(users)/2 + 1)
		for _, idx := range targets {
			if count == 0 {
				break
			}
			if users[idx].ID == follower.ID {
				continue
			}
			edge := models.Follower{FollowerID: follower.ID, FollowingID: users[idx].ID}
			if err := db.Create(&edge).Error; err != nil {
				return total, err
			}
			total++
			count--
		}
	}
	return total, nil
}
