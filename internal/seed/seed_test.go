package seed

import (
	"fmt"
	"testing"

	"circle/internal/database"
	"circle/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSeedTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestSeed_PopulatesAllTables(t *testing.T) {
	db := setupSeedTestDB(t)

	opts := Options{NumUsers: 6, NumThreads: 12, ShouldClean: false}
	if err := Seed(db, opts); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if userCount != int64(opts.NumUsers) {
		t.Fatalf("expected %d users, got %d", opts.NumUsers, userCount)
	}

	var threadCount int64
	if err := db.Model(&models.Thread{}).Count(&threadCount).Error; err != nil {
		t.Fatalf("count threads: %v", err)
	}
	if threadCount != int64(opts.NumThreads) {
		t.Fatalf("expected %d threads, got %d", opts.NumThreads, threadCount)
	}

	var likes []models.Like
	if err := db.Find(&likes).Error; err != nil {
		t.Fatalf("load likes: %v", err)
	}
	seen := make(map[string]bool, len(likes))
	for _, like := range likes {
		key := fmt.Sprintf("%d/%d", like.UserID, like.ThreadID)
		if seen[key] {
			t.Fatalf("duplicate like for user %d on thread %d", like.UserID, like.ThreadID)
		}
		seen[key] = true
	}

	var selfFollows int64
	if err := db.Model(&models.Follower{}).
		Where("follower_id = following_id").
		Count(&selfFollows).Error; err != nil {
		t.Fatalf("count self follows: %v", err)
	}
	if selfFollows != 0 {
		t.Fatalf("expected no self-follow edges, got %d", selfFollows)
	}
}

func TestSeed_CleanResetsExistingData(t *testing.T) {
	db := setupSeedTestDB(t)

	if err := Seed(db, Options{NumUsers: 4, NumThreads: 6}); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := Seed(db, Options{NumUsers: 3, NumThreads: 5, ShouldClean: true}); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if userCount != 3 {
		t.Fatalf("expected 3 users after clean reseed, got %d", userCount)
	}

	var threadCount int64
	if err := db.Model(&models.Thread{}).Count(&threadCount).Error; err != nil {
		t.Fatalf("count threads: %v", err)
	}
	if threadCount != 5 {
		t.Fatalf("expected 5 threads after clean reseed, got %d", threadCount)
	}
}
