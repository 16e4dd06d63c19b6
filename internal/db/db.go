package db

import (
	"fmt"
	"strings"

	"captionvote/internal/config"
	"captionvote/internal/models"
	"captionvote/internal/utils"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens the configured database and runs migrations.
func Connect(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case config.DriverSQLite:
		dialector = sqlite.Open(SQLiteDSN(cfg.SQLitePath))
	default:
		dialector = postgres.Open(cfg.DatabaseURL)
	}

	gormCfg := &gorm.Config{TranslateError: true}
	if !cfg.IsDevelopment() {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Warn)
	}

	conn, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.DBDriver, err)
	}
	log.Info("database connection established", zap.String("driver", cfg.DBDriver))

	if err := Migrate(conn); err != nil {
		return nil, err
	}
	log.Info("database migration completed")

	if cfg.SeedDemo {
		if err := SeedDemo(conn, log); err != nil {
			return nil, err
		}
	}
	return conn, nil
}

// SQLiteDSN turns a file path into a DSN with foreign keys enforced and a busy
// timeout. Parameters already present in path are left alone.
func SQLiteDSN(path string) string {
	params := []string{}
	if !strings.Contains(path, "_foreign_keys=") && !strings.Contains(path, "_fk=") {
		params = append(params, "_foreign_keys=on")
	}
	if !strings.Contains(path, "_busy_timeout=") {
		params = append(params, "_busy_timeout=5000")
	}
	if len(params) == 0 {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(params, "&")
}

// Migrate creates the tables, including the (user_id, caption_id) unique index on votes.
func Migrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(
		&models.User{},
		&models.Image{},
		&models.Caption{},
		&models.Vote{},
	); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// DemoEmail / DemoPassword identify the account created by SeedDemo.
const (
	DemoEmail    = "demo@captionvote.local"
	DemoPassword = "demo-password"
)

var demoCaptions = []struct {
	content string
	image   string
	likes   int
}{
	{"When the build passes on the first try", "https://picsum.photos/seed/build/600/400", 12},
	{"Me explaining **why** the cache was stale", "https://picsum.photos/seed/cache/600/400", 8},
	{"POV: you found the race condition", "https://picsum.photos/seed/race/600/400", 21},
	{"Monday standup energy", "", 3},
	{"That one row that should have been unique", "https://picsum.photos/seed/unique/600/400", 17},
	{"Retrying as update, as one does", "", 5},
}

// SeedDemo inserts a demo user and a handful of captions when the caption table is empty.
func SeedDemo(conn *gorm.DB, log *zap.Logger) error {
	var count int64
	if err := conn.Model(&models.Caption{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info("captions already seeded, skipping")
		return nil
	}

	return conn.Transaction(func(tx *gorm.DB) error {
		hash, err := utils.HashPassword(DemoPassword)
		if err != nil {
			return err
		}
		user := models.User{Email: DemoEmail, Password: hash}
		if err := tx.Where(models.User{Email: DemoEmail}).FirstOrCreate(&user).Error; err != nil {
			return err
		}

		for _, dc := range demoCaptions {
			caption := models.Caption{Content: dc.content, LikeCount: dc.likes}
			if dc.image != "" {
				caption.Image = &models.Image{URL: dc.image}
			}
			if err := tx.Create(&caption).Error; err != nil {
				return err
			}
		}
		log.Info("demo captions created", zap.Int("count", len(demoCaptions)))
		return nil
	})
}
