package repository

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskboard/internal/model"
)

// ErrNotFound is returned when a row is missing or owned by another user.
// Callers cannot tell the two cases apart.
var ErrNotFound = errors.New("not found")

// NewDB opens a SQLite database and runs migrations.
func NewDB(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		dsn = "taskboard.db"
	}

	if err := ensureDirForSQLite(dsn); err != nil {
		return nil, err
	}

	dbLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(withWriteLocking(dsn)), &gorm.Config{
		Logger:         dbLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.Account{},
		&model.Group{},
		&model.Task{},
		&model.Subtask{},
	); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}

	return db, nil
}

// ensureDirForSQLite creates parent dir for SQLite file if needed.
func ensureDirForSQLite(dsn string) error {
	// Ignore DSNs with explicit mode=memory or network.
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	// Strip file: prefix if present.
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}

// withWriteLocking makes concurrent writers wait for the lock instead of failing
// with SQLITE_BUSY. Transactions take the write lock on BEGIN so two read-then-write
// transactions cannot deadlock upgrading their shared locks.
func withWriteLocking(dsn string) string {
	for _, param := range []string{"_busy_timeout=5000", "_txlock=immediate"} {
		key := param[:strings.Index(param, "=")]
		if strings.Contains(dsn, key) {
			continue
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + param
	}
	return dsn
}

// notFound maps gorm's missing-row error onto ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// ownedGroupIDs is a subquery selecting the ids of groups owned by userID.
func ownedGroupIDs(db *gorm.DB, userID uint) *gorm.DB {
	return db.Model(&model.Group{}).Select("id").Where("user_id = ?", userID)
}

// ownedTaskIDs is a subquery selecting the ids of tasks owned by userID.
func ownedTaskIDs(db *gorm.DB, userID uint) *gorm.DB {
	return db.Model(&model.Task{}).Select("id").Where("group_id IN (?)", ownedGroupIDs(db, userID))
}
