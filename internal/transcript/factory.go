package transcript

import (
	"errors"
	"fmt"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Driver selects the transcript persistence backend.
type Driver string

const (
	DriverFile   Driver = "file"
	DriverSQLite Driver = "sqlite"
	DriverMySQL  Driver = "mysql"
	DriverRedis  Driver = "redis"
)

var ErrInvalidDriver = errors.New("invalid transcript driver")

// Options carries the backend-specific settings; only the fields for the
// chosen driver are consulted.
type Options struct {
	// Dir is the history directory for the file driver.
	Dir string
	// DSN is the database path (sqlite) or connection string (mysql).
	DSN string
	// Redis connection settings.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// NewStore builds the Store for the given driver. The file driver reproduces
// the original one-JSON-file-per-language layout and is the default.
func NewStore(driver Driver, opts Options) (Store, error) {
	switch driver {
	case DriverFile, "":
		return NewFileStore(opts.Dir), nil

	case DriverSQLite:
		dsn := opts.DSN
		if dsn == "" {
			dsn = "proglot.db"
		}
		db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return NewGormStore(db)

	case DriverMySQL:
		if opts.DSN == "" {
			return nil, fmt.Errorf("%w: mysql requires a DSN", ErrInvalidDriver)
		}
		db, err := gorm.Open(mysql.Open(opts.DSN), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		return NewGormStore(db)

	case DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		return NewRedisStore(client), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidDriver, driver)
	}
}
