package database

import (
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/go-kratos/kratos/v2/log"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

type DB struct {
	conn   *sql.DB
	orm    *gorm.DB
	dbType string
}

type Config struct {
	Type       string `yaml:"type"`
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	Name       string `yaml:"name"`
	SQLitePath string `yaml:"sqlite_path"`
}

// DSN returns the driver connection string. The postgres form carries the password.
func (c Config) DSN() string {
	if c.Type == TypePostgres {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			c.Host, c.Port, c.User, c.Password, c.Name)
	}
	return c.SQLitePath
}

func NewDB(config Config) (*DB, error) {
	var conn *sql.DB
	var err error

	switch config.Type {
	case TypeSQLite:
		conn, err = sql.Open("sqlite3", config.DSN())
	case TypePostgres:
		conn, err = sql.Open("pgx", config.DSN())
	default:
		return nil, fmt.Errorf("unsupported database type: %s", config.Type)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// sqlite serialises writers; a single connection avoids SQLITE_BUSY between GORM and raw queries.
	if config.Type == TypeSQLite {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	orm, err := openGORM(conn, config.Type)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	db := &DB{conn: conn, orm: orm, dbType: config.Type}

	// Only create tables for SQLite
	if config.Type == TypeSQLite {
		if err := db.createTables(); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to create tables: %w", err)
		}
	}

	return db, nil
}

func openGORM(conn *sql.DB, dbType string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if dbType == TypePostgres {
		dialector = postgres.New(postgres.Config{Conn: conn})
	} else {
		dialector = &sqlite.Dialector{DriverName: "sqlite3", Conn: conn}
	}

	return gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
}

func (db *DB) createTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS videos (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		synopsis TEXT NOT NULL,
		director TEXT NOT NULL,
		cast_members TEXT,
		release_year INTEGER NOT NULL,
		genre TEXT NOT NULL,
		running_time INTEGER NOT NULL,
		deleted BOOLEAN NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS video_engagements (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		video_id INTEGER NOT NULL,
		views INTEGER NOT NULL DEFAULT 0,
		impressions INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_video_engagements_video_id ON video_engagements (video_id);
	`

	_, err := db.conn.Exec(query)
	return err
}

// RunMigrations applies pending postgres migrations from fsys. It is a no-op for sqlite.
func (db *DB) RunMigrations(fsys fs.FS, logger log.Logger) error {
	return NewMigrator(db.conn, db.dbType, logger).Run(fsys)
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Conn() *sql.DB {
	return db.conn
}

func (db *DB) GORM() *gorm.DB {
	return db.orm
}

func (db *DB) Type() string {
	return db.dbType
}
