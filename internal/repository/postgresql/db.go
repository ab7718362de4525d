package postgresql

import (
	"database/sql"
	"fmt"
	"time"

	"parking_marketplace/internal/config"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func NewDB(cfg *config.Config) (*sqlx.DB, error) {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSslMode)

	var (
		db  *sql.DB
		err error
	)
	if cfg.EnableTracing {
		db, err = xray.SQLContext("postgres", psqlInfo)
	} else {
		db, err = sql.Open("postgres", psqlInfo)
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return sqlx.NewDb(db, "postgres"), nil
}
