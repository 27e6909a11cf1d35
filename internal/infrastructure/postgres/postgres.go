package postgres

import (
	"fmt"
	"sync"

	"github.com/XSAM/otelsql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"

	"afrilink/internal/config"
)

var lock = &sync.Mutex{}
var db *sqlx.DB

// GetDBInstance opens a traced connection pool once and reuses it afterwards.
func GetDBInstance(conf config.PostgreSQLConfig) (*sqlx.DB, error) {
	lock.Lock()
	defer lock.Unlock()

	if db != nil {
		log.Info().Str("component", "GetDBInstance").Msg("instance is already created")
		return db, nil
	}

	sqlDB, err := otelsql.Open("postgres",
		fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			conf.DBHost, conf.DBPort, conf.DBUsername, conf.DBPassword, conf.DBName, conf.SSLMode),
		otelsql.WithAttributes(
			semconv.DBSystemPostgreSQL,
			semconv.DBNameKey.String(conf.DBName),
		),
		otelsql.WithSpanOptions(otelsql.SpanOptions{
			DisableQuery: true,
		}),
	)
	if err != nil {
		return nil, err
	}

	conn := sqlx.NewDb(sqlDB, "postgres")
	conn.SetMaxOpenConns(conf.MaxOpenConns)
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}
	db = conn

	return db, nil
}
