package testutil

import (
	"fmt"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	postgresUser     = "xp"
	postgresPassword = "secret"
	postgresDB       = "xp_test"
)

// Postgres is a throwaway database container.
type Postgres struct {
	DB       *gorm.DB
	pool     *dockertest.Pool
	resource *dockertest.Resource
}

// StartPostgres runs postgres in docker and waits until it accepts
// connections. It fails fast when no docker daemon is reachable.
func StartPostgres() (*Postgres, error) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, fmt.Errorf("dockertest.NewPool -> %w", err)
	}
	if err = pool.Client.Ping(); err != nil {
		return nil, fmt.Errorf("pool.Client.Ping -> %w", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=" + postgresUser,
			"POSTGRES_PASSWORD=" + postgresPassword,
			"POSTGRES_DB=" + postgresDB,
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return nil, fmt.Errorf("pool.RunWithOptions -> %w", err)
	}
	_ = resource.Expire(180)

	dsn := fmt.Sprintf("host=localhost port=%s user=%s password=%s dbname=%s sslmode=disable",
		resource.GetPort("5432/tcp"), postgresUser, postgresPassword, postgresDB)

	var db *gorm.DB
	pool.MaxWait = time.Minute
	err = pool.Retry(func() error {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Ping()
	})
	if err != nil {
		_ = pool.Purge(resource)
		return nil, fmt.Errorf("pool.Retry -> %w", err)
	}

	return &Postgres{DB: db, pool: pool, resource: resource}, nil
}

func (p *Postgres) Close() error {
	if sqlDB, err := p.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return p.pool.Purge(p.resource)
}
