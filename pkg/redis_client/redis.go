package redis_client

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/tripdeck/tripdeck/pkg/util"
)

var Client *redis.Client

const defaultConnectionAddress = "localhost:6379"
const defaultConnectionPassword = ""
const defaultDatabase = 0

func Connect() error {
	address := defaultConnectionAddress
	password := defaultConnectionPassword
	database := defaultDatabase

	env := util.GetEnvironmentVariables()

	if env["TRIPDECK_REDIS_ADDRESS"] != "" {
		address = env["TRIPDECK_REDIS_ADDRESS"]
	}

	if env["TRIPDECK_REDIS_PASSWORD"] != "" {
		password = env["TRIPDECK_REDIS_PASSWORD"]
	}

	if env["TRIPDECK_REDIS_DATABASE"] != "" {
		if n, err := strconv.Atoi(env["TRIPDECK_REDIS_DATABASE"]); err == nil {
			database = n
		} else {
			return err
		}
	}

	Client = redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       database,
	})

	statusCmd := Client.Ping(context.Background())

	return statusCmd.Err()
}
