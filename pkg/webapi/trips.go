package webapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"github.com/tripdeck/tripdeck/pkg/redis_client"
	"github.com/tripdeck/tripdeck/pkg/trips"
)

var tripCache *cache.Cache[string]

func setupTripCache() {
	redisStore := redisstore.NewRedis(redis_client.Client, store.WithExpiration(30*time.Second))

	tripCache = cache.New[string](redisStore)
}

func TripsRouter(router fiber.Router) {
	router.Get("/", listRecentTrips)
}

const maxTripListLimit = 50

func listRecentTrips(c *fiber.Ctx) error {
	limit, err := strconv.ParseInt(c.Query("limit", "2"), 10, 64)
	if err != nil || limit < 1 {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Parameter limit should be a positive integer",
		})
	}
	if limit > maxTripListLimit {
		limit = maxTripListLimit
	}

	cacheKey := fmt.Sprintf("webapi/trips/recent/%d", limit)
	if cachedBody, err := tripCache.Get(context.Background(), cacheKey); err == nil {
		c.Set("Content-Type", "application/json")
		return c.SendString(cachedBody)
	}

	tripStore := trips.Store{}
	recentTrips, err := tripStore.Recent(context.Background(), limit)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Could not query trips",
		})
	}

	recentTripsReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic"},
	}, recentTrips)

	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce trips",
		})
	}

	if jsonBytes, err := json.Marshal(recentTripsReduced); err == nil {
		tripCache.Set(context.Background(), cacheKey, string(jsonBytes))
	}

	return c.JSON(recentTripsReduced)
}
