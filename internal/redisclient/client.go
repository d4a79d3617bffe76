// Package redisclient maintains a read-side mirror of offer stock
// levels. The mirror serves presentation reads only; the inventory
// ledger itself always goes through Postgres.
package redisclient

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func stockKey(offerID int64) string {
	return fmt.Sprintf("offer_stock:%d", offerID)
}

// SetOfferStock writes an offer's current stock level to the mirror
func (c *Client) SetOfferStock(ctx context.Context, offerID int64, numInStock int) error {
	return c.rdb.Set(ctx, stockKey(offerID), numInStock, 0).Err()
}

// GetOfferStock reads an offer's mirrored stock level. The second
// return value is false when the offer is not mirrored.
func (c *Client) GetOfferStock(ctx context.Context, offerID int64) (int, bool, error) {
	val, err := c.rdb.Get(ctx, stockKey(offerID)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	stock, err := strconv.Atoi(val)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt stock mirror value for offer %d: %w", offerID, err)
	}
	return stock, true, nil
}

// SetOfferStocks writes many stock levels in one pipeline, used by the
// full sync at startup
func (c *Client) SetOfferStocks(ctx context.Context, stocks map[int64]int) error {
	pipe := c.rdb.Pipeline()
	for offerID, numInStock := range stocks {
		pipe.Set(ctx, stockKey(offerID), numInStock, 0)
	}
	_, err := pipe.Exec(ctx)
	return err
}
