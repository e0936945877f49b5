// Package notify delivers post-commit ledger signals over Redis Pub/Sub.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	appledger "github.com/warehousepro/backend/internal/application/ledger"
	"go.uber.org/zap"
)

// publisher is the slice of the Redis client the notifier needs
type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// TransactionCreatedMessage is the payload published when a movement commits
type TransactionCreatedMessage struct {
	TransactionID string `json:"transaction_id"`
	TotalAmount   string `json:"total_amount"`
	Timestamp     int64  `json:"timestamp"`
}

// LowStockMessage is the payload published when a committed movement leaves a
// product under its minimum level
type LowStockMessage struct {
	ProductID     string `json:"product_id"`
	SKU           string `json:"sku"`
	StockQuantity int64  `json:"stock_quantity"`
	MinStockLevel int64  `json:"min_stock_level"`
	Timestamp     int64  `json:"timestamp"`
}

// RedisNotifier publishes ledger signals to Redis Pub/Sub channels. Delivery
// is best-effort: publish failures are logged and never surface to the
// caller, because the unit of work already committed.
type RedisNotifier struct {
	client  publisher
	channel string
	logger  *zap.Logger
}

// NewRedisNotifier creates a notifier over an existing Redis client. The
// caller retains ownership of the client. channel is the prefix shared by
// both signal channels.
func NewRedisNotifier(client *redis.Client, channel string, logger *zap.Logger) *RedisNotifier {
	return newRedisNotifier(client, channel, logger)
}

func newRedisNotifier(client publisher, channel string, logger *zap.Logger) *RedisNotifier {
	if channel == "" {
		channel = "warehousepro"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisNotifier{client: client, channel: channel, logger: logger}
}

// TransactionCreated announces a committed movement
func (n *RedisNotifier) TransactionCreated(ctx context.Context, transactionID uuid.UUID, totalAmount decimal.Decimal) {
	n.publish(ctx, n.channel+".transactions", TransactionCreatedMessage{
		TransactionID: transactionID.String(),
		TotalAmount:   totalAmount.StringFixed(2),
		Timestamp:     time.Now().UnixNano(),
	})
}

// StockBelowMinimum announces a product that dropped under its minimum level
func (n *RedisNotifier) StockBelowMinimum(ctx context.Context, productID uuid.UUID, sku string, quantity, minLevel int64) {
	n.publish(ctx, n.channel+".low_stock", LowStockMessage{
		ProductID:     productID.String(),
		SKU:           sku,
		StockQuantity: quantity,
		MinStockLevel: minLevel,
		Timestamp:     time.Now().UnixNano(),
	})
}

func (n *RedisNotifier) publish(ctx context.Context, channel string, msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		n.logger.Error("Failed to marshal notification",
			zap.String("channel", channel),
			zap.Error(err))
		return
	}
	if err := n.client.Publish(ctx, channel, data).Err(); err != nil {
		n.logger.Warn("Failed to publish notification",
			zap.String("channel", channel),
			zap.Error(err))
	}
}

// NewRedisClient builds a Redis client and verifies the connection
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

var _ appledger.Notifier = (*RedisNotifier)(nil)
