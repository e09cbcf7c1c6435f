// internal/adapters/redis_adapter/notifier.go
package redis_a

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/voltdepot/stock-be/internal/core/ports"
)

// ChangeChannel is the pub/sub channel change hints fan out on.
const ChangeChannel = "stock:changes"

// Notifier publishes change hints over Redis pub/sub. Delivery is
// best-effort: a publish failure is logged and swallowed so a mutation
// never fails because a subscriber could not be told about it.
type Notifier struct {
	client *redis.Client
	logger *slog.Logger
}

// Statically assert that *Notifier implements the ChangeNotifier interface.
var _ ports.ChangeNotifier = (*Notifier)(nil)

// NewNotifier creates a new pub/sub change notifier
func NewNotifier(client *redis.Client, logger *slog.Logger) *Notifier {
	return &Notifier{
		client: client,
		logger: logger.With(slog.String("component", "notifier")),
	}
}

// Notify publishes a change hint on the change channel.
func (n *Notifier) Notify(ctx context.Context, change ports.Change) {
	payload, err := json.Marshal(change)
	if err != nil {
		n.logger.ErrorContext(ctx, "failed to marshal change", "err", err)
		return
	}

	if err := n.client.Publish(ctx, ChangeChannel, payload).Err(); err != nil {
		n.logger.WarnContext(ctx, "failed to publish change",
			slog.String("entity", change.Entity),
			"err", err)
		return
	}

	n.logger.DebugContext(ctx, "change published",
		slog.String("entity", change.Entity),
		slog.String("store_id", change.StoreID.String()))
}
