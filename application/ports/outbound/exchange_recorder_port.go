package outbound

import (
	"context"

	"github.com/mongonsh/simple-voice-assistant/domain"
)

type ExchangeRecorderPort interface {
	Record(ctx context.Context, exchange domain.Exchange) error
}
