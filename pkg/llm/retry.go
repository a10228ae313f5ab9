package llm

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/samber/lo"

	"github.com/integrail/pets-cli/pkg/log"
)

const defaultRetryCooldown = 50 * time.Millisecond

// withRetries runs action once unless request asks for more attempts.
func withRetries[T any](ctx context.Context, request ChatRequest, action func() (T, error)) (T, error) {
	attempts := lo.If(request.MaxRetries <= 0, 1).Else(request.MaxRetries)
	cooldown := lo.If(request.RetryCooldown == 0, defaultRetryCooldown).Else(request.RetryCooldown)
	attempt := 0
	return backoff.Retry(ctx, func() (T, error) {
		attempt++
		res, err := action()
		if err == nil {
			return res, nil
		}
		if ctx.Err() != nil {
			return res, backoff.Permanent(err)
		}
		if attempt < attempts {
			log.Error(ctx, "chat attempt failed", err, "attempt", attempt, "of", attempts)
		}
		return res, err
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(cooldown)),
		backoff.WithMaxTries(uint(attempts)),
	)
}
