package audit

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Isolate runs fn as an isolated side effect: every error is logged and
// swallowed, and panics are recovered. Callers wrap audit writes and
// notification dedup checks in it so observability can never fail the
// request it describes. Returns true when fn completed without error.
func Isolate(ctx context.Context, name string, fn func(context.Context) error) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("op", name).Any("panic", r).Msg("isolated side effect panicked")
			ok = false
		}
	}()

	if err := fn(ctx); err != nil {
		log.Warn().Err(err).Str("op", name).Msg("isolated side effect failed")
		return false
	}

	return true
}
