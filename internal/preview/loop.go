package preview

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/livedoc/internal/errors"
	"git.home.luguber.info/inful/livedoc/internal/logfields"
	"git.home.luguber.info/inful/livedoc/internal/retry"
)

// Notifier is told the fingerprint of every newly loaded document.
type Notifier interface {
	Broadcast(fingerprint string)
}

// Follow reloads s on every change reported by changes and notifies n when
// the document was replaced. It returns when ctx is done or changes closes.
// Retryable read failures are retried under policy; anything still failing
// is logged and the previous document keeps being served.
func Follow(ctx context.Context, s *Session, changes <-chan struct{}, n Notifier, policy retry.Policy) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			var changed bool
			err := policy.Do(ctx, errors.IsRetryable, func() error {
				var err error
				changed, err = s.Reload()
				if err != nil && errors.IsRetryable(err) {
					slog.Debug("Reload failed; retrying", logfields.Path(s.Path()), logfields.Error(err))
				}
				return err
			})
			if err != nil {
				slog.Warn("Reload failed; keeping previous document", logfields.Path(s.Path()), logfields.Error(err))
				continue
			}
			if !changed {
				continue
			}
			fp := s.Fingerprint()
			slog.Info("Document reloaded", logfields.Path(s.Path()), logfields.Hash(fp), logfields.Cells(s.Cells()))
			if n != nil {
				n.Broadcast(fp)
			}
		}
	}
}
