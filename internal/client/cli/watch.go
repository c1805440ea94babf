package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/walletmeta/internal/notify"
)

// subscribe is a seam for tests.
var subscribe = func(url, recipient string, fn func(notify.Event)) (io.Closer, error) {
	return notify.Subscribe(url, recipient, fn)
}

// Watch prints new messages as they arrive until the user presses Enter.
// With a NATS URL configured it wakes on notifications; otherwise it polls
// every OnlineCheckInterval.
//
// When ctx ends first, the goroutine waiting for Enter is left blocked on
// a.reader and will swallow the next input line. runREPL stops on the same
// ctx, so no command line is lost to it.
func (a *App) Watch(ctx context.Context, _ []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	wake := make(chan struct{}, 1)
	var tick <-chan time.Time

	if a.config.NatsURL != "" {
		sub, err := subscribe(a.config.NatsURL, a.self.ID(), func(notify.Event) {
			select {
			case wake <- struct{}{}:
			default:
			}
		})
		if err != nil {
			return err
		}
		defer sub.Close()
		fmt.Fprintln(a.out, "Watching for messages, press Enter to stop")
	} else {
		ticker := time.NewTicker(a.config.OnlineCheckInterval)
		defer ticker.Stop()
		tick = ticker.C
		fmt.Fprintf(a.out, "Polling every %s, press Enter to stop\n", a.config.OnlineCheckInterval)
	}

	stop := make(chan struct{})
	go func() {
		_, _ = a.reader.ReadString('\n')
		close(stop)
	}()

	a.showNew(ctx)
	for {
		select {
		case <-stop:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-wake:
			a.showNew(ctx)
		case <-tick:
			a.showNew(ctx)
		}
	}
}

func (a *App) showNew(ctx context.Context) {
	p, err := a.messenger.Inbox(ctx, true)
	if p.Len() > 0 {
		a.printPartition(p)
	}
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err)
	}
}
