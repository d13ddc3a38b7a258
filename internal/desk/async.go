package desk

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/crm-orderdesk/internal/domain/auth"
	"github.com/xenking/crm-orderdesk/internal/domain/catalog"
	"github.com/xenking/crm-orderdesk/internal/domain/contact"
	"github.com/xenking/crm-orderdesk/internal/domain/dashboard"
	"github.com/xenking/crm-orderdesk/internal/domain/draft"
	"github.com/xenking/crm-orderdesk/internal/domain/order"
	"github.com/xenking/crm-orderdesk/internal/session"
	"github.com/xenking/crm-orderdesk/pkg/httpclient"
)

// result is the completion of an asynchronous call, tagged with the epoch
// it was started under and the access token it was sent with.
type result interface {
	startedAt() session.Epoch
	sentWith() string
	failure() error
}

type tagged struct {
	epoch session.Epoch
	token string
}

func (t tagged) startedAt() session.Epoch { return t.epoch }

func (t tagged) sentWith() string { return t.token }

type loginResult struct {
	tagged
	session *auth.Session
	err     error
}

func (r loginResult) failure() error { return r.err }

type loadResult struct {
	tagged
	catalog  *catalog.Snapshot
	contacts []contact.Contact
	err      error
}

func (r loadResult) failure() error { return r.err }

type submitResult struct {
	tagged
	order *order.SubmittedOrder
	err   error
}

func (r submitResult) failure() error { return r.err }

type statsResult struct {
	tagged
	stats *dashboard.Stats
	err   error
}

func (r statsResult) failure() error { return r.err }

type orderResult struct {
	tagged
	id    int64
	order *order.SubmittedOrder
	err   error
}

func (r orderResult) failure() error { return r.err }

// panicResult replaces the result of a task that panicked.
type panicResult struct {
	tagged
	submit bool
}

func (panicResult) failure() error { return nil }

// spawn runs task on its own goroutine and delivers the result to the loop.
// Tasks must not touch controller state. A panicking task delivers fallback
// instead so the loop never waits for it forever.
func (c *Controller) spawn(ctx context.Context, fallback panicResult, task func(ctx context.Context) result) {
	c.inflight++
	go func() {
		r := result(fallback)
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					zctx.From(ctx).Error("panic recovered",
						zap.Any("panic", rec),
						zap.Stack("stack"),
					)
				}
			}()
			r = task(ctx)
		}()
		select {
		case c.results <- r:
		case <-ctx.Done():
		}
	}()
}

// authorized returns ctx carrying the current access token, and the tag
// for a call started now with it.
func (c *Controller) authorized(ctx context.Context) (context.Context, tagged) {
	token := c.state.Credentials().Access
	return httpclient.WithBearerToken(ctx, token), tagged{epoch: c.state.Epoch(), token: token}
}

func (c *Controller) startLogin(ctx context.Context, username, password string) {
	tag := tagged{epoch: c.state.Epoch()}
	c.spawn(ctx, panicResult{tagged: tag}, func(ctx context.Context) result {
		s, err := c.api.Login(ctx, username, password)
		return loginResult{tagged: tag, session: s, err: err}
	})
}

// startLoad fetches the catalog and the contact list concurrently.
func (c *Controller) startLoad(ctx context.Context) {
	ctx, tag := c.authorized(ctx)
	timeout := c.opts.LoadTimeout
	c.spawn(ctx, panicResult{tagged: tag}, func(ctx context.Context) result {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		r := loadResult{tagged: tag}
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			snap, err := catalog.Load(gctx, c.api)
			if err != nil {
				return errors.Wrap(err, "load catalog")
			}
			r.catalog = snap
			return nil
		})
		g.Go(func() error {
			cs, err := c.api.ListContacts(gctx)
			if err != nil {
				return errors.Wrap(err, "list contacts")
			}
			r.contacts = cs
			return nil
		})
		r.err = g.Wait()
		return r
	})
}

func (c *Controller) startSubmit(ctx context.Context, contactID int64, rows []draft.Row) {
	ctx, tag := c.authorized(ctx)
	c.submitting = true
	c.spawn(ctx, panicResult{tagged: tag, submit: true}, func(ctx context.Context) result {
		o, err := c.submitter.Submit(ctx, contactID, rows)
		return submitResult{tagged: tag, order: o, err: err}
	})
}

func (c *Controller) startStats(ctx context.Context) {
	ctx, tag := c.authorized(ctx)
	c.spawn(ctx, panicResult{tagged: tag}, func(ctx context.Context) result {
		s, err := c.api.Stats(ctx)
		return statsResult{tagged: tag, stats: s, err: err}
	})
}

func (c *Controller) startOrderLookup(ctx context.Context, id int64) {
	ctx, tag := c.authorized(ctx)
	c.spawn(ctx, panicResult{tagged: tag}, func(ctx context.Context) result {
		o, err := c.api.GetOrder(ctx, id)
		return orderResult{tagged: tag, id: id, order: o, err: err}
	})
}

// apply folds a completed call into state. Results from an earlier epoch
// are dropped, except that a rejected credential still tears down the
// session that sent it.
func (c *Controller) apply(ctx context.Context, r result) {
	lg := zctx.From(ctx)
	switch r := r.(type) {
	case submitResult:
		c.submitting = false
	case panicResult:
		if r.submit {
			c.submitting = false
		}
	}
	if errors.Is(r.failure(), auth.ErrSessionExpired) {
		if c.state.Authenticated() && r.sentWith() == c.state.Credentials().Access {
			lg.Info("Session expired", zap.Error(r.failure()))
			c.expire()
		}
		return
	}
	if !c.state.Current(r.startedAt()) {
		lg.Debug("Dropping stale result",
			zap.String("result", fmt.Sprintf("%T", r)),
			zap.Uint64("started_at", uint64(r.startedAt())),
			zap.Uint64("current", uint64(c.state.Epoch())),
		)
		return
	}

	switch r := r.(type) {
	case loginResult:
		c.applyLogin(ctx, r)
	case loadResult:
		c.applyLoad(ctx, r)
	case submitResult:
		c.applySubmit(ctx, r)
	case statsResult:
		c.applyStats(ctx, r)
	case orderResult:
		c.applyOrder(ctx, r)
	case panicResult:
		c.notice = "Internal error, see logs."
	}
}

func (c *Controller) applyLogin(ctx context.Context, r loginResult) {
	if r.err != nil {
		zctx.From(ctx).Warn("Login failed", zap.Error(r.err))
		if errors.Is(r.err, auth.ErrInvalidCredentials) {
			c.notice = "Login failed: invalid username or password."
			return
		}
		c.notice = "Login failed: " + r.err.Error()
		return
	}
	c.state.SignIn(*r.session)
	c.notice = "Signed in as " + r.session.User.Username + "."
}

func (c *Controller) applyLoad(ctx context.Context, r loadResult) {
	if r.err != nil {
		zctx.From(ctx).Warn("Order data load failed", zap.Error(r.err))
		c.notice = "Could not load order data: " + r.err.Error()
		return
	}
	c.state.SetCatalog(r.catalog)
	c.state.SetContacts(r.contacts)
	if c.draft != nil {
		c.draft.SetCatalog(r.catalog)
	}
	c.notice = fmt.Sprintf("Loaded %d products and %d contacts.", r.catalog.Len(), len(r.contacts))
}

func (c *Controller) applySubmit(ctx context.Context, r submitResult) {
	lg := zctx.From(ctx)

	var rejected *order.RejectedError
	switch err := r.err; {
	case err == nil:
		lg.Info("Order submitted",
			zap.Int64("order_id", r.order.ID),
			zap.String("order_no", r.order.OrderNo),
		)
		c.submitted = r.order
		c.draft = nil
		c.state.EndOrder()
		c.notice = "Order submitted."
	case errors.Is(err, order.ErrContactRequired):
		c.notice = "Select a contact before submitting: contact <id>"
	case errors.Is(err, order.ErrNoItems):
		c.notice = "Nothing to submit: no row has both a product and a size."
	case errors.As(err, &rejected):
		lg.Warn("Order rejected", zap.Int("status", rejected.Status), zap.String("message", rejected.Message))
		if rejected.Message != "" {
			c.notice = "Order rejected: " + rejected.Message
		} else {
			c.notice = fmt.Sprintf("Order rejected (status %d).", rejected.Status)
		}
	default:
		lg.Error("Order submission failed", zap.Error(err))
		c.notice = "Submission failed: " + err.Error()
	}
}

func (c *Controller) applyStats(ctx context.Context, r statsResult) {
	switch {
	case r.err == nil:
		c.state.SetStats(r.stats)
		c.notice = "Dashboard updated."
	case errors.Is(r.err, dashboard.ErrForbidden):
		c.notice = "Stats require the admin role."
	default:
		zctx.From(ctx).Warn("Stats load failed", zap.Error(r.err))
		c.notice = "Could not load stats: " + r.err.Error()
	}
}

func (c *Controller) applyOrder(ctx context.Context, r orderResult) {
	switch {
	case r.err == nil:
		c.submitted = r.order
		c.state.ShowOrder()
	case errors.Is(r.err, order.ErrNotFound):
		c.notice = fmt.Sprintf("Order %d not found.", r.id)
	default:
		zctx.From(ctx).Warn("Order lookup failed", zap.Int64("order_id", r.id), zap.Error(r.err))
		c.notice = "Could not load order: " + r.err.Error()
	}
}
