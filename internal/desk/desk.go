// Package desk implements the order desk controller: a single event loop
// that owns the session and the draft, reads operator commands and applies
// the results of asynchronous API calls.
package desk

import (
	"bufio"
	"context"
	"io"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/crm-orderdesk/internal/domain/auth"
	"github.com/xenking/crm-orderdesk/internal/domain/catalog"
	"github.com/xenking/crm-orderdesk/internal/domain/contact"
	"github.com/xenking/crm-orderdesk/internal/domain/dashboard"
	"github.com/xenking/crm-orderdesk/internal/domain/draft"
	"github.com/xenking/crm-orderdesk/internal/domain/order"
	"github.com/xenking/crm-orderdesk/internal/session"
	"github.com/xenking/crm-orderdesk/internal/view"
)

// API is the remote system the desk reads from.
type API interface {
	auth.Authenticator
	catalog.Loader
	contact.Lister
	order.Finder
	dashboard.Reader
}

// Submitter places orders built from draft rows.
type Submitter interface {
	Submit(ctx context.Context, contactID int64, rows []draft.Row) (*order.SubmittedOrder, error)
}

// Options configures a Controller.
type Options struct {
	// Token is a pre-issued access token. When set the desk starts signed in.
	Token string
	// LoadTimeout bounds the catalog and contact load of an order session.
	// Zero means no limit.
	LoadTimeout time.Duration
}

// Controller is not safe for concurrent use: Run must be called once.
type Controller struct {
	api       API
	submitter Submitter
	out       io.Writer
	opts      Options
	commands  map[string]command

	state     *session.State
	draft     *draft.Draft
	submitted *order.SubmittedOrder
	notice    string

	results    chan result
	inflight   int
	waiting    bool
	submitting bool
}

// New creates a Controller writing screens to out.
func New(api API, submitter Submitter, out io.Writer, opts Options) *Controller {
	c := &Controller{
		api:       api,
		submitter: submitter,
		out:       out,
		opts:      opts,
		state:     session.New(),
		results:   make(chan result),
	}
	c.commands = c.commandTable()
	if opts.Token != "" {
		c.state.SignIn(auth.Session{Credentials: auth.Credentials{Access: opts.Token}})
	}
	return c
}

// Run processes commands from in until "quit", the end of input or context
// cancellation. At the end of input pending requests are awaited so that
// their results are applied and rendered.
func (c *Controller) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	lg := zctx.From(ctx)

	lines := make(chan string)
	readErr := make(chan error, 1)
	go readLines(ctx, in, lines, readErr)

	if err := c.render(); err != nil {
		return err
	}

	input := (<-chan string)(lines)
	for {
		if input == nil && c.inflight == 0 {
			if err := <-readErr; err != nil {
				return errors.Wrap(err, "read commands")
			}
			return nil
		}

		cmds := input
		if c.waiting {
			if c.inflight == 0 {
				c.waiting = false
			} else {
				cmds = nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-cmds:
			if !ok {
				lg.Debug("Input closed", zap.Int("inflight", c.inflight))
				input = nil
				continue
			}
			c.notice = ""
			if quit := c.dispatch(ctx, line); quit {
				return nil
			}
		case r := <-c.results:
			c.inflight--
			c.apply(ctx, r)
		}

		if err := c.render(); err != nil {
			return err
		}
	}
}

func readLines(ctx context.Context, in io.Reader, out chan<- string, errc chan<- error) {
	defer close(out)
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		select {
		case out <- sc.Text():
		case <-ctx.Done():
			errc <- ctx.Err()
			return
		}
	}
	errc <- sc.Err()
}

func (c *Controller) render() error {
	s := view.Project(view.Input{
		State:     c.state,
		Draft:     c.draft,
		Submitted: c.submitted,
		Notice:    c.notice,
	})
	return view.Render(c.out, s)
}

// expire tears the session down after the server rejected the credential.
// The draft is lost.
func (c *Controller) expire() {
	c.state.Teardown()
	c.draft = nil
	c.submitted = nil
	c.notice = "Session expired, sign in again."
}
