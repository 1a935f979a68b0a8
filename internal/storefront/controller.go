package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/roach88/storefront/internal/cart"
	"github.com/roach88/storefront/internal/catalog"
	"github.com/roach88/storefront/internal/event"
	"github.com/roach88/storefront/internal/filter"
	"github.com/roach88/storefront/internal/journal"
	"github.com/roach88/storefront/internal/pagination"
	"github.com/roach88/storefront/internal/query"
)

// DefaultFetchTimeout bounds every product query.
const DefaultFetchTimeout = 5 * time.Second

const tracerName = "github.com/roach88/storefront/internal/storefront"

// Fetcher runs product queries. Implemented by backend.Client.
type Fetcher interface {
	FetchProducts(ctx context.Context, rawQuery string) (catalog.ResultPage, error)
}

// Recorder journals a session. Implemented by journal.Store.
type Recorder interface {
	StartSession(ctx context.Context, s journal.Session) error
	RecordEvent(ctx context.Context, ev journal.EventRecord) error
	RecordQuery(ctx context.Context, q journal.QueryRecord) error
	ResolveQuery(ctx context.Context, r journal.Resolution) error
}

// Launcher starts a fetch. The default runs it on a new goroutine.
type Launcher func(fetch func())

// Inline runs fetches synchronously on the loop goroutine. Resolutions are
// still queued, so processing order is deterministic.
func Inline(fetch func()) { fetch() }

func goroutine(fetch func()) { go fetch() }

// request is one issued product query.
type request struct {
	seq          int64
	query        string
	page         int
	reason       string
	refreshPages bool
	cancel       context.CancelFunc
}

// Controller is the query coordinator.
//
// Thread-safety model:
//   - Enqueue, Update, Stop: safe from any goroutine
//   - Run, Drain: exactly one goroutine at a time
//   - Snapshot, Sidebar: only from the loop goroutine or while no loop runs
type Controller struct {
	fetcher  Fetcher
	view     View
	recorder Recorder
	logger   *slog.Logger
	tracer   trace.Tracer
	clock    *Clock
	queue    *eventQueue
	launch   Launcher
	timeout  time.Duration
	session  string
	apiURL   string
	pageSize int

	// Loop-owned state.
	state      query.State
	cart       cart.Cart
	totalCount int
	inflight   *request
	latest     int64
	carryPages bool
	cartErr    error
	lastErr    error
	loopCtx    context.Context

	sidebar    *filter.Sidebar
	search     *filter.SearchBox
	pagination *pagination.Widget
	panel      *cart.Panel
	products   *ProductList

	outstanding atomic.Int64
}

// Option configures a Controller.
type Option func(*Controller)

// WithView sets the renderer. Defaults to a view that draws nothing.
func WithView(v View) Option { return func(c *Controller) { c.view = v } }

// WithRecorder journals the session.
func WithRecorder(r Recorder) Option { return func(c *Controller) { c.recorder = r } }

// WithSidebar uses a bootstrapped sidebar. Defaults to an empty one.
func WithSidebar(s *filter.Sidebar) Option { return func(c *Controller) { c.sidebar = s } }

// WithPageSize sets the constant page size.
func WithPageSize(n int) Option { return func(c *Controller) { c.pageSize = n } }

// WithFetchTimeout bounds each product query.
func WithFetchTimeout(d time.Duration) Option { return func(c *Controller) { c.timeout = d } }

// WithLauncher sets how fetches are started.
func WithLauncher(l Launcher) Option { return func(c *Controller) { c.launch = l } }

// WithSessionGenerator sets the session id source.
func WithSessionGenerator(g SessionGenerator) Option {
	return func(c *Controller) { c.session = g.Generate() }
}

// WithClock uses a pre-positioned clock.
func WithClock(clock *Clock) Option { return func(c *Controller) { c.clock = clock } }

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option { return func(c *Controller) { c.logger = l } }

// WithTracerProvider sets the provider query spans come from.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Controller) { c.tracer = tp.Tracer(tracerName) }
}

// WithAPIURL records the backend base URL in the journal.
func WithAPIURL(u string) Option { return func(c *Controller) { c.apiURL = u } }

// New creates a controller and queues the initial load.
func New(f Fetcher, opts ...Option) *Controller {
	c := &Controller{
		fetcher:    f,
		view:       nopView{},
		logger:     slog.Default(),
		tracer:     otel.Tracer(tracerName),
		clock:      NewClock(),
		queue:      newEventQueue(),
		launch:     goroutine,
		timeout:    DefaultFetchTimeout,
		pageSize:   query.DefaultPageSize,
		search:     filter.NewSearchBox(),
		pagination: pagination.New(),
		panel:      cart.NewPanel(),
		products:   NewProductList(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.session == "" {
		c.session = UUIDv7Generator{}.Generate()
	}
	if c.sidebar == nil {
		c.sidebar = filter.NewSidebar()
	}
	if c.timeout <= 0 {
		c.timeout = DefaultFetchTimeout
	}
	c.state = query.New(c.pageSize)
	c.pageSize = c.state.PageSize
	c.logger = c.logger.With("session", c.session)
	c.sidebar.SetLogger(c.logger)

	c.wire()

	if c.recorder != nil {
		sess := journal.Session{ID: c.session, APIURL: c.apiURL, PageSize: c.pageSize}
		if err := c.recorder.StartSession(context.Background(), sess); err != nil {
			c.logger.Warn("journal unavailable", "error", err)
		}
	}

	c.queue.Enqueue(Load{})
	return c
}

// wire subscribes the controller to every component and attaches the journal
// observer to every emitter.
func (c *Controller) wire() {
	c.search.Changed.Subscribe(c.onSearchChanged)
	c.sidebar.Changed.Subscribe(c.onFiltersChanged)
	c.sidebar.ResetDone.Subscribe(c.onFiltersReset)
	c.pagination.Changed.Subscribe(c.onPageChanged)
	c.products.AddToCart.Subscribe(c.onAddToCart)
	c.panel.Increment.Subscribe(c.onIncrement)
	c.panel.Decrement.Subscribe(c.onDecrement)

	c.search.Changed.Observe(c.observe)
	c.sidebar.Changed.Observe(c.observe)
	c.sidebar.ResetDone.Observe(c.observe)
	c.pagination.Changed.Observe(c.observe)
	c.products.AddToCart.Observe(c.observe)
	c.panel.Increment.Observe(c.observe)
	c.panel.Decrement.Observe(c.observe)
	for _, name := range c.sidebar.Order() {
		if w, ok := c.sidebar.List(name); ok {
			w.Changed.Observe(c.observe)
		}
		if w, ok := c.sidebar.Range(name); ok {
			w.Selected.Observe(c.observe)
		}
	}
}

// Session returns the session id.
func (c *Controller) Session() string { return c.session }

// Sidebar returns the filter sidebar.
func (c *Controller) Sidebar() *filter.Sidebar { return c.sidebar }

// Enqueue submits an event. Safe from any goroutine.
// Returns false once the controller is stopped.
func (c *Controller) Enqueue(ev Event) bool {
	return c.queue.Enqueue(ev)
}

// Update writes value under name in the canonical state and issues one
// product query. Accepted names are "_page" and "q"; "_limit" is constant.
// An empty name only re-issues the current query.
//
// Update waits for the loop to process the write, so Run must be active.
func (c *Controller) Update(ctx context.Context, name string, value any) error {
	done := make(chan error, 1)
	if !c.queue.Enqueue(Set{Name: name, Value: value, done: done}) {
		return ErrStopped
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes events until ctx is cancelled or Stop is called.
// Must be called from exactly one goroutine.
func (c *Controller) Run(ctx context.Context) error {
	c.logger.Info("controller starting")

	for {
		if ev, ok := c.queue.TryDequeue(); ok {
			c.process(ctx, ev)
			continue
		}

		select {
		case <-ctx.Done():
			c.logger.Info("controller stopping: context cancelled")
			c.stop()
			return ctx.Err()
		case <-c.queue.Wait():
			if c.queue.Closed() && c.queue.Len() == 0 {
				c.logger.Info("controller stopping: queue closed")
				c.stop()
				return nil
			}
		}
	}
}

// Drain processes queued events, including the resolutions of every fetch
// they start, and returns once nothing is queued or in flight.
func (c *Controller) Drain(ctx context.Context) error {
	for {
		if ev, ok := c.queue.TryDequeue(); ok {
			c.process(ctx, ev)
			continue
		}
		if c.outstanding.Load() == 0 {
			if c.queue.Len() == 0 {
				return nil
			}
			continue
		}
		if c.queue.Closed() {
			return ErrStopped
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.queue.Wait():
		}
	}
}

// Stop closes the event queue; Run returns once it has drained.
func (c *Controller) Stop() {
	c.queue.Close()
}

func (c *Controller) stop() {
	c.queue.Close()
	if c.inflight != nil {
		c.inflight.cancel()
	}
}

// process applies one event. Errors are logged and processing continues:
// failures degrade to "nothing changed".
func (c *Controller) process(ctx context.Context, ev Event) {
	c.loopCtx = ctx
	err := ev.apply(ctx, c)
	if err == nil {
		return
	}

	switch {
	case IsStaleError(err):
		c.logger.Debug("stale response discarded", "error", err)
		return
	case IsPreconditionError(err):
		c.logger.Error("cart precondition violated", "event", fmt.Sprintf("%T", ev), "error", err)
	default:
		c.logger.Warn("event failed", "event", fmt.Sprintf("%T", ev), "error", err)
	}
	c.lastErr = err
}

func (c *Controller) onSearchChanged(text string) {
	if _, err := c.state.Apply(query.ParamSearch, text); err != nil {
		c.logger.Warn("search rejected", "error", err)
		return
	}
	c.issue(c.loopCtx, string(event.SearchChanged), true)
}

func (c *Controller) onFiltersChanged(fs filter.Fragments) {
	c.state.SetFilters(fs)
	c.issue(c.loopCtx, string(event.FiltersChanged), true)
}

func (c *Controller) onFiltersReset(struct{}) {
	c.search.Reset()
	c.state.Reset()
	c.issue(c.loopCtx, string(event.FiltersReset), true)
}

func (c *Controller) onPageChanged(index int) {
	if _, err := c.state.Apply(query.ParamPage, index+1); err != nil {
		c.logger.Warn("page rejected", "index", index, "error", err)
		return
	}
	c.view.RenderPagination(index, c.pagination.TotalPages())
	c.issue(c.loopCtx, string(event.PageChanged), false)
}

func (c *Controller) onAddToCart(p catalog.Product) {
	c.cart.Add(p)
	c.renderCart()
}

func (c *Controller) onIncrement(id string) {
	if err := c.cart.Increment(id); err != nil {
		c.cartErr = &Error{Code: ErrCodePrecondition, Message: "increment", Err: err}
		return
	}
	c.renderCart()
}

func (c *Controller) onDecrement(id string) {
	if err := c.cart.Decrement(id); err != nil {
		c.cartErr = &Error{Code: ErrCodePrecondition, Message: "decrement", Err: err}
		return
	}
	c.renderCart()
}

func (c *Controller) takeCartErr() error {
	err := c.cartErr
	c.cartErr = nil
	return err
}

func (c *Controller) renderCart() {
	c.view.RenderCart(c.cart.Lines(), c.cart.Total())
	c.view.RenderBadge(c.cart.TotalQuantity())
}

// update is the loop side of Update.
func (c *Controller) update(ctx context.Context, name string, value any) error {
	if name == "" {
		c.issue(ctx, "update", false)
		return nil
	}
	var err error
	if query.IsValue(value) {
		_, err = c.state.Apply(name, value)
	} else {
		err = c.state.Touch(name)
	}
	if err != nil {
		return &Error{Code: ErrCodeInvalidUpdate, Message: "update " + name, Err: err}
	}

	refreshPages := false
	switch name {
	case query.ParamSearch:
		c.search.Sync(c.state.Search)
		refreshPages = true
	case query.ParamPage:
		c.pagination.SetActive(c.state.Page - 1)
		c.view.RenderPagination(c.pagination.ActivePageIndex(), c.pagination.TotalPages())
	}
	c.issue(ctx, "update:"+name, refreshPages)
	return nil
}

// issue starts the product query for the current state. The previous
// in-flight query is cancelled and its pagination refresh carries over.
func (c *Controller) issue(ctx context.Context, reason string, refreshPages bool) {
	if ctx == nil {
		ctx = context.Background()
	}
	if prev := c.inflight; prev != nil {
		prev.cancel()
		refreshPages = refreshPages || prev.refreshPages
		c.logger.Debug("query superseded", "seq", prev.seq, "query", prev.query)
	}
	refreshPages = refreshPages || c.carryPages
	c.carryPages = false

	req := &request{
		seq:          c.clock.Next(),
		query:        c.state.Encode(),
		page:         c.state.Page,
		reason:       reason,
		refreshPages: refreshPages,
	}
	c.inflight = req
	c.latest = req.seq

	fctx, cancel := context.WithTimeout(ctx, c.timeout)
	req.cancel = cancel
	fctx, span := c.tracer.Start(fctx, "storefront.Query", trace.WithAttributes(
		attribute.Int64("storefront.seq", req.seq),
		attribute.String("storefront.reason", reason),
		attribute.String("storefront.query", req.query),
	))

	c.logger.Debug("issuing query", "seq", req.seq, "reason", reason, "query", req.query, "refresh_pages", refreshPages)
	if c.recorder != nil {
		rec := journal.QueryRecord{
			Session:      c.session,
			Seq:          req.seq,
			Query:        req.query,
			Reason:       reason,
			RefreshPages: refreshPages,
		}
		if sc := span.SpanContext(); sc.IsValid() {
			rec.TraceID = sc.TraceID().String()
		}
		if err := c.recorder.RecordQuery(ctx, rec); err != nil {
			c.logger.Warn("journal query failed", "seq", req.seq, "error", err)
		}
	}

	c.outstanding.Add(1)
	c.launch(func() {
		defer cancel()
		page, err := c.fetcher.FetchProducts(fctx, req.query)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "query failed")
		}
		span.End()

		c.queue.Enqueue(fetchResult{req: req, page: page, err: err})
		c.outstanding.Add(-1)
		c.queue.Notify()
	})
}

// resolve applies a fetch result if it belongs to the latest issued query.
func (c *Controller) resolve(ctx context.Context, r fetchResult) error {
	req := r.req
	req.cancel()

	if req.seq != c.latest {
		c.journalResolution(ctx, req, journal.StatusStale, catalog.ResultPage{}, r.err)
		return newStaleError(req.seq, c.latest)
	}
	c.inflight = nil

	if r.err != nil {
		c.carryPages = c.carryPages || req.refreshPages
		c.journalResolution(ctx, req, journal.StatusFailed, catalog.ResultPage{}, r.err)
		return newNetworkError(req.seq, req.query, r.err)
	}

	if req.refreshPages {
		c.totalCount = r.page.TotalCount
		total := c.state.TotalPages(r.page.TotalCount)
		if c.pagination.Update(total) {
			c.logger.Debug("pagination clamped", "total", total, "active", c.pagination.ActivePageIndex())
		}
		if total > 0 && c.state.Page > total {
			// The page left the result set: settle on the last valid page
			// and fetch it instead of showing an empty one.
			c.state.SetPage(total)
			c.pagination.SetActive(total - 1)
			c.view.RenderPagination(c.pagination.ActivePageIndex(), total)
			c.journalResolution(ctx, req, journal.StatusApplied, r.page, nil)
			c.issue(ctx, "page-clamped", false)
			return nil
		}
	}

	c.products.Set(r.page.Items)
	c.view.RenderProducts(c.products.Items())

	if req.refreshPages {
		c.pagination.SetActive(c.state.Page - 1)
		c.view.RenderPagination(c.pagination.ActivePageIndex(), c.pagination.TotalPages())
	}

	c.lastErr = nil
	c.journalResolution(ctx, req, journal.StatusApplied, r.page, nil)
	return nil
}

func (c *Controller) journalResolution(ctx context.Context, req *request, status string, page catalog.ResultPage, err error) {
	c.logger.Debug("query resolved", "seq", req.seq, "status", status, "total", page.TotalCount)
	if c.recorder == nil {
		return
	}
	res := journal.Resolution{
		Session:    c.session,
		Seq:        req.seq,
		Status:     status,
		TotalCount: page.TotalCount,
		Items:      len(page.Items),
	}
	if err != nil {
		res.Error = err.Error()
	}
	if jerr := c.recorder.ResolveQuery(ctx, res); jerr != nil {
		c.logger.Warn("journal resolution failed", "seq", req.seq, "error", jerr)
	}
}

// observe journals every emitted wire event.
func (c *Controller) observe(name event.Name, payload any) {
	c.logger.Debug("event emitted", "event", string(name))
	if c.recorder == nil {
		return
	}

	var data []byte
	if name != event.FiltersReset {
		var err error
		if data, err = json.Marshal(payload); err != nil {
			c.logger.Warn("journal payload", "event", string(name), "error", err)
			data = nil
		}
	}

	ctx := c.loopCtx
	if ctx == nil {
		ctx = context.Background()
	}
	rec := journal.EventRecord{Session: c.session, Seq: c.clock.Next(), Name: string(name), Payload: data}
	if err := c.recorder.RecordEvent(ctx, rec); err != nil {
		c.logger.Warn("journal event failed", "event", string(name), "error", err)
	}
}

// Snapshot is a read-only view of controller state.
type Snapshot struct {
	Session    string      `json:"session"`
	Seq        int64       `json:"seq"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	Search     string      `json:"search"`
	Filters    []string    `json:"filters"`
	Query      string      `json:"query"`
	Products   []string    `json:"products"`
	TotalCount int         `json:"total_count"`
	TotalPages int         `json:"total_pages"`
	ActivePage int         `json:"active_page"`
	Cart       []cart.Line `json:"cart"`
	CartTotal  int64       `json:"cart_total"`
	// CartQuantity is nil when the cart is empty.
	CartQuantity *int   `json:"cart_quantity"`
	CartOpen     bool   `json:"cart_open"`
	Pending      bool   `json:"pending"`
	LastError    string `json:"last_error,omitempty"`
}

// Snapshot captures the current state. Call it from the loop goroutine or
// while no loop is running (e.g. after Drain).
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		Session:    c.session,
		Seq:        c.clock.Current(),
		Page:       c.state.Page,
		PageSize:   c.state.PageSize,
		Search:     c.state.Search,
		Filters:    c.state.Filters.Tokens(),
		Query:      c.state.Encode(),
		Products:   []string{},
		TotalCount: c.totalCount,
		TotalPages: c.pagination.TotalPages(),
		ActivePage: c.pagination.ActivePageIndex(),
		Cart:       c.cart.Lines(),
		CartTotal:  c.cart.Total(),
		CartOpen:   c.panel.IsOpen(),
		Pending:    c.inflight != nil,
	}
	for _, p := range c.products.Items() {
		s.Products = append(s.Products, p.ID)
	}
	if n, ok := c.cart.TotalQuantity(); ok {
		s.CartQuantity = &n
	}
	if c.lastErr != nil {
		s.LastError = c.lastErr.Error()
	}
	return s
}

// LastError returns the most recent non-stale event error, cleared by the
// next applied query.
func (c *Controller) LastError() error { return c.lastErr }
