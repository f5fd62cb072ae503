// Package nav is the console's navigation state machine.
//
// The flow is either Unauthenticated (title and login screens) or
// Authenticated (the dashboard and everything below it). Session events
// move it between the two; inside Authenticated, screens form a tree and
// each transition carries a parameter bag of ids:
//
//	flow := nav.New(sess)
//	if err := flow.Navigate(nav.OrderDetail, nav.Params{nav.ParamOrderID: "12"}); err != nil {
//	    // nav.ErrUnauthenticated, nav.ErrMissingParam, nav.ErrUnreachable
//	}
package nav

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/shashiranjanraj/kuman/pkg/event"
	"github.com/shashiranjanraj/kuman/pkg/session"
)

var (
	ErrUnauthenticated = errors.New("nav: login required")
	ErrMissingParam    = errors.New("nav: missing route parameter")
	ErrUnknownScreen   = errors.New("nav: unknown screen")
	ErrUnreachable     = errors.New("nav: screen not reachable from here")
)

type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Screen names a node of the screen tree.
type Screen string

const (
	Title Screen = "title"
	Login Screen = "login"

	Dashboard       Screen = "dashboard"
	Orders          Screen = "orders"
	OrderDetail     Screen = "orders.detail"
	Reports         Screen = "reports"
	ReportDetail    Screen = "reports.detail"
	Support         Screen = "support"
	Chat            Screen = "support.chat"
	Verify          Screen = "verify"
	VerifyDetail    Screen = "verify.detail"
	Walkers         Screen = "walkers"
	Requesters      Screen = "requesters"
	UserDetail      Screen = "users.detail"
	Email           Screen = "email"
	Canteens        Screen = "canteens"
	Shops           Screen = "canteens.shops"
	ShopDetail      Screen = "shops.detail"
	ShopMenu        Screen = "shops.menu"
	ShopOrders      Screen = "shops.orders"
	ShopOrderDetail Screen = "shops.orders.detail"
)

// Parameter keys.
const (
	ParamOrderID   = "orderId"
	ParamReportID  = "reportId"
	ParamWalkerID  = "walkerId"
	ParamUserID    = "userId"
	ParamRole      = "role"
	ParamCanteenID = "canteenId"
	ParamShopID    = "shopId"
)

type node struct {
	parent Screen
	auth   bool
	params []string
}

var tree = map[Screen]node{
	Title: {},
	Login: {parent: Title},

	Dashboard:       {auth: true},
	Orders:          {parent: Dashboard, auth: true},
	OrderDetail:     {parent: Orders, auth: true, params: []string{ParamOrderID}},
	Reports:         {parent: Dashboard, auth: true},
	ReportDetail:    {parent: Reports, auth: true, params: []string{ParamReportID}},
	Support:         {parent: Dashboard, auth: true},
	Chat:            {parent: Support, auth: true, params: []string{ParamOrderID, ParamUserID, ParamRole}},
	Verify:          {parent: Dashboard, auth: true},
	VerifyDetail:    {parent: Verify, auth: true, params: []string{ParamWalkerID}},
	Walkers:         {parent: Dashboard, auth: true},
	Requesters:      {parent: Dashboard, auth: true},
	UserDetail:      {parent: Dashboard, auth: true, params: []string{ParamUserID}},
	Email:           {parent: Dashboard, auth: true},
	Canteens:        {parent: Dashboard, auth: true},
	Shops:           {parent: Canteens, auth: true, params: []string{ParamCanteenID}},
	ShopDetail:      {parent: Canteens, auth: true, params: []string{ParamShopID}},
	ShopMenu:        {parent: ShopDetail, auth: true, params: []string{ParamShopID}},
	ShopOrders:      {parent: ShopDetail, auth: true, params: []string{ParamShopID}},
	ShopOrderDetail: {parent: ShopOrders, auth: true, params: []string{ParamShopID, ParamOrderID}},
}

// Params is the bag carried by a transition.
type Params map[string]string

// Get returns the raw value of key.
func (p Params) Get(key string) (string, error) {
	v, ok := p[key]
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingParam, key)
	}
	return v, nil
}

// Int returns key parsed as an id.
func (p Params) Int(key string) (int64, error) {
	v, err := p.Get(key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("nav: parameter %s=%q is not an id: %w", key, v, err)
	}
	return n, nil
}

// Entry is one screen on the stack.
type Entry struct {
	Screen Screen
	Params Params
}

// Flow is the navigation state. It is safe for concurrent use.
type Flow struct {
	mu        sync.Mutex
	state     State
	stack     []Entry
	observers []func(State, Entry)
}

// New builds a flow that follows sess: it starts Authenticated when sess
// already holds a token and moves on every login and logout event.
func New(sess *session.Manager) *Flow {
	f := &Flow{}
	f.reset(sess.Authenticated())
	f.Follow(sess.Bus())
	return f
}

// NewDetached builds a flow that is driven only through Follow or Enter.
func NewDetached() *Flow {
	f := &Flow{}
	f.reset(false)
	return f
}

// Follow subscribes the flow to session events on bus.
func (f *Flow) Follow(bus *event.Bus) {
	bus.Listen(session.EventLogin, func(interface{}) { f.Enter(Authenticated) })
	bus.Listen(session.EventLogout, func(interface{}) { f.Enter(Unauthenticated) })
}

// Enter switches state and resets the stack to the state's root screen.
func (f *Flow) Enter(s State) {
	f.mu.Lock()
	f.resetLocked(s == Authenticated)
	cur := f.stack[len(f.stack)-1]
	obs := append([]func(State, Entry){}, f.observers...)
	f.mu.Unlock()

	for _, o := range obs {
		o(s, cur)
	}
}

func (f *Flow) reset(auth bool) {
	f.mu.Lock()
	f.resetLocked(auth)
	f.mu.Unlock()
}

func (f *Flow) resetLocked(auth bool) {
	if auth {
		f.state = Authenticated
		f.stack = []Entry{{Screen: Dashboard}}
		return
	}
	f.state = Unauthenticated
	f.stack = []Entry{{Screen: Title}}
}

// OnChange registers fn for every state change and navigation.
func (f *Flow) OnChange(fn func(State, Entry)) {
	f.mu.Lock()
	f.observers = append(f.observers, fn)
	f.mu.Unlock()
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Current returns the screen on top of the stack.
func (f *Flow) Current() Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stack[len(f.stack)-1]
}

// Path returns the screens from the root to the current one.
func (f *Flow) Path() []Screen {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Screen, len(f.stack))
	for i, e := range f.stack {
		out[i] = e.Screen
	}
	return out
}

// Navigate moves to screen. The target's parent must be on the current
// stack; the stack is unwound to it before pushing. Required parameters
// must be present.
func (f *Flow) Navigate(screen Screen, params Params) error {
	n, ok := tree[screen]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownScreen, screen)
	}

	f.mu.Lock()
	if n.auth && f.state != Authenticated {
		f.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnauthenticated, screen)
	}
	if !n.auth && f.state == Authenticated {
		f.mu.Unlock()
		return fmt.Errorf("%w: %s while logged in", ErrUnreachable, screen)
	}
	for _, key := range n.params {
		if _, err := params.Get(key); err != nil {
			f.mu.Unlock()
			return fmt.Errorf("nav: %s: %w", screen, err)
		}
	}

	depth := -1
	for i := len(f.stack) - 1; i >= 0; i-- {
		if f.stack[i].Screen == n.parent {
			depth = i
			break
		}
	}
	if depth < 0 {
		f.mu.Unlock()
		return fmt.Errorf("%w: %s from %s", ErrUnreachable, screen, f.stack[len(f.stack)-1].Screen)
	}

	entry := Entry{Screen: screen, Params: copyParams(params)}
	f.stack = append(f.stack[:depth+1], entry)
	state := f.state
	obs := append([]func(State, Entry){}, f.observers...)
	f.mu.Unlock()

	for _, o := range obs {
		o(state, entry)
	}
	return nil
}

// Go walks from the root to screen through its ancestors, handing each
// the same parameter bag. The CLI uses it to open a screen directly.
func (f *Flow) Go(screen Screen, params Params) error {
	if _, ok := tree[screen]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownScreen, screen)
	}
	var chain []Screen
	for s := screen; s != "" && s != Dashboard && s != Title; s = tree[s].parent {
		chain = append([]Screen{s}, chain...)
	}
	if len(chain) == 0 {
		if tree[screen].auth && f.State() != Authenticated {
			return fmt.Errorf("%w: %s", ErrUnauthenticated, screen)
		}
		return nil
	}
	for _, s := range chain {
		if err := f.Navigate(s, params); err != nil {
			return err
		}
	}
	return nil
}

// Back pops the current screen. It reports false at the root.
func (f *Flow) Back() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.stack) == 1 {
		return false
	}
	f.stack = f.stack[:len(f.stack)-1]
	return true
}

func copyParams(p Params) Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
