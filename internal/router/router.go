// Package router holds the static navigation tree: three public pages and two guarded
// sections. Every navigation resolves through Resolve, which runs the section's guard before
// matching the sub-path.
package router

import (
	"path"
	"strings"

	"github.com/shiplabel-dev/shiplabel/internal/guard"
	"github.com/shiplabel-dev/shiplabel/internal/models"
	"github.com/shiplabel-dev/shiplabel/internal/session"
)

const (
	PathHome     = "/"
	PathLogin    = guard.LoginPath
	PathRegister = "/register"

	PrefixMain  = "/main"
	PrefixAdmin = "/admin"
)

// Page names
const (
	PageHome     = "home"
	PageLogin    = "login"
	PageRegister = "register"

	PageDashboard   = "dashboard"
	PageOrderLabel  = "order-label"
	PageBulkOrder   = "bulk-order"
	PageOrders      = "orders"
	PageBatchOrders = "batch-orders"
	PageDeposit     = "deposit"
	PageAddress     = "address"
	PageAdminPanel  = "admin"
	PageAccount     = "account"
	PageUsers       = "users"
)

// Route maps a path to a page. Section routes hold a path relative to the section prefix.
type Route struct {
	Path string
	Page string
}

// Section is a guarded subtree
type Section struct {
	Prefix string
	Guard  guard.Guard
	// Index is the page shown for the bare prefix
	Index  string
	Routes []Route
}

// Path returns the absolute path of a page in the section
func (s Section) Path(page string) string {
	return s.Prefix + "/" + page
}

func (s Section) lookup(sub string) (string, bool) {
	if sub == "" {
		return s.Index, true
	}
	for _, r := range s.Routes {
		if r.Path == sub {
			return r.Page, true
		}
	}
	return "", false
}

// Resolution is the outcome of a navigation
type Resolution struct {
	// Path is the cleaned requested path
	Path string
	// Section is the guarded prefix the path falls under, empty for public pages
	Section  string
	Page     string
	Redirect string
	NotFound bool
}

// Allowed reports whether the requested page may be shown
func (r Resolution) Allowed() bool {
	return r.Redirect == "" && !r.NotFound
}

// Router resolves paths against the navigation tree
type Router struct {
	public   []Route
	sections []Section
}

// New returns the application's navigation tree
func New() *Router {
	return &Router{
		public: []Route{
			{Path: PathHome, Page: PageHome},
			{Path: PathLogin, Page: PageLogin},
			{Path: PathRegister, Page: PageRegister},
		},
		sections: []Section{
			{
				Prefix: PrefixMain,
				Guard:  guard.User,
				Index:  PageDashboard,
				Routes: pages(
					PageDashboard, PageOrderLabel, PageBulkOrder, PageOrders, PageBatchOrders,
					PageDeposit, PageAddress, PageAdminPanel, PageAccount,
				),
			},
			{
				Prefix: PrefixAdmin,
				Guard:  guard.Admin,
				Index:  PageDashboard,
				Routes: pages(PageDashboard, PageUsers),
			},
		},
	}
}

func pages(names ...string) []Route {
	routes := make([]Route, len(names))
	for i, n := range names {
		routes[i] = Route{Path: n, Page: n}
	}
	return routes
}

// Public returns the unguarded routes
func (r *Router) Public() []Route {
	return append([]Route(nil), r.public...)
}

// Sections returns the guarded subtrees
func (r *Router) Sections() []Section {
	return append([]Section(nil), r.sections...)
}

// Section returns the section rooted at prefix
func (r *Router) Section(prefix string) (Section, bool) {
	for _, s := range r.sections {
		if s.Prefix == prefix {
			return s, true
		}
	}
	return Section{}, false
}

// Clean normalizes a requested path: leading slash, no trailing slash, no dot segments
func Clean(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

// Resolve decides what a navigation to p shows given the session s
func (r *Router) Resolve(p string, s session.State) Resolution {
	p = Clean(p)
	res := Resolution{Path: p}

	for _, route := range r.public {
		if route.Path == p {
			res.Page = route.Page
			return res
		}
	}

	for _, sec := range r.sections {
		if p != sec.Prefix && !strings.HasPrefix(p, sec.Prefix+"/") {
			continue
		}
		res.Section = sec.Prefix

		// The guard runs before the sub-path is looked at, so a denied navigation never
		// reveals which pages exist.
		if d := sec.Guard(s); !d.Allowed {
			res.Redirect = d.Redirect
			return res
		}

		page, ok := sec.lookup(strings.TrimPrefix(strings.TrimPrefix(p, sec.Prefix), "/"))
		if !ok {
			res.NotFound = true
			return res
		}
		res.Page = page
		return res
	}

	res.NotFound = true
	return res
}

// Landing is where a user goes after logging in
func Landing(u *models.User) string {
	if u != nil && u.Role == models.RoleAdmin {
		return PrefixAdmin + "/" + PageDashboard
	}
	return PrefixMain + "/" + PageDashboard
}

// AfterRegister is where a user goes after registering
const AfterRegister = PathLogin
