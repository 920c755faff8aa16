package handler

import (
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"simplegest/internal/middleware"
	"simplegest/internal/model"
	"simplegest/internal/session"
	"simplegest/pkg/pagination"

	"github.com/gin-gonic/gin"
)

// NavLink is one entry of the sidebar
type NavLink struct {
	Path      string
	Label     string
	AdminOnly bool
	Active    bool
}

var navigation = []NavLink{
	{Path: "/dashboard", Label: "Dashboard", AdminOnly: true},
	{Path: "/nueva-solicitud", Label: "Nueva solicitud"},
	{Path: "/lista-solicitudes", Label: "Lista de solicitudes"},
	{Path: "/autorizacion", Label: "Autorización", AdminOnly: true},
	{Path: "/registro", Label: "Registro"},
	{Path: "/prestamos", Label: "Préstamos"},
	{Path: "/categorias", Label: "Categorías"},
	{Path: "/usuarios", Label: "Usuarios", AdminOnly: true},
	{Path: "/actividad", Label: "Actividad", AdminOnly: true},
}

var pageTitles = map[string]string{
	"/dashboard":         "Dashboard",
	"/nueva-solicitud":   "Nueva Solicitud",
	"/lista-solicitudes": "Lista de Solicitudes",
	"/autorizacion":      "Autorización",
	"/registro":          "Registro de Artículos",
	"/prestamos":         "Préstamos",
	"/categorias":        "Categorías",
	"/usuarios":          "Usuarios",
	"/actividad":         "Actividad",
}

// Page is what every layout template receives
type Page struct {
	Title   string
	Path    string
	User    *model.SessionUser
	Nav     []NavLink
	Flashes []session.Flash
	Year    int
	Data    any
}

// Pager carries the list state the pagination partial needs
type Pager struct {
	Path       string
	Query      string
	Number     int
	TotalPages int
	TotalItems int
	HasPrev    bool
	HasNext    bool
	Prev       int
	Next       int
	Numbers    []int
}

func newPager[T any](path string, params pagination.Params, p pagination.Page[T]) Pager {
	return Pager{
		Path:       path,
		Query:      params.Query,
		Number:     p.Number,
		TotalPages: p.TotalPages,
		TotalItems: p.TotalItems,
		HasPrev:    p.HasPrev(),
		HasNext:    p.HasNext(),
		Prev:       p.Prev(),
		Next:       p.Next(),
		Numbers:    p.Numbers(),
	}
}

// URL links to page n keeping the search query
func (p Pager) URL(n int) string {
	return p.link(n, url.Values{})
}

// With is the current page URL plus one extra parameter, used by row links
func (p Pager) With(key, value string) string {
	return p.link(p.Number, url.Values{key: {value}})
}

func (p Pager) link(n int, v url.Values) string {
	if p.Query != "" {
		v.Set("q", p.Query)
	}
	if n > 1 {
		v.Set("page", strconv.Itoa(n))
	}
	if len(v) == 0 {
		return p.Path
	}
	return p.Path + "?" + v.Encode()
}

// Here is the current page URL, used as the return target of row actions
func (p Pager) Here() string {
	return p.URL(p.Number)
}

// base holds what every page handler needs from the session
type base struct {
	sessions *session.Manager
	now      func() time.Time
}

func newBase(sessions *session.Manager) base {
	return base{sessions: sessions, now: time.Now}
}

func (b base) page(c *gin.Context, path string, data any) Page {
	p := Page{
		Title:   pageTitles[path],
		Path:    path,
		Flashes: b.sessions.Flashes(c),
		Year:    b.now().Year(),
		Data:    data,
	}
	user, ok := middleware.CurrentUser(c)
	if ok {
		p.User = &user
	}
	for _, link := range navigation {
		if link.AdminOnly && (!ok || !user.IsAdmin()) {
			continue
		}
		link.Active = link.Path == path
		p.Nav = append(p.Nav, link)
	}
	return p
}

func (b base) render(c *gin.Context, name, path string, data any) {
	c.HTML(http.StatusOK, name, b.page(c, path, data))
}

// actor is the username recorded in the activity log
func (b base) actor(c *gin.Context) string {
	if user, ok := middleware.CurrentUser(c); ok {
		return user.Username
	}
	return ""
}

func (b base) success(c *gin.Context, msg string) {
	b.sessions.AddFlash(c, session.FlashSuccess, msg)
}

func (b base) failure(c *gin.Context, msg string) {
	b.sessions.AddFlash(c, session.FlashError, msg)
}

// keep saves the posted form for the next render of screen. Fields in omit, and the
// return path, are not kept.
func (b base) keep(c *gin.Context, screen, id string, omit ...string) {
	if err := c.Request.ParseForm(); err != nil {
		return
	}
	values := make(map[string][]string, len(c.Request.PostForm))
	for field, v := range c.Request.PostForm {
		if field == "volver" || slices.Contains(omit, field) {
			continue
		}
		values[field] = v
	}
	b.sessions.KeepForm(c, screen, session.KeptForm{ID: id, Values: values})
}

// back redirects to the "volver" form field when it is a local path, else to fallback
func (b base) back(c *gin.Context, fallback string) {
	target := c.PostForm("volver")
	if !isLocalPath(target) {
		target = fallback
	}
	c.Redirect(http.StatusSeeOther, target)
}

func isLocalPath(p string) bool {
	if len(p) == 0 || p[0] != '/' || (len(p) > 1 && (p[1] == '/' || p[1] == '\\')) {
		return false
	}
	u, err := url.Parse(p)
	return err == nil && u.Host == "" && u.Scheme == ""
}

// confirmed reports whether a delete form carries the confirmation answer
func confirmed(c *gin.Context) bool {
	return c.PostForm("confirmar") == "si"
}
