// Package pagination keeps a server driven table, the page URL parameter and
// the page number shown to the user in agreement.
package pagination

import (
	"context"
	"errors"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// ParamPage is the 1-based URL query parameter holding the page number.
const ParamPage = "page"

// Navigation actions accepted by Apply.
const (
	NavFirst = "first"
	NavPrev  = "prev"
	NavNext  = "next"
	NavLast  = "last"
)

// Controller tracks the page requested through the URL, the page shown in the
// input and the page index used for fetching. A fetch is only allowed once all
// three agree, see Ready.
//
// The page count is unknown (zero) until the server reported it. While
// unknown, only the lower bound is enforced.
type Controller struct {
	pageSize  int
	pageCount int

	urlPage   int
	inputPage int
	index     int

	query url.Values
}

// New returns a controller positioned on the first page.
func New(pageSize int) *Controller {
	if pageSize < 1 {
		pageSize = 1
	}
	return &Controller{
		pageSize:  pageSize,
		urlPage:   1,
		inputPage: 1,
		index:     1,
		query:     url.Values{},
	}
}

// SetURL reads the page parameter from a query. Missing or non numeric
// values select the first page. Numbers too large for an int select the last
// page once the page count is known. Any other parameters are preserved by
// Query.
func (c *Controller) SetURL(values url.Values) {
	c.query = url.Values{}
	for k, v := range values {
		c.query[k] = append([]string(nil), v...)
	}
	c.moveTo(parsePage(values.Get(ParamPage)))
}

func parsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	switch {
	case err == nil:
		return page
	case errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(raw, "-"):
		return math.MaxInt
	default:
		return 1
	}
}

// Type records a page number the user is still editing. The controller is
// not Ready until Submit is called.
func (c *Controller) Type(page int) {
	c.inputPage = page
}

// Submit commits the typed page number, clamping it to the valid range.
func (c *Controller) Submit() {
	c.moveTo(c.inputPage)
}

// Input handles a page number typed and submitted by the user.
func (c *Controller) Input(page int) {
	c.Type(page)
	c.Submit()
}

func (c *Controller) First() {
	c.moveTo(1)
}

// Prev is a no-op on the first page.
func (c *Controller) Prev() {
	if c.CanPrev() {
		c.moveTo(c.index - 1)
	}
}

// Next is a no-op on the last page.
func (c *Controller) Next() {
	if c.CanNext() {
		c.moveTo(c.index + 1)
	}
}

// Last is a no-op while the page count is unknown.
func (c *Controller) Last() {
	if c.pageCount > 0 {
		c.moveTo(c.pageCount)
	}
}

// Apply runs a navigation action by name. Unknown names are ignored.
func (c *Controller) Apply(nav string) {
	switch nav {
	case NavFirst:
		c.First()
	case NavPrev:
		c.Prev()
	case NavNext:
		c.Next()
	case NavLast:
		c.Last()
	}
}

// SetPageCount records the number of pages reported by the server. If the
// current page is past the end, the controller snaps to the last page.
func (c *Controller) SetPageCount(n int) {
	if n < 1 {
		n = 1
	}
	c.pageCount = n
	c.moveTo(c.index)
}

// Ready reports whether the URL, the input and the internal index agree on a
// single page. Fetches must not be issued otherwise.
func (c *Controller) Ready() bool {
	return c.urlPage == c.inputPage && c.inputPage == c.index
}

func (c *Controller) Page() int      { return c.index }
func (c *Controller) PageSize() int  { return c.pageSize }
func (c *Controller) PageCount() int { return c.pageCount }
func (c *Controller) InputPage() int { return c.inputPage }
func (c *Controller) URLPage() int   { return c.urlPage }

func (c *Controller) CanPrev() bool {
	return c.index > 1
}

func (c *Controller) CanNext() bool {
	return c.pageCount > 0 && c.index < c.pageCount
}

// Query returns the corrected URL query for the current page.
func (c *Controller) Query() url.Values {
	q := url.Values{}
	for k, v := range c.query {
		q[k] = append([]string(nil), v...)
	}
	q.Del("nav")
	q.Set(ParamPage, strconv.Itoa(c.urlPage))
	return q
}

// Links holds navigation URLs. A link is empty when the corresponding control
// is disabled.
type Links struct {
	First string `json:"first,omitempty"`
	Prev  string `json:"prev,omitempty"`
	Next  string `json:"next,omitempty"`
	Last  string `json:"last,omitempty"`
}

func (c *Controller) Links(path string) Links {
	link := func(page int) string {
		q := c.Query()
		q.Set(ParamPage, strconv.Itoa(page))
		return path + "?" + q.Encode()
	}
	var l Links
	if c.CanPrev() {
		l.First = link(1)
		l.Prev = link(c.index - 1)
	}
	if c.CanNext() {
		l.Next = link(c.index + 1)
		l.Last = link(c.pageCount)
	}
	return l
}

// State is the serialisable view of a controller.
type State struct {
	Page      int    `json:"page"`
	PageSize  int    `json:"page_size"`
	PageCount int    `json:"page_count"`
	Query     string `json:"query"`
	Links     Links  `json:"links"`
}

func (c *Controller) State(path string) State {
	return State{
		Page:      c.index,
		PageSize:  c.pageSize,
		PageCount: c.pageCount,
		Query:     c.Query().Encode(),
		Links:     c.Links(path),
	}
}

func (c *Controller) clamp(page int) int {
	if page < 1 {
		page = 1
	}
	if c.pageCount > 0 && page > c.pageCount {
		page = c.pageCount
	}
	return page
}

// moveTo is the single transition used by every action. It keeps the three
// tracked values equal.
func (c *Controller) moveTo(page int) {
	page = c.clamp(page)
	c.index = page
	c.inputPage = page
	c.urlPage = page
}

// Fetcher loads one page and reports the total number of pages.
type Fetcher func(ctx context.Context, page, pageSize int) (pageCount int, err error)

// Fetch loads the controller's current page. When the reported page count
// forces a clamp, the clamped page is fetched once more. No request is issued
// while the controller is not Ready.
func Fetch(ctx context.Context, c *Controller, fetch Fetcher) error {
	if !c.Ready() {
		return nil
	}
	requested := c.Page()
	count, err := fetch(ctx, requested, c.PageSize())
	if err != nil {
		return err
	}
	c.SetPageCount(count)
	if c.Page() == requested || !c.Ready() {
		return nil
	}
	count, err = fetch(ctx, c.Page(), c.PageSize())
	if err != nil {
		return err
	}
	c.SetPageCount(count)
	return nil
}
