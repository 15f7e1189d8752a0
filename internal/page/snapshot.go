package page

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ErrNoDocument is returned when a Snapshot is used before a document has
// been loaded.
var ErrNoDocument = errors.New("snapshot has no document")

// ElementMetrics carries the layout values a parsed document cannot compute.
// Static pages rarely need them; tests register them to model rendered
// geometry.
type ElementMetrics struct {
	Size        Size
	ScrollWidth float64
	ClientWidth float64
}

// Snapshot is an in-memory Page over a parsed HTML document. It backs the
// static fetch mode, where the markup comes from a plain HTTP fetch, and
// doubles as the pipeline's test double. Scripts cannot run, so Eval always
// fails and layout comes from registered metrics or width/height attributes.
type Snapshot struct {
	doc    *goquery.Document
	url    string
	offset Offset
	height float64

	metrics    map[*html.Node]ElementMetrics
	scrollLeft map[*html.Node]float64

	// Loader fetches markup for Navigate. When nil, Navigate requires a
	// document supplied up front via NewSnapshot.
	Loader func(ctx context.Context, url string) (string, error)

	// OnScroll is invoked after every window scroll. Tests use it to grow
	// the document the way a lazy loader would.
	OnScroll func(s *Snapshot, off Offset)

	// OnElementScroll is invoked after an element's scrollLeft changes.
	OnElementScroll func(el Element, left float64)

	// OnClick is invoked for element clicks.
	OnClick func(el Element)
}

// NewSnapshot parses markup into a ready-to-query Snapshot.
func NewSnapshot(markup, url string) (*Snapshot, error) {
	s := &Snapshot{
		url:        url,
		metrics:    make(map[*html.Node]ElementMetrics),
		scrollLeft: make(map[*html.Node]float64),
	}
	if err := s.SetHTML(markup); err != nil {
		return nil, err
	}
	return s, nil
}

// SetHTML replaces the document. All previously issued handles are invalid.
func (s *Snapshot) SetHTML(markup string) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return err
	}
	s.doc = doc
	return nil
}

// AppendBodyHTML appends a markup fragment to the document body. Used to
// model content arriving after a scroll.
func (s *Snapshot) AppendBodyHTML(frag string) {
	if s.doc == nil {
		return
	}
	s.doc.Find("body").AppendHtml(frag)
}

// SetScrollHeight sets the reported document height.
func (s *Snapshot) SetScrollHeight(h float64) { s.height = h }

// SetMetrics registers layout values for an element handle.
func (s *Snapshot) SetMetrics(el Element, m ElementMetrics) {
	if se, ok := el.(*snapshotElement); ok {
		if s.metrics == nil {
			s.metrics = make(map[*html.Node]ElementMetrics)
		}
		s.metrics[se.n] = m
	}
}

func (s *Snapshot) Navigate(ctx context.Context, url string) error {
	if s.Loader != nil {
		markup, err := s.Loader(ctx, url)
		if err != nil {
			return err
		}
		if err := s.SetHTML(markup); err != nil {
			return err
		}
	} else if s.doc == nil {
		return ErrNoDocument
	}
	s.url = url
	return nil
}

func (s *Snapshot) WaitReady(ctx context.Context, timeout time.Duration) error {
	if s.doc == nil {
		return ErrNoDocument
	}
	return nil
}

func (s *Snapshot) QueryAll(ctx context.Context, selector string) ([]Element, error) {
	if s.doc == nil {
		return nil, ErrNoDocument
	}
	return s.wrap(s.doc.Find(selector)), nil
}

func (s *Snapshot) ScrollTo(ctx context.Context, x, y float64) error {
	s.offset = Offset{X: x, Y: y}
	if s.OnScroll != nil {
		s.OnScroll(s, s.offset)
	}
	return nil
}

func (s *Snapshot) ScrollToBottom(ctx context.Context, smooth bool) error {
	return s.ScrollTo(ctx, 0, s.height)
}

func (s *Snapshot) ScrollOffset(ctx context.Context) Offset  { return s.offset }
func (s *Snapshot) ScrollHeight(ctx context.Context) float64 { return s.height }
func (s *Snapshot) CurrentURL(ctx context.Context) string    { return s.url }

func (s *Snapshot) Title(ctx context.Context) string {
	if s.doc == nil {
		return ""
	}
	return strings.TrimSpace(s.doc.Find("title").First().Text())
}

func (s *Snapshot) HTML(ctx context.Context) (string, error) {
	if s.doc == nil {
		return "", ErrNoDocument
	}
	return s.doc.Html()
}

func (s *Snapshot) Eval(ctx context.Context, js string, out any) error {
	return ErrScriptUnsupported
}

func (s *Snapshot) Close() error { return nil }

func (s *Snapshot) wrap(sel *goquery.Selection) []Element {
	els := make([]Element, 0, sel.Length())
	for _, n := range sel.Nodes {
		els = append(els, &snapshotElement{s: s, n: n})
	}
	return els
}

type snapshotElement struct {
	s *Snapshot
	n *html.Node
}

func (e *snapshotElement) sel() *goquery.Selection {
	return e.s.doc.FindNodes(e.n)
}

func (e *snapshotElement) Tag() string {
	if e.n.Type != html.ElementNode {
		return ""
	}
	return strings.ToLower(e.n.Data)
}

func (e *snapshotElement) Attr(name string) string {
	for _, a := range e.n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func (e *snapshotElement) Text() string {
	return e.sel().Text()
}

func (e *snapshotElement) HTML() string {
	markup, err := e.sel().Html()
	if err != nil {
		return ""
	}
	return markup
}

// Size comes from registered metrics, falling back to width/height
// attributes the way browsers size images before layout.
func (e *snapshotElement) Size() Size {
	if m, ok := e.s.metrics[e.n]; ok && (m.Size.Width != 0 || m.Size.Height != 0) {
		return m.Size
	}
	w, _ := strconv.ParseFloat(e.Attr("width"), 64)
	h, _ := strconv.ParseFloat(e.Attr("height"), 64)
	return Size{Width: w, Height: h}
}

func (e *snapshotElement) Visible() bool {
	style := e.Attr("style")
	return !strings.Contains(style, "display:none") && !strings.Contains(style, "display: none")
}

func (e *snapshotElement) Click() error {
	if e.s.OnClick != nil {
		e.s.OnClick(e)
	}
	return nil
}

func (e *snapshotElement) QueryAll(selector string) []Element {
	return e.s.wrap(e.sel().Find(selector))
}

func (e *snapshotElement) Query(selector string) (Element, bool) {
	els := e.QueryAll(selector)
	if len(els) == 0 {
		return nil, false
	}
	return els[0], true
}

func (e *snapshotElement) Matches(selector string) bool {
	return e.sel().Is(selector)
}

func (e *snapshotElement) Closest(selector string) (Element, bool) {
	closest := e.sel().Closest(selector)
	if closest.Length() == 0 {
		return nil, false
	}
	return &snapshotElement{s: e.s, n: closest.Nodes[0]}, true
}

// Style reads inline styles only; a parsed document has no computed styles.
func (e *snapshotElement) Style(prop string) string {
	for _, decl := range strings.Split(e.Attr("style"), ";") {
		name, value, found := strings.Cut(decl, ":")
		if !found {
			continue
		}
		if strings.TrimSpace(name) == prop {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func (e *snapshotElement) ScrollLeft() float64 {
	return e.s.scrollLeft[e.n]
}

func (e *snapshotElement) SetScrollLeft(x float64) {
	max := e.ScrollWidth() - e.ClientWidth()
	if max < 0 {
		max = 0
	}
	if x > max {
		x = max
	}
	if x < 0 {
		x = 0
	}
	if e.s.scrollLeft == nil {
		e.s.scrollLeft = make(map[*html.Node]float64)
	}
	e.s.scrollLeft[e.n] = x
	if e.s.OnElementScroll != nil {
		e.s.OnElementScroll(e, x)
	}
}

func (e *snapshotElement) ScrollWidth() float64 {
	return e.s.metrics[e.n].ScrollWidth
}

func (e *snapshotElement) ClientWidth() float64 {
	return e.s.metrics[e.n].ClientWidth
}

func (e *snapshotElement) ScrollIntoView() {}

func (e *snapshotElement) SameNode(other Element) bool {
	o, ok := other.(*snapshotElement)
	if !ok {
		return false
	}
	return e.n == o.n
}
