// Package page abstracts browser access behind a capability set so the
// extraction pipeline can run against a live Chrome session or an in-memory
// document snapshot.
package page

import (
	"context"
	"errors"
	"time"
)

// ErrScriptUnsupported is returned by Eval on implementations that cannot
// execute JavaScript (the snapshot implementation).
var ErrScriptUnsupported = errors.New("script evaluation not supported")

// Size is an element's rendered dimensions in logical pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Offset is a scroll position.
type Offset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Element is a handle to a live DOM node. Handles are only valid for the
// lifetime of the current document; they must never be persisted or compared
// across navigations. Two handles refer to the same candidate iff SameNode
// reports true.
//
// Accessors swallow driver errors and return zero values: a field that cannot
// be read is indistinguishable from a field that is absent, which is exactly
// how the extraction strategy chains treat it. Click returns an error because
// callers use click failure as a stop signal.
type Element interface {
	// Tag returns the lowercase tag name ("a", "img", "div").
	Tag() string

	// Attr returns an attribute value, or "" when absent.
	Attr(name string) string

	// Text returns the rendered text content.
	Text() string

	// HTML returns the inner markup.
	HTML() string

	// Size returns the rendered dimensions, zero when unknown.
	Size() Size

	// Visible reports whether the element is rendered and displayed.
	Visible() bool

	// Click dispatches a click on the element.
	Click() error

	// QueryAll returns all descendants matching the selector.
	QueryAll(selector string) []Element

	// Query returns the first descendant matching the selector.
	Query(selector string) (Element, bool)

	// Matches reports whether the element itself matches the selector.
	Matches(selector string) bool

	// Closest returns the nearest ancestor (or self) matching the selector.
	Closest(selector string) (Element, bool)

	// Style returns a computed style property value, or "" when unknown.
	Style(prop string) string

	// Horizontal scroll access for carousel containers.
	ScrollLeft() float64
	SetScrollLeft(x float64)
	ScrollWidth() float64
	ClientWidth() float64

	// ScrollIntoView brings the element into the viewport.
	ScrollIntoView()

	// SameNode reports whether both handles refer to the same DOM node.
	SameNode(other Element) bool
}

// Page is the browser control capability set consumed by the pipeline. One
// Page is exclusively owned by one scrape run; all calls are sequential.
type Page interface {
	// Navigate loads the given URL.
	Navigate(ctx context.Context, url string) error

	// WaitReady blocks until the document is interactive or the timeout
	// elapses. A timeout is reported but pages are often usable anyway, so
	// callers may continue.
	WaitReady(ctx context.Context, timeout time.Duration) error

	// QueryAll returns handles for every element matching the selector.
	QueryAll(ctx context.Context, selector string) ([]Element, error)

	// ScrollTo sets the vertical/horizontal scroll position.
	ScrollTo(ctx context.Context, x, y float64) error

	// ScrollToBottom scrolls to the full document height, optionally with
	// smooth behavior (some lazy loaders only fire on smooth scrolling).
	ScrollToBottom(ctx context.Context, smooth bool) error

	// ScrollOffset returns the current scroll position.
	ScrollOffset(ctx context.Context) Offset

	// ScrollHeight returns the total document height.
	ScrollHeight(ctx context.Context) float64

	// CurrentURL returns the document's current location.
	CurrentURL(ctx context.Context) string

	// Title returns the document title.
	Title(ctx context.Context) string

	// HTML returns the full serialized document.
	HTML(ctx context.Context) (string, error)

	// Eval executes JavaScript in the page and unmarshals the result into
	// out. Snapshot pages return ErrScriptUnsupported.
	Eval(ctx context.Context, js string, out any) error

	// Close releases the underlying session. Safe to call more than once.
	Close() error
}
