package page

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/Dark-Gladiator/HEB-Scrapping/internal/logger"
)

// closestSeq disambiguates the marker attributes used for ancestor lookup.
var closestSeq atomic.Int64

func (b *Browser) nodes(ctx context.Context, selector string) ([]*cdp.Node, error) {
	var nodes []*cdp.Node
	err := b.run(ctx, b.cfg.OpTimeout,
		chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)))
	return nodes, err
}

// browserElement is a handle to a DOM node in a live tab. The node is only
// valid for the current document; a navigation invalidates all handles.
type browserElement struct {
	b    *Browser
	node *cdp.Node
}

// eval runs fn as a method of the element (this == the DOM node) and
// unmarshals the by-value result into out.
func (e *browserElement) eval(fn string, out any) error {
	runCtx, cancel := context.WithTimeout(e.b.tabCtx, e.b.cfg.OpTimeout)
	defer cancel()
	return chromedp.Run(runCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithBackendNodeID(e.node.BackendNodeID).Do(ctx)
		if err != nil {
			return err
		}
		res, exc, err := runtime.CallFunctionOn(fn).
			WithObjectID(obj.ObjectID).
			WithReturnByValue(true).
			Do(ctx)
		if err != nil {
			return err
		}
		if exc != nil {
			return exc
		}
		if out == nil || res == nil || len(res.Value) == 0 {
			return nil
		}
		return json.Unmarshal(res.Value, out)
	}))
}

func (e *browserElement) Tag() string {
	return strings.ToLower(e.node.NodeName)
}

// Attr reads the attribute live so values swapped in by lazy loaders after
// the initial query are visible. Falls back to the snapshot taken at query
// time if the node can no longer be resolved.
func (e *browserElement) Attr(name string) string {
	var v string
	fn := fmt.Sprintf(`function() { return this.getAttribute(%q) || ""; }`, name)
	if err := e.eval(fn, &v); err != nil {
		return e.node.AttributeValue(name)
	}
	return v
}

func (e *browserElement) Text() string {
	var v string
	fn := `function() { return this.innerText !== undefined ? this.innerText : (this.textContent || ""); }`
	if err := e.eval(fn, &v); err != nil {
		logger.Debug("text read failed", "error", err)
		return ""
	}
	return v
}

func (e *browserElement) HTML() string {
	var v string
	if err := e.eval(`function() { return this.innerHTML || ""; }`, &v); err != nil {
		return ""
	}
	return v
}

func (e *browserElement) Size() Size {
	var s Size
	fn := `function() { const r = this.getBoundingClientRect(); return {width: r.width, height: r.height}; }`
	if err := e.eval(fn, &s); err != nil {
		return Size{}
	}
	return s
}

func (e *browserElement) Visible() bool {
	var v bool
	fn := `function() {
		const r = this.getBoundingClientRect();
		const s = window.getComputedStyle(this);
		return r.width > 0 && r.height > 0 && s.display !== "none" && s.visibility !== "hidden";
	}`
	if err := e.eval(fn, &v); err != nil {
		return false
	}
	return v
}

// Click dispatches a synthetic click. JavaScript clicks work on elements that
// are covered or outside the viewport, which real mouse events do not.
func (e *browserElement) Click() error {
	if err := e.eval(`function() { this.click(); }`, nil); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

func (e *browserElement) QueryAll(selector string) []Element {
	var nodes []*cdp.Node
	err := e.b.run(context.Background(), e.b.cfg.OpTimeout,
		chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.FromNode(e.node), chromedp.AtLeast(0)))
	if err != nil {
		logger.Debug("descendant query failed", "selector", selector, "error", err)
		return nil
	}
	els := make([]Element, 0, len(nodes))
	for _, n := range nodes {
		els = append(els, &browserElement{b: e.b, node: n})
	}
	return els
}

func (e *browserElement) Query(selector string) (Element, bool) {
	els := e.QueryAll(selector)
	if len(els) == 0 {
		return nil, false
	}
	return els[0], true
}

func (e *browserElement) Matches(selector string) bool {
	var v bool
	fn := fmt.Sprintf(`function() { try { return this.matches(%q); } catch (err) { return false; } }`, selector)
	if err := e.eval(fn, &v); err != nil {
		return false
	}
	return v
}

// Closest finds the nearest matching ancestor. The DevTools protocol cannot
// hand back an arbitrary node from a script result, so the ancestor is tagged
// with a one-shot marker attribute, re-queried, and untagged.
func (e *browserElement) Closest(selector string) (Element, bool) {
	marker := fmt.Sprintf("data-scrape-closest-%d", closestSeq.Add(1))
	fn := fmt.Sprintf(`function() {
		let a;
		try { a = this.closest(%q); } catch (err) { return false; }
		if (!a) return false;
		a.setAttribute(%q, "1");
		return true;
	}`, selector, marker)

	var found bool
	if err := e.eval(fn, &found); err != nil || !found {
		return nil, false
	}

	nodes, err := e.b.nodes(context.Background(), "["+marker+"]")
	if err != nil || len(nodes) == 0 {
		return nil, false
	}
	ancestor := &browserElement{b: e.b, node: nodes[0]}
	_ = ancestor.eval(fmt.Sprintf(`function() { this.removeAttribute(%q); }`, marker), nil)
	return ancestor, true
}

func (e *browserElement) Style(prop string) string {
	var v string
	fn := fmt.Sprintf(`function() { return window.getComputedStyle(this)[%q] || ""; }`, prop)
	if err := e.eval(fn, &v); err != nil {
		return ""
	}
	return v
}

func (e *browserElement) ScrollLeft() float64 {
	var v float64
	if err := e.eval(`function() { return this.scrollLeft; }`, &v); err != nil {
		return 0
	}
	return v
}

func (e *browserElement) SetScrollLeft(x float64) {
	fn := fmt.Sprintf(`function() { this.scrollLeft = %g; }`, x)
	if err := e.eval(fn, nil); err != nil {
		logger.Debug("set scrollLeft failed", "error", err)
	}
}

func (e *browserElement) ScrollWidth() float64 {
	var v float64
	if err := e.eval(`function() { return this.scrollWidth; }`, &v); err != nil {
		return 0
	}
	return v
}

func (e *browserElement) ClientWidth() float64 {
	var v float64
	if err := e.eval(`function() { return this.clientWidth; }`, &v); err != nil {
		return 0
	}
	return v
}

func (e *browserElement) ScrollIntoView() {
	if err := e.eval(`function() { this.scrollIntoView({block: "center"}); }`, nil); err != nil {
		logger.Debug("scrollIntoView failed", "error", err)
	}
}

func (e *browserElement) SameNode(other Element) bool {
	o, ok := other.(*browserElement)
	if !ok {
		return false
	}
	return e.node.BackendNodeID == o.node.BackendNodeID
}
