package block

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/textblock/internal/dom"
	"github.com/dgallion1/textblock/internal/format"
	"github.com/dgallion1/textblock/internal/toolbar"
	"golang.org/x/net/html"
)

// Element ids of the page shell. Clients report focus targets by these ids.
const (
	toolbarID     = "format-toolbar"
	fontSelectID  = "font-family"
	colorPickerID = "color-picker"
	editableID    = "editable"
)

const pageShell = `<div class="text-block">` +
	`<div id="format-toolbar" tabindex="-1" class="toolbar" hidden>` +
	`<select id="font-family" title="Font Family"></select>` +
	`<input id="color-picker" type="color" title="Text Color" value="#000000"/>` +
	`<button id="format-bold" data-format="bold" title="Toggle Bold">B</button>` +
	`<button id="format-italic" data-format="italic" title="Toggle Italic">I</button>` +
	`<button id="format-underline" data-format="underline" title="Toggle Underline">U</button>` +
	`<button id="format-code" data-format="code" title="Toggle Code">&lt;/&gt;</button>` +
	`</div>` +
	`</div>`

// newPage builds the toolbar shell around a fresh editable root.
func newPage(d dom.Defaults) (page, root *html.Node) {
	page = dom.NewElement("body")
	if err := dom.SetInnerHTML(page, pageShell); err != nil {
		// The shell is a constant; failing to parse it is a programming error.
		panic(fmt.Sprintf("block: parse page shell: %v", err))
	}

	sel := dom.FindByID(page, fontSelectID)
	for _, f := range format.Fonts {
		opt := dom.NewElement("option")
		dom.SetAttr(opt, "value", f.Value)
		dom.SetAttr(opt, "style", "font-family: "+f.Value)
		opt.AppendChild(dom.NewText(f.Name))
		sel.AppendChild(opt)
	}

	root = dom.NewRoot()
	dom.SetAttr(root, "id", editableID)
	dom.SetAttr(root, "placeholder", "Write here...")
	dom.SetAttr(root, "tabindex", "0")
	if d.FontFamily != "" {
		dom.SetAttr(root, "data-default-font", d.FontFamily)
	}
	page.FirstChild.AppendChild(root)
	return page, root
}

// RenderPage writes the page shell with the toolbar reflecting the block's
// current state.
func (b *Block) RenderPage(w io.Writer) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	vis, active := b.toolbar.State()
	bar := dom.FindByID(b.page, toolbarID)
	if vis == toolbar.Visible {
		dom.RemoveAttr(bar, "hidden")
	} else {
		dom.SetAttr(bar, "hidden", "")
	}
	for _, f := range []format.Format{format.Bold, format.Italic, format.Underline, format.Code} {
		btn := dom.FindByID(b.page, "format-"+string(f))
		if active.Has(f) {
			dom.SetAttr(btn, "class", "active")
		} else {
			dom.RemoveAttr(btn, "class")
		}
	}
	for opt := dom.FindByID(b.page, fontSelectID).FirstChild; opt != nil; opt = opt.NextSibling {
		if strings.EqualFold(dom.TextContent(opt), b.state.Font) {
			dom.SetAttr(opt, "selected", "")
		} else {
			dom.RemoveAttr(opt, "selected")
		}
	}
	dom.SetAttr(dom.FindByID(b.page, colorPickerID), "value", pickerValue(b.state.Color))

	for c := b.page.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(w, c); err != nil {
			return fmt.Errorf("render page: %w", err)
		}
	}
	return nil
}

// pickerValue fits a colour into what <input type=color> accepts.
func pickerValue(c string) string {
	if rgb, ok := dom.ParseColor(c); ok {
		return strings.ToLower(rgb.Hex())
	}
	return format.DefaultColor
}
