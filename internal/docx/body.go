package docx

import (
	"encoding/base64"
	"mime"
	"path"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// writer turns the document element tree into HTML nodes.
type writer struct {
	pkg        *docPackage
	skipImages bool
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func appendAll(parent *html.Node, children []*html.Node) {
	for _, c := range children {
		parent.AppendChild(c)
	}
}

func (w *writer) body(doc *xmlNode) []*html.Node {
	body := doc.child("body")
	if body == nil {
		return nil
	}
	return w.blocks(body)
}

// blocks converts block-level content: paragraphs, tables and content
// controls. Consecutive list paragraphs are grouped into one list.
func (w *writer) blocks(n *xmlNode) []*html.Node {
	var out []*html.Node
	var list *html.Node
	for i := range n.Nodes {
		c := &n.Nodes[i]
		switch c.XMLName.Local {
		case "p":
			p := w.paragraph(c)
			if p == nil {
				continue
			}
			if isListItem(c) {
				if list == nil {
					list = element(atom.Ul)
					out = append(out, list)
				}
				li := element(atom.Li)
				if p.DataAtom == atom.P {
					for p.FirstChild != nil {
						child := p.FirstChild
						p.RemoveChild(child)
						li.AppendChild(child)
					}
				} else {
					li.AppendChild(p)
				}
				list.AppendChild(li)
				continue
			}
			list = nil
			out = append(out, p)
		case "tbl":
			list = nil
			out = append(out, w.table(c))
		case "sdt":
			list = nil
			if content := c.child("sdtContent"); content != nil {
				out = append(out, w.blocks(content)...)
			}
		}
	}
	return out
}

func isListItem(p *xmlNode) bool {
	ppr := p.child("pPr")
	return ppr != nil && ppr.child("numPr") != nil
}

// paragraph converts a w:p element. Paragraphs without content yield nil.
func (w *writer) paragraph(p *xmlNode) *html.Node {
	tag := atom.P
	if ppr := p.child("pPr"); ppr != nil {
		if style := ppr.child("pStyle"); style != nil {
			if level := w.pkg.styleLevel(style.attr("val")); level > 0 {
				tag = headingAtoms[level-1]
			}
		}
	}

	children := w.inline(p)
	if len(children) == 0 {
		return nil
	}
	el := element(tag)
	appendAll(el, children)
	return el
}

var headingAtoms = [6]atom.Atom{atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6}

// inline converts the run-level content of a paragraph or hyperlink.
func (w *writer) inline(n *xmlNode) []*html.Node {
	var out []*html.Node
	for i := range n.Nodes {
		c := &n.Nodes[i]
		switch c.XMLName.Local {
		case "r":
			out = append(out, w.run(c)...)
		case "hyperlink":
			out = append(out, w.hyperlink(c)...)
		case "ins", "smartTag", "fldSimple", "customXml":
			out = append(out, w.inline(c)...)
		case "sdt":
			if content := c.child("sdtContent"); content != nil {
				out = append(out, w.inline(content)...)
			}
		}
	}
	return mergeText(out)
}

func (w *writer) hyperlink(h *xmlNode) []*html.Node {
	children := w.inline(h)
	if len(children) == 0 {
		return nil
	}
	href := ""
	if id := h.attr("id"); id != "" {
		if rel, ok := w.pkg.rels[id]; ok {
			href = rel.Target
		}
	}
	if anchor := h.attr("anchor"); anchor != "" && href == "" {
		href = "#" + anchor
	}
	if href == "" {
		return children
	}
	a := element(atom.A, html.Attribute{Key: "href", Val: href})
	appendAll(a, children)
	return []*html.Node{a}
}

// run converts a w:r element, wrapping its content in formatting elements.
func (w *writer) run(r *xmlNode) []*html.Node {
	var content []*html.Node
	for i := range r.Nodes {
		c := &r.Nodes[i]
		switch c.XMLName.Local {
		case "t":
			content = append(content, text(c.Text))
		case "tab":
			content = append(content, text("\t"))
		case "br", "cr":
			if c.attr("type") == "page" {
				continue
			}
			content = append(content, element(atom.Br))
		case "noBreakHyphen":
			content = append(content, text("‑"))
		case "drawing", "pict", "object":
			if img := w.image(c); img != nil {
				content = append(content, img)
			}
		}
	}
	if len(content) == 0 {
		return nil
	}

	rpr := r.child("rPr")
	if rpr == nil {
		return mergeText(content)
	}
	if toggle(rpr.child("vanish")) {
		return nil
	}
	wrap := func(a atom.Atom) {
		el := element(a)
		appendAll(el, mergeText(content))
		content = []*html.Node{el}
	}
	if u := rpr.child("u"); u != nil && toggle(u) {
		wrap(atom.U)
	}
	if toggle(rpr.child("strike")) || toggle(rpr.child("dstrike")) {
		wrap(atom.S)
	}
	if va := rpr.child("vertAlign"); va != nil {
		switch va.attr("val") {
		case "superscript":
			wrap(atom.Sup)
		case "subscript":
			wrap(atom.Sub)
		}
	}
	if toggle(rpr.child("i")) {
		wrap(atom.Em)
	}
	if toggle(rpr.child("b")) {
		wrap(atom.Strong)
	}
	return content
}

// image inlines the picture referenced by a drawing as a data URI.
func (w *writer) image(d *xmlNode) *html.Node {
	if w.skipImages {
		return nil
	}
	id := ""
	if blip := d.find("blip"); blip != nil {
		id = blip.attr("embed")
	} else if data := d.find("imagedata"); data != nil {
		id = data.attr("id")
	}
	rel, ok := w.pkg.rels[id]
	if !ok || rel.TargetMode == "External" {
		return nil
	}
	name := mediaPath(rel.Target)
	data, err := w.pkg.read(name)
	if err != nil {
		return nil
	}

	ctype := mime.TypeByExtension(strings.ToLower(path.Ext(name)))
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	if i := strings.IndexByte(ctype, ';'); i >= 0 {
		ctype = ctype[:i]
	}

	attrs := []html.Attribute{{Key: "src", Val: "data:" + ctype + ";base64," + base64.StdEncoding.EncodeToString(data)}}
	if pr := d.find("docPr"); pr != nil {
		if alt := pr.attr("descr"); alt != "" {
			attrs = append(attrs, html.Attribute{Key: "alt", Val: alt})
		}
	}
	return element(atom.Img, attrs...)
}

func (w *writer) table(t *xmlNode) *html.Node {
	table := element(atom.Table)
	for i := range t.Nodes {
		row := &t.Nodes[i]
		if row.XMLName.Local != "tr" {
			continue
		}
		tr := element(atom.Tr)
		for j := range row.Nodes {
			cell := &row.Nodes[j]
			if cell.XMLName.Local != "tc" {
				continue
			}
			if vMergeContinue(cell) {
				continue
			}
			td := element(atom.Td)
			if span := gridSpan(cell); span > 1 {
				td.Attr = append(td.Attr, html.Attribute{Key: "colspan", Val: strconv.Itoa(span)})
			}
			appendAll(td, w.blocks(cell))
			tr.AppendChild(td)
		}
		table.AppendChild(tr)
	}
	return table
}

func gridSpan(tc *xmlNode) int {
	pr := tc.child("tcPr")
	if pr == nil {
		return 1
	}
	span := pr.child("gridSpan")
	if span == nil {
		return 1
	}
	n, err := strconv.Atoi(span.attr("val"))
	if err != nil {
		return 1
	}
	return n
}

// vMergeContinue reports whether tc continues a vertically merged cell.
func vMergeContinue(tc *xmlNode) bool {
	pr := tc.child("tcPr")
	if pr == nil {
		return false
	}
	vm := pr.child("vMerge")
	return vm != nil && vm.attr("val") != "restart"
}

// mergeText joins adjacent text nodes so runs split by the editor render as
// one string.
func mergeText(nodes []*html.Node) []*html.Node {
	out := nodes[:0]
	for _, n := range nodes {
		if n.Type == html.TextNode && len(out) > 0 && out[len(out)-1].Type == html.TextNode {
			out[len(out)-1].Data += n.Data
			continue
		}
		out = append(out, n)
	}
	return out
}
