package docx

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
)

const (
	documentPart = "word/document.xml"
	relsPart     = "word/_rels/document.xml.rels"
	stylesPart   = "word/styles.xml"

	// maxPartSize bounds the decompressed size of any single archive part.
	maxPartSize = 128 << 20
)

// xmlNode is a generic element tree; every part is decoded into one.
type xmlNode struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Nodes   []xmlNode  `xml:",any"`
	Text    string     `xml:",chardata"`
}

// attr returns the value of the attribute with the given local name.
func (n *xmlNode) attr(local string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// child returns the first direct child with the given local name.
func (n *xmlNode) child(local string) *xmlNode {
	for i := range n.Nodes {
		if n.Nodes[i].XMLName.Local == local {
			return &n.Nodes[i]
		}
	}
	return nil
}

// find returns the first descendant with the given local name.
func (n *xmlNode) find(local string) *xmlNode {
	for i := range n.Nodes {
		c := &n.Nodes[i]
		if c.XMLName.Local == local {
			return c
		}
		if found := c.find(local); found != nil {
			return found
		}
	}
	return nil
}

// toggle reports whether an on/off property such as <w:b/> is set.
func toggle(n *xmlNode) bool {
	if n == nil {
		return false
	}
	switch strings.ToLower(n.attr("val")) {
	case "false", "0", "off", "none":
		return false
	}
	return true
}

type relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

type relationships struct {
	Items []relationship `xml:"Relationship"`
}

// docPackage holds the parts of an opened document.
type docPackage struct {
	files    map[string]*zip.File
	document *xmlNode
	rels     map[string]relationship
	headings map[string]int
}

func openPackage(zr *zip.Reader) (*docPackage, error) {
	p := &docPackage{
		files:    make(map[string]*zip.File, len(zr.File)),
		rels:     make(map[string]relationship),
		headings: make(map[string]int),
	}
	for _, f := range zr.File {
		p.files[f.Name] = f
	}

	if _, ok := p.files[documentPart]; !ok {
		return nil, errors.New("missing " + documentPart)
	}
	var doc xmlNode
	if err := p.decode(documentPart, &doc); err != nil {
		return nil, err
	}
	p.document = &doc

	if _, ok := p.files[relsPart]; ok {
		var rels relationships
		if err := p.decode(relsPart, &rels); err != nil {
			return nil, err
		}
		for _, r := range rels.Items {
			p.rels[r.ID] = r
		}
	}

	if _, ok := p.files[stylesPart]; ok {
		var styles xmlNode
		if err := p.decode(stylesPart, &styles); err != nil {
			return nil, err
		}
		p.loadHeadings(&styles)
	}
	return p, nil
}

func (p *docPackage) read(name string) ([]byte, error) {
	f, ok := p.files[name]
	if !ok {
		return nil, fmt.Errorf("missing part %s", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxPartSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(data) > maxPartSize {
		return nil, fmt.Errorf("part %s exceeds %d bytes", name, maxPartSize)
	}
	return data, nil
}

func (p *docPackage) decode(name string, v any) error {
	data, err := p.read(name)
	if err != nil {
		return err
	}
	if err := xml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// loadHeadings maps paragraph style ids to heading levels using the style
// names, which stay English even when the ids are localized.
func (p *docPackage) loadHeadings(styles *xmlNode) {
	for i := range styles.Nodes {
		s := &styles.Nodes[i]
		if s.XMLName.Local != "style" || s.attr("type") != "paragraph" {
			continue
		}
		name := s.child("name")
		if name == nil {
			continue
		}
		if level := headingLevel(name.attr("val")); level > 0 {
			p.headings[s.attr("styleId")] = level
		}
	}
}

// headingLevel returns 1-6 for heading style names and 0 otherwise.
func headingLevel(name string) int {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "title" {
		return 1
	}
	name = strings.ReplaceAll(name, " ", "")
	if !strings.HasPrefix(name, "heading") {
		return 0
	}
	level, err := strconv.Atoi(strings.TrimPrefix(name, "heading"))
	if err != nil || level < 1 {
		return 0
	}
	return min(level, 6)
}

// styleLevel resolves a paragraph style id to a heading level.
func (p *docPackage) styleLevel(styleID string) int {
	if level, ok := p.headings[styleID]; ok {
		return level
	}
	return headingLevel(styleID)
}

// mediaPath resolves a relationship target to an archive path.
func mediaPath(target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Clean(path.Join("word", target))
}
