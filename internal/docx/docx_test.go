package docx

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/starford/docpress/internal/apperr"
	"github.com/starford/docpress/internal/testutil"
)

func convert(t *testing.T, parts map[string]string) string {
	t.Helper()
	out, err := NewHTMLConverter().Convert(testutil.Docx(t, parts))
	require.NoError(t, err)
	return out
}

func TestConvert_Paragraphs(t *testing.T) {
	out := convert(t, map[string]string{
		"word/document.xml": testutil.DocumentXML(
			testutil.Para("First & foremost") + `<w:p/>` + testutil.Para("Second"),
		),
	})
	require.Equal(t, "<p>First &amp; foremost</p><p>Second</p>", out)
}

func TestConvert_RunFormatting(t *testing.T) {
	body := `<w:p>` +
		`<w:r><w:rPr><w:b/></w:rPr><w:t>bold</w:t></w:r>` +
		`<w:r><w:t xml:space="preserve"> and </w:t></w:r>` +
		`<w:r><w:rPr><w:i/><w:b w:val="false"/></w:rPr><w:t>italic</w:t></w:r>` +
		`<w:r><w:rPr><w:u w:val="single"/></w:rPr><w:t>under</w:t></w:r>` +
		`<w:r><w:t>line</w:t><w:br/><w:t>two</w:t></w:r>` +
		`</w:p>`
	out := convert(t, map[string]string{"word/document.xml": testutil.DocumentXML(body)})
	require.Equal(t, "<p><strong>bold</strong> and <em>italic</em><u>under</u>line<br/>two</p>", out)
}

func TestConvert_HeadingsFromStyles(t *testing.T) {
	styles := `<w:styles ` + `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:style w:type="paragraph" w:styleId="berschrift2"><w:name w:val="heading 2"/></w:style>` +
		`<w:style w:type="paragraph" w:styleId="Normal"><w:name w:val="Normal"/></w:style>` +
		`</w:styles>`
	body := `<w:p><w:pPr><w:pStyle w:val="berschrift2"/></w:pPr><w:r><w:t>Section</w:t></w:r></w:p>` +
		`<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Top</w:t></w:r></w:p>` +
		`<w:p><w:pPr><w:pStyle w:val="Normal"/></w:pPr><w:r><w:t>Text</w:t></w:r></w:p>`
	out := convert(t, map[string]string{
		"word/document.xml": testutil.DocumentXML(body),
		"word/styles.xml":   styles,
	})
	require.Equal(t, "<h2>Section</h2><h1>Top</h1><p>Text</p>", out)
}

func TestConvert_Table(t *testing.T) {
	body := testutil.MetadataTable([2]string{"title", "Hello"}, [2]string{"category", "News"}) +
		testutil.Para("after")
	out := convert(t, map[string]string{"word/document.xml": testutil.DocumentXML(body)})
	require.Equal(t,
		"<table><tr><td><p>title</p></td><td><p>Hello</p></td></tr>"+
			"<tr><td><p>category</p></td><td><p>News</p></td></tr></table><p>after</p>",
		out)
}

func TestConvert_ListParagraphsGrouped(t *testing.T) {
	item := func(s string) string {
		return `<w:p><w:pPr><w:numPr><w:ilvl w:val="0"/><w:numId w:val="1"/></w:numPr></w:pPr>` +
			`<w:r><w:t>` + s + `</w:t></w:r></w:p>`
	}
	body := item("one") + item("two") + testutil.Para("break") + item("three")
	out := convert(t, map[string]string{"word/document.xml": testutil.DocumentXML(body)})
	require.Equal(t, "<ul><li>one</li><li>two</li></ul><p>break</p><ul><li>three</li></ul>", out)
}

func TestConvert_Hyperlink(t *testing.T) {
	rels := `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId5" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink" Target="https://example.com/?a=1&amp;b=2" TargetMode="External"/>` +
		`</Relationships>`
	body := `<w:p><w:hyperlink r:id="rId5"><w:r><w:t>site</w:t></w:r></w:hyperlink></w:p>`
	out := convert(t, map[string]string{
		"word/document.xml":            testutil.DocumentXML(body),
		"word/_rels/document.xml.rels": rels,
	})
	require.Equal(t, `<p><a href="https://example.com/?a=1&amp;b=2">site</a></p>`, out)
}

func TestConvert_InlineImage(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\nfake")
	rels := `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId7" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="media/image1.png"/>` +
		`</Relationships>`
	body := `<w:p><w:r><w:drawing><wp:inline><wp:docPr id="1" name="Picture 1" descr="A chart"/>` +
		`<a:graphic><a:graphicData><pic:pic><pic:blipFill><a:blip r:embed="rId7"/></pic:blipFill></pic:pic></a:graphicData></a:graphic>` +
		`</wp:inline></w:drawing></w:r></w:p>`
	parts := map[string]string{
		"word/document.xml":            testutil.DocumentXML(body),
		"word/_rels/document.xml.rels": rels,
		"word/media/image1.png":        string(png),
	}

	out := convert(t, parts)
	want := `<p><img src="data:image/png;base64,` + base64.StdEncoding.EncodeToString(png) + `" alt="A chart"/></p>`
	require.Equal(t, want, out)

	skipped, err := (&HTMLConverter{SkipImages: true}).Convert(testutil.Docx(t, parts))
	require.NoError(t, err)
	require.Empty(t, skipped)
}

func TestConvert_NotAZip(t *testing.T) {
	_, err := NewHTMLConverter().Convert([]byte("definitely not a docx"))
	require.ErrorIs(t, err, apperr.ErrConversion)
}

func TestConvert_MissingDocumentPart(t *testing.T) {
	data := testutil.Docx(t, map[string]string{"word/other.xml": "<x/>"})
	_, err := NewHTMLConverter().Convert(data)
	require.ErrorIs(t, err, apperr.ErrConversion)
}

func TestConvert_MalformedXML(t *testing.T) {
	data := testutil.Docx(t, map[string]string{"word/document.xml": "<w:document><w:body>"})
	_, err := NewHTMLConverter().Convert(data)
	require.ErrorIs(t, err, apperr.ErrConversion)
}

func TestHeadingLevel(t *testing.T) {
	cases := map[string]int{
		"heading 1": 1,
		"Heading3":  3,
		"Title":     1,
		"heading 9": 6,
		"Normal":    0,
		"heading":   0,
	}
	for name, want := range cases {
		require.Equal(t, want, headingLevel(name), name)
	}
}

func TestToMarkdown(t *testing.T) {
	md, err := ToMarkdown("<h1>Title</h1><p><strong>bold</strong> text</p>")
	require.NoError(t, err)
	require.True(t, strings.Contains(md, "# Title"), md)
	require.True(t, strings.Contains(md, "**bold** text"), md)
}
