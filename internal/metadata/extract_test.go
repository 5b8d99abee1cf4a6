package metadata

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/starford/docpress/internal/apperr"
)

func table(rows ...[2]string) string {
	var b strings.Builder
	b.WriteString("<table>")
	for _, r := range rows {
		b.WriteString("<tr><td><p>" + r[0] + "</p></td><td><p>" + r[1] + "</p></td></tr>")
	}
	b.WriteString("</table>")
	return b.String()
}

func TestExtract_TitleAndCategories(t *testing.T) {
	markup := table(
		[2]string{"title", "Hello"},
		[2]string{"category", "News"},
		[2]string{"category", "news"},
	) + "<p>Body text.</p>"

	rec, body, err := Extract(markup, "")
	require.NoError(t, err)
	require.Equal(t, "Hello", rec.Title)
	require.Equal(t, []string{"news"}, rec.Categories())
	require.Equal(t, DefaultLayout, rec.Layout)
	require.Equal(t, "<p>Body text.</p>", body)
}

func TestExtract_LocalizedKeys(t *testing.T) {
	markup := table(
		[2]string{"标题", "你好"},
		[2]string{"作者", "张三"},
		[2]string{"分类", "技术"},
		[2]string{"Titel", "Hallo"},
	)
	rec, _, err := Extract(markup, "post")
	require.NoError(t, err)
	// Keys are lowercased before matching, so "Titel" wins as the last title.
	require.Equal(t, "Hallo", rec.Title)
	require.Equal(t, "张三", rec.Author)
	require.Equal(t, []string{"技术"}, rec.Categories())
	require.Equal(t, "post", rec.Layout)
}

func TestExtract_LastWriterWins(t *testing.T) {
	rec, _, err := Extract(table(
		[2]string{"author", "First"},
		[2]string{"AUTHOR", "Second"},
	), "")
	require.NoError(t, err)
	require.Equal(t, "Second", rec.Author)
	require.Empty(t, rec.Title)
}

func TestExtract_CommaSeparatedCategories(t *testing.T) {
	rec, _, err := Extract(table([2]string{"categories", "Go, Tools，go"}), "")
	require.NoError(t, err)
	require.Equal(t, []string{"go", "tools"}, rec.Categories())
}

func TestExtract_UnknownKeysIgnored(t *testing.T) {
	rec, _, err := Extract(table(
		[2]string{"title", "T"},
		[2]string{"summary", "ignored"},
		[2]string{"draft", ""},
	), "")
	require.NoError(t, err)
	require.Equal(t, "T", rec.Title)
}

func TestExtract_MissingTable(t *testing.T) {
	_, _, err := Extract("<p>No metadata here.</p>", "")
	require.ErrorIs(t, err, apperr.ErrMetadataMissing)
}

func TestExtract_ValueWithoutKey(t *testing.T) {
	rec, body, err := Extract(table(
		[2]string{"title", "Hello"},
		[2]string{"", "see below"},
	)+"<p>x</p>", "")
	require.NoError(t, err)
	require.Equal(t, "Hello", rec.Title)
	require.Equal(t, "<p>x</p>", body)
}

func TestExtract_RecognizedKeyWithoutValue(t *testing.T) {
	rec, _, err := Extract(table(
		[2]string{"title", "Hello"},
		[2]string{"author", ""},
		[2]string{"category", ""},
	)+"<p>x</p>", "")
	require.NoError(t, err)
	require.Equal(t, "Hello", rec.Title)
	require.Empty(t, rec.Author)
	require.Empty(t, rec.Categories())
}

func TestExtract_EmptyTitleOverridesEarlierValue(t *testing.T) {
	rec, _, err := Extract(table(
		[2]string{"title", "Draft"},
		[2]string{"title", ""},
	), "")
	require.NoError(t, err)
	require.Empty(t, rec.Title)
}

func TestFold_Malformed(t *testing.T) {
	_, err := Fold([]Row{{Key: "category", Value: ", ，"}}, "")
	require.ErrorIs(t, err, apperr.ErrMetadataMalformed)

	_, err = Fold([]Row{{Key: "title", Value: "bad \xff byte"}}, "")
	require.ErrorIs(t, err, apperr.ErrMetadataMalformed)
}

func TestExtract_OnlyFirstTableRemoved(t *testing.T) {
	markup := table([2]string{"title", "A"}) +
		"<p>Intro</p><table><tr><td>data</td><td>cell</td></tr></table>"

	rec, body, err := Extract(markup, "")
	require.NoError(t, err)
	require.Equal(t, "A", rec.Title)
	require.NotContains(t, body, "title")
	require.Contains(t, body, "<p>Intro</p>")
	require.Contains(t, body, "<td>data</td>")
}

func TestExtract_TableNotFirstElement(t *testing.T) {
	markup := "<h1>Heading</h1>" + table([2]string{"title", "Later"}) + "<p>after</p>"
	rec, body, err := Extract(markup, "")
	require.NoError(t, err)
	require.Equal(t, "Later", rec.Title)
	require.Equal(t, "<h1>Heading</h1><p>after</p>", body)
}

func TestExtract_PreservesDataURIs(t *testing.T) {
	img := `<p><img src="data:image/png;base64,iVBORw0KGgo="/></p>`
	_, body, err := Extract(table([2]string{"title", "Pic"})+img, "")
	require.NoError(t, err)
	require.Contains(t, body, `src="data:image/png;base64,iVBORw0KGgo="`)
}

func TestTableRows_DropsShortAndBlankRows(t *testing.T) {
	root, err := parseFragment(`<table>
		<tr><td>only one cell</td></tr>
		<tr><td> </td><td></td></tr>
		<tr><th>Title</th><td>
			<p>Line one</p>
			<p>Line two</p>
		</td><td>extra</td></tr>
	</table>`)
	require.NoError(t, err)

	rows := TableRows(root.FirstChild)
	require.Len(t, rows, 1)
	require.Equal(t, "title", rows[0].Key)
	require.True(t, strings.HasPrefix(rows[0].Value, "Line one\n"))
	require.True(t, strings.HasSuffix(rows[0].Value, "\nLine two"))
}

func TestTableRows_SkipsNestedTables(t *testing.T) {
	root, err := parseFragment(`<table><tr><td>author</td><td>Outer<table><tr><td>title</td><td>Inner</td></tr></table></td></tr></table>`)
	require.NoError(t, err)

	rows := TableRows(root.FirstChild)
	require.Len(t, rows, 1)
	require.Equal(t, "author", rows[0].Key)
}
