package htmlutil

import (
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const page = `<html><body>
<ul>
	<li><a href="/ci/content/player/8917.html">  Eoin
		Morgan </a></li>
	<li><a href="https://example.com/ci/content/player/247235.html">Chris Woakes</a></li>
	<li><a>no href</a></li>
	<li><a href="%zz">broken</a></li>
</ul>
</body></html>`

func TestGetAnchors(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)

	base, err := url.Parse("https://stats.example.com/england/caps.html")
	require.NoError(t, err)

	anchors := GetAnchors(base, doc.Find("a"))
	require.Len(t, anchors, 2)

	require.Equal(t, "Eoin Morgan", anchors[0].Name)
	require.Equal(t, "https://stats.example.com/ci/content/player/8917.html", anchors[0].Url.String())

	require.Equal(t, "Chris Woakes", anchors[1].Name)
	require.Equal(t, "example.com", anchors[1].Url.Host)
}

func TestCleanText(t *testing.T) {
	require.Equal(t, "12*", CleanText("\n\t 12*  "))
	require.Equal(t, "Start Date", CleanText("Start   \n Date"))
	require.Equal(t, "", CleanText("  \n "))
}

func TestGetText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<p>a<b>b<i>c</i></b>d</p>`))
	require.NoError(t, err)
	require.Equal(t, "abcd", GetText(doc.Find("p").Nodes[0]))
}
