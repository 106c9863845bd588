package web

import (
	"bytes"
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type testForm struct{ Name, Like, Pet string }

type testProject struct {
	Name, Description, URL string
	Tags                   []string
}

type testPost struct {
	Title      string
	Content    string
	DatePosted time.Time
}

type testPage struct {
	Title      string
	Author     string
	MaxLength  int
	ModelReady bool
	CSRFToken  string
	Form       testForm
	CodeName   string
	Name       string
	Error      string
	Projects   []testProject
	Posts      []testPost
}

func TestTemplatesParse(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	for _, name := range []string{"chat.html", "project.html", "name_generator.html", "blog.html"} {
		require.NotNil(t, tmpl.Lookup(name), name)
	}
}

func TestNameGeneratorTemplateRendersCodeName(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	var buf bytes.Buffer
	err = tmpl.ExecuteTemplate(&buf, "name_generator.html", testPage{
		Title:     "Code Name",
		Author:    "Charles",
		CSRFToken: "tok",
		CodeName:  "Rex Alice",
		Name:      "<Bob>",
	})
	require.NoError(t, err)
	out := buf.String()
	require.Contains(t, out, "Rex Alice")
	require.Contains(t, out, "&lt;Bob&gt;")
	require.Contains(t, out, `name="csrf_token" value="tok"`)
}

func TestBlogTemplateFormatsDates(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	var buf bytes.Buffer
	err = tmpl.ExecuteTemplate(&buf, "blog.html", testPage{
		Title: "Blog",
		Posts: []testPost{{Title: "Hello World", Content: "This is your first blog post!", DatePosted: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)}},
	})
	require.NoError(t, err)
	require.Contains(t, buf.String(), "March 5, 2024")
	require.Contains(t, buf.String(), "Hello World")
}

func TestStaticAssets(t *testing.T) {
	static, err := Static()
	require.NoError(t, err)

	for _, path := range []string{"css/chat.css", "css/site.css", "js/chat.js"} {
		_, err := fs.Stat(static, path)
		require.NoError(t, err, path)
	}
}
