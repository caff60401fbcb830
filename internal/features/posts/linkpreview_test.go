package posts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

const previewHTML = `<!DOCTYPE html>
<html>
<head>
<title>Fallback Title</title>
<meta name="description" content="Fallback description">
<meta property="og:title" content="OG Title">
<meta property="og:description" content="OG description">
<meta property="og:image" content="/images/card.png">
<meta property="og:site_name" content="ExampleSite">
<link rel="icon" href="/favicon.ico">
</head>
<body>hello</body>
</html>`

func TestFetchPreview_OpenGraphPriority(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(previewHTML))
	}))
	defer server.Close()

	preview, err := NewScraper().FetchPreview(context.Background(), server.URL)
	require.NoError(t, err)
	require.Equal(t, "OG Title", preview.Title)
	require.Equal(t, "OG description", preview.Description)
	require.Equal(t, server.URL+"/images/card.png", preview.ImageURL)
	require.Equal(t, server.URL+"/favicon.ico", preview.Favicon)
	require.Equal(t, "ExampleSite", preview.SiteName)
}

func TestFetchPreview_FallsBackToPlainTags(t *testing.T) {
	html := `<html><head><title>Plain Title</title>` +
		`<meta name="description" content="Plain description"></head><body></body></html>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(html))
	}))
	defer server.Close()

	preview, err := NewScraper().FetchPreview(context.Background(), server.URL)
	require.NoError(t, err)
	require.Equal(t, "Plain Title", preview.Title)
	require.Equal(t, "Plain description", preview.Description)
	require.Empty(t, preview.ImageURL)
}

func TestFetchPreview_NotFoundYieldsBarePreview(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	preview, err := NewScraper().FetchPreview(context.Background(), server.URL)
	require.NoError(t, err)
	require.Equal(t, server.URL, preview.URL)
	require.Empty(t, preview.Title)
}

func TestFetchPreview_RetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`<html><head><title>Recovered</title></head></html>`))
	}))
	defer server.Close()

	preview, err := NewScraper().FetchPreview(context.Background(), server.URL)
	require.NoError(t, err)
	require.Equal(t, "Recovered", preview.Title)
	require.Equal(t, 2, attempts)
}

func TestFirstLink(t *testing.T) {
	require.Equal(t, "https://go.dev/blog", FirstLink("check https://go.dev/blog out"))
	require.Empty(t, FirstLink("no links here"))
}
