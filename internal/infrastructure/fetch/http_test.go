package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func servePage(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func Test_Fetch_OpenGraphMetadata(t *testing.T) {
	t.Parallel()
	srv := servePage(t, `<html><head>
		<meta property="og:title" content="Cordless Drill X200" />
		<meta property="product:price:amount" content="129.99" />
		<meta property="product:price:currency" content="eur" />
	</head><body></body></html>`)

	f := &HTTPFetcher{DefaultCurrency: "USD"}
	snap, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "Cordless Drill X200", snap.Title)
	require.True(t, snap.Price.Equal(decimal.NewFromFloat(129.99)))
	require.Equal(t, "EUR", snap.Currency)
}

func Test_Fetch_TitleTagAndItemprop(t *testing.T) {
	t.Parallel()
	srv := servePage(t, `<html><head>
		<title> Kettle &amp; Co </title>
		<meta itemprop="price" content="$1,299.00" />
	</head></html>`)

	f := &HTTPFetcher{DefaultCurrency: "USD"}
	snap, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "Kettle & Co", snap.Title)
	require.True(t, snap.Price.Equal(decimal.NewFromInt(1299)))
	require.Equal(t, "USD", snap.Currency)
}

func Test_Fetch_CommaDecimal(t *testing.T) {
	t.Parallel()
	srv := servePage(t, `<html><head>
		<meta property="og:title" content="Teapot" />
		<meta property="og:price:amount" content="19,99" />
		<meta property="og:price:currency" content="EUR" />
	</head></html>`)

	snap, err := (&HTTPFetcher{}).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.True(t, snap.Price.Equal(decimal.NewFromFloat(19.99)))
}

func Test_Fetch_ContentAttributeFirst(t *testing.T) {
	t.Parallel()
	srv := servePage(t, `<html><head>
		<meta content="Mixer 500" property="og:title" />
		<meta content="59.90" property="og:price:amount" />
	</head></html>`)

	snap, err := (&HTTPFetcher{DefaultCurrency: "USD"}).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "Mixer 500", snap.Title)
	require.True(t, snap.Price.Equal(decimal.NewFromFloat(59.9)))
}

func Test_Fetch_NoPriceMetadata(t *testing.T) {
	t.Parallel()
	srv := servePage(t, `<html><head><title>Just a blog post</title></head></html>`)

	_, err := (&HTTPFetcher{}).Fetch(context.Background(), srv.URL)
	require.ErrorIs(t, err, ErrNoPrice)
}

func Test_Fetch_Non200(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	_, err := (&HTTPFetcher{}).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
}

func Test_Fetch_HonorsContextTimeout(t *testing.T) {
	t.Parallel()
	blocked := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-blocked
	}))
	t.Cleanup(func() {
		close(blocked)
		srv.Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := (&HTTPFetcher{}).Fetch(ctx, srv.URL)
	require.Error(t, err)
}
