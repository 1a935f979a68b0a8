package testutil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storefront/internal/catalog"
)

func TestFixedSessionGenerator(t *testing.T) {
	assert.Equal(t, "s-1", NewFixedSessionGenerator("s-1").Generate())
	assert.Equal(t, "test-session", NewFixedSessionGenerator("").Generate())
}

func TestGatedFetcherRespondOutOfOrder(t *testing.T) {
	f := NewGatedFetcher()

	results := make(chan string, 2)
	for _, q := range []string{"a", "b"} {
		q := q
		go func() {
			page, err := f.FetchProducts(context.Background(), q)
			if err == nil {
				results <- q + ":" + page.Items[0].ID
			}
		}()
	}

	first, err := f.Next(time.Second)
	require.NoError(t, err)
	second, err := f.Next(time.Second)
	require.NoError(t, err)

	second.Respond(catalog.ResultPage{Items: []catalog.Product{{ID: second.Query}}}, nil)
	assert.Equal(t, second.Query+":"+second.Query, <-results)

	first.Respond(catalog.ResultPage{Items: []catalog.Product{{ID: first.Query}}}, nil)
	assert.Equal(t, first.Query+":"+first.Query, <-results)

	assert.ElementsMatch(t, []string{"a", "b"}, f.Queries())
}

func TestGatedFetcherHonorsCancel(t *testing.T) {
	f := NewGatedFetcher()
	ctx, cancel := context.WithCancel(context.Background())

	errs := make(chan error, 1)
	go func() {
		_, err := f.FetchProducts(ctx, "x")
		errs <- err
	}()

	_, err := f.Next(time.Second)
	require.NoError(t, err)
	cancel()
	assert.True(t, errors.Is(<-errs, context.Canceled))
}

func TestRecordingView(t *testing.T) {
	var v RecordingView
	v.RenderProducts([]catalog.Product{{ID: "1"}})
	v.RenderPagination(0, 3)
	v.RenderBadge(0, false)
	v.RenderCartVisibility(true)

	assert.Equal(t, []string{"products(1)", "pagination(0/3)", "badge(hidden)", "cart-visible(true)"}, v.Calls())

	p, ok := v.LastPagination()
	require.True(t, ok)
	assert.Equal(t, 3, p.Total)

	v.Reset()
	assert.Empty(t, v.Calls())
	_, ok = v.LastProducts()
	assert.False(t, ok)
}
