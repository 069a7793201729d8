package services

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHotelFinder_MockPage(t *testing.T) {
	f := NewHotelFinder(nil, 1, discardLogger())

	page, err := f.Search(context.Background(), HotelQuery{Destination: "Goa", CheckIn: "2024-12-20", CheckOut: "2024-12-24", Page: 2})

	require.NoError(t, err)
	assert.Equal(t, SourceFallback, page.Source)
	assert.Equal(t, 2, page.Page)
	assert.True(t, page.HasMore)
	require.Len(t, page.Hotels, defaultHotelLimit)

	for i, h := range page.Hotels {
		assert.Equal(t, "hotel-2-"+string(rune('0'+i)), h.ID)
		assert.Contains(t, h.Name, "Goa")
		assert.GreaterOrEqual(t, h.Rating, 3.0)
		assert.LessOrEqual(t, h.Rating, 5.0)
		tpl := hotelTemplates[i]
		assert.GreaterOrEqual(t, h.Price, float64(tpl.minPrice))
		assert.Less(t, h.Price, float64(tpl.maxPrice))
		assert.Equal(t, "INR", h.Currency)
		assert.True(t, strings.HasPrefix(h.BookingURL, "https://www."), h.BookingURL)
	}
	assert.Equal(t, "Grand Goa Palace Hotel", page.Hotels[0].Name)
	assert.Equal(t, "Goa Heritage Hotel", page.Hotels[2].Name)
}

func TestHotelFinder_MockIsDeterministic(t *testing.T) {
	q := HotelQuery{Destination: "Goa", CheckIn: "2024-12-20", CheckOut: "2024-12-24", Page: 1, Limit: 10}

	a, err := NewHotelFinder(nil, 7, discardLogger()).Search(context.Background(), q)
	require.NoError(t, err)
	b, err := NewHotelFinder(nil, 7, discardLogger()).Search(context.Background(), q)
	require.NoError(t, err)
	c, err := NewHotelFinder(nil, 8, discardLogger()).Search(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a.Hotels, c.Hotels)
}

func TestHotelFinder_Paging(t *testing.T) {
	f := NewHotelFinder(nil, 1, discardLogger())
	base := HotelQuery{Destination: "Goa", CheckIn: "2024-12-20", CheckOut: "2024-12-24"}

	q := base
	q.Page, q.Limit = 3, 4
	page, err := f.Search(context.Background(), q)
	require.NoError(t, err)
	assert.False(t, page.HasMore)
	assert.Len(t, page.Hotels, 4)

	q = base
	q.Page, q.Limit = 0, 50
	page, err = f.Search(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Len(t, page.Hotels, maxHotelLimit)
}

func TestHotelFinder_InvalidQuery(t *testing.T) {
	f := NewHotelFinder(nil, 1, discardLogger())

	for _, q := range []HotelQuery{
		{CheckIn: "2024-12-20", CheckOut: "2024-12-24"},
		{Destination: "Goa", CheckOut: "2024-12-24"},
		{Destination: "Goa", CheckIn: "2024-12-20"},
		{Destination: "Goa", CheckIn: "20/12/2024", CheckOut: "2024-12-24"},
		{Destination: "Goa", CheckIn: "2024-12-24", CheckOut: "2024-12-20"},
	} {
		_, err := f.Search(context.Background(), q)
		assert.ErrorIs(t, err, ErrMissingInput)
	}
}

func TestHotelFinder_Live(t *testing.T) {
	fake := newFakeAmadeus(t)
	f := NewHotelFinder(fake.client(), 1, discardLogger())

	page, err := f.Search(context.Background(), HotelQuery{Destination: "Paris", CheckIn: "2024-07-01", CheckOut: "2024-07-04", Page: 1, Limit: 1})

	require.NoError(t, err)
	assert.Equal(t, SourceLive, page.Source)
	require.Len(t, page.Hotels, 1)
	assert.Equal(t, "Hotel Lutetia", page.Hotels[0].Name)
	assert.True(t, page.HasMore)

	page, err = f.Search(context.Background(), HotelQuery{Destination: "Paris", CheckIn: "2024-07-01", CheckOut: "2024-07-04", Page: 3, Limit: 1})
	require.NoError(t, err)
	assert.Empty(t, page.Hotels)
	assert.False(t, page.HasMore)
}

func TestHotelFinder_LiveFailureFallsBack(t *testing.T) {
	fake := newFakeAmadeus(t)
	fake.failOffers = true
	f := NewHotelFinder(fake.client(), 1, discardLogger())

	page, err := f.Search(context.Background(), HotelQuery{Destination: "Paris", CheckIn: "2024-07-01", CheckOut: "2024-07-04"})

	require.NoError(t, err)
	assert.Equal(t, SourceFallback, page.Source)
	assert.Len(t, page.Hotels, defaultHotelLimit)
}

func TestHotelFinder_NormalizesQuery(t *testing.T) {
	fake := newFakeAmadeus(t)
	live := NewHotelFinder(fake.client(), 1, discardLogger())

	page, err := live.Search(context.Background(), HotelQuery{Destination: " Paris ", CheckIn: " 2024-07-01", CheckOut: "2024-07-04 "})
	require.NoError(t, err)
	assert.Equal(t, SourceLive, page.Source)

	mock := NewHotelFinder(nil, 1, discardLogger())
	padded, err := mock.Search(context.Background(), HotelQuery{Destination: "Goa ", CheckIn: " 2024-12-20 ", CheckOut: " 2024-12-24"})
	require.NoError(t, err)
	clean, err := mock.Search(context.Background(), HotelQuery{Destination: "Goa", CheckIn: "2024-12-20", CheckOut: "2024-12-24"})
	require.NoError(t, err)

	assert.Equal(t, clean, padded)
	assert.Contains(t, padded.Hotels[0].BookingURL, "2024-12-20")
	assert.NotContains(t, padded.Hotels[0].BookingURL, " ")
}

func TestBookingURL(t *testing.T) {
	assert.Equal(t,
		"https://www.booking.com/searchresults.html?ss=New+Delhi&checkin=2024-01-01&checkout=2024-01-03&group_adults=2&group_children=0&selected_currency=INR",
		bookingURL(0, "New Delhi", "2024-01-01", "2024-01-03"))
	assert.Contains(t, bookingURL(3, "New Delhi", "2024-01-01", "2024-01-03"), "/hotels/new-delhi-hotels.html")
	assert.Contains(t, bookingURL(9, "New Delhi", "2024-01-01", "2024-01-03"), "goibibo.com/hotels/new-delhi-hotels/")
}
