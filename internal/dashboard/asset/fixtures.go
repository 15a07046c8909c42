package asset

import (
	"context"
	"net/url"
	"time"

	"github.com/louisbranch/royaltydesk/internal/collection"
)

func released(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// fixtureCatalogue is the built-in catalogue used when the dashboard runs
// offline.
var fixtureCatalogue = []Asset{
	{ID: 1, Title: "Midnight Echoes", Artist: "Luna Vega", Type: TypeAlbum, Genre: "electronic", Status: StatusAvailable, RoyaltyShare: 12.5, PriceCents: 4999, ReleasedAt: released(2024, time.March, 15)},
	{ID: 2, Title: "Golden Hour", Artist: "The Sundays", Type: TypeSingle, Genre: "pop", Status: StatusAvailable, RoyaltyShare: 8, PriceCents: 1299, ReleasedAt: released(2025, time.June, 1)},
	{ID: 3, Title: "Électrique", Artist: "Nadia Roux", Type: TypeEP, Genre: "electronic", Status: StatusSoldOut, RoyaltyShare: 22, PriceCents: 2599, ReleasedAt: released(2023, time.October, 20)},
	{ID: 4, Title: "Concrete Gardens", Artist: "MC Verse", Type: TypeAlbum, Genre: "hip-hop", Status: StatusAvailable, RoyaltyShare: 35, PriceCents: 8999, ReleasedAt: released(2025, time.January, 10)},
	{ID: 5, Title: "Blue Note Sessions", Artist: "Trio Azul", Type: TypeAlbum, Genre: "jazz", Status: StatusUpcoming, RoyaltyShare: 18, PriceCents: 5999, ReleasedAt: released(2026, time.February, 14)},
	{ID: 6, Title: "dust & diamonds", Artist: "Cole Rivers", Type: TypeSingle, Genre: "country", Status: StatusAvailable, RoyaltyShare: 5, PriceCents: 999, ReleasedAt: released(2024, time.August, 30)},
	{ID: 7, Title: "Neon Tides", Artist: "Luna Vega", Type: TypeEP, Genre: "electronic", Status: StatusAvailable, RoyaltyShare: 27.5, PriceCents: 3499, ReleasedAt: released(2025, time.September, 5)},
	{ID: 8, Title: "Stone Cold", Artist: "Iron Wake", Type: TypeAlbum, Genre: "rock", Status: StatusSoldOut, RoyaltyShare: 30, PriceCents: 6999, ReleasedAt: released(2022, time.November, 11)},
	{ID: 9, Title: "Album 10", Artist: "Numbers", Type: TypeAlbum, Genre: "pop", Status: StatusAvailable, RoyaltyShare: 10, PriceCents: 4999, ReleasedAt: released(2024, time.December, 24)},
}

// Fixtures returns a fetcher serving the built-in catalogue. Queries are
// ignored; filtering happens in views.
func Fixtures() collection.Fetcher[Asset] {
	return func(ctx context.Context, _ url.Values) ([]Asset, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return append([]Asset(nil), fixtureCatalogue...), nil
	}
}
