package services

import (
	"context"
	"fmt"
	"testing"

	"agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func titles(posts []models.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Title
	}
	return out
}

func TestListForumPagination(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewListingService(gdb, zap.NewNop())
	u := mustUser(t, gdb, "poster", false)
	for i := 1; i <= 11; i++ {
		mustPost(t, gdb, u, fmt.Sprintf("post %02d", i), "discussion", nil)
	}
	mustPost(t, gdb, u, "for sale", models.SectionMarketplace, ptr(10))

	ctx := context.Background()
	first, err := svc.ListForum(ctx, 1, ForumFilter{})
	require.NoError(t, err)
	assert.Len(t, first.Items, 10)
	assert.Equal(t, int64(11), first.Total)
	assert.Equal(t, 2, first.TotalPages)
	assert.Equal(t, "post 11", first.Items[0].Title, "newest first")
	assert.False(t, first.HasPrev())
	assert.True(t, first.HasNext())
	assert.Equal(t, "poster", first.Items[0].User.Username)

	second, err := svc.ListForum(ctx, 2, ForumFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"post 01"}, titles(second.Items))
	assert.True(t, second.HasPrev())
	assert.False(t, second.HasNext())
	assert.Equal(t, 1, second.PrevNum())

	beyond, err := svc.ListForum(ctx, 9, ForumFilter{})
	require.NoError(t, err)
	assert.Empty(t, beyond.Items)
	assert.Equal(t, 9, beyond.Number)

	clamped, err := svc.ListForum(ctx, 0, ForumFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, clamped.Number)
}

func TestListForumFilters(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewListingService(gdb, zap.NewNop())
	u := mustUser(t, gdb, "poster", false)
	mustPost(t, gdb, u, "Elden Ring boss guide", "guides", nil)
	mustPost(t, gdb, u, "Best mouse?", "discussion", nil)
	mustPost(t, gdb, u, "No section", "", nil)
	mustPost(t, gdb, u, "Elden Ring disc", models.SectionMarketplace, ptr(20))
	ctx := context.Background()

	page, err := svc.ListForum(ctx, 1, ForumFilter{Search: "ELDEN"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Elden Ring boss guide"}, titles(page.Items))

	// content matches too
	page, err = svc.ListForum(ctx, 1, ForumFilter{Search: "body of best"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Best mouse?"}, titles(page.Items))

	page, err = svc.ListForum(ctx, 1, ForumFilter{Section: "guides"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Elden Ring boss guide"}, titles(page.Items))

	page, err = svc.ListForum(ctx, 1, ForumFilter{Section: models.SectionMarketplace})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	page, err = svc.ListForum(ctx, 1, ForumFilter{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 3, "posts without a section belong to the forum")
}

func TestListMarketplaceBrackets(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewListingService(gdb, zap.NewNop())
	u := mustUser(t, gdb, "seller", false)
	for _, price := range []float64{500, 1000, 3000, 5000, 9000} {
		mustPost(t, gdb, u, fmt.Sprintf("item %.0f", price), models.SectionMarketplace, ptr(price))
	}
	mustPost(t, gdb, u, "chatter", "discussion", nil)
	ctx := context.Background()

	cases := map[string][]string{
		"0-1000":    {"item 1000", "item 500"},
		"1000-5000": {"item 5000", "item 3000", "item 1000"},
		"5000+":     {"item 9000", "item 5000"},
		"":          {"item 9000", "item 5000", "item 3000", "item 1000", "item 500"},
		"bogus":     {"item 9000", "item 5000", "item 3000", "item 1000", "item 500"},
	}
	for bracket, want := range cases {
		page, err := svc.ListMarketplace(ctx, 1, MarketFilter{Bracket: bracket})
		require.NoError(t, err, bracket)
		assert.Equal(t, want, titles(page.Items), bracket)
	}
}

func TestListMarketplaceSearchAndPreloads(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewListingService(gdb, zap.NewNop())
	u := mustUser(t, gdb, "seller", false)
	gpu := mustPost(t, gdb, u, "RTX 3080", models.SectionMarketplace, ptr(400))
	mustPost(t, gdb, u, "Keyboard", models.SectionMarketplace, ptr(50))
	require.NoError(t, gdb.Create(&models.Comment{PostID: gpu.ID, UserID: u.ID, Text: "still available?"}).Error)
	require.NoError(t, gdb.Create(&models.Image{PostID: gpu.ID, Filename: "b.png", DisplayOrder: 1, Size: "medium"}).Error)
	require.NoError(t, gdb.Create(&models.Image{PostID: gpu.ID, Filename: "a.png", DisplayOrder: 0, Size: "medium"}).Error)

	page, err := svc.ListMarketplace(context.Background(), 1, MarketFilter{Search: "rtx", Bracket: "0-1000"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	got := page.Items[0]
	assert.Len(t, got.Comments, 1)
	require.Len(t, got.Images, 2)
	assert.Equal(t, "a.png", got.Images[0].Filename)

	// marketplace search only looks at titles
	page, err = svc.ListMarketplace(context.Background(), 1, MarketFilter{Search: "body of"})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestListMarketplacePageSize(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewListingService(gdb, zap.NewNop())
	u := mustUser(t, gdb, "seller", false)
	for i := 0; i < 6; i++ {
		mustPost(t, gdb, u, fmt.Sprintf("thing %d", i), models.SectionMarketplace, ptr(1))
	}

	page, err := svc.ListMarketplace(context.Background(), 1, MarketFilter{})
	require.NoError(t, err)
	assert.Len(t, page.Items, MarketplacePageSize)
	assert.Equal(t, 2, page.TotalPages)
}

func TestListIndexIncludesEverySection(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewListingService(gdb, zap.NewNop())
	u := mustUser(t, gdb, "poster", false)
	mustPost(t, gdb, u, "a", "guides", nil)
	mustPost(t, gdb, u, "b", models.SectionMarketplace, ptr(5))

	page, err := svc.ListIndex(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, titles(page.Items))
	assert.Equal(t, 1, page.TotalPages)

	empty, err := svc.ListIndex(context.Background(), 2)
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
}

func TestListProfile(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewListingService(gdb, zap.NewNop())
	me := mustUser(t, gdb, "me", false)
	other := mustUser(t, gdb, "other", false)
	for i := 0; i < 6; i++ {
		mustPost(t, gdb, me, fmt.Sprintf("mine %d", i), "", nil)
	}
	mustPost(t, gdb, other, "theirs", "", nil)
	ctx := context.Background()

	_, err := svc.ListProfile(ctx, nil, 1)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	page, err := svc.ListProfile(ctx, me, 1)
	require.NoError(t, err)
	assert.Len(t, page.Items, ProfilePageSize)
	assert.Equal(t, int64(6), page.Total)
	for _, p := range page.Items {
		assert.Equal(t, me.ID, p.UserID)
	}

	page, err = svc.ListProfile(ctx, me, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"mine 0"}, titles(page.Items))
}

func TestSearchFoldsUnicodeCase(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewListingService(gdb, zap.NewNop())
	u := mustUser(t, gdb, "продавец", false)
	mustPost(t, gdb, u, "Продам Видеокарту", models.SectionMarketplace, ptr(300))
	mustPost(t, gdb, u, "Гайд по Доте", "guides", nil)
	mustPost(t, gdb, u, "Café meetup", "discussion", nil)
	ctx := context.Background()

	for _, q := range []string{"Видеокарту", "видеокарту", "ВИДЕОКАРТУ", "продам"} {
		page, err := svc.ListMarketplace(ctx, 1, MarketFilter{Search: q})
		require.NoError(t, err, q)
		assert.Equal(t, []string{"Продам Видеокарту"}, titles(page.Items), q)
	}
	for _, q := range []string{"Гайд", "гайд", "ДОТЕ"} {
		page, err := svc.ListForum(ctx, 1, ForumFilter{Search: q})
		require.NoError(t, err, q)
		assert.Equal(t, []string{"Гайд по Доте"}, titles(page.Items), q)
	}
	for _, q := range []string{"café", "CAFÉ"} {
		page, err := svc.ListForum(ctx, 1, ForumFilter{Search: q})
		require.NoError(t, err, q)
		assert.Equal(t, []string{"Café meetup"}, titles(page.Items), q)
	}
}

func TestSearchTreatsWildcardsLiterally(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewListingService(gdb, zap.NewNop())
	u := mustUser(t, gdb, "poster", false)
	mustPost(t, gdb, u, "100% legit", "discussion", nil)
	mustPost(t, gdb, u, "snake_case tips", "discussion", nil)
	mustPost(t, gdb, u, `C:\games`, "discussion", nil)
	mustPost(t, gdb, u, "plain", "discussion", nil)
	ctx := context.Background()

	cases := map[string][]string{
		"%":    {"100% legit"},
		"_":    {"snake_case tips"},
		`\`:    {`C:\games`},
		"0%_l": nil,
	}
	for q, want := range cases {
		page, err := svc.ListForum(ctx, 1, ForumFilter{Search: q})
		require.NoError(t, err, q)
		if want == nil {
			assert.Empty(t, page.Items, q)
			continue
		}
		assert.Equal(t, want, titles(page.Items), q)
	}
}
