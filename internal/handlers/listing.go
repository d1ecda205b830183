package handlers

import (
	"net/http"

	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/services"
	"agora/internal/utils"

	"github.com/gin-gonic/gin"
)

type ListingHandler struct {
	listings *services.ListingService
}

func NewListingHandler(listings *services.ListingService) *ListingHandler {
	return &ListingHandler{listings: listings}
}

// withPage adds the page and its neighbour links to obj.
func withPage(c *gin.Context, p *services.Page[models.Post], obj gin.H) gin.H {
	obj["Page"] = p
	obj["Posts"] = p.Items
	if p.HasPrev() {
		obj["PrevURL"] = pageURL(c, p.PrevNum())
	}
	if p.HasNext() {
		obj["NextURL"] = pageURL(c, p.NextNum())
	}
	return obj
}

func (h *ListingHandler) Index(c *gin.Context) {
	page, err := h.listings.ListIndex(c.Request.Context(), utils.PageNumber(c.Query("page")))
	if err != nil {
		fail(c, err)
		return
	}
	Render(c, http.StatusOK, "index.html", withPage(c, page, gin.H{}))
}

func (h *ListingHandler) Forum(c *gin.Context) {
	filter := services.ForumFilter{
		Search:  c.Query("search"),
		Section: c.Query("section_filter"),
	}
	page, err := h.listings.ListForum(c.Request.Context(), utils.PageNumber(c.Query("page")), filter)
	if err != nil {
		fail(c, err)
		return
	}
	Render(c, http.StatusOK, "forum.html", withPage(c, page, gin.H{
		"SearchQuery":   filter.Search,
		"SectionFilter": filter.Section,
		"Sections":      models.ForumSections,
	}))
}

func (h *ListingHandler) Marketplace(c *gin.Context) {
	filter := services.MarketFilter{
		Search:  c.Query("search"),
		Bracket: c.Query("price_filter"),
	}
	page, err := h.listings.ListMarketplace(c.Request.Context(), utils.PageNumber(c.Query("page")), filter)
	if err != nil {
		fail(c, err)
		return
	}
	Render(c, http.StatusOK, "marketplace.html", withPage(c, page, gin.H{
		"SearchQuery": filter.Search,
		"PriceFilter": filter.Bracket,
		"Brackets":    models.PriceBrackets(),
	}))
}

func (h *ListingHandler) Profile(c *gin.Context) {
	page, err := h.listings.ListProfile(c.Request.Context(), middleware.CurrentUser(c), utils.PageNumber(c.Query("page")))
	if err != nil {
		fail(c, err)
		return
	}
	Render(c, http.StatusOK, "profile.html", withPage(c, page, gin.H{}))
}
