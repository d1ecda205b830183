package services

import (
	"context"
	"fmt"
	"strings"

	"agora/internal/db"
	"agora/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Page sizes per listing.
const (
	IndexPageSize       = 10
	ForumPageSize       = 10
	MarketplacePageSize = 5
	ProfilePageSize     = 5
)

// Page is one page of a listing. Number is 1-based. A page past the end is
// returned empty rather than as an error.
type Page[T any] struct {
	Items      []T
	Number     int
	PerPage    int
	Total      int64
	TotalPages int
}

func (p *Page[T]) HasPrev() bool { return p.Number > 1 }
func (p *Page[T]) HasNext() bool { return p.Number < p.TotalPages }
func (p *Page[T]) PrevNum() int  { return p.Number - 1 }
func (p *Page[T]) NextNum() int  { return p.Number + 1 }

// ForumFilter narrows the forum feed. Empty fields apply no filter.
type ForumFilter struct {
	Search  string
	Section string
}

// MarketFilter narrows the marketplace feed. An unrecognised Bracket is
// ignored, matching an empty one.
type MarketFilter struct {
	Search  string
	Bracket string
}

type ListingService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewListingService(db *gorm.DB, log *zap.Logger) *ListingService {
	return &ListingService{db: db, log: log.Named("listing")}
}

// ListIndex returns every post, newest first.
func (s *ListingService) ListIndex(ctx context.Context, page int) (*Page[models.Post], error) {
	return s.paginate(ctx, page, IndexPageSize, nil, withAuthor)
}

// ListForum returns non-marketplace posts, optionally searched on title or
// content and restricted to one section.
func (s *ListingService) ListForum(ctx context.Context, page int, f ForumFilter) (*Page[models.Post], error) {
	filters := []func(*gorm.DB) *gorm.DB{
		func(db *gorm.DB) *gorm.DB {
			return db.Where("section <> ?", models.SectionMarketplace)
		},
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		filters = append(filters, s.contains(q, "title", "content"))
	}
	if section := strings.TrimSpace(f.Section); section != "" {
		filters = append(filters, func(db *gorm.DB) *gorm.DB {
			return db.Where("section = ?", section)
		})
	}
	return s.paginate(ctx, page, ForumPageSize, filters, withAuthor)
}

// ListMarketplace returns marketplace listings with comments and images
// loaded, optionally searched on title and limited to a price bracket.
func (s *ListingService) ListMarketplace(ctx context.Context, page int, f MarketFilter) (*Page[models.Post], error) {
	filters := []func(*gorm.DB) *gorm.DB{
		func(db *gorm.DB) *gorm.DB {
			return db.Where("section = ?", models.SectionMarketplace)
		},
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		filters = append(filters, s.contains(q, "title"))
	}
	if b, ok := models.ParsePriceBracket(f.Bracket); ok {
		filters = append(filters, bracketScope(b))
	} else if f.Bracket != "" {
		s.log.Debug("ignoring unknown price bracket", zap.String("bracket", f.Bracket))
	}

	return s.paginate(ctx, page, MarketplacePageSize, filters, func(db *gorm.DB) *gorm.DB {
		return withAuthor(db).
			Preload("Comments").
			Preload("Images", func(db *gorm.DB) *gorm.DB {
				return db.Order("display_order ASC, id ASC")
			})
	})
}

// ListProfile returns the actor's own posts.
func (s *ListingService) ListProfile(ctx context.Context, actor *models.User, page int) (*Page[models.Post], error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	filters := []func(*gorm.DB) *gorm.DB{
		func(db *gorm.DB) *gorm.DB {
			return db.Where("user_id = ?", actor.ID)
		},
	}
	return s.paginate(ctx, page, ProfilePageSize, filters, withAuthor)
}

func bracketScope(b models.PriceBracket) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch b {
		case models.BracketUpTo1000:
			return db.Where("price <= ?", 1000)
		case models.Bracket1000To5000:
			return db.Where("price BETWEEN ? AND ?", 1000, 5000)
		case models.Bracket5000Plus:
			return db.Where("price >= ?", 5000)
		}
		return db
	}
}

func withAuthor(db *gorm.DB) *gorm.DB {
	return db.Preload("User")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// contains matches q as a literal, case-insensitive substring of any of
// cols. Both sides are lowered in SQL with the dialect's Unicode-aware
// function so the comparison never mixes Go and SQL case folding.
func (s *ListingService) contains(q string, cols ...string) func(*gorm.DB) *gorm.DB {
	lower := db.LowerFunc(s.db)
	pattern := "%" + likeEscaper.Replace(q) + "%"
	clauses := make([]string, len(cols))
	args := make([]interface{}, len(cols))
	for i, col := range cols {
		clauses[i] = fmt.Sprintf(`%s(%s) LIKE %s(?) ESCAPE '\'`, lower, col, lower)
		args[i] = pattern
	}
	where := strings.Join(clauses, " OR ")
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where(where, args...)
	}
}

// paginate counts and fetches one page of posts, newest first. filters
// apply to both queries; load only to the fetch.
func (s *ListingService) paginate(ctx context.Context, page, perPage int, filters []func(*gorm.DB) *gorm.DB, load func(*gorm.DB) *gorm.DB) (*Page[models.Post], error) {
	if page < 1 {
		page = 1
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Post{}).Scopes(filters...).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	if totalPages == 0 {
		totalPages = 1
	}

	posts := []models.Post{}
	if int64((page-1)*perPage) < total {
		q := s.db.WithContext(ctx).Scopes(filters...)
		if load != nil {
			q = load(q)
		}
		err := q.Order("created_at DESC, id DESC").
			Offset((page - 1) * perPage).
			Limit(perPage).
			Find(&posts).Error
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
	}

	return &Page[models.Post]{
		Items:      posts,
		Number:     page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}
