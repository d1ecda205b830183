package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"mime/multipart"
	"strconv"
	"strings"

	"agora/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PostInput is the raw form data for creating or editing a post.
// Price stays a string so that parsing errors are reported here.
type PostInput struct {
	Title   string
	Content string
	Section string
	Price   string
}

// ContentService owns posts, comments and images.
type ContentService struct {
	db    *gorm.DB
	files *ImageStore
	log   *zap.Logger
}

func NewContentService(db *gorm.DB, files *ImageStore, log *zap.Logger) *ContentService {
	return &ContentService{db: db, files: files, log: log.Named("content")}
}

// parsePrice returns nil for an empty price.
func parsePrice(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("%w: price %q is not a number", ErrValidation, raw)
	}
	return &v, nil
}

// GetPost loads a post with its author, images (in display order) and
// comments (oldest first).
func (s *ContentService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC, id ASC")
		}).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("Comments.User").
		First(&post, id).Error
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &post, nil
}

// CreatePost validates the input, stores the post and then attaches the
// accepted images. The post row is committed before any image is written;
// if an image fails the post is still returned together with the error.
func (s *ContentService) CreatePost(ctx context.Context, actor *models.User, in PostInput, images []*multipart.FileHeader) (*models.Post, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" || content == "" {
		return nil, fmt.Errorf("%w: title and content are required", ErrValidation)
	}
	price, err := parsePrice(in.Price)
	if err != nil {
		return nil, err
	}

	post := models.Post{
		UserID:  actor.ID,
		Title:   title,
		Content: content,
		Section: strings.TrimSpace(in.Section),
		Price:   price,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&post).Error
	})
	if err != nil {
		s.log.Error("create post", zap.Uint("user_id", actor.ID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	s.log.Info("post created", zap.Uint("post_id", post.ID), zap.Uint("user_id", actor.ID), zap.String("section", post.Section))

	if err := s.attachImages(ctx, post.ID, images, 0); err != nil {
		return &post, err
	}
	return &post, nil
}

// EditPost replaces the post fields and appends new images after the
// existing ones. Only the author may edit; an unparsable price aborts the
// whole edit. The field changes are committed before any image is written;
// if an image fails the edited post is still returned together with the error.
func (s *ContentService) EditPost(ctx context.Context, actor *models.User, id uint, in PostInput, newImages []*multipart.FileHeader) (*models.Post, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	post, err := s.ownedPost(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	price, err := parsePrice(in.Price)
	if err != nil {
		return nil, err
	}

	var priceCol interface{}
	if price != nil {
		priceCol = *price
	}
	err = s.db.WithContext(ctx).Model(post).Updates(map[string]interface{}{
		"title":   in.Title,
		"content": in.Content,
		"section": strings.TrimSpace(in.Section),
		"price":   priceCol,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.log.Info("post edited", zap.Uint("post_id", post.ID), zap.Uint("user_id", actor.ID))

	var existing int64
	attachErr := s.db.WithContext(ctx).Model(&models.Image{}).Where("post_id = ?", post.ID).Count(&existing).Error
	if attachErr != nil {
		attachErr = fmt.Errorf("%w: %v", ErrPersistence, attachErr)
	} else {
		attachErr = s.attachImages(ctx, post.ID, newImages, int(existing))
	}

	edited, err := s.GetPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	return edited, attachErr
}

// DeletePost removes the post's image files (ignoring failures) and then
// deletes its comments, images and the post itself in one transaction.
func (s *ContentService) DeletePost(ctx context.Context, actor *models.User, id uint) error {
	if actor == nil {
		return ErrUnauthenticated
	}
	post, err := s.ownedPost(ctx, actor, id)
	if err != nil {
		return err
	}

	var images []models.Image
	if err := s.db.WithContext(ctx).Where("post_id = ?", post.ID).Find(&images).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	for _, img := range images {
		if err := s.files.Remove(img.Filename); err != nil {
			s.log.Debug("remove image file", zap.String("file", img.Filename), zap.Error(err))
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Image{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, post.ID).Error
	})
	if err != nil {
		s.log.Error("delete post", zap.Uint("post_id", post.ID), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.log.Info("post deleted", zap.Uint("post_id", post.ID), zap.Uint("user_id", actor.ID), zap.Int("images", len(images)))
	return nil
}

// AddComment attaches a comment by actor to the post.
func (s *ContentService) AddComment(ctx context.Context, actor *models.User, postID uint, text string) (*models.Comment, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	var post models.Post
	if err := s.db.WithContext(ctx).Select("id").First(&post, postID).Error; err != nil {
		return nil, notFoundOr(err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: comment cannot be empty", ErrValidation)
	}

	comment := models.Comment{PostID: post.ID, UserID: actor.ID, Text: text}
	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return &comment, nil
}

// DeleteComment removes a comment. The author or an admin may delete it.
// The deleted comment is returned so callers know which post it was on.
func (s *ContentService) DeleteComment(ctx context.Context, actor *models.User, id uint) (*models.Comment, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	var comment models.Comment
	if err := s.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	if comment.UserID != actor.ID && !actor.IsAdmin {
		return nil, ErrForbidden
	}
	if err := s.db.WithContext(ctx).Delete(&comment).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if comment.UserID != actor.ID {
		s.log.Info("comment removed by admin", zap.Uint("comment_id", comment.ID), zap.Uint("admin_id", actor.ID))
	}
	return &comment, nil
}

// RecordView bumps the view counter by one. The increment happens in SQL
// so concurrent views are not lost.
func (s *ContentService) RecordView(ctx context.Context, postID uint) error {
	res := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn("views", gorm.Expr("COALESCE(views, 0) + 1"))
	if res.Error != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ownedPost loads a post and checks that actor wrote it. Admins get no
// override here, unlike comment deletion.
func (s *ContentService) ownedPost(ctx context.Context, actor *models.User, id uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	if post.UserID != actor.ID {
		return nil, ErrForbidden
	}
	return &post, nil
}

// attachImages stores every accepted upload and inserts its Image row.
// order is base plus the upload's position in files, so skipped uploads
// leave gaps. Files already written are kept when a later one fails.
func (s *ContentService) attachImages(ctx context.Context, postID uint, files []*multipart.FileHeader, base int) error {
	var rows []models.Image
	for i, fh := range files {
		if !s.files.Accepts(fh) {
			if fh != nil {
				s.log.Debug("skipping upload", zap.String("file", fh.Filename), zap.Int64("size", fh.Size))
			}
			continue
		}
		name, err := s.files.Save(fh)
		if err != nil {
			return fmt.Errorf("%w: save image %q: %v", ErrPersistence, fh.Filename, err)
		}
		rows = append(rows, models.Image{
			PostID:       postID,
			Filename:     name,
			DisplayOrder: base + i,
			Size:         models.DefaultImageSize,
		})
	}
	if len(rows) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}
