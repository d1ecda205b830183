package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"mime/multipart"
	"net/http"
	"strconv"

	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/services"
	"agora/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PostHandler struct {
	content *services.ContentService
	md      *utils.MarkdownRenderer
	log     *zap.Logger
}

func NewPostHandler(content *services.ContentService, md *utils.MarkdownRenderer, log *zap.Logger) *PostHandler {
	return &PostHandler{content: content, md: md, log: log}
}

type commentView struct {
	models.Comment
	Body      template.HTML
	CanDelete bool
}

func postURL(id uint) string {
	return fmt.Sprintf("/post/%d", id)
}

func formatPrice(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func postInput(c *gin.Context) services.PostInput {
	return services.PostInput{
		Title:   c.PostForm("title"),
		Content: c.PostForm("content"),
		Section: c.PostForm("section"),
		Price:   c.PostForm("price"),
	}
}

// formFiles returns the uploads under field; a non-multipart body has none.
func formFiles(c *gin.Context, field string) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil {
		return nil
	}
	return form.File[field]
}

// Detail counts the visit and shows the post with its comments.
func (h *PostHandler) Detail(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		fail(c, services.ErrNotFound)
		return
	}
	ctx := c.Request.Context()
	if err := h.content.RecordView(ctx, id); err != nil {
		fail(c, err)
		return
	}
	post, err := h.content.GetPost(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	comments := make([]commentView, 0, len(post.Comments))
	for _, cm := range post.Comments {
		comments = append(comments, commentView{
			Comment:   cm,
			Body:      h.md.Render("comment", cm.ID, cm.CreatedAt, cm.Text),
			CanDelete: user != nil && (user.ID == cm.UserID || user.IsAdmin),
		})
	}

	Render(c, http.StatusOK, "post/detail.html", gin.H{
		"Post":     post,
		"Body":     h.md.Render("post", post.ID, post.UpdatedAt, post.Content),
		"Comments": comments,
		"CanEdit":  user != nil && user.ID == post.UserID,
		"Title":    post.Title,
	})
}

// ShowCreate renders the new-post form. ?section= preselects a section and
// ?price=1 shows the price field.
func (h *PostHandler) ShowCreate(c *gin.Context) {
	section := c.Query("section")
	Render(c, http.StatusOK, "post/create.html", gin.H{
		"Form":      services.PostInput{Section: section},
		"ShowPrice": c.Query("price") == "1" || models.IsMarketplace(section),
		"Sections":  models.ForumSections,
	})
}

func (h *PostHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)
	in := postInput(c)

	post, err := h.content.CreatePost(c.Request.Context(), user, in, formFiles(c, "images"))
	switch {
	case err == nil:
		addFlash(c, FlashSuccess, "Post created!")
		c.Redirect(http.StatusFound, postURL(post.ID))
	case post != nil:
		h.log.Warn("post created without all images", zap.Uint("post_id", post.ID), zap.Error(err))
		addFlash(c, FlashError, "Post created, but some images could not be saved: "+err.Error())
		c.Redirect(http.StatusFound, postURL(post.ID))
	case errors.Is(err, services.ErrValidation):
		Render(c, http.StatusBadRequest, "post/create.html", gin.H{
			"Error":     userMessage(err),
			"Form":      in,
			"ShowPrice": in.Price != "" || models.IsMarketplace(in.Section),
			"Sections":  models.ForumSections,
		})
	case errors.Is(err, services.ErrPersistence):
		addFlash(c, FlashError, "Failed to create post: "+err.Error())
		c.Redirect(http.StatusFound, "/create_post")
	default:
		fail(c, err)
	}
}

func (h *PostHandler) ShowEdit(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		fail(c, services.ErrNotFound)
		return
	}
	post, err := h.content.GetPost(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if post.UserID != middleware.CurrentUser(c).ID {
		fail(c, services.ErrForbidden)
		return
	}
	h.renderEdit(c, http.StatusOK, post, services.PostInput{
		Title:   post.Title,
		Content: post.Content,
		Section: post.Section,
		Price:   formatPrice(post.Price),
	}, "")
}

func (h *PostHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		fail(c, services.ErrNotFound)
		return
	}
	ctx := c.Request.Context()
	in := postInput(c)

	post, err := h.content.EditPost(ctx, middleware.CurrentUser(c), id, in, formFiles(c, "new_images"))
	switch {
	case err == nil:
		addFlash(c, FlashSuccess, "Post updated!")
		c.Redirect(http.StatusFound, postURL(post.ID))
	case post != nil:
		h.log.Warn("post edited without all images", zap.Uint("post_id", post.ID), zap.Error(err))
		addFlash(c, FlashError, "Post updated, but some images could not be saved: "+err.Error())
		c.Redirect(http.StatusFound, postURL(post.ID))
	case errors.Is(err, services.ErrValidation):
		current, gerr := h.content.GetPost(ctx, id)
		if gerr != nil {
			fail(c, gerr)
			return
		}
		h.renderEdit(c, http.StatusBadRequest, current, in, userMessage(err))
	default:
		fail(c, err)
	}
}

func (h *PostHandler) renderEdit(c *gin.Context, code int, post *models.Post, in services.PostInput, errMsg string) {
	obj := gin.H{
		"Post":      post,
		"Form":      in,
		"ShowPrice": true,
		"Sections":  models.ForumSections,
	}
	if errMsg != "" {
		obj["Error"] = errMsg
	}
	Render(c, code, "post/edit.html", obj)
}

// Delete removes the post and returns to the forum.
func (h *PostHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		fail(c, services.ErrNotFound)
		return
	}
	err := h.content.DeletePost(c.Request.Context(), middleware.CurrentUser(c), id)
	switch {
	case err == nil:
		addFlash(c, FlashSuccess, "Post deleted.")
	case errors.Is(err, services.ErrPersistence):
		addFlash(c, FlashError, "Failed to delete post: "+err.Error())
	default:
		fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/forum")
}

func (h *PostHandler) AddComment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		fail(c, services.ErrNotFound)
		return
	}
	_, err := h.content.AddComment(c.Request.Context(), middleware.CurrentUser(c), id, c.PostForm("text"))
	switch {
	case err == nil:
		addFlash(c, FlashSuccess, "Comment added.")
	case errors.Is(err, services.ErrValidation):
		addFlash(c, FlashError, "Comment cannot be empty.")
	default:
		fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, postURL(id))
}

func (h *PostHandler) DeleteComment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		fail(c, services.ErrNotFound)
		return
	}
	comment, err := h.content.DeleteComment(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	addFlash(c, FlashSuccess, "Comment deleted.")
	c.Redirect(http.StatusFound, postURL(comment.PostID))
}
