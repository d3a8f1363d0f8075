package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"retouchlab-backend/internal/models"
	"retouchlab-backend/internal/supabase"
)

// ContentHandler serves the marketing-site content: gallery examples, blog
// posts, homepage images, company info and pricing. Reads are public, writes
// are admin-only.
type ContentHandler struct {
	dbClient      *supabase.DatabaseClient
	storageClient *supabase.StorageClient
	logger        *zap.SugaredLogger
}

func NewContentHandler(dbClient *supabase.DatabaseClient, storageClient *supabase.StorageClient, logger *zap.SugaredLogger) *ContentHandler {
	return &ContentHandler{
		dbClient:      dbClient,
		storageClient: storageClient,
		logger:        logger,
	}
}

// readFormFile reads one named multipart file, writing the error response on
// failure.
func readFormFile(c *gin.Context, field string) (*multipart.FileHeader, []byte, bool) {
	fh, err := c.FormFile(field)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "missing file: " + field})
		return nil, nil, false
	}

	src, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to read upload",
			Message: err.Error(),
		})
		return nil, nil, false
	}
	data, err := io.ReadAll(src)
	src.Close()
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to read upload",
			Message: err.Error(),
		})
		return nil, nil, false
	}
	return fh, data, true
}

// Gallery examples

// ListGalleryExamples godoc
// @Summary     List before/after gallery examples
// @Tags        content
// @Produce     json
// @Success     200 {array} models.GalleryExampleResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /content/examples [get]
func (h *ContentHandler) ListGalleryExamples(c *gin.Context) {
	examples, err := h.dbClient.ListGalleryExamples(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list gallery examples",
			Message: err.Error(),
		})
		return
	}

	resp := make([]models.GalleryExampleResponse, 0, len(examples))
	for _, e := range examples {
		resp = append(resp, models.GalleryExampleResponse{
			ID:        e.ID.String(),
			Title:     e.Title,
			BeforeURL: e.BeforeURL,
			AfterURL:  e.AfterURL,
			SortOrder: e.SortOrder,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// CreateGalleryExample godoc
// @Summary     Add a before/after gallery example
// @Tags        admin
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       title formData string true "Example title"
// @Param       before formData file true "Before image"
// @Param       after formData file true "After image"
// @Success     201 {object} models.GalleryExampleResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /admin/content/examples [post]
func (h *ContentHandler) CreateGalleryExample(c *gin.Context) {
	title := c.PostForm("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "title is required"})
		return
	}

	beforeFH, beforeData, ok := readFormFile(c, "before")
	if !ok {
		return
	}
	afterFH, afterData, ok := readFormFile(c, "after")
	if !ok {
		return
	}

	beforePath, beforeURL, err := h.storageClient.UploadContentFile("examples", beforeFH.Filename, beforeFH.Header.Get("Content-Type"), beforeData)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to store before image",
			Message: err.Error(),
		})
		return
	}
	afterPath, afterURL, err := h.storageClient.UploadContentFile("examples", afterFH.Filename, afterFH.Header.Get("Content-Type"), afterData)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to store after image",
			Message: err.Error(),
		})
		return
	}

	example := &models.GalleryExample{
		ID:         uuid.New(),
		Title:      title,
		BeforePath: beforePath,
		BeforeURL:  beforeURL,
		AfterPath:  afterPath,
		AfterURL:   afterURL,
	}
	if err := h.dbClient.CreateGalleryExample(c.Request.Context(), example); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to create gallery example",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, models.GalleryExampleResponse{
		ID:        example.ID.String(),
		Title:     example.Title,
		BeforeURL: example.BeforeURL,
		AfterURL:  example.AfterURL,
	})
}

// DeleteGalleryExample godoc
// @Summary     Delete a gallery example
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Example ID"
// @Success     204
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /admin/content/examples/{id} [delete]
func (h *ContentHandler) DeleteGalleryExample(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	example, err := h.dbClient.DeleteGalleryExample(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to delete gallery example",
			Message: err.Error(),
		})
		return
	}

	// Storage cleanup is best-effort; the row is already gone.
	for _, path := range []string{example.BeforePath, example.AfterPath} {
		if err := h.storageClient.DeleteFile(path); err != nil {
			h.logger.Warnw("failed to delete example file", "path", path, "error", err)
		}
	}

	c.Status(http.StatusNoContent)
}

// ReorderGalleryExamples godoc
// @Summary     Reorder gallery examples
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.ReorderRequest true "Example ids in display order"
// @Success     204
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /admin/content/examples/reorder [post]
func (h *ContentHandler) ReorderGalleryExamples(c *gin.Context) {
	ids, ok := bindReorder(c)
	if !ok {
		return
	}

	if err := h.dbClient.ReorderGalleryExamples(c.Request.Context(), ids); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to reorder gallery examples",
			Message: err.Error(),
		})
		return
	}
	c.Status(http.StatusNoContent)
}

// Blog posts

// ListBlogPosts godoc
// @Summary     List published blog posts
// @Tags        content
// @Produce     json
// @Success     200 {array} models.BlogPostResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /content/blog [get]
func (h *ContentHandler) ListBlogPosts(c *gin.Context) {
	posts, err := h.dbClient.ListBlogPosts(c.Request.Context(), true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list blog posts",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, blogPostsToResponses(posts))
}

// GetBlogPost godoc
// @Summary     Get a published blog post by slug
// @Tags        content
// @Produce     json
// @Param       slug path string true "Post slug"
// @Success     200 {object} models.BlogPostResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /content/blog/{slug} [get]
func (h *ContentHandler) GetBlogPost(c *gin.Context) {
	post, err := h.dbClient.GetBlogPostBySlug(c.Request.Context(), c.Param("slug"), true)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "blog post not found"})
		return
	}
	c.JSON(http.StatusOK, blogPostToResponse(post))
}

// AdminListBlogPosts godoc
// @Summary     List all blog posts including drafts
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Success     200 {array} models.BlogPostResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /admin/content/blog [get]
func (h *ContentHandler) AdminListBlogPosts(c *gin.Context) {
	posts, err := h.dbClient.ListBlogPosts(c.Request.Context(), false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list blog posts",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, blogPostsToResponses(posts))
}

// CreateBlogPost godoc
// @Summary     Create a blog post
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.BlogPostRequest true "Post content"
// @Success     201 {object} models.BlogPostResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /admin/content/blog [post]
func (h *ContentHandler) CreateBlogPost(c *gin.Context) {
	var req models.BlogPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request",
			Message: err.Error(),
		})
		return
	}

	post := blogPostFromRequest(uuid.New(), &req)
	if err := h.dbClient.CreateBlogPost(c.Request.Context(), post); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to create blog post",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, blogPostToResponse(post))
}

// UpdateBlogPost godoc
// @Summary     Update a blog post
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Post ID"
// @Param       request body models.BlogPostRequest true "Post content"
// @Success     200 {object} models.BlogPostResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /admin/content/blog/{id} [put]
func (h *ContentHandler) UpdateBlogPost(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req models.BlogPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request",
			Message: err.Error(),
		})
		return
	}

	post := blogPostFromRequest(id, &req)
	if err := h.dbClient.UpdateBlogPost(c.Request.Context(), post); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to update blog post",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, blogPostToResponse(post))
}

// DeleteBlogPost godoc
// @Summary     Delete a blog post
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Post ID"
// @Success     204
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /admin/content/blog/{id} [delete]
func (h *ContentHandler) DeleteBlogPost(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.dbClient.DeleteBlogPost(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to delete blog post",
			Message: err.Error(),
		})
		return
	}
	c.Status(http.StatusNoContent)
}

// Homepage images

// ListHomepageImages godoc
// @Summary     List homepage carousel images
// @Tags        content
// @Produce     json
// @Success     200 {array} models.HomepageImageResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /content/homepage-images [get]
func (h *ContentHandler) ListHomepageImages(c *gin.Context) {
	images, err := h.dbClient.ListHomepageImages(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list homepage images",
			Message: err.Error(),
		})
		return
	}

	resp := make([]models.HomepageImageResponse, 0, len(images))
	for _, img := range images {
		resp = append(resp, models.HomepageImageResponse{
			ID:        img.ID.String(),
			Title:     img.Title.String,
			URL:       img.StorageURL,
			SortOrder: img.SortOrder,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// CreateHomepageImage godoc
// @Summary     Upload a homepage image
// @Tags        admin
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       image formData file true "Image"
// @Param       title formData string false "Caption"
// @Success     201 {object} models.HomepageImageResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /admin/content/homepage-images [post]
func (h *ContentHandler) CreateHomepageImage(c *gin.Context) {
	fh, data, ok := readFormFile(c, "image")
	if !ok {
		return
	}

	path, url, err := h.storageClient.UploadContentFile("homepage", fh.Filename, fh.Header.Get("Content-Type"), data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to store image",
			Message: err.Error(),
		})
		return
	}

	img := &models.HomepageImage{
		ID:          uuid.New(),
		StoragePath: path,
		StorageURL:  url,
	}
	if title := c.PostForm("title"); title != "" {
		img.Title = nullString(title)
	}

	if err := h.dbClient.CreateHomepageImage(c.Request.Context(), img); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to create homepage image",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, models.HomepageImageResponse{
		ID:    img.ID.String(),
		Title: img.Title.String,
		URL:   img.StorageURL,
	})
}

// DeleteHomepageImage godoc
// @Summary     Delete a homepage image
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Image ID"
// @Success     204
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /admin/content/homepage-images/{id} [delete]
func (h *ContentHandler) DeleteHomepageImage(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	img, err := h.dbClient.DeleteHomepageImage(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to delete homepage image",
			Message: err.Error(),
		})
		return
	}

	if err := h.storageClient.DeleteFile(img.StoragePath); err != nil {
		h.logger.Warnw("failed to delete homepage image file", "path", img.StoragePath, "error", err)
	}

	c.Status(http.StatusNoContent)
}

// ReorderHomepageImages godoc
// @Summary     Reorder homepage images
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.ReorderRequest true "Image ids in display order"
// @Success     204
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /admin/content/homepage-images/reorder [post]
func (h *ContentHandler) ReorderHomepageImages(c *gin.Context) {
	ids, ok := bindReorder(c)
	if !ok {
		return
	}

	if err := h.dbClient.ReorderHomepageImages(c.Request.Context(), ids); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to reorder homepage images",
			Message: err.Error(),
		})
		return
	}
	c.Status(http.StatusNoContent)
}

// Company info and pricing

// GetCompanyInfo godoc
// @Summary     Get company contact details
// @Tags        content
// @Produce     json
// @Success     200 {object} models.CompanyInfoResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /content/company [get]
func (h *ContentHandler) GetCompanyInfo(c *gin.Context) {
	info, err := h.dbClient.GetCompanyInfo(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to load company info",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.CompanyInfoResponse{
		Name:      info.Name,
		Email:     info.Email,
		Phone:     info.Phone.String,
		Address:   info.Address.String,
		VATNumber: info.VATNumber.String,
		UpdatedAt: info.UpdatedAt,
	})
}

// UpdateCompanyInfo godoc
// @Summary     Update company contact details
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.CompanyInfoRequest true "Company details"
// @Success     204
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /admin/content/company [put]
func (h *ContentHandler) UpdateCompanyInfo(c *gin.Context) {
	var req models.CompanyInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request",
			Message: err.Error(),
		})
		return
	}

	if err := h.dbClient.UpdateCompanyInfo(c.Request.Context(), &req); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to update company info",
			Message: err.Error(),
		})
		return
	}
	c.Status(http.StatusNoContent)
}

// GetPricing godoc
// @Summary     Get the current price per photo
// @Tags        content
// @Produce     json
// @Success     200 {object} models.PricingResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /content/pricing [get]
func (h *ContentHandler) GetPricing(c *gin.Context) {
	pricing, err := h.dbClient.GetPricing(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to load pricing",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.PricingResponse{
		PricePerPhotoCents: pricing.PricePerPhotoCents,
		Currency:           pricing.Currency,
		UpdatedAt:          pricing.UpdatedAt,
	})
}

// UpdatePricing godoc
// @Summary     Update the price per photo
// @Description Applies to new orders only; existing orders and invoices keep the price they were created with.
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.PricingRequest true "New price"
// @Success     204
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /admin/content/pricing [put]
func (h *ContentHandler) UpdatePricing(c *gin.Context) {
	var req models.PricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request",
			Message: err.Error(),
		})
		return
	}
	if req.PricePerPhotoCents <= 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "price must be positive"})
		return
	}

	if err := h.dbClient.UpdatePricing(c.Request.Context(), req.PricePerPhotoCents, req.Currency); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to update pricing",
			Message: err.Error(),
		})
		return
	}
	c.Status(http.StatusNoContent)
}

// bindReorder parses a ReorderRequest into uuids, writing the error response
// on failure.
func bindReorder(c *gin.Context) ([]uuid.UUID, bool) {
	var req models.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request",
			Message: err.Error(),
		})
		return nil, false
	}

	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid id: " + raw})
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}

func blogPostFromRequest(id uuid.UUID, req *models.BlogPostRequest) *models.BlogPost {
	post := &models.BlogPost{
		ID:        id,
		Slug:      req.Slug,
		Title:     req.Title,
		Body:      req.Body,
		Published: req.Published,
	}
	if req.Excerpt != "" {
		post.Excerpt = nullString(req.Excerpt)
	}
	if req.CoverURL != "" {
		post.CoverURL = nullString(req.CoverURL)
	}
	if req.Published {
		post.PublishedAt = nullTime(time.Now())
	}
	return post
}

func blogPostToResponse(p *models.BlogPost) models.BlogPostResponse {
	resp := models.BlogPostResponse{
		ID:        p.ID.String(),
		Slug:      p.Slug,
		Title:     p.Title,
		Excerpt:   p.Excerpt.String,
		Body:      p.Body,
		CoverURL:  p.CoverURL.String,
		Published: p.Published,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.PublishedAt.Valid {
		resp.PublishedAt = &p.PublishedAt.Time
	}
	return resp
}

func blogPostsToResponses(posts []models.BlogPost) []models.BlogPostResponse {
	resp := make([]models.BlogPostResponse, 0, len(posts))
	for i := range posts {
		resp = append(resp, blogPostToResponse(&posts[i]))
	}
	return resp
}
