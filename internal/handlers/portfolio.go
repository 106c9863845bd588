package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/aidemo/internal/app"
	"github.com/charlesng35/aidemo/internal/middleware"
	"github.com/charlesng35/aidemo/internal/models"
	"github.com/charlesng35/aidemo/internal/monitoring"
	appErrors "github.com/charlesng35/aidemo/pkg/errors"
	"github.com/charlesng35/aidemo/pkg/logger"
	"github.com/charlesng35/aidemo/pkg/response"
)

const (
	defaultPostsPerPage = 10
	maxPostsPerPage     = 50
)

// PortfolioHandler serves the project page, the code name form and the blog.
type PortfolioHandler struct {
	db   *gorm.DB
	site app.PortfolioConfig
	log  *zap.Logger
}

// NewPortfolioHandler constructs the portfolio handler.
func NewPortfolioHandler(db *gorm.DB, site app.PortfolioConfig) (*PortfolioHandler, error) {
	if db == nil {
		return nil, errors.New("portfolio handler: database is required")
	}
	return &PortfolioHandler{db: db, site: site, log: logger.WithModule("portfolio")}, nil
}

type nameGeneratorForm struct {
	Name string `form:"name" validate:"required,max=100"`
	Like string `form:"like" validate:"required,max=100"`
	Pet  string `form:"pet" validate:"required,max=100"`
}

type portfolioPage struct {
	Title     string
	Author    string
	Projects  []app.ProjectConfig
	CSRFToken string
	Form      nameGeneratorForm
	CodeName  string
	Name      string
	Error     string
	Posts     []models.BlogPost
}

func (h *PortfolioHandler) page(c *gin.Context, title string) portfolioPage {
	return portfolioPage{
		Title:     title,
		Author:    h.site.Author,
		CSRFToken: middleware.CSRFToken(c),
	}
}

// Project renders the landing page.
// GET /
func (h *PortfolioHandler) Project(c *gin.Context) {
	data := h.page(c, h.site.Title)
	data.Projects = h.site.Projects
	c.HTML(http.StatusOK, "project.html", data)
}

// NameGeneratorForm renders the empty form.
// GET /name_generator
func (h *PortfolioHandler) NameGeneratorForm(c *gin.Context) {
	c.HTML(http.StatusOK, "name_generator.html", h.page(c, "Code Name Generator"))
}

// NameGenerator renders the code name "<pet> <like>" and greets the visitor.
// POST /name_generator
func (h *PortfolioHandler) NameGenerator(c *gin.Context) {
	data := h.page(c, "Code Name Generator")

	var form nameGeneratorForm
	msg := bindForm(c, &form, func(f *nameGeneratorForm) {
		f.Name = strings.TrimSpace(f.Name)
		f.Like = strings.TrimSpace(f.Like)
		f.Pet = strings.TrimSpace(f.Pet)
	})
	data.Form = form

	if msg != "" {
		monitoring.RecordFormSubmission("name_generator_invalid")
		data.Error = msg
		c.HTML(http.StatusBadRequest, "name_generator.html", data)
		return
	}

	monitoring.RecordFormSubmission("name_generator")
	data.CodeName = form.Pet + " " + form.Like
	data.Name = form.Name
	c.HTML(http.StatusOK, "name_generator.html", data)
}

// Blog renders every post, newest first.
// GET /blog
func (h *PortfolioHandler) Blog(c *gin.Context) {
	var posts []models.BlogPost
	if err := h.db.WithContext(requestContext(c)).
		Order("date_posted DESC").Order("id DESC").
		Find(&posts).Error; err != nil {
		h.log.Error("list posts", zap.Error(err))
		response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
		return
	}

	data := h.page(c, "Blog")
	data.Posts = posts
	c.HTML(http.StatusOK, "blog.html", data)
}

// ListPosts returns a page of posts as JSON.
// GET /api/posts?page=&per_page=
func (h *PortfolioHandler) ListPosts(c *gin.Context) {
	page := positiveQuery(c, "page", 1)
	perPage := positiveQuery(c, "per_page", defaultPostsPerPage)
	if perPage > maxPostsPerPage {
		perPage = maxPostsPerPage
	}

	db := h.db.WithContext(requestContext(c)).Model(&models.BlogPost{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
		return
	}

	posts := make([]models.BlogPost, 0, perPage)
	if err := db.Order("date_posted DESC").Order("id DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&posts).Error; err != nil {
		response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
		return
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	response.SuccessWithMeta(c, http.StatusOK, posts, &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      int(total),
		TotalPages: totalPages,
	})
}

// GetPost returns a single post.
// GET /api/posts/:id
func (h *PortfolioHandler) GetPost(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, appErrors.NewBadRequest("invalid post id"))
		return
	}

	var post models.BlogPost
	if err := h.db.WithContext(requestContext(c)).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, appErrors.ErrNotFound.WithMessage("post not found"))
			return
		}
		response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
		return
	}
	response.Success(c, http.StatusOK, post)
}
