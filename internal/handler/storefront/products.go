package storefront

import (
	"context"
	"net/http"

	"github.com/seamark/curio/internal/domain"
	"github.com/seamark/curio/internal/handler"
)

// ContentProvider is the read-only slice of the content gateway the
// catalog endpoints need. The CMS client satisfies it.
type ContentProvider interface {
	GetProducts(ctx context.Context) ([]domain.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
	GetCollections(ctx context.Context) ([]domain.Collection, error)
	GetCollectionBySlug(ctx context.Context, slug string) (*domain.Collection, error)
	GetProductsByCollection(ctx context.Context, slug string) ([]domain.Product, error)
	GetReviews(ctx context.Context) ([]domain.Review, error)
	GetReviewsByProduct(ctx context.Context, slug string) ([]domain.Review, error)
	GetBlogPosts(ctx context.Context) ([]domain.BlogPost, error)
	GetBlogPostBySlug(ctx context.Context, slug string) (*domain.BlogPost, error)
	GetPageBySlug(ctx context.Context, slug string) (*domain.Page, error)
}

// ProductsHandler serves catalog and page reads from the content
// gateway.
type ProductsHandler struct {
	content ContentProvider
}

func NewProductsHandler(content ContentProvider) *ProductsHandler {
	return &ProductsHandler{content: content}
}

// List handles GET /products
func (h *ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.content.GetProducts(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	handler.JSON(w, http.StatusOK, map[string]any{"products": products})
}

// Get handles GET /products/{slug}
func (h *ProductsHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.content.GetProductBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, map[string]any{"product": product})
}

// ListCollections handles GET /collections
func (h *ProductsHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	collections, err := h.content.GetCollections(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	if collections == nil {
		collections = []domain.Collection{}
	}
	handler.JSON(w, http.StatusOK, map[string]any{"collections": collections})
}

// GetCollection handles GET /collections/{slug}
func (h *ProductsHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	collection, err := h.content.GetCollectionBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, map[string]any{"collection": collection})
}

// ListCollectionProducts handles GET /collections/{slug}/products
func (h *ProductsHandler) ListCollectionProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.content.GetProductsByCollection(r.Context(), r.PathValue("slug"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	handler.JSON(w, http.StatusOK, map[string]any{"products": products})
}

// ListReviews handles GET /reviews
func (h *ProductsHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.content.GetReviews(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	handler.JSON(w, http.StatusOK, map[string]any{"reviews": reviews})
}

// ListProductReviews handles GET /products/{slug}/reviews
func (h *ProductsHandler) ListProductReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.content.GetReviewsByProduct(r.Context(), r.PathValue("slug"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	handler.JSON(w, http.StatusOK, map[string]any{"reviews": reviews})
}

// ListBlogPosts handles GET /blog
func (h *ProductsHandler) ListBlogPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.content.GetBlogPosts(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	if posts == nil {
		posts = []domain.BlogPost{}
	}
	handler.JSON(w, http.StatusOK, map[string]any{"posts": posts})
}

// GetBlogPost handles GET /blog/{slug}
func (h *ProductsHandler) GetBlogPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.content.GetBlogPostBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, map[string]any{"post": post})
}

// GetPage handles GET /pages/{slug}
func (h *ProductsHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	page, err := h.content.GetPageBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.JSON(w, http.StatusOK, map[string]any{"page": page})
}
