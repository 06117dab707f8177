package cms

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/seamark/curio/internal/domain"
)

// Object type slugs as authored in the bucket.
const (
	typeProducts    = "products"
	typeCollections = "collections"
	typeReviews     = "reviews"
	typeBlogPosts   = "blog-posts"
	typePages       = "pages"
)

type productMetadata struct {
	Description string `json:"description"`
	Price       float64 `json:"price"`
	Image       struct {
		URL string `json:"url"`
	} `json:"image"`
	Category string `json:"category"`
	InStock  *bool  `json:"in_stock"`
}

func toProduct(obj *object) domain.Product {
	p := domain.Product{
		ID:      obj.ID,
		Slug:    obj.Slug,
		Title:   obj.Title,
		InStock: true,
	}

	var meta productMetadata
	if err := json.Unmarshal(obj.Metadata, &meta); err == nil {
		p.Description = meta.Description
		p.Price = meta.Price
		p.ImageURL = meta.Image.URL
		p.Category = meta.Category
		if meta.InStock != nil {
			p.InStock = *meta.InStock
		}
	}
	return p
}

// GetProducts lists the catalog. An empty bucket yields an empty
// slice.
func (c *Client) GetProducts(ctx context.Context) ([]domain.Product, error) {
	objects, err := c.find(ctx, typeProducts, nil, 0)
	if err != nil {
		return nil, domain.Unavailable(err, "content.products", "failed to fetch products")
	}

	products := make([]domain.Product, 0, len(objects))
	for i := range objects {
		products = append(products, toProduct(&objects[i]))
	}
	return products, nil
}

// GetProductBySlug returns ENOTFOUND when no product has the slug.
func (c *Client) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	obj, err := c.findOne(ctx, typeProducts, map[string]string{"slug": slug})
	if err != nil {
		return nil, domain.Unavailable(err, "content.product", "failed to fetch product")
	}
	if obj == nil {
		return nil, domain.NotFound("content.product", "product", slug)
	}

	p := toProduct(obj)
	return &p, nil
}

type collectionMetadata struct {
	Description string `json:"description"`
	CoverImage  struct {
		URL string `json:"url"`
	} `json:"cover_image"`
}

func toCollection(obj *object) domain.Collection {
	c := domain.Collection{
		ID:    obj.ID,
		Slug:  obj.Slug,
		Title: obj.Title,
	}

	var meta collectionMetadata
	if err := json.Unmarshal(obj.Metadata, &meta); err == nil {
		c.Description = meta.Description
		c.CoverImageURL = meta.CoverImage.URL
	}
	return c
}

// GetCollections lists all product collections.
func (c *Client) GetCollections(ctx context.Context) ([]domain.Collection, error) {
	objects, err := c.find(ctx, typeCollections, nil, 0)
	if err != nil {
		return nil, domain.Unavailable(err, "content.collections", "failed to fetch collections")
	}

	collections := make([]domain.Collection, 0, len(objects))
	for i := range objects {
		collections = append(collections, toCollection(&objects[i]))
	}
	return collections, nil
}

// GetCollectionBySlug returns ENOTFOUND when no collection has the
// slug.
func (c *Client) GetCollectionBySlug(ctx context.Context, slug string) (*domain.Collection, error) {
	obj, err := c.findOne(ctx, typeCollections, map[string]string{"slug": slug})
	if err != nil {
		return nil, domain.Unavailable(err, "content.collection", "failed to fetch collection")
	}
	if obj == nil {
		return nil, domain.NotFound("content.collection", "collection", slug)
	}

	col := toCollection(obj)
	return &col, nil
}

// GetProductsByCollection lists the products in a collection,
// resolved by collection slug. Products reference collections by ID.
func (c *Client) GetProductsByCollection(ctx context.Context, slug string) ([]domain.Product, error) {
	col, err := c.GetCollectionBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	objects, err := c.find(ctx, typeProducts, map[string]string{"metadata.collection": col.ID}, 0)
	if err != nil {
		return nil, domain.Unavailable(err, "content.collection_products", "failed to fetch collection products")
	}

	products := make([]domain.Product, 0, len(objects))
	for i := range objects {
		products = append(products, toProduct(&objects[i]))
	}
	return products, nil
}

// reviewMetadata matches the review object shape. Product comes back
// as a nested object at depth 1 but may be a bare ID string at depth
// 0; Rating is a select-dropdown value whose key holds the number.
type reviewMetadata struct {
	Product json.RawMessage `json:"product"`
	Rating  struct {
		Key string `json:"key"`
	} `json:"rating"`
	ReviewerName     string `json:"reviewer_name"`
	Review           string `json:"review"`
	VerifiedPurchase bool   `json:"verified_purchase"`
}

func toReview(obj *object) domain.Review {
	r := domain.Review{
		ID:    obj.ID,
		Title: obj.Title,
	}

	var meta reviewMetadata
	if err := json.Unmarshal(obj.Metadata, &meta); err != nil {
		return r
	}

	r.Reviewer = meta.ReviewerName
	r.Body = meta.Review
	r.VerifiedPurchase = meta.VerifiedPurchase
	if n, err := strconv.Atoi(meta.Rating.Key); err == nil {
		r.Rating = n
	}

	var productID string
	if err := json.Unmarshal(meta.Product, &productID); err != nil {
		var ref struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(meta.Product, &ref); err == nil {
			productID = ref.ID
		}
	}
	r.ProductID = productID

	return r
}

// GetReviews lists all reviews.
func (c *Client) GetReviews(ctx context.Context) ([]domain.Review, error) {
	objects, err := c.find(ctx, typeReviews, nil, 0)
	if err != nil {
		return nil, domain.Unavailable(err, "content.reviews", "failed to fetch reviews")
	}

	reviews := make([]domain.Review, 0, len(objects))
	for i := range objects {
		reviews = append(reviews, toReview(&objects[i]))
	}
	return reviews, nil
}

// GetReviewsByProduct lists reviews for a product, resolved by
// product slug. Reviews reference products by ID.
func (c *Client) GetReviewsByProduct(ctx context.Context, slug string) ([]domain.Review, error) {
	product, err := c.GetProductBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	objects, err := c.find(ctx, typeReviews, map[string]string{"metadata.product": product.ID}, 0)
	if err != nil {
		return nil, domain.Unavailable(err, "content.product_reviews", "failed to fetch reviews")
	}

	reviews := make([]domain.Review, 0, len(objects))
	for i := range objects {
		reviews = append(reviews, toReview(&objects[i]))
	}
	return reviews, nil
}

// blogPostMetadata carries a display title that, when set, overrides
// the object title. Tags come as one comma-separated string.
type blogPostMetadata struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Content  string `json:"content"`
	Tags     string `json:"tags"`
	Author   string `json:"author"`
}

func toBlogPost(obj *object) domain.BlogPost {
	p := domain.BlogPost{
		ID:    obj.ID,
		Slug:  obj.Slug,
		Title: obj.Title,
	}

	var meta blogPostMetadata
	if err := json.Unmarshal(obj.Metadata, &meta); err != nil {
		return p
	}

	if meta.Title != "" {
		p.Title = meta.Title
	}
	p.Subtitle = meta.Subtitle
	p.Content = meta.Content
	p.Author = meta.Author
	p.Tags = splitTags(meta.Tags)
	return p
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// GetBlogPosts lists all blog posts.
func (c *Client) GetBlogPosts(ctx context.Context) ([]domain.BlogPost, error) {
	objects, err := c.find(ctx, typeBlogPosts, nil, 0)
	if err != nil {
		return nil, domain.Unavailable(err, "content.posts", "failed to fetch blog posts")
	}

	posts := make([]domain.BlogPost, 0, len(objects))
	for i := range objects {
		posts = append(posts, toBlogPost(&objects[i]))
	}
	return posts, nil
}

// GetBlogPostBySlug returns ENOTFOUND when no post has the slug.
func (c *Client) GetBlogPostBySlug(ctx context.Context, slug string) (*domain.BlogPost, error) {
	obj, err := c.findOne(ctx, typeBlogPosts, map[string]string{"slug": slug})
	if err != nil {
		return nil, domain.Unavailable(err, "content.post", "failed to fetch blog post")
	}
	if obj == nil {
		return nil, domain.NotFound("content.post", "blog post", slug)
	}

	p := toBlogPost(obj)
	return &p, nil
}

type pageMetadata struct {
	Content string `json:"content"`
}

// GetPageBySlug returns ENOTFOUND when no page has the slug.
func (c *Client) GetPageBySlug(ctx context.Context, slug string) (*domain.Page, error) {
	obj, err := c.findOne(ctx, typePages, map[string]string{"slug": slug})
	if err != nil {
		return nil, domain.Unavailable(err, "content.page", "failed to fetch page")
	}
	if obj == nil {
		return nil, domain.NotFound("content.page", "page", slug)
	}

	var meta pageMetadata
	_ = json.Unmarshal(obj.Metadata, &meta)

	return &domain.Page{
		Slug:    obj.Slug,
		Title:   obj.Title,
		Content: meta.Content,
	}, nil
}
