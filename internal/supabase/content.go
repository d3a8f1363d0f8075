package supabase

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"retouchlab-backend/internal/models"
)

// Gallery examples

func (d *DatabaseClient) CreateGalleryExample(ctx context.Context, e *models.GalleryExample) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO gallery_examples (id, title, before_path, before_url, after_path, after_url, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6,
			(SELECT COALESCE(MAX(sort_order), 0) + 1 FROM gallery_examples))
	`, e.ID, e.Title, e.BeforePath, e.BeforeURL, e.AfterPath, e.AfterURL)
	if err != nil {
		return fmt.Errorf("failed to create gallery example: %w", err)
	}
	return nil
}

func (d *DatabaseClient) ListGalleryExamples(ctx context.Context) ([]models.GalleryExample, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, title, before_path, before_url, after_path, after_url, sort_order, created_at
		FROM gallery_examples ORDER BY sort_order
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list gallery examples: %w", err)
	}
	defer rows.Close()

	var examples []models.GalleryExample
	for rows.Next() {
		var e models.GalleryExample
		if err := rows.Scan(&e.ID, &e.Title, &e.BeforePath, &e.BeforeURL,
			&e.AfterPath, &e.AfterURL, &e.SortOrder, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan gallery example: %w", err)
		}
		examples = append(examples, e)
	}
	return examples, rows.Err()
}

func (d *DatabaseClient) DeleteGalleryExample(ctx context.Context, id uuid.UUID) (*models.GalleryExample, error) {
	var e models.GalleryExample
	err := d.db.QueryRowContext(ctx, `
		DELETE FROM gallery_examples WHERE id = $1
		RETURNING id, title, before_path, before_url, after_path, after_url, sort_order, created_at
	`, id).Scan(&e.ID, &e.Title, &e.BeforePath, &e.BeforeURL, &e.AfterPath, &e.AfterURL,
		&e.SortOrder, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to delete gallery example: %w", err)
	}
	return &e, nil
}

// ReorderGalleryExamples rewrites sort_order following the given id order.
func (d *DatabaseClient) ReorderGalleryExamples(ctx context.Context, ids []uuid.UUID) error {
	return d.withTx(ctx, func(tx *sql.Tx) error {
		for i, id := range ids {
			if _, err := tx.ExecContext(ctx, `
				UPDATE gallery_examples SET sort_order = $1 WHERE id = $2
			`, i+1, id); err != nil {
				return fmt.Errorf("failed to reorder gallery examples: %w", err)
			}
		}
		return nil
	})
}

// Blog posts

func (d *DatabaseClient) CreateBlogPost(ctx context.Context, p *models.BlogPost) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO blog_posts (id, slug, title, excerpt, body, cover_url, published, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, p.ID, p.Slug, p.Title, p.Excerpt, p.Body, p.CoverURL, p.Published, p.PublishedAt)
	if err != nil {
		return fmt.Errorf("failed to create blog post: %w", err)
	}
	return nil
}

func (d *DatabaseClient) UpdateBlogPost(ctx context.Context, p *models.BlogPost) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE blog_posts
		SET slug = $1, title = $2, excerpt = $3, body = $4, cover_url = $5,
			published = $6, published_at = $7, updated_at = NOW()
		WHERE id = $8
	`, p.Slug, p.Title, p.Excerpt, p.Body, p.CoverURL, p.Published, p.PublishedAt, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update blog post: %w", err)
	}
	return nil
}

func (d *DatabaseClient) DeleteBlogPost(ctx context.Context, id uuid.UUID) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete blog post: %w", err)
	}
	return nil
}

const blogColumns = `id, slug, title, excerpt, body, cover_url, published, published_at, created_at, updated_at`

func (d *DatabaseClient) GetBlogPostBySlug(ctx context.Context, slug string, publishedOnly bool) (*models.BlogPost, error) {
	query := `SELECT ` + blogColumns + ` FROM blog_posts WHERE slug = $1`
	if publishedOnly {
		query += ` AND published = TRUE`
	}
	var p models.BlogPost
	err := d.db.QueryRowContext(ctx, query, slug).Scan(&p.ID, &p.Slug, &p.Title, &p.Excerpt,
		&p.Body, &p.CoverURL, &p.Published, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get blog post: %w", err)
	}
	return &p, nil
}

func (d *DatabaseClient) ListBlogPosts(ctx context.Context, publishedOnly bool) ([]models.BlogPost, error) {
	query := `SELECT ` + blogColumns + ` FROM blog_posts`
	if publishedOnly {
		query += ` WHERE published = TRUE`
	}
	query += ` ORDER BY COALESCE(published_at, created_at) DESC`

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list blog posts: %w", err)
	}
	defer rows.Close()

	var posts []models.BlogPost
	for rows.Next() {
		var p models.BlogPost
		if err := rows.Scan(&p.ID, &p.Slug, &p.Title, &p.Excerpt, &p.Body, &p.CoverURL,
			&p.Published, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan blog post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// Homepage images

func (d *DatabaseClient) CreateHomepageImage(ctx context.Context, img *models.HomepageImage) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO homepage_images (id, title, storage_path, storage_url, sort_order)
		VALUES ($1, $2, $3, $4,
			(SELECT COALESCE(MAX(sort_order), 0) + 1 FROM homepage_images))
	`, img.ID, img.Title, img.StoragePath, img.StorageURL)
	if err != nil {
		return fmt.Errorf("failed to create homepage image: %w", err)
	}
	return nil
}

func (d *DatabaseClient) ListHomepageImages(ctx context.Context) ([]models.HomepageImage, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, title, storage_path, storage_url, sort_order, created_at
		FROM homepage_images ORDER BY sort_order
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list homepage images: %w", err)
	}
	defer rows.Close()

	var images []models.HomepageImage
	for rows.Next() {
		var img models.HomepageImage
		if err := rows.Scan(&img.ID, &img.Title, &img.StoragePath, &img.StorageURL,
			&img.SortOrder, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan homepage image: %w", err)
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func (d *DatabaseClient) DeleteHomepageImage(ctx context.Context, id uuid.UUID) (*models.HomepageImage, error) {
	var img models.HomepageImage
	err := d.db.QueryRowContext(ctx, `
		DELETE FROM homepage_images WHERE id = $1
		RETURNING id, title, storage_path, storage_url, sort_order, created_at
	`, id).Scan(&img.ID, &img.Title, &img.StoragePath, &img.StorageURL, &img.SortOrder, &img.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to delete homepage image: %w", err)
	}
	return &img, nil
}

func (d *DatabaseClient) ReorderHomepageImages(ctx context.Context, ids []uuid.UUID) error {
	return d.withTx(ctx, func(tx *sql.Tx) error {
		for i, id := range ids {
			if _, err := tx.ExecContext(ctx, `
				UPDATE homepage_images SET sort_order = $1 WHERE id = $2
			`, i+1, id); err != nil {
				return fmt.Errorf("failed to reorder homepage images: %w", err)
			}
		}
		return nil
	})
}

// Company info and pricing, both single-row tables.

func (d *DatabaseClient) GetCompanyInfo(ctx context.Context) (*models.CompanyInfo, error) {
	var info models.CompanyInfo
	err := d.db.QueryRowContext(ctx, `
		SELECT name, email, phone, address, vat_number, updated_at FROM company_info WHERE singleton
	`).Scan(&info.Name, &info.Email, &info.Phone, &info.Address, &info.VATNumber, &info.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get company info: %w", err)
	}
	return &info, nil
}

func (d *DatabaseClient) UpdateCompanyInfo(ctx context.Context, req *models.CompanyInfoRequest) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE company_info
		SET name = $1, email = $2, phone = NULLIF($3, ''), address = NULLIF($4, ''),
			vat_number = NULLIF($5, ''), updated_at = NOW()
		WHERE singleton
	`, req.Name, req.Email, req.Phone, req.Address, req.VATNumber)
	if err != nil {
		return fmt.Errorf("failed to update company info: %w", err)
	}
	return nil
}

func (d *DatabaseClient) GetPricing(ctx context.Context) (*models.PricingSettings, error) {
	var p models.PricingSettings
	err := d.db.QueryRowContext(ctx, `
		SELECT price_per_photo_cents, currency, updated_at FROM pricing_settings WHERE singleton
	`).Scan(&p.PricePerPhotoCents, &p.Currency, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get pricing: %w", err)
	}
	return &p, nil
}

func (d *DatabaseClient) UpdatePricing(ctx context.Context, priceCents int64, currency string) error {
	_, err := d.db.ExecContext(ctx, `
		UPDATE pricing_settings SET price_per_photo_cents = $1, currency = $2, updated_at = NOW()
		WHERE singleton
	`, priceCents, currency)
	if err != nil {
		return fmt.Errorf("failed to update pricing: %w", err)
	}
	return nil
}
