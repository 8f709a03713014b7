package edge

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Post is one feed or profile post row.
type Post struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	MediaURL  *string   `json:"media_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Bookmark pairs a saved post with when it was saved.
type Bookmark struct {
	ID        string    `json:"id"`
	Post      Post      `json:"post"`
	CreatedAt time.Time `json:"created_at"`
}

// Queries is the data access the edge handlers need.
type Queries interface {
	FeedPage(ctx context.Context, limit, offset int) ([]Post, error)
	PostsByAuthor(ctx context.Context, authorID string) ([]Post, error)
	BookmarksFor(ctx context.Context, viewerID string) ([]Bookmark, error)
}

// PGQueries implements Queries over the product database.
type PGQueries struct {
	Pool *pgxpool.Pool
}

// FeedPage implements Queries.
func (q *PGQueries) FeedPage(ctx context.Context, limit, offset int) ([]Post, error) {
	rows, err := q.Pool.Query(ctx,
		`SELECT id, author_id, body, media_url, created_at
		 FROM posts
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("feed page: %w", err)
	}
	defer rows.Close()
	return scanPosts(rows)
}

// PostsByAuthor implements Queries.
func (q *PGQueries) PostsByAuthor(ctx context.Context, authorID string) ([]Post, error) {
	rows, err := q.Pool.Query(ctx,
		`SELECT id, author_id, body, media_url, created_at
		 FROM posts
		 WHERE author_id = $1
		 ORDER BY created_at DESC`, authorID)
	if err != nil {
		return nil, fmt.Errorf("posts by author: %w", err)
	}
	defer rows.Close()
	return scanPosts(rows)
}

// BookmarksFor implements Queries.
func (q *PGQueries) BookmarksFor(ctx context.Context, viewerID string) ([]Bookmark, error) {
	rows, err := q.Pool.Query(ctx,
		`SELECT b.id, b.created_at, p.id, p.author_id, p.body, p.media_url, p.created_at
		 FROM bookmarks b
		 JOIN posts p ON p.id = b.post_id
		 WHERE b.user_id = $1
		 ORDER BY b.created_at DESC`, viewerID)
	if err != nil {
		return nil, fmt.Errorf("bookmarks: %w", err)
	}
	defer rows.Close()

	var bookmarks []Bookmark
	for rows.Next() {
		var b Bookmark
		if err := rows.Scan(&b.ID, &b.CreatedAt,
			&b.Post.ID, &b.Post.AuthorID, &b.Post.Body, &b.Post.MediaURL, &b.Post.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan bookmark: %w", err)
		}
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, rows.Err()
}

type postRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanPosts(rows postRows) ([]Post, error) {
	var posts []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Body, &p.MediaURL, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}
