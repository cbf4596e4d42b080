package db

import (
	"encoding/json"
	"time"
)

// Order is a document collection; identity is the order name.
type Order struct {
	OrderID       int64     `gorm:"column:order_id;primaryKey;autoIncrement"`
	OrderName     string    `gorm:"column:order_name;type:text;not null;unique"`
	OrderYear     int       `gorm:"column:order_year;type:integer;not null"`
	OrderSINumber int       `gorm:"column:order_si_number;type:integer;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt     time.Time `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (Order) TableName() string { return "orders" }

// Article is one numbered section of an order. ArticleText and TitleWords
// hold JSON-encoded string arrays; Novel stays NULL until the matcher has
// seen the article.
type Article struct {
	ArticleID      int64           `gorm:"column:article_id;primaryKey;autoIncrement"`
	OrderID        int64           `gorm:"column:order_id;type:bigint;not null;index;uniqueIndex:ux_articles_order_number"`
	ArticleNumber  string          `gorm:"column:article_number;type:text;not null;uniqueIndex:ux_articles_order_number"`
	ArticleTitle   string          `gorm:"column:article_title;type:text;not null"`
	ArticleText    json.RawMessage `gorm:"column:article_text;type:jsonb;not null"`
	TitleHash      string          `gorm:"column:title_hash;type:text;not null;index"`
	TitleWords     json.RawMessage `gorm:"column:title_words;type:jsonb;not null"`
	WordCount      int             `gorm:"column:word_count;type:integer;not null;index"`
	FirstParagraph string          `gorm:"column:first_paragraph;type:text;not null;default:''"`
	Category       string          `gorm:"column:category;type:text;not null;index"`
	ContentHash    string          `gorm:"column:content_hash;type:text;not null;index"`
	Language       string          `gorm:"column:language;type:text;not null;default:''"`
	Novel          *bool           `gorm:"column:novel;type:boolean"`
	CreatedAt      time.Time       `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (Article) TableName() string { return "articles" }

// Similarity is the best match found for a source article within one
// target order; at most one row exists per (source, target order).
type Similarity struct {
	ID              int64     `gorm:"column:id;primaryKey;autoIncrement"`
	SourceArticleID int64     `gorm:"column:source_article_id;type:bigint;not null;index;uniqueIndex:ux_similarities_source_order"`
	TargetArticleID int64     `gorm:"column:target_article_id;type:bigint;not null"`
	TargetOrderID   int64     `gorm:"column:target_order_id;type:bigint;not null;index;uniqueIndex:ux_similarities_source_order"`
	SimilarityScore float64   `gorm:"column:similarity_score;type:double precision;not null"`
	Reordered       bool      `gorm:"column:reordered;type:boolean;not null;default:false"`
	CreatedAt       time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
	UpdatedAt       time.Time `gorm:"column:updated_at;type:timestamptz;not null;default:now()"`
}

func (Similarity) TableName() string { return "similarities" }

// ParagraphCacheEntry is a content-addressed paragraph; one row per
// distinct hash, so re-inserting identical text is a no-op.
type ParagraphCacheEntry struct {
	HashID         string    `gorm:"column:hash_id;type:text;primaryKey"`
	ParagraphText  string    `gorm:"column:paragraph_text;type:text;not null"`
	WordCount      int       `gorm:"column:word_count;type:integer;not null"`
	ParagraphIndex int       `gorm:"column:paragraph_index;type:integer;not null"`
	ArticleID      int64     `gorm:"column:article_id;type:bigint;not null;index"`
	CreatedAt      time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
}

func (ParagraphCacheEntry) TableName() string { return "paragraph_cache" }

// TitlePattern aggregates evidence that articles with one title hash tend
// to match articles with another. Frequency never decreases.
type TitlePattern struct {
	ID                   int64   `gorm:"column:id;primaryKey;autoIncrement"`
	SourceHash           string  `gorm:"column:source_hash;type:text;not null;index;uniqueIndex:ux_title_patterns_pair"`
	TargetHash           string  `gorm:"column:target_hash;type:text;not null;index;uniqueIndex:ux_title_patterns_pair"`
	Frequency            int     `gorm:"column:frequency;type:integer;not null"`
	AvgContentSimilarity float64 `gorm:"column:avg_content_similarity;type:double precision;not null"`
}

func (TitlePattern) TableName() string { return "title_patterns" }

// CategoryRelationship is the category-level counterpart of TitlePattern.
type CategoryRelationship struct {
	SourceCategory string  `gorm:"column:source_category;type:text;primaryKey"`
	TargetCategory string  `gorm:"column:target_category;type:text;primaryKey"`
	Frequency      int     `gorm:"column:frequency;type:integer;not null"`
	AvgSimilarity  float64 `gorm:"column:avg_similarity;type:double precision;not null"`
}

func (CategoryRelationship) TableName() string { return "category_relationships" }

func autoMigrateModels() []any {
	return []any{
		&Order{},
		&Article{},
		&Similarity{},
		&ParagraphCacheEntry{},
		&TitlePattern{},
		&CategoryRelationship{},
	}
}
