package model

import (
	"encoding/json"
	"time"
)

type ImageKind string

const (
	ImageKindThumbnail ImageKind = "thumbnail"
	ImageKindPreview   ImageKind = "preview"
)

type Product struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Slug            string    `gorm:"size:191;uniqueIndex;not null" json:"slug"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	Price           Money     `gorm:"type:numeric(10,2);not null" json:"price"`
	DiscountedPrice Money     `gorm:"type:numeric(10,2);not null;index" json:"discounted_price"` // price filters and sorts run on this column
	Stock           int       `gorm:"not null;default:0" json:"stock"`
	Description     string    `gorm:"type:text" json:"description"`
	AvgRating       float64   `gorm:"not null;default:0" json:"avg_rating"`
	ReviewsCount    int       `gorm:"not null;default:0" json:"reviews_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Images     []ProductImage `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
	Categories []Category     `gorm:"many2many:product_categories;constraint:OnDelete:CASCADE" json:"categories,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

// MarshalJSON adds the grouped imgs field.
func (p Product) MarshalJSON() ([]byte, error) {
	type product Product
	return json.Marshal(struct {
		product
		Imgs ProductImages `json:"imgs"`
	}{product(p), p.Imgs()})
}

// ProductImages groups a product's images by kind for API output.
type ProductImages struct {
	Thumbnails []string `json:"thumbnails"`
	Previews   []string `json:"previews"`
}

// Imgs returns image URLs by kind, preserving sort order.
func (p Product) Imgs() ProductImages {
	imgs := ProductImages{Thumbnails: []string{}, Previews: []string{}}
	for _, img := range p.Images {
		switch img.Kind {
		case ImageKindThumbnail:
			imgs.Thumbnails = append(imgs.Thumbnails, img.URL)
		case ImageKindPreview:
			imgs.Previews = append(imgs.Previews, img.URL)
		}
	}
	return imgs
}

// PrimaryImage is the first thumbnail, or the first preview when there is none.
func (p Product) PrimaryImage() string {
	imgs := p.Imgs()
	if len(imgs.Thumbnails) > 0 {
		return imgs.Thumbnails[0]
	}
	if len(imgs.Previews) > 0 {
		return imgs.Previews[0]
	}
	return ""
}

type ProductImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;index" json:"product_id"`
	URL       string    `gorm:"type:text;not null" json:"url"`
	Kind      ImageKind `gorm:"type:varchar(20);not null;default:'thumbnail'" json:"kind"`
	SortOrder int       `gorm:"not null;default:0" json:"sort_order"`
}

func (ProductImage) TableName() string {
	return "product_images"
}
