package model

type Category struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Name   string `gorm:"size:255;not null" json:"name"`
	Slug   string `gorm:"size:191;uniqueIndex;not null" json:"slug"`
	ImgURL string `gorm:"type:text" json:"img_url"`
}

func (Category) TableName() string {
	return "categories"
}

// ProductCategory is the product/category join row. It carries no payload.
type ProductCategory struct {
	ProductID  uint `gorm:"primaryKey;autoIncrement:false" json:"product_id"`
	CategoryID uint `gorm:"primaryKey;autoIncrement:false;index" json:"category_id"`
}

func (ProductCategory) TableName() string {
	return "product_categories"
}

// CategoryWithCount is a category plus the number of products linked to it.
type CategoryWithCount struct {
	Category
	ProductCount int64 `json:"product_count"`
}
