package db_models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type ProductKind string

const (
	ProductEbook     ProductKind = "ebook"
	ProductAudiobook ProductKind = "audiobook"
	ProductCourse    ProductKind = "course"
	ProductPodcast   ProductKind = "podcast"
)

type Product struct {
	BaseModel
	Title        datatypes.JSON  `gorm:"type:jsonb;not null"` // {"en": "...", "ru": "...", "kk": "..."}
	Author       string          `gorm:"index"`
	Kind         ProductKind     `gorm:"size:16;index"`
	Price        decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	IsDiscounted bool            `gorm:"not null;default:false"`
	CoverKey     string
	IsPublished  bool `gorm:"not null;default:true"`
}
