package repository

import (
	"context"
	"time"

	"github.com/AzielCF/az-plant/domains/history"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type readingModel struct {
	ID           string    `gorm:"primaryKey;column:id"`
	Temperature  string    `gorm:"column:temperature"`
	Humidity     string    `gorm:"column:humidity"`
	SoilMoisture string    `gorm:"column:soil_moisture"`
	LightLevel   string    `gorm:"column:light_level"`
	Pump         string    `gorm:"column:pump"`
	Lights       string    `gorm:"column:lights"`
	ImagePath    string    `gorm:"column:image_path"`
	Label        string    `gorm:"column:label;index"`
	Confidence   float64   `gorm:"column:confidence;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;not null;index"`
}

func (readingModel) TableName() string { return "readings" }

type ReadingGormRepository struct {
	db *gorm.DB
}

func NewReadingGormRepository(db *gorm.DB) *ReadingGormRepository {
	return &ReadingGormRepository{db: db}
}

func (r *ReadingGormRepository) Init(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&readingModel{})
}

func (r *ReadingGormRepository) Append(ctx context.Context, reading history.Reading) error {
	if reading.ID == "" {
		reading.ID = uuid.NewString()
	}
	if reading.CreatedAt.IsZero() {
		reading.CreatedAt = time.Now()
	}
	m := toReadingModel(reading)
	return r.db.WithContext(ctx).Create(&m).Error
}

func (r *ReadingGormRepository) Recent(ctx context.Context, limit int) ([]history.Reading, error) {
	if limit <= 0 {
		limit = 20
	}
	var models []readingModel
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	out := make([]history.Reading, 0, len(models))
	for _, m := range models {
		out = append(out, fromReadingModel(m))
	}
	return out, nil
}

func toReadingModel(r history.Reading) readingModel {
	return readingModel{
		ID:           r.ID,
		Temperature:  r.Temperature,
		Humidity:     r.Humidity,
		SoilMoisture: r.SoilMoisture,
		LightLevel:   r.LightLevel,
		Pump:         r.Pump,
		Lights:       r.Lights,
		ImagePath:    r.ImagePath,
		Label:        r.Label,
		Confidence:   r.Confidence,
		CreatedAt:    r.CreatedAt,
	}
}

func fromReadingModel(m readingModel) history.Reading {
	return history.Reading{
		ID:           m.ID,
		Temperature:  m.Temperature,
		Humidity:     m.Humidity,
		SoilMoisture: m.SoilMoisture,
		LightLevel:   m.LightLevel,
		Pump:         m.Pump,
		Lights:       m.Lights,
		ImagePath:    m.ImagePath,
		Label:        m.Label,
		Confidence:   m.Confidence,
		CreatedAt:    m.CreatedAt,
	}
}
