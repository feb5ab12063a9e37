package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gewgegeg/BAT3D/internal/audit/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
	}
}

func (s *Service) Log(ctx context.Context, action, targetType, targetID string, metadata map[string]any) error {
	record := domain.Record{
		ID:         s.genID.Generate(),
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Metadata:   datatypes.JSONMap(metadata),
		CreatedAt:  time.Now().UTC(),
	}
	if record.Metadata == nil {
		record.Metadata = datatypes.JSONMap{}
	}
	return s.db.WithContext(ctx).Create(&record).Error
}
