package repos

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fabriqa/configurator-backend/internal/logger"
	"github.com/fabriqa/configurator-backend/internal/pathcodec"
	"github.com/fabriqa/configurator-backend/internal/types"
)

type AttributeNodeRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.AttributeNode, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.AttributeNode, error)
	GetByManufacturingType(ctx context.Context, tx *gorm.DB, typeID uuid.UUID) ([]*types.AttributeNode, error)
	GetChildren(ctx context.Context, tx *gorm.DB, parentID uuid.UUID) ([]*types.AttributeNode, error)
	GetByPathPrefix(ctx context.Context, tx *gorm.DB, typeID uuid.UUID, prefix string) ([]*types.AttributeNode, error)
	GetByExactPaths(ctx context.Context, tx *gorm.DB, typeID uuid.UUID, paths []string) ([]*types.AttributeNode, error)
	SiblingSegmentExists(ctx context.Context, tx *gorm.DB, typeID uuid.UUID, parentID *uuid.UUID, segment string, excludeID uuid.UUID) (bool, error)
	HasChildren(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error)
	Create(ctx context.Context, tx *gorm.DB, node *types.AttributeNode) (*types.AttributeNode, error)
	Save(ctx context.Context, tx *gorm.DB, node *types.AttributeNode) (*types.AttributeNode, error)
	SaveBatch(ctx context.Context, tx *gorm.DB, nodes []*types.AttributeNode) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type attributeNodeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAttributeNodeRepo(db *gorm.DB, baseLog *logger.Logger) AttributeNodeRepo {
	return &attributeNodeRepo{db: db, log: baseLog.With("repo", "AttributeNodeRepo")}
}

func (r *attributeNodeRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.AttributeNode, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var node types.AttributeNode
	if err := transaction.WithContext(ctx).First(&node, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &node, nil
}

func (r *attributeNodeRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.AttributeNode, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.AttributeNode
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *attributeNodeRepo) GetByManufacturingType(ctx context.Context, tx *gorm.DB, typeID uuid.UUID) ([]*types.AttributeNode, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.AttributeNode
	if err := transaction.WithContext(ctx).
		Where("manufacturing_type_id = ?", typeID).
		Order("path ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *attributeNodeRepo) GetChildren(ctx context.Context, tx *gorm.DB, parentID uuid.UUID) ([]*types.AttributeNode, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.AttributeNode
	if err := transaction.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("sort_order ASC, id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetByPathPrefix returns every node whose path lies strictly below
// prefix, ordered by path for deterministic output. Segments may
// contain underscores, which are LIKE wildcards, so the pattern is
// escaped.
func (r *attributeNodeRepo) GetByPathPrefix(ctx context.Context, tx *gorm.DB, typeID uuid.UUID, prefix string) ([]*types.AttributeNode, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.AttributeNode
	pattern := escapeLike(prefix+pathcodec.Separator) + "%"
	if err := transaction.WithContext(ctx).
		Where("manufacturing_type_id = ? AND path LIKE ? ESCAPE '\\'", typeID, pattern).
		Order("path ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *attributeNodeRepo) GetByExactPaths(ctx context.Context, tx *gorm.DB, typeID uuid.UUID, paths []string) ([]*types.AttributeNode, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.AttributeNode
	if len(paths) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("manufacturing_type_id = ? AND path IN ?", typeID, paths).
		Order("path ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *attributeNodeRepo) SiblingSegmentExists(ctx context.Context, tx *gorm.DB, typeID uuid.UUID, parentID *uuid.UUID, segment string, excludeID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	query := transaction.WithContext(ctx).
		Model(&types.AttributeNode{}).
		Where("manufacturing_type_id = ? AND segment = ?", typeID, segment)
	if parentID == nil {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *parentID)
	}
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *attributeNodeRepo) HasChildren(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.AttributeNode{}).
		Where("parent_id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *attributeNodeRepo) Create(ctx context.Context, tx *gorm.DB, node *types.AttributeNode) (*types.AttributeNode, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(node).Error; err != nil {
		return nil, err
	}
	return node, nil
}

func (r *attributeNodeRepo) Save(ctx context.Context, tx *gorm.DB, node *types.AttributeNode) (*types.AttributeNode, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Save(node).Error; err != nil {
		return nil, err
	}
	return node, nil
}

func (r *attributeNodeRepo) SaveBatch(ctx context.Context, tx *gorm.DB, nodes []*types.AttributeNode) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	for _, node := range nodes {
		if err := transaction.WithContext(ctx).Save(node).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *attributeNodeRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.AttributeNode{}).Error
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
