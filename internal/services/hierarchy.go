package services

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/fabriqa/configurator-backend/internal/formula"
	"github.com/fabriqa/configurator-backend/internal/logger"
	"github.com/fabriqa/configurator-backend/internal/pathcodec"
	"github.com/fabriqa/configurator-backend/internal/repos"
	"github.com/fabriqa/configurator-backend/internal/types"
)

// HierarchyService owns the attribute tree of each manufacturing type.
// It is the single writer of the materialized path columns: every
// structural mutation (create, rename, move, delete) recomputes path
// and depth here, inside one transaction, so readers never observe a
// partially rewritten subtree.
type HierarchyService interface {
	CreateNode(ctx context.Context, input CreateNodeInput) (*types.AttributeNode, error)
	RenameNode(ctx context.Context, nodeID uuid.UUID, newName string) (*types.AttributeNode, error)
	MoveNode(ctx context.Context, nodeID uuid.UUID, newParentID *uuid.UUID) (*types.AttributeNode, error)
	DeleteNode(ctx context.Context, nodeID uuid.UUID, cascade bool) error
	GetNode(ctx context.Context, nodeID uuid.UUID) (*types.AttributeNode, error)
	GetDescendants(ctx context.Context, nodeID uuid.UUID) ([]*types.AttributeNode, error)
	GetAncestors(ctx context.Context, nodeID uuid.UUID) ([]*types.AttributeNode, error)
	GetTree(ctx context.Context, typeID uuid.UUID, rootID *uuid.UUID) ([]*TreeNode, error)
}

// CreateNodeInput carries everything a new node needs. Name is the
// display name; the path segment is derived from it.
type CreateNodeInput struct {
	ManufacturingTypeID uuid.UUID
	ParentID            *uuid.UUID
	Name                string
	SortOrder           int
	NodeType            string
	DataType            string

	PriceImpactType  string
	PriceImpactValue decimal.Decimal
	PriceFormula     string

	WeightImpactType  string
	WeightImpactValue decimal.Decimal
	WeightFormula     string

	TechnicalPropertyType string
	TechnicalFormula      string
	FormulaAlias          string

	DisplayMeta     datatypes.JSON
	ValidationRules datatypes.JSON
}

// TreeNode is the nested read shape handed to presentation and
// visualization layers. Children are ordered by sort order, id as tie
// breaker.
type TreeNode struct {
	ID               uuid.UUID        `json:"id"`
	Name             string           `json:"name"`
	NodeType         string           `json:"node_type"`
	PriceImpactValue *decimal.Decimal `json:"price_impact_value,omitempty"`
	Children         []*TreeNode      `json:"children"`
}

type hierarchyService struct {
	db        *gorm.DB
	log       *logger.Logger
	nodeRepo  repos.AttributeNodeRepo
	typeRepo  repos.ManufacturingTypeRepo
	treeCache TreeCache
}

func NewHierarchyService(
	db *gorm.DB,
	baseLog *logger.Logger,
	nodeRepo repos.AttributeNodeRepo,
	typeRepo repos.ManufacturingTypeRepo,
	treeCache TreeCache,
) HierarchyService {
	return &hierarchyService{
		db:        db,
		log:       baseLog.With("service", "HierarchyService"),
		nodeRepo:  nodeRepo,
		typeRepo:  typeRepo,
		treeCache: treeCache,
	}
}

func (s *hierarchyService) CreateNode(ctx context.Context, input CreateNodeInput) (*types.AttributeNode, error) {
	segment, err := pathcodec.Encode(input.Name)
	if err != nil {
		return nil, err
	}
	if err := validateNodeFormulas(input.PriceImpactType, input.PriceFormula, input.WeightImpactType, input.WeightFormula, input.TechnicalFormula); err != nil {
		return nil, err
	}

	mt, err := s.typeRepo.GetByID(ctx, nil, input.ManufacturingTypeID)
	if err != nil {
		return nil, err
	}
	if mt == nil {
		return nil, &NotFoundError{Entity: "manufacturing type", ID: input.ManufacturingTypeID}
	}

	var created *types.AttributeNode
	err = s.db.Transaction(func(tx *gorm.DB) error {
		parentPath := ""
		if input.ParentID != nil {
			parent, err := s.nodeRepo.GetByID(ctx, tx, *input.ParentID)
			if err != nil {
				return err
			}
			if parent == nil || parent.ManufacturingTypeID != input.ManufacturingTypeID {
				return &NotFoundError{Entity: "parent node", ID: *input.ParentID}
			}
			parentPath = parent.Path
		}

		taken, err := s.nodeRepo.SiblingSegmentExists(ctx, tx, input.ManufacturingTypeID, input.ParentID, segment, uuid.Nil)
		if err != nil {
			return err
		}
		if taken {
			return &DuplicateNameError{Segment: segment, ParentID: input.ParentID}
		}

		path := pathcodec.Compose(parentPath, segment)
		node := &types.AttributeNode{
			ID:                  uuid.New(),
			ManufacturingTypeID: input.ManufacturingTypeID,
			ParentID:            input.ParentID,
			Name:                input.Name,
			Segment:             segment,
			Path:                path,
			Depth:               pathcodec.Depth(path),
			SortOrder:           input.SortOrder,
			NodeType:            defaultString(input.NodeType, types.NodeTypeAttribute),
			DataType:            defaultString(input.DataType, types.DataTypeString),

			PriceImpactType:  defaultString(input.PriceImpactType, types.ImpactTypeFixed),
			PriceImpactValue: input.PriceImpactValue,
			PriceFormula:     input.PriceFormula,

			WeightImpactType:  defaultString(input.WeightImpactType, types.ImpactTypeFixed),
			WeightImpactValue: input.WeightImpactValue,
			WeightFormula:     input.WeightFormula,

			TechnicalPropertyType: input.TechnicalPropertyType,
			TechnicalFormula:      input.TechnicalFormula,
			FormulaAlias:          input.FormulaAlias,

			DisplayMeta:     input.DisplayMeta,
			ValidationRules: input.ValidationRules,
		}
		created, err = s.nodeRepo.Create(ctx, tx, node)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidateTree(ctx, input.ManufacturingTypeID)
	s.log.Info("node created", "node_id", created.ID, "path", created.Path)
	return created, nil
}

func (s *hierarchyService) RenameNode(ctx context.Context, nodeID uuid.UUID, newName string) (*types.AttributeNode, error) {
	segment, err := pathcodec.Encode(newName)
	if err != nil {
		return nil, err
	}

	var renamed *types.AttributeNode
	err = s.db.Transaction(func(tx *gorm.DB) error {
		node, err := s.nodeRepo.GetByID(ctx, tx, nodeID)
		if err != nil {
			return err
		}
		if node == nil {
			return &NotFoundError{Entity: "node", ID: nodeID}
		}
		if segment == node.Segment {
			node.Name = newName
			renamed, err = s.nodeRepo.Save(ctx, tx, node)
			return err
		}

		taken, err := s.nodeRepo.SiblingSegmentExists(ctx, tx, node.ManufacturingTypeID, node.ParentID, segment, node.ID)
		if err != nil {
			return err
		}
		if taken {
			return &DuplicateNameError{Segment: segment, ParentID: node.ParentID}
		}

		oldPath := node.Path
		parentPath := parentPathOf(node)
		node.Name = newName
		node.Segment = segment
		node.Path = pathcodec.Compose(parentPath, segment)
		node.Depth = pathcodec.Depth(node.Path)

		if err := s.rewriteSubtreePaths(ctx, tx, node.ManufacturingTypeID, oldPath, node.Path); err != nil {
			return err
		}
		renamed, err = s.nodeRepo.Save(ctx, tx, node)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidateTree(ctx, renamed.ManufacturingTypeID)
	s.log.Info("node renamed", "node_id", renamed.ID, "path", renamed.Path)
	return renamed, nil
}

func (s *hierarchyService) MoveNode(ctx context.Context, nodeID uuid.UUID, newParentID *uuid.UUID) (*types.AttributeNode, error) {
	var moved *types.AttributeNode
	err := s.db.Transaction(func(tx *gorm.DB) error {
		node, err := s.nodeRepo.GetByID(ctx, tx, nodeID)
		if err != nil {
			return err
		}
		if node == nil {
			return &NotFoundError{Entity: "node", ID: nodeID}
		}

		parentPath := ""
		if newParentID != nil {
			if *newParentID == node.ID {
				return &CircularReferenceError{NodeID: node.ID, NewParentID: *newParentID}
			}
			parent, err := s.nodeRepo.GetByID(ctx, tx, *newParentID)
			if err != nil {
				return err
			}
			if parent == nil || parent.ManufacturingTypeID != node.ManufacturingTypeID {
				return &NotFoundError{Entity: "parent node", ID: *newParentID}
			}
			// The new parent must not live inside the moved subtree.
			if pathcodec.IsPrefix(node.Path, parent.Path) {
				return &CircularReferenceError{NodeID: node.ID, NewParentID: parent.ID}
			}
			parentPath = parent.Path
		}

		taken, err := s.nodeRepo.SiblingSegmentExists(ctx, tx, node.ManufacturingTypeID, newParentID, node.Segment, node.ID)
		if err != nil {
			return err
		}
		if taken {
			return &DuplicateNameError{Segment: node.Segment, ParentID: newParentID}
		}

		oldPath := node.Path
		node.ParentID = newParentID
		node.Path = pathcodec.Compose(parentPath, node.Segment)
		node.Depth = pathcodec.Depth(node.Path)

		if err := s.rewriteSubtreePaths(ctx, tx, node.ManufacturingTypeID, oldPath, node.Path); err != nil {
			return err
		}
		moved, err = s.nodeRepo.Save(ctx, tx, node)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidateTree(ctx, moved.ManufacturingTypeID)
	s.log.Info("node moved", "node_id", moved.ID, "path", moved.Path)
	return moved, nil
}

func (s *hierarchyService) DeleteNode(ctx context.Context, nodeID uuid.UUID, cascade bool) error {
	var typeID uuid.UUID
	err := s.db.Transaction(func(tx *gorm.DB) error {
		node, err := s.nodeRepo.GetByID(ctx, tx, nodeID)
		if err != nil {
			return err
		}
		if node == nil {
			return &NotFoundError{Entity: "node", ID: nodeID}
		}
		typeID = node.ManufacturingTypeID

		descendants, err := s.nodeRepo.GetByPathPrefix(ctx, tx, node.ManufacturingTypeID, node.Path)
		if err != nil {
			return err
		}
		if len(descendants) > 0 && !cascade {
			return &HasChildrenError{NodeID: nodeID}
		}

		ids := make([]uuid.UUID, 0, len(descendants)+1)
		ids = append(ids, node.ID)
		for _, d := range descendants {
			ids = append(ids, d.ID)
		}
		return s.nodeRepo.DeleteByIDs(ctx, tx, ids)
	})
	if err != nil {
		return err
	}

	s.invalidateTree(ctx, typeID)
	s.log.Info("node deleted", "node_id", nodeID, "cascade", cascade)
	return nil
}

func (s *hierarchyService) GetNode(ctx context.Context, nodeID uuid.UUID) (*types.AttributeNode, error) {
	node, err := s.nodeRepo.GetByID(ctx, nil, nodeID)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, &NotFoundError{Entity: "node", ID: nodeID}
	}
	return node, nil
}

func (s *hierarchyService) GetDescendants(ctx context.Context, nodeID uuid.UUID) ([]*types.AttributeNode, error) {
	node, err := s.GetNode(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	return s.nodeRepo.GetByPathPrefix(ctx, nil, node.ManufacturingTypeID, node.Path)
}

func (s *hierarchyService) GetAncestors(ctx context.Context, nodeID uuid.UUID) ([]*types.AttributeNode, error) {
	node, err := s.GetNode(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	segments := pathcodec.Split(node.Path)
	if len(segments) <= 1 {
		return []*types.AttributeNode{}, nil
	}
	paths := make([]string, 0, len(segments)-1)
	current := ""
	for _, seg := range segments[:len(segments)-1] {
		current = pathcodec.Compose(current, seg)
		paths = append(paths, current)
	}
	return s.nodeRepo.GetByExactPaths(ctx, nil, node.ManufacturingTypeID, paths)
}

func (s *hierarchyService) GetTree(ctx context.Context, typeID uuid.UUID, rootID *uuid.UUID) ([]*TreeNode, error) {
	cacheable := rootID == nil && s.treeCache != nil
	if cacheable {
		if payload, ok := s.treeCache.GetTree(ctx, typeID); ok {
			var tree []*TreeNode
			if err := json.Unmarshal(payload, &tree); err == nil {
				return tree, nil
			}
			// Corrupt cache entry: drop it and rebuild from the source.
			s.treeCache.Invalidate(ctx, typeID)
		}
	}

	nodes, err := s.nodeRepo.GetByManufacturingType(ctx, nil, typeID)
	if err != nil {
		return nil, err
	}

	tree := buildTree(nodes, rootID)
	if rootID != nil && len(tree) == 0 {
		return nil, &NotFoundError{Entity: "node", ID: *rootID}
	}

	if cacheable {
		if payload, err := json.Marshal(tree); err == nil {
			s.treeCache.SetTree(ctx, typeID, payload)
		}
	}
	return tree, nil
}

// rewriteSubtreePaths replaces oldPath with newPath as the prefix of
// every descendant and recomputes depth. It runs inside the caller's
// transaction: either the whole subtree is rewritten or none of it.
func (s *hierarchyService) rewriteSubtreePaths(ctx context.Context, tx *gorm.DB, typeID uuid.UUID, oldPath, newPath string) error {
	descendants, err := s.nodeRepo.GetByPathPrefix(ctx, tx, typeID, oldPath)
	if err != nil {
		return err
	}
	if len(descendants) == 0 {
		return nil
	}
	for _, d := range descendants {
		d.Path = newPath + strings.TrimPrefix(d.Path, oldPath)
		d.Depth = pathcodec.Depth(d.Path)
	}
	return s.nodeRepo.SaveBatch(ctx, tx, descendants)
}

func (s *hierarchyService) invalidateTree(ctx context.Context, typeID uuid.UUID) {
	if s.treeCache != nil {
		s.treeCache.Invalidate(ctx, typeID)
	}
}

// buildTree groups the flat node set by parent id and assembles the
// nested read shape. With a root id only that subtree is returned.
func buildTree(nodes []*types.AttributeNode, rootID *uuid.UUID) []*TreeNode {
	byParent := make(map[uuid.UUID][]*types.AttributeNode)
	var roots []*types.AttributeNode
	for _, n := range nodes {
		if n.ParentID == nil {
			roots = append(roots, n)
		} else {
			byParent[*n.ParentID] = append(byParent[*n.ParentID], n)
		}
	}

	var build func(n *types.AttributeNode) *TreeNode
	build = func(n *types.AttributeNode) *TreeNode {
		tn := &TreeNode{
			ID:       n.ID,
			Name:     n.Name,
			NodeType: n.NodeType,
			Children: []*TreeNode{},
		}
		if n.NodeType == types.NodeTypeOption {
			v := n.PriceImpactValue
			tn.PriceImpactValue = &v
		}
		children := byParent[n.ID]
		sortSiblings(children)
		for _, c := range children {
			tn.Children = append(tn.Children, build(c))
		}
		return tn
	}

	if rootID != nil {
		for _, n := range nodes {
			if n.ID == *rootID {
				return []*TreeNode{build(n)}
			}
		}
		return []*TreeNode{}
	}

	sortSiblings(roots)
	out := make([]*TreeNode, 0, len(roots))
	for _, r := range roots {
		out = append(out, build(r))
	}
	return out
}

func sortSiblings(nodes []*types.AttributeNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].SortOrder != nodes[j].SortOrder {
			return nodes[i].SortOrder < nodes[j].SortOrder
		}
		return nodes[i].ID.String() < nodes[j].ID.String()
	})
}

func parentPathOf(node *types.AttributeNode) string {
	segments := pathcodec.Split(node.Path)
	if len(segments) <= 1 {
		return ""
	}
	return strings.Join(segments[:len(segments)-1], pathcodec.Separator)
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func validateNodeFormulas(priceImpactType, priceFormula, weightImpactType, weightFormula, technicalFormula string) error {
	if priceImpactType == types.ImpactTypeFormula {
		if err := formula.Validate(priceFormula); err != nil {
			return &ValidationError{Field: "price_formula", Msg: err.Error()}
		}
	}
	if weightImpactType == types.ImpactTypeFormula {
		if err := formula.Validate(weightFormula); err != nil {
			return &ValidationError{Field: "weight_formula", Msg: err.Error()}
		}
	}
	if technicalFormula != "" {
		if err := formula.Validate(technicalFormula); err != nil {
			return &ValidationError{Field: "technical_formula", Msg: err.Error()}
		}
	}
	return nil
}
