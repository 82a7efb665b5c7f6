package store

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"github.com/cppla/luntan/models"
)

// RelationKind names one of the membership relations.
type RelationKind string

const (
	RelationFollow  RelationKind = "follow"
	RelationLike    RelationKind = "like"
	RelationCollect RelationKind = "collect"
)

type relationTable struct {
	model     interface{}
	actorCol  string
	targetCol string
	pair      func(actor, target uint) interface{}
}

var relationTables = map[RelationKind]relationTable{
	RelationFollow: {
		model:     &models.Follow{},
		actorCol:  "follower_id",
		targetCol: "followed_id",
		pair: func(actor, target uint) interface{} {
			return &models.Follow{FollowerID: actor, FollowedID: target}
		},
	},
	RelationLike: {
		model:     &models.PostLike{},
		actorCol:  "user_id",
		targetCol: "post_id",
		pair: func(actor, target uint) interface{} {
			return &models.PostLike{UserID: actor, PostID: target}
		},
	},
	RelationCollect: {
		model:     &models.PostCollect{},
		actorCol:  "user_id",
		targetCol: "post_id",
		pair: func(actor, target uint) interface{} {
			return &models.PostCollect{UserID: actor, PostID: target}
		},
	},
}

func tableFor(kind RelationKind) (relationTable, error) {
	t, ok := relationTables[kind]
	if !ok {
		return relationTable{}, fmt.Errorf("unknown relation kind %q", kind)
	}
	return t, nil
}

// HasRelation reports whether (actor, target) is a member of the relation.
func (s *Store) HasRelation(ctx context.Context, kind RelationKind, actor, target uint) (bool, error) {
	t, err := tableFor(kind)
	if err != nil {
		return false, err
	}
	ok, err := s.exists(ctx, t.model, t.actorCol+" = ? AND "+t.targetCol+" = ?", actor, target)
	if err != nil {
		return false, fmt.Errorf("check %s %d->%d: %w", kind, actor, target, err)
	}
	return ok, nil
}

// AddRelation inserts (actor, target). Inserting an existing pair is a no-op.
func (s *Store) AddRelation(ctx context.Context, kind RelationKind, actor, target uint) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(t.pair(actor, target)).Error
	if err != nil {
		return fmt.Errorf("add %s %d->%d: %w", kind, actor, target, err)
	}
	return nil
}

// RemoveRelation deletes (actor, target) if present.
func (s *Store) RemoveRelation(ctx context.Context, kind RelationKind, actor, target uint) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).
		Where(t.actorCol+" = ? AND "+t.targetCol+" = ?", actor, target).
		Delete(t.model).Error
	if err != nil {
		return fmt.Errorf("remove %s %d->%d: %w", kind, actor, target, err)
	}
	return nil
}

// CountByTargets counts pairs for each of targets in one query. Targets
// without pairs are absent from the map.
func (s *Store) CountByTargets(ctx context.Context, kind RelationKind, targets []uint) (map[uint]int64, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	return s.groupCount(ctx, t.model, t.targetCol, targets)
}

// CountByActors counts pairs originating at each of actors in one query.
func (s *Store) CountByActors(ctx context.Context, kind RelationKind, actors []uint) (map[uint]int64, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	return s.groupCount(ctx, t.model, t.actorCol, actors)
}

// ActorTargets returns the subset of targets that actor is related to.
func (s *Store) ActorTargets(ctx context.Context, kind RelationKind, actor uint, targets []uint) (map[uint]bool, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	out := make(map[uint]bool, len(targets))
	if len(targets) == 0 {
		return out, nil
	}
	var ids []uint
	err = s.db.WithContext(ctx).Model(t.model).
		Where(t.actorCol+" = ? AND "+t.targetCol+" IN ?", actor, targets).
		Pluck(t.targetCol, &ids).Error
	if err != nil {
		return nil, fmt.Errorf("load %s memberships of %d: %w", kind, actor, err)
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// TargetsOf lists every target actor is related to (who a user follows, what a user collected).
func (s *Store) TargetsOf(ctx context.Context, kind RelationKind, actor uint) ([]uint, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	var ids []uint
	err = s.db.WithContext(ctx).Model(t.model).
		Where(t.actorCol+" = ?", actor).
		Order(t.targetCol).
		Pluck(t.targetCol, &ids).Error
	return ids, err
}

// ActorsOf lists every actor related to target (a user's followers).
func (s *Store) ActorsOf(ctx context.Context, kind RelationKind, target uint) ([]uint, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	var ids []uint
	err = s.db.WithContext(ctx).Model(t.model).
		Where(t.targetCol+" = ?", target).
		Order(t.actorCol).
		Pluck(t.actorCol, &ids).Error
	return ids, err
}

func (s *Store) groupCount(ctx context.Context, model interface{}, col string, keys []uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	var rows []struct {
		RefID uint
		Total int64
	}
	err := s.db.WithContext(ctx).Model(model).
		Select(col+" AS ref_id, COUNT(*) AS total").
		Where(col+" IN ?", keys).
		Group(col).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count by %s: %w", col, err)
	}
	for _, r := range rows {
		out[r.RefID] = r.Total
	}
	return out, nil
}
