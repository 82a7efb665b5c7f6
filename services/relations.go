package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/cppla/luntan/apperror"
	"github.com/cppla/luntan/store"
)

// RelationService flips membership in the follow, like and collect relations.
// It is the only code path that mutates them.
type RelationService struct {
	store  *store.Store
	logger *zap.Logger
}

func NewRelationService(st *store.Store, logger *zap.Logger) *RelationService {
	return &RelationService{store: st, logger: logger}
}

// Toggle adds (actor, target) to the relation when absent and removes it when
// present, reporting whether the pair exists afterwards.
func (s *RelationService) Toggle(ctx context.Context, actorID, targetID uint, kind store.RelationKind) (bool, error) {
	if kind == store.RelationFollow && actorID == targetID {
		return false, apperror.SelfReference("cannot follow yourself")
	}

	var present bool
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		if _, err := tx.GetUser(ctx, actorID); err != nil {
			return err
		}
		if kind == store.RelationFollow {
			if _, err := tx.GetUser(ctx, targetID); err != nil {
				return err
			}
		} else if _, err := tx.GetPost(ctx, targetID); err != nil {
			return err
		}

		exists, err := tx.HasRelation(ctx, kind, actorID, targetID)
		if err != nil {
			return err
		}
		if exists {
			return tx.RemoveRelation(ctx, kind, actorID, targetID)
		}
		present = true
		return tx.AddRelation(ctx, kind, actorID, targetID)
	})
	if err != nil {
		return false, err
	}

	result := "removed"
	if present {
		result = "added"
	}
	RelationToggles.WithLabelValues(string(kind), result).Inc()
	s.logger.Debug("relation toggled",
		zap.String("kind", string(kind)),
		zap.Uint("actor", actorID),
		zap.Uint("target", targetID),
		zap.Bool("present", present),
	)
	return present, nil
}

func (s *RelationService) ToggleFollow(ctx context.Context, followerID, followedID uint) (bool, error) {
	return s.Toggle(ctx, followerID, followedID, store.RelationFollow)
}

func (s *RelationService) ToggleLike(ctx context.Context, userID, postID uint) (bool, error) {
	return s.Toggle(ctx, userID, postID, store.RelationLike)
}

func (s *RelationService) ToggleCollect(ctx context.Context, userID, postID uint) (bool, error) {
	return s.Toggle(ctx, userID, postID, store.RelationCollect)
}
