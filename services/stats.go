package services

import (
	"context"

	"github.com/cppla/luntan/store"
)

// Stats is the forum-wide summary shown on the index page.
type Stats struct {
	UserCount    int64 `json:"user_count"`
	PostCount    int64 `json:"post_count"`
	CommentCount int64 `json:"comment_count"`
}

type StatsService struct {
	store *store.Store
}

func NewStatsService(st *store.Store) *StatsService {
	return &StatsService{store: st}
}

// Overview counts users, posts and comments.
func (s *StatsService) Overview(ctx context.Context) (Stats, error) {
	var st Stats
	var err error
	if st.UserCount, err = s.store.CountUsers(ctx); err != nil {
		return Stats{}, err
	}
	if st.PostCount, err = s.store.CountPosts(ctx); err != nil {
		return Stats{}, err
	}
	if st.CommentCount, err = s.store.CountComments(ctx, 0); err != nil {
		return Stats{}, err
	}
	return st, nil
}
