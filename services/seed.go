package services

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"

	"github.com/cppla/luntan/store"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "password123"

var demoCategories = []string{"tech", "life", "news", "share"}

// SeedOptions sizes the demo data set.
type SeedOptions struct {
	Users        int
	PostsPerUser int
	// RandSeed makes the generated content reproducible when non-zero.
	RandSeed int64
}

// SeedResult reports what was created.
type SeedResult struct {
	Users   int
	Posts   int
	Follows int
	Likes   int
}

// Seeder fills an empty database with demo users, posts and relations.
// Everything goes through the services so the usual validation applies.
type Seeder struct {
	store     *store.Store
	users     *UserService
	posts     *PostService
	relations *RelationService
	logger    *zap.Logger
}

func NewSeeder(st *store.Store, users *UserService, posts *PostService, relations *RelationService, logger *zap.Logger) *Seeder {
	return &Seeder{store: st, users: users, posts: posts, relations: relations, logger: logger}
}

// Seed does nothing when posts already exist.
func (s *Seeder) Seed(ctx context.Context, opts SeedOptions) (SeedResult, error) {
	var res SeedResult
	if opts.Users <= 0 {
		return res, nil
	}
	existing, err := s.store.CountPosts(ctx)
	if err != nil {
		return res, err
	}
	if existing > 0 {
		s.logger.Info("database already has posts, skipping demo seed", zap.Int64("posts", existing))
		return res, nil
	}

	faker := gofakeit.New(opts.RandSeed)
	userIDs := make([]uint, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		name := demoUsername(faker.FirstName(), i)
		u, err := s.users.Register(ctx, RegisterInput{
			Username: name,
			Email:    name + "@demo.luntan.local",
			Password: DemoPassword,
		})
		if err != nil {
			return res, fmt.Errorf("seed user %s: %w", name, err)
		}
		if _, err := s.users.UpdateProfile(ctx, u.ID, ProfileInput{Bio: strPtr(faker.Sentence(8))}); err != nil {
			return res, err
		}
		userIDs = append(userIDs, u.ID)
		res.Users++
	}

	var postIDs []uint
	for _, uid := range userIDs {
		for j := 0; j < opts.PostsPerUser; j++ {
			p, err := s.posts.CreatePost(ctx, uid, CreatePostInput{
				Title:    strings.TrimSuffix(faker.Sentence(5), "."),
				Content:  faker.Paragraph(1, 3, 8, "\n"),
				Category: demoCategories[faker.Number(0, len(demoCategories)-1)],
				Tags:     faker.Word(),
			})
			if err != nil {
				return res, fmt.Errorf("seed post: %w", err)
			}
			postIDs = append(postIDs, p.ID)
			res.Posts++
		}
	}

	// a follow ring keeps the graph connected without self follows
	if len(userIDs) > 1 {
		for i, uid := range userIDs {
			if _, err := s.relations.ToggleFollow(ctx, uid, userIDs[(i+1)%len(userIDs)]); err != nil {
				return res, err
			}
			res.Follows++
		}
	}
	for i, pid := range postIDs {
		liker := userIDs[(i+1)%len(userIDs)]
		if _, err := s.relations.ToggleLike(ctx, liker, pid); err != nil {
			return res, err
		}
		res.Likes++
	}

	s.logger.Info("demo data seeded",
		zap.Int("users", res.Users),
		zap.Int("posts", res.Posts),
		zap.Int("follows", res.Follows),
		zap.Int("likes", res.Likes),
	)
	return res, nil
}

// demoUsername keeps only ASCII letters of the generated name and appends the index for uniqueness.
func demoUsername(first string, i int) string {
	var b strings.Builder
	for _, r := range strings.ToLower(first) {
		if r < unicode.MaxASCII && unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() < 3 {
		b.WriteString("user")
	}
	return fmt.Sprintf("%s%d", b.String(), i+1)
}

func strPtr(s string) *string { return &s }
