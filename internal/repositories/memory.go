package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/anonto42/dreamscape/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore keeps all four collections in process memory behind one lock.
// It backs DB_DRIVER=memory and the test suites; every value handed out is a
// copy so callers never alias stored state.
type MemoryStore struct {
	mu          sync.RWMutex
	users       map[primitive.ObjectID]models.User
	posts       map[primitive.ObjectID]models.Post
	comments    map[primitive.ObjectID]models.Comment
	collections map[primitive.ObjectID]models.Collection
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       make(map[primitive.ObjectID]models.User),
		posts:       make(map[primitive.ObjectID]models.Post),
		comments:    make(map[primitive.ObjectID]models.Comment),
		collections: make(map[primitive.ObjectID]models.Collection),
	}
}

func (s *MemoryStore) Users() *MemoryUserRepository { return &MemoryUserRepository{s: s} }

func (s *MemoryStore) Posts() *MemoryPostRepository { return &MemoryPostRepository{s: s} }

func (s *MemoryStore) Comments() *MemoryCommentRepository { return &MemoryCommentRepository{s: s} }

func (s *MemoryStore) Collections() *MemoryCollectionRepository {
	return &MemoryCollectionRepository{s: s}
}

func cloneIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	return append([]primitive.ObjectID{}, ids...)
}

func cloneUser(u models.User) models.User {
	u.Following = cloneIDs(u.Following)
	return u
}

func clonePost(p models.Post) models.Post {
	p.Tags = append([]string{}, p.Tags...)
	p.Likes = cloneIDs(p.Likes)
	return p
}

func publicUser(u models.User) models.User {
	u = cloneUser(u)
	u.Password = ""
	return u
}

// newestFirst orders by t descending, breaking ties on the id, which grows
// monotonically within a process.
func newestFirst(ti, tj time.Time, idi, idj primitive.ObjectID) bool {
	if !ti.Equal(tj) {
		return ti.After(tj)
	}
	return idi.Hex() > idj.Hex()
}

// The methods below assume s.mu is held.

func (s *MemoryStore) compact(id primitive.ObjectID) *models.UserCompact {
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	return u.ToCompact()
}

func (s *MemoryStore) postView(p models.Post, withOwner bool) models.PostView {
	view := models.NewPostView(clonePost(p))
	if withOwner {
		view.UserID.User = s.compact(p.UserID)
	}
	return view
}

// MemoryUserRepository implements UserRepository over a MemoryStore
type MemoryUserRepository struct {
	s *MemoryStore
}

func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email {
			return &DuplicateError{Field: "email"}
		}
		if u.Username == user.Username {
			return &DuplicateError{Field: "username"}
		}
	}
	now := time.Now().UTC()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Following == nil {
		user.Following = []primitive.ObjectID{}
	}
	r.s.users[user.ID] = cloneUser(*user)
	return nil
}

func (r *MemoryUserRepository) findFirst(match func(models.User) bool) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if match(u) {
			found := cloneUser(u)
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findFirst(func(u models.User) bool { return u.ID == id })
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return r.findFirst(func(u models.User) bool { return u.Email == email })
}

func (r *MemoryUserRepository) FindByUsername(_ context.Context, username string) (*models.User, error) {
	return r.findFirst(func(u models.User) bool { return u.Username == username })
}

func (r *MemoryUserRepository) Exists(_ context.Context, id primitive.ObjectID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.users[id]
	return ok, nil
}

func (r *MemoryUserRepository) collect(match func(models.User) bool) []models.User {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := []models.User{}
	for _, u := range r.s.users {
		if match(u) {
			users = append(users, publicUser(u))
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID.Hex() < users[j].ID.Hex() })
	return users
}

func (r *MemoryUserRepository) List(_ context.Context, limit int64) ([]models.User, error) {
	users := r.collect(func(models.User) bool { return true })
	if limit > 0 && int64(len(users)) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (r *MemoryUserRepository) ListByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	wanted := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	return r.collect(func(u models.User) bool { return wanted[u.ID] }), nil
}

func (r *MemoryUserRepository) ListFollowers(_ context.Context, id primitive.ObjectID) ([]models.User, error) {
	return r.collect(func(u models.User) bool { return u.IsFollowing(id) }), nil
}

func (r *MemoryUserRepository) AddFollowing(_ context.Context, actor, target primitive.ObjectID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[actor]
	if !ok || u.IsFollowing(target) {
		return false, nil
	}
	u.Following = append(cloneIDs(u.Following), target)
	u.UpdatedAt = time.Now().UTC()
	r.s.users[actor] = u
	return true, nil
}

func (r *MemoryUserRepository) RemoveFollowing(_ context.Context, actor, target primitive.ObjectID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[actor]
	if !ok || !u.IsFollowing(target) {
		return false, nil
	}
	kept := make([]primitive.ObjectID, 0, len(u.Following))
	for _, id := range u.Following {
		if id != target {
			kept = append(kept, id)
		}
	}
	u.Following = kept
	u.UpdatedAt = time.Now().UTC()
	r.s.users[actor] = u
	return true, nil
}

func (r *MemoryUserRepository) UpdateProfile(_ context.Context, id primitive.ObjectID, update models.ProfileUpdate) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Bio != nil {
		u.Bio = *update.Bio
	}
	if update.ProfilePicture != nil {
		u.ProfilePicture = *update.ProfilePicture
	}
	u.UpdatedAt = time.Now().UTC()
	r.s.users[id] = u

	out := publicUser(u)
	return &out, nil
}

func (r *MemoryUserRepository) Profile(_ context.Context, id primitive.ObjectID) (*models.UserProfile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	profile := &models.UserProfile{
		User:        publicUser(u),
		Posts:       []models.Post{},
		Collections: []models.Collection{},
		Followers:   []primitive.ObjectID{},
	}
	for _, p := range r.s.posts {
		if p.UserID == id {
			profile.Posts = append(profile.Posts, clonePost(p))
		}
	}
	sort.Slice(profile.Posts, func(i, j int) bool {
		a, b := profile.Posts[i], profile.Posts[j]
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	for _, c := range r.s.collections {
		if c.UserID == id {
			profile.Collections = append(profile.Collections, c)
		}
	}
	sort.Slice(profile.Collections, func(i, j int) bool {
		return profile.Collections[i].ID.Hex() < profile.Collections[j].ID.Hex()
	})
	for _, other := range r.s.users {
		if other.IsFollowing(id) {
			profile.Followers = append(profile.Followers, other.ID)
		}
	}
	sort.Slice(profile.Followers, func(i, j int) bool {
		return profile.Followers[i].Hex() < profile.Followers[j].Hex()
	})
	return profile, nil
}

// MemoryPostRepository implements PostRepository over a MemoryStore
type MemoryPostRepository struct {
	s *MemoryStore
}

func (r *MemoryPostRepository) Create(_ context.Context, post *models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now().UTC()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.DateTime.IsZero() {
		post.DateTime = now
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	r.s.posts[post.ID] = clonePost(*post)
	return nil
}

func (r *MemoryPostRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := clonePost(p)
	return &out, nil
}

func (r *MemoryPostRepository) FindView(_ context.Context, id primitive.ObjectID) (*models.PostView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	view := r.s.postView(p, true)
	return &view, nil
}

func matchesSearch(p models.Post, term string) bool {
	term = strings.ToLower(term)
	fields := append([]string{p.DreamDescription, p.DreamStory, p.Location}, p.Tags...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

func matchesQuery(p models.Post, q PostQuery) bool {
	if len(q.OwnerIDs) > 0 {
		owned := false
		for _, id := range q.OwnerIDs {
			if p.UserID == id {
				owned = true
				break
			}
		}
		if !owned {
			return false
		}
	}
	if q.LikedBy != nil && !p.LikedBy(*q.LikedBy) {
		return false
	}
	if q.Search != "" && !matchesSearch(p, q.Search) {
		return false
	}
	return true
}

func (r *MemoryPostRepository) Find(_ context.Context, q PostQuery) ([]models.PostView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := []models.Post{}
	for _, p := range r.s.posts {
		if matchesQuery(p, q) {
			matched = append(matched, p)
		}
	}
	byUpdate := q.sortField() == SortUpdatedAt
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if byUpdate {
			return newestFirst(a.UpdatedAt, b.UpdatedAt, a.ID, b.ID)
		}
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})

	if q.Skip > 0 {
		if q.Skip >= int64(len(matched)) {
			matched = matched[:0]
		} else {
			matched = matched[q.Skip:]
		}
	}
	if q.Limit > 0 && int64(len(matched)) > q.Limit {
		matched = matched[:q.Limit]
	}

	views := make([]models.PostView, 0, len(matched))
	for _, p := range matched {
		views = append(views, r.s.postView(p, q.WithOwner))
	}
	return views, nil
}

func (r *MemoryPostRepository) Update(_ context.Context, post *models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.posts[post.ID]
	if !ok {
		return ErrNotFound
	}
	post.UpdatedAt = time.Now().UTC()
	if post.Tags == nil {
		post.Tags = []string{}
	}
	existing.DreamDescription = post.DreamDescription
	existing.ImageURL = post.ImageURL
	existing.InterpretedDream = post.InterpretedDream
	existing.DreamStory = post.DreamStory
	existing.DateTime = post.DateTime
	existing.Location = post.Location
	existing.Tags = append([]string{}, post.Tags...)
	existing.Emotions = post.Emotions
	existing.UpdatedAt = post.UpdatedAt
	r.s.posts[post.ID] = existing
	return nil
}

func (r *MemoryPostRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.posts, id)
	return nil
}

func (r *MemoryPostRepository) ToggleLike(_ context.Context, postID, userID primitive.ObjectID) (*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.posts[postID]
	if !ok {
		return nil, ErrNotFound
	}
	if p.LikedBy(userID) {
		kept := make([]primitive.ObjectID, 0, len(p.Likes))
		for _, id := range p.Likes {
			if id != userID {
				kept = append(kept, id)
			}
		}
		p.Likes = kept
	} else {
		p.Likes = append(cloneIDs(p.Likes), userID)
	}
	p.UpdatedAt = time.Now().UTC()
	r.s.posts[postID] = p

	out := clonePost(p)
	return &out, nil
}

// MemoryCommentRepository implements CommentRepository over a MemoryStore
type MemoryCommentRepository struct {
	s *MemoryStore
}

func (r *MemoryCommentRepository) Create(_ context.Context, comment *models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now().UTC()
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	r.s.comments[comment.ID] = *comment
	return nil
}

func (r *MemoryCommentRepository) ListByPost(_ context.Context, postID primitive.ObjectID) ([]models.CommentView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	views := []models.CommentView{}
	for _, c := range r.s.comments {
		if c.PostID == postID {
			views = append(views, models.CommentView{
				Comment: c,
				UserID:  models.UserRef{ID: c.UserID, User: r.s.compact(c.UserID)},
			})
		}
	}
	sort.Slice(views, func(i, j int) bool {
		a, b := views[i], views[j]
		return newestFirst(b.CreatedAt, a.CreatedAt, b.ID, a.ID)
	})
	return views, nil
}

func (r *MemoryCommentRepository) DeleteByPost(_ context.Context, postID primitive.ObjectID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, c := range r.s.comments {
		if c.PostID == postID {
			delete(r.s.comments, id)
			n++
		}
	}
	return n, nil
}

// MemoryCollectionRepository implements CollectionRepository over a MemoryStore
type MemoryCollectionRepository struct {
	s *MemoryStore
}

func (r *MemoryCollectionRepository) Create(_ context.Context, c *models.Collection) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.collections {
		if existing.PostID == c.PostID && existing.UserID == c.UserID {
			return ErrDuplicate
		}
	}
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.CreatedAt = now
	c.UpdatedAt = now
	r.s.collections[c.ID] = *c
	return nil
}

func (r *MemoryCollectionRepository) DeleteOwned(_ context.Context, id, userID primitive.ObjectID) (*models.Collection, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.collections[id]
	if !ok || c.UserID != userID {
		return nil, ErrNotFound
	}
	delete(r.s.collections, id)
	return &c, nil
}

func (r *MemoryCollectionRepository) DeleteByPost(_ context.Context, postID primitive.ObjectID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, c := range r.s.collections {
		if c.PostID == postID {
			delete(r.s.collections, id)
			n++
		}
	}
	return n, nil
}

func (r *MemoryCollectionRepository) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.CollectionView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	views := []models.CollectionView{}
	for _, c := range r.s.collections {
		if c.UserID != userID {
			continue
		}
		view := models.CollectionView{Collection: c, PostID: models.PostRef{ID: c.PostID}}
		if p, ok := r.s.posts[c.PostID]; ok {
			pv := r.s.postView(p, true)
			view.PostID.Post = &pv
		}
		views = append(views, view)
	}
	sort.Slice(views, func(i, j int) bool {
		a, b := views[i], views[j]
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	})
	return views, nil
}

var (
	_ UserRepository       = (*MemoryUserRepository)(nil)
	_ PostRepository       = (*MemoryPostRepository)(nil)
	_ CommentRepository    = (*MemoryCommentRepository)(nil)
	_ CollectionRepository = (*MemoryCollectionRepository)(nil)
	_ UserRepository       = (*MongoUserRepository)(nil)
	_ PostRepository       = (*MongoPostRepository)(nil)
	_ CommentRepository    = (*MongoCommentRepository)(nil)
	_ CollectionRepository = (*MongoCollectionRepository)(nil)
)
