package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/dreamscape/backend/internal/models"
	"github.com/anonto42/dreamscape/backend/internal/repositories"
	"github.com/anonto42/dreamscape/backend/pkg/storage"
	"github.com/anonto42/dreamscape/backend/pkg/token"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// fakeImages records uploads and deletes; sources starting with "bad" are
// rejected by Load.
type fakeImages struct {
	mu        sync.Mutex
	n         int
	uploaded  []string
	deleted   []string
	deleteErr error
	putErr    error
}

func (f *fakeImages) Load(_ context.Context, source string) (*storage.Image, error) {
	if strings.HasPrefix(source, "bad") {
		return nil, storage.ErrUnsupportedSource
	}
	return &storage.Image{Data: []byte(source), ContentType: "image/png", Extension: ".png"}, nil
}

func (f *fakeImages) Put(_ context.Context, _ *storage.Image) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	return f.store()
}

func (f *fakeImages) UploadBytes(_ context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty image")
	}
	return f.store()
}

func (f *fakeImages) store() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	url := "https://cdn.test/dreams/" + string(rune('a'+f.n-1)) + ".png"
	f.uploaded = append(f.uploaded, url)
	return url, nil
}

func (f *fakeImages) Delete(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, url)
	return nil
}

type fixture struct {
	store  *repositories.MemoryStore
	images *fakeImages
	tokens *token.Manager
	auth   *AuthService
	social *SocialService
	users  *UserService
	feed   *FeedService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repositories.NewMemoryStore()
	images := &fakeImages{}
	tokens := token.NewManager("test-secret", time.Hour)
	log := zap.NewNop()
	return &fixture{
		store:  store,
		images: images,
		tokens: tokens,
		auth:   NewAuthService(store.Users(), tokens, bcrypt.MinCost),
		social: NewSocialService(store.Users()),
		users:  NewUserService(store.Users(), images, log),
		feed:   NewFeedService(store.Users(), store.Posts(), store.Comments(), store.Collections(), images, log),
	}
}

// signUp registers username and returns its id.
func (f *fixture) signUp(t *testing.T, username string) primitive.ObjectID {
	t.Helper()
	_, err := f.auth.SignUp(context.Background(), models.SignUpRequest{
		Email:    username + "@example.com",
		Password: "secret1",
		Name:     strings.ToUpper(username[:1]) + username[1:],
		Username: username,
	})
	require.NoError(t, err)
	u, err := f.store.Users().FindByUsername(context.Background(), username)
	require.NoError(t, err)
	return u.ID
}

func (f *fixture) post(t *testing.T, owner primitive.ObjectID, desc, tags string) *models.Post {
	t.Helper()
	p, err := f.feed.CreatePost(context.Background(), owner, PostInput{
		DreamDescription: desc,
		ImageURL:         "data:image/png;base64,AAAA",
		Tags:             tags,
	})
	require.NoError(t, err)
	return p
}

func postIDs(views []models.PostView) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(views))
	for _, v := range views {
		out = append(out, v.ID)
	}
	return out
}
