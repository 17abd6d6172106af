package api_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/towngreen/churchsite/api"
)

func TestLoginSendsNoAuthorization(t *testing.T) {
	s := &stub{body: `{"success":true,"token":"t-1","user":{"id":1,"username":"admin"}}`}
	c := newClient(t, s, "stale-token")

	sess, err := c.Login(context.Background(), " admin ", "secret")
	require.NoError(t, err)
	require.Equal(t, "t-1", sess.Token)
	require.Equal(t, "admin", sess.User.Username)

	r := s.last(t)
	require.Equal(t, "/api/auth/login", r.Path)
	require.Empty(t, r.Header.Get("Authorization"))
	require.Equal(t, map[string]any{"username": "admin", "password": "secret"}, r.Body)
}

func TestLoginFailurePrefersMessage(t *testing.T) {
	c := newClient(t, &stub{status: 401, body: `{"message":"Invalid credentials","error":"x"}`}, "")
	_, err := c.Login(context.Background(), "admin", "nope")
	require.EqualError(t, err, "Invalid credentials")
	require.True(t, api.IsUnauthorized(err))

	c = newClient(t, &stub{body: `{"success":false}`}, "")
	_, err = c.Login(context.Background(), "admin", "nope")
	require.EqualError(t, err, "Login failed")

	c = newClient(t, &stub{body: `{"success":true}`}, "")
	_, err = c.Login(context.Background(), "admin", "ok")
	require.Error(t, err)
}

func TestLoginTokenUnderData(t *testing.T) {
	c := newClient(t, &stub{body: `{"success":true,"data":{"token":"t-2","user":{"username":"pastor"}}}`}, "")
	sess, err := c.Login(context.Background(), "pastor", "pw")
	require.NoError(t, err)
	require.Equal(t, "t-2", sess.Token)
	require.Equal(t, "pastor", sess.User.Username)
}

func TestSermonsCRUD(t *testing.T) {
	s := &stub{body: `{"success":true,"data":[{"id":3,"title":"Grace","video_url":"https://youtu.be/x"},{"id":"a","title":""}]}`}
	c := newClient(t, s, "tok")
	ctx := context.Background()

	items, err := c.Sermons().List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "video", items[0].Kind())
	require.Equal(t, "Untitled Sermon", items[1].DisplayTitle())
	require.Equal(t, "/api/sermons", s.last(t).Path)

	s.respond(`{"success":true,"data":{"id":9,"title":"New"}}`)
	created, err := c.Sermons().Create(ctx, api.Sermon{Title: "New"})
	require.NoError(t, err)
	require.Equal(t, "9", created.ID.String())

	s.respond(`{"success":true}`)
	require.NoError(t, c.Sermons().Update(ctx, "9", api.Sermon{Title: "Renamed"}))
	r := s.last(t)
	require.Equal(t, http.MethodPut, r.Method)
	require.Equal(t, "/api/sermons/9", r.Path)
	require.Equal(t, "Renamed", r.Body["title"])

	require.NoError(t, c.Sermons().Delete(ctx, "9"))
	require.Equal(t, http.MethodDelete, s.last(t).Method)
}

func TestEngagement(t *testing.T) {
	s := &stub{body: `{"success":true,"data":{"likes":2,"loves":1,"userLiked":true,"userLoved":false}}`}
	c := newClient(t, s, "")
	ctx := context.Background()

	r, err := c.Programs().Like(ctx, "4")
	require.NoError(t, err)
	require.Equal(t, api.Reactions{Likes: 2, Loves: 1, UserLiked: true}, r)
	require.Equal(t, "/api/programs/4/like", s.last(t).Path)

	s.respond(`{"success":true}`)
	require.NoError(t, c.Sermons().AddComment(ctx, "7", "  Amen ", ""))
	rec := s.last(t)
	require.Equal(t, "/api/sermons/7/comments", rec.Path)
	require.Equal(t, map[string]any{"comment_text": "Amen", "author_name": "Anonymous"}, rec.Body)

	comments, err := c.Sermons().Comments(ctx, "7")
	require.NoError(t, err)
	require.NotNil(t, comments)
	require.Empty(t, comments)

	s.respond(`{"success":true,"data":{"view_count":12}}`)
	n, err := c.Sermons().TrackView(ctx, "7")
	require.NoError(t, err)
	require.Equal(t, 12, n)
}

func TestGalleryEndpointsUseItemURL(t *testing.T) {
	s := &stub{body: `{"success":true,"data":{"likes":0,"loves":3}}`}
	c := newClient(t, s, "")
	ctx := context.Background()

	r, err := c.Gallery().Reactions(ctx, "/uploads/images/a b.png")
	require.NoError(t, err)
	require.Equal(t, 3, r.Loves)
	rec := s.last(t)
	require.Equal(t, "/api/home/gallery/reactions", rec.Path)
	require.Equal(t, "item_url=%2Fuploads%2Fimages%2Fa+b.png", rec.Query)

	_, err = c.Gallery().Love(ctx, "/uploads/images/a.png")
	require.NoError(t, err)
	require.Equal(t, map[string]any{"item_url": "/uploads/images/a.png"}, s.last(t).Body)
}

func TestMembershipPaging(t *testing.T) {
	s := &stub{body: `{"success":true,"data":[{"id":1,"full_name":"Ama Mensah","status":""}],"pagination":{"page":2,"limit":10,"total":11,"totalPages":2}}`}
	c := newClient(t, s, "tok")

	items, p, err := c.Memberships().Page(context.Background(), 2, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, api.MembershipPending, items[0].StatusOrPending())
	require.Equal(t, api.Pagination{Page: 2, Limit: 10, Total: 11, TotalPages: 2}, p)
	require.Equal(t, "limit=10&page=2", s.last(t).Query)

	s.respond(`{"success":true,"data":[]}`)
	_, p, err = c.Memberships().Page(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Equal(t, 1, p.TotalPages)
	require.Equal(t, "limit=10&page=1", s.last(t).Query)

	require.NoError(t, c.Memberships().Submit(context.Background(), api.MembershipApplication{FullName: "Kofi", Sex: "male"}))
	rec := s.last(t)
	require.Equal(t, http.MethodPost, rec.Method)
	require.Equal(t, "/api/membership", rec.Path)
	require.Equal(t, "Kofi", rec.Body["fullName"])
}

func TestMarkers(t *testing.T) {
	s := &stub{body: `{"success":true}`}
	c := newClient(t, s, "tok")
	ctx := context.Background()

	require.NoError(t, c.Prayers().MarkAnswered(ctx, "5"))
	require.Equal(t, "/api/prayers/5/answered", s.last(t).Path)
	require.Equal(t, http.MethodPut, s.last(t).Method)

	require.NoError(t, c.Contact().MarkRead(ctx, "6"))
	require.Equal(t, "/api/contact/6/read", s.last(t).Path)

	msg, err := c.Health(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", msg)
}

func TestPrayerDisplayName(t *testing.T) {
	require.Equal(t, "Anonymous", api.PrayerRequest{RequesterName: "Ama", IsAnonymous: true}.DisplayName())
	require.Equal(t, "Anonymous", api.PrayerRequest{}.DisplayName())
	require.Equal(t, "Ama", api.PrayerRequest{RequesterName: "Ama"}.DisplayName())
}
