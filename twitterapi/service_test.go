package twitterapi

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(handler http.Handler) (*TwitterAPIService, *httptest.Server) {
	server := httptest.NewServer(handler)
	service := NewTwitterAPIService("test-key", server.URL, "")
	return service, server
}

func TestSearchTweets_SinglePage(t *testing.T) {
	var gotQuery, gotKey string
	service, server := newTestService(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		gotKey = r.Header.Get("X-API-Key")
		fmt.Fprint(w, `{"tweets": [{"id": "1", "text": "one"}, {"id": "2", "text": "two"}], "has_next_page": false}`)
	}))
	defer server.Close()

	tweets, err := service.SearchTweets("golang", 10)
	require.NoError(t, err)
	assert.Len(t, tweets, 2)
	assert.Equal(t, "golang", gotQuery)
	assert.Equal(t, "test-key", gotKey)
}

func TestSearchTweets_PaginatesUntilLimit(t *testing.T) {
	page := 0
	service, server := newTestService(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page++
		if page == 1 {
			assert.Empty(t, r.URL.Query().Get("cursor"))
			fmt.Fprint(w, `{"tweets": [{"id": "1"}, {"id": "2"}], "has_next_page": true, "next_cursor": "c2"}`)
			return
		}
		assert.Equal(t, "c2", r.URL.Query().Get("cursor"))
		fmt.Fprint(w, `{"tweets": [{"id": "3"}, {"id": "4"}], "has_next_page": true, "next_cursor": "c3"}`)
	}))
	defer server.Close()

	tweets, err := service.SearchTweets("golang", 3)
	require.NoError(t, err)
	require.Len(t, tweets, 3)
	assert.Equal(t, "3", tweets[2].Id)
	assert.Equal(t, 2, page)
}

func TestSearchTweets_StopsWhenUpstreamRunsOut(t *testing.T) {
	service, server := newTestService(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"tweets": [{"id": "1"}], "has_next_page": false}`)
	}))
	defer server.Close()

	tweets, err := service.SearchTweets("golang", 100)
	require.NoError(t, err)
	assert.Len(t, tweets, 1)
}

func TestSearchTweets_UpstreamError(t *testing.T) {
	service, server := newTestService(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status": "error"}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := service.SearchTweets("golang", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non 200")
}

func TestMakeRequest_RetriesOn429(t *testing.T) {
	attempts := 0
	service, server := newTestService(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"tweets": [{"id": "1"}]}`)
	}))
	defer server.Close()

	tweets, err := service.SearchTweets("golang", 10)
	require.NoError(t, err)
	assert.Len(t, tweets, 1)
	assert.Equal(t, 2, attempts)
}

func TestGetUserProfile(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		service, server := newTestService(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "44196397", r.URL.Query().Get("userId"))
			fmt.Fprint(w, `{"data": {"id": "44196397", "userName": "gopher", "followers": 100}, "status": "success"}`)
		}))
		defer server.Close()

		author, err := service.GetUserProfile("44196397")
		require.NoError(t, err)
		require.NotNil(t, author)
		assert.Equal(t, "gopher", author.UserName)
		assert.Equal(t, 100, author.Followers)
	})

	t.Run("NotFoundIsNilNil", func(t *testing.T) {
		service, server := newTestService(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		author, err := service.GetUserProfile("gone")
		require.NoError(t, err)
		assert.Nil(t, author)
	})

	t.Run("EmptyDataIsNilNil", func(t *testing.T) {
		service, server := newTestService(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"data": {}, "status": "success"}`)
		}))
		defer server.Close()

		author, err := service.GetUserProfile("ghost")
		require.NoError(t, err)
		assert.Nil(t, author)
	})
}

func TestGetUserLastTweets(t *testing.T) {
	service, server := newTestService(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "false", r.URL.Query().Get("includeReplies"))
		fmt.Fprint(w, `{"tweets": [{"id": "1"}, {"id": "2"}, {"id": "3"}, {"id": "4"}], "status": "success"}`)
	}))
	defer server.Close()

	tweets, err := service.GetUserLastTweets("44196397", 3)
	require.NoError(t, err)
	require.Len(t, tweets, 3)
	assert.Equal(t, "1", tweets[0].Id)
}
